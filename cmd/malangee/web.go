package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malangee/malangee/internal/auth"
	"github.com/malangee/malangee/internal/browser"
)

// openBrowser is replaced in tests.
var openBrowser = browser.Open

// webPages maps page names to web app routes.
var webPages = map[string]string{
	"home":    string(auth.RouteHome),
	"login":   string(auth.RouteLogin),
	"signup":  "/auth/signup",
	"setup":   "/chat/setup",
	"history": "/chat-history",
}

func pageNames() []string {
	names := make([]string, 0, len(webPages))
	for n := range webPages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newWebCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "web [page]",
		Short:     "Open the MalangEE web app in a browser",
		Long:      "Open the MalangEE web app in a browser. Pages: " + strings.Join(pageNames(), ", ") + ".",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: pageNames(),
	}
	cmd.RunE = withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
		page := "home"
		if len(args) == 1 {
			page = args[0]
		}
		url := browser.PageURL(e.cfg.WebURL, webPages[page])
		w := cmd.OutOrStdout()
		if err := openBrowser(url); err != nil {
			fmt.Fprintf(w, "Could not open browser. Visit this URL manually:\n  %s\n", url) //nolint:errcheck
			return nil
		}
		fmt.Fprintln(w, url) //nolint:errcheck
		return nil
	})
	return cmd
}
