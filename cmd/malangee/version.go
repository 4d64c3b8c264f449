package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/malangee/malangee/internal/tui"
	"github.com/malangee/malangee/pkg/domain"
)

// versionInfo is the --json shape of the version command.
type versionInfo struct {
	Client       string             `json:"client"`
	SupportedAPI string             `json:"supported_api"`
	Server       *domain.ServerInfo `json:"server,omitempty"`
	Notice       string             `json:"notice,omitempty"`
	ServerError  string             `json:"server_error,omitempty"`
}

func newVersionCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the client version and the backend API version",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withEnv(opts, func(cmd *cobra.Command, _ []string, e *env) error {
		out := versionInfo{Client: version, SupportedAPI: tui.SupportedAPIVersion}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		info, err := e.api.ServerInfo(ctx)
		if err != nil {
			out.ServerError = cliError(err).Error()
		} else {
			out.Server = info
			out.Notice = tui.ServerNotice(info, version)
		}

		w := cmd.OutOrStdout()
		if opts.json {
			return printJSON(w, out)
		}
		fmt.Fprintf(w, "malangee %s (API %s)\n", out.Client, out.SupportedAPI) //nolint:errcheck
		switch {
		case out.Server != nil:
			fmt.Fprintf(w, "server   %s v%s\n", out.Server.Title, strings.TrimPrefix(out.Server.Version, "v")) //nolint:errcheck
		default:
			fmt.Fprintln(w, labelStyle.Render("server   unreachable: "+out.ServerError)) //nolint:errcheck
		}
		if out.Notice != "" {
			fmt.Fprintln(w, warnStyle.Render(out.Notice)) //nolint:errcheck
		}
		return nil
	})
	return cmd
}
