package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/malangee/malangee/pkg/client"
	"github.com/malangee/malangee/pkg/domain"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past conversations",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withEnv(opts, func(cmd *cobra.Command, _ []string, e *env) error {
		if skip < 0 || limit <= 0 {
			return errors.New("--skip must be >= 0 and --limit > 0")
		}
		if !e.tokens.Exists() {
			return errNotLoggedIn
		}
		sessions, err := e.api.ListChatSessions(cmd.Context(), skip, limit)
		if err != nil {
			if client.IsAuth(err) {
				e.tokens.Remove() //nolint:errcheck // best-effort
				return errSessionExpired
			}
			return cliError(err)
		}

		w := cmd.OutOrStdout()
		if opts.json {
			if sessions == nil {
				sessions = []domain.ChatSession{}
			}
			return printJSON(w, sessions)
		}
		items := make([]domain.HistoryItem, 0, len(sessions))
		for _, s := range sessions {
			items = append(items, domain.NewHistoryItem(s))
		}
		formatHistory(w, items)
		return nil
	})
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of sessions to skip")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to list")
	return cmd
}
