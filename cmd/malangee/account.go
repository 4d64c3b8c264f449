package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/malangee/malangee/internal/availability"
	"github.com/malangee/malangee/pkg/domain"
)

func newLogoutCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved access token",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withEnv(opts, func(cmd *cobra.Command, _ []string, e *env) error {
		w := cmd.OutOrStdout()
		if !e.tokens.Exists() {
			fmt.Fprintln(w, "Already logged out.") //nolint:errcheck
			return nil
		}
		e.session.Logout()
		if e.cfg.Token != "" {
			fmt.Fprintln(w, warnStyle.Render("MALANGEE_TOKEN is set; unset it to stay logged out.")) //nolint:errcheck
		}
		printGreeting(w, "다시 들어오려면: malangee login")
		return nil
	})
	return cmd
}

// whoami is the --json shape of the whoami command.
type whoami struct {
	User      *domain.User `json:"user"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

func newWhoamiCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and token expiry",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withEnv(opts, func(cmd *cobra.Command, _ []string, e *env) error {
		st := e.session.Load(cmd.Context())
		switch {
		case !st.HasToken && st.IsAuthError:
			return errSessionExpired
		case !st.HasToken:
			return errNotLoggedIn
		case st.Err != nil:
			return cliError(st.Err)
		case st.User == nil:
			return errNotLoggedIn
		}

		exp, hasExp := e.session.Expiry()
		w := cmd.OutOrStdout()
		if opts.json {
			out := whoami{User: st.User}
			if hasExp {
				out.ExpiresAt = &exp
			}
			return printJSON(w, out)
		}
		formatUser(w, st.User, exp, hasExp, time.Now())
		return nil
	})
	return cmd
}

func newNicknameCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nickname [new-nickname]",
		Short: "Change your nickname",
		Long: `Change your nickname.

Without an argument an interactive form checks the new nickname as you type.`,
		Args: cobra.MaximumNArgs(1),
	}
	cmd.RunE = withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
		st := e.session.Load(cmd.Context())
		switch {
		case !st.HasToken && st.IsAuthError:
			return errSessionExpired
		case !st.HasToken || st.User == nil:
			return errNotLoggedIn
		}

		current := st.User.DisplayName()
		checks := signupChecks{ctx: cmd.Context(), api: e.api}
		validate := func(next string) error {
			if err := domain.ValidateNicknameChange(current, strings.TrimSpace(next)); err != nil {
				return err
			}
			return checks.available(availability.Nickname, strings.TrimSpace(next))
		}

		var next string
		switch {
		case len(args) == 1:
			next = args[0]
			if err := validate(next); err != nil {
				return err
			}
		case stdinIsTerminal():
			err := huh.NewInput().
				Title("새로운 닉네임").
				Description("기존 닉네임: " + current).
				Value(&next).
				Validate(validate).
				Run()
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("nickname form: %w", err)
			}
		default:
			return errors.New("pass the new nickname as an argument when stdin is not a terminal")
		}

		u, err := e.session.UpdateNickname(cmd.Context(), next)
		if err != nil {
			return cliError(err)
		}
		w := cmd.OutOrStdout()
		if opts.json {
			return printJSON(w, u)
		}
		fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("닉네임을 %s(으)로 변경했어요", u.DisplayName()))) //nolint:errcheck
		return nil
	})
	return cmd
}
