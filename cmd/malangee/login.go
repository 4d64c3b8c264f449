package main

import (
	"bufio"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *options) *cobra.Command {
	var id, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the access token",
		Long: `Log in with your MalangEE id and password.

Missing values are prompted for; the password is read without echo.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = withEnv(opts, func(cmd *cobra.Command, _ []string, e *env) error {
		r := bufio.NewReader(cmd.InOrStdin())
		w := cmd.OutOrStdout()

		var err error
		if id == "" {
			if id, err = promptLine(r, w, "아이디"); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = promptPassword(r, w, "비밀번호"); err != nil {
				return err
			}
		}

		if err := e.session.Login(cmd.Context(), id, password); err != nil {
			return cliError(err)
		}
		st := e.session.State()
		if st.User == nil {
			fmt.Fprintln(w, okStyle.Render("로그인했습니다.")) //nolint:errcheck
			return nil
		}
		if opts.json {
			return printJSON(w, st.User)
		}
		fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("반가워요, %s님!", st.User.DisplayName()))) //nolint:errcheck
		exp, ok := e.session.Expiry()
		formatUser(w, st.User, exp, ok, time.Now())
		return nil
	})
	cmd.Flags().StringVar(&id, "id", "", "Login id")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}
