package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/malangee/malangee/internal/availability"
	"github.com/malangee/malangee/pkg/domain"
)

const checkTimeout = 5 * time.Second

// signupChecks validates signup fields, asking the backend whether the id
// and nickname are still free.
type signupChecks struct {
	ctx context.Context
	api availability.API
}

func (c signupChecks) available(kind availability.Kind, value string) error {
	ctx, cancel := context.WithTimeout(c.ctx, checkTimeout)
	defer cancel()

	var (
		res *domain.Availability
		err error
	)
	taken := availability.MsgLoginIDTaken
	if kind == availability.Nickname {
		res, err = c.api.CheckNickname(ctx, value)
		taken = availability.MsgNicknameTaken
	} else {
		res, err = c.api.CheckLoginID(ctx, value)
	}
	if err != nil {
		return cliError(err)
	}
	if !res.IsAvailable {
		return errors.New(taken)
	}
	return nil
}

func (c signupChecks) loginID(v string) error {
	if strings.TrimSpace(v) == "" {
		return domain.ErrLoginIDRequired
	}
	return c.available(availability.LoginID, v)
}

func (c signupChecks) nickname(v string) error {
	if strings.TrimSpace(v) == "" {
		return domain.ErrNicknameRequired
	}
	return c.available(availability.Nickname, v)
}

// all runs every check in form order and returns the first failure.
func (c signupChecks) all(req domain.SignupRequest) error {
	if err := c.loginID(req.LoginID); err != nil {
		return err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return err
	}
	return c.nickname(req.Nickname)
}

func signupForm(req *domain.SignupRequest, checks signupChecks) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("아이디").
				Placeholder("아이디를 입력해주세요").
				Value(&req.LoginID).
				Validate(checks.loginID),
			huh.NewInput().
				Title("비밀번호").
				Description("영문+숫자 조합 10자리 이상").
				EchoMode(huh.EchoModePassword).
				Value(&req.Password).
				Validate(domain.ValidatePassword),
			huh.NewInput().
				Title("닉네임").
				Placeholder("닉네임을 입력해주세요").
				Value(&req.Nickname).
				Validate(checks.nickname),
		).Title("회원가입"),
	)
}

func newSignupCmd(opts *options) *cobra.Command {
	var req domain.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a MalangEE account",
		Long: `Create a MalangEE account.

On a terminal an interactive form checks the id and nickname as you go.
Otherwise pass --id, --password and --nickname.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = withEnv(opts, func(cmd *cobra.Command, _ []string, e *env) error {
		checks := signupChecks{ctx: cmd.Context(), api: e.api}
		complete := req.LoginID != "" && req.Password != "" && req.Nickname != ""

		switch {
		case complete:
			if err := checks.all(req); err != nil {
				return err
			}
		case stdinIsTerminal():
			if err := signupForm(&req, checks).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return fmt.Errorf("signup form: %w", err)
			}
		default:
			return errors.New("--id, --password and --nickname are required when stdin is not a terminal")
		}

		req.IsActive = true
		u, err := e.session.Register(cmd.Context(), req)
		if err != nil {
			return cliError(err)
		}
		w := cmd.OutOrStdout()
		if opts.json {
			return printJSON(w, u)
		}
		fmt.Fprintln(w, okStyle.Render("회원가입이 완료되었습니다.")) //nolint:errcheck
		fmt.Fprintln(w, labelStyle.Render("malangee login --id "+u.LoginID+" 으로 로그인하세요.")) //nolint:errcheck
		return nil
	})
	cmd.Flags().StringVar(&req.LoginID, "id", "", "Login id")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password: 10+ characters with letters and digits")
	cmd.Flags().StringVar(&req.Nickname, "nickname", "", "Nickname")
	return cmd
}
