package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malangee/malangee/pkg/client"
	"github.com/malangee/malangee/pkg/domain"
)

func signup(t *testing.T, h *harness, loginID, nickname, password string) {
	t.Helper()
	_, err := h.session.Register(context.Background(), domain.SignupRequest{
		LoginID: loginID, Nickname: nickname, Password: password, IsActive: true,
	})
	require.NoError(t, err)
}

func TestSession_SignupThenLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	signup(t, h, "testuser_1700000000000", "emma", "test1234567890")
	assert.Equal(t, RouteLogin, h.nav.Last(), "signup should land on login")
	assert.False(t, h.tokens.Exists())

	require.NoError(t, h.session.Login(ctx, "testuser_1700000000000", "test1234567890"))
	assert.Equal(t, RouteHome, h.nav.Last())

	st := h.session.State()
	assert.True(t, st.HasToken)
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
	require.NotNil(t, st.User)
	assert.Equal(t, "emma", st.User.DisplayName())
	assert.Equal(t, PhaseAuthenticated, st.Phase())
}

func TestSession_LoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	signup(t, h, "testuser", "emma", "test1234567890")

	err := h.session.Login(context.Background(), "testuser", "wrong-password-1")
	require.Error(t, err)

	var httpErr *client.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, client.KindAuth, httpErr.Kind)
	assert.Equal(t, "아이디 또는 비밀번호가 올바르지 않습니다", httpErr.Message)
	assert.False(t, h.tokens.Exists(), "failed login must not store a token")
	assert.False(t, h.session.State().IsAuthenticated)
}

func TestSession_LoginRejectedProfile(t *testing.T) {
	h := newHarness(t)
	signup(t, h, "u1", "nick", "test1234567890")
	h.backend.setMeStatus(403)

	err := h.session.Login(context.Background(), "u1", "test1234567890")
	require.Error(t, err)
	assert.True(t, client.IsAuth(err))
	assert.False(t, h.tokens.Exists())
	assert.Equal(t, RouteLogin, h.nav.Last(), "a rejected profile must not navigate home")

	st := h.session.State()
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, PhaseNoToken, st.Phase())
}

func TestSession_LoginValidation(t *testing.T) {
	h := newHarness(t)
	err := h.session.Login(context.Background(), "", "x")
	assert.ErrorIs(t, err, domain.ErrLoginIDRequired)
	err = h.session.Login(context.Background(), "x", "")
	assert.ErrorIs(t, err, domain.ErrPasswordRequired)
}

func TestSession_NoTokenState(t *testing.T) {
	h := newHarness(t)
	st := h.session.Load(context.Background())

	assert.False(t, st.HasToken)
	assert.False(t, st.IsLoading)
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, PhaseNoToken, st.Phase())
	assert.Equal(t, int32(0), h.backend.meCalls.Load(), "no token means no profile request")
}

func TestSession_CheckingBeforeFirstFetch(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.tokens.Set("some-token"))

	st := h.session.State()
	assert.True(t, st.IsLoading)
	assert.Equal(t, PhaseChecking, st.Phase())
}

func TestSession_ProfileUnauthorizedClearsToken(t *testing.T) {
	for _, code := range []int{401, 403} {
		h := newHarness(t)
		require.NoError(t, h.tokens.Set("stale-token"))
		h.backend.setMeStatus(code)

		st := h.session.Load(context.Background())

		assert.False(t, h.tokens.Exists(), "status %d must drop the token", code)
		assert.True(t, st.IsAuthError)
		assert.False(t, st.IsAuthenticated)
		assert.Equal(t, PhaseNoToken, st.Phase())
	}
}

func TestSession_ServerErrorKeepsToken(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.tokens.Set("tok"))
	h.backend.setMeStatus(500)

	st := h.session.Load(context.Background())
	assert.True(t, h.tokens.Exists())
	assert.False(t, st.IsAuthError)
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, PhaseUnauthenticated, st.Phase())
}

func TestSession_Logout(t *testing.T) {
	var hookRan bool
	h := newHarness(t, WithLogoutHook(func() { hookRan = true }))
	signup(t, h, "u1", "nick", "test1234567890")
	require.NoError(t, h.session.Login(context.Background(), "u1", "test1234567890"))
	h.cache.Set("chat/sessions", []int{1})

	h.session.Logout()

	assert.False(t, h.tokens.Exists())
	assert.Equal(t, 0, h.cache.Len(), "logout clears the whole cache")
	assert.True(t, hookRan)
	assert.Equal(t, RouteLogin, h.nav.Last())
	st := h.session.State()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
}

func TestSession_FreshProfileNotRefetched(t *testing.T) {
	h := newHarness(t)
	signup(t, h, "u1", "nick", "test1234567890")
	require.NoError(t, h.session.Login(context.Background(), "u1", "test1234567890"))
	calls := h.backend.meCalls.Load()

	h.session.Load(context.Background())
	h.session.Load(context.Background())
	assert.Equal(t, calls, h.backend.meCalls.Load())

	_, err := h.session.RefreshUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, calls+1, h.backend.meCalls.Load(), "RefreshUser bypasses freshness")
}

func TestSession_UpdateNickname(t *testing.T) {
	h := newHarness(t)
	signup(t, h, "u1", "nick", "test1234567890")
	require.NoError(t, h.session.Login(context.Background(), "u1", "test1234567890"))

	u, err := h.session.UpdateNickname(context.Background(), " emma ")
	require.NoError(t, err)
	assert.Equal(t, "emma", u.DisplayName())
	assert.Equal(t, "emma", h.session.State().User.DisplayName())

	_, err = h.session.UpdateNickname(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrNewNickname)
}

func TestSession_DeleteAccount(t *testing.T) {
	h := newHarness(t)
	signup(t, h, "u1", "nick", "test1234567890")
	require.NoError(t, h.session.Login(context.Background(), "u1", "test1234567890"))

	require.NoError(t, h.session.DeleteAccount(context.Background()))
	assert.False(t, h.tokens.Exists())
	assert.Equal(t, RouteLogin, h.nav.Last())

	err := h.session.Login(context.Background(), "u1", "test1234567890")
	assert.Equal(t, client.KindAuth, client.KindOf(err), "deactivated account cannot log in")
}

func TestSession_Expiry(t *testing.T) {
	h := newHarness(t)
	_, ok := h.session.Expiry()
	assert.False(t, ok)

	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	require.NoError(t, h.tokens.Set(signedToken(t, "u1", exp)))
	got, ok := h.session.Expiry()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)
}
