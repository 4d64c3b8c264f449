package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/malangee/malangee/pkg/domain"
)

var (
	stNoToken  = State{}
	stChecking = State{HasToken: true, IsLoading: true}
	stAuthed   = State{HasToken: true, IsAuthenticated: true, User: &domain.User{ID: 1}}
	stRejected = State{HasToken: true}
)

func TestGuard_Table(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		state    State
		wantView View
		wantTo   Route
	}{
		{"protect no token", Protect, stNoToken, ViewNothing, RouteLogin},
		{"protect checking", Protect, stChecking, ViewFallback, ""},
		{"protect authenticated", Protect, stAuthed, ViewChildren, ""},
		{"protect unauthenticated", Protect, stRejected, ViewNothing, RouteLogin},
		{"guest no token", Guest, stNoToken, ViewChildren, ""},
		{"guest checking", Guest, stChecking, ViewFallback, ""},
		{"guest authenticated", Guest, stAuthed, ViewNothing, RouteHome},
		{"guest unauthenticated", Guest, stRejected, ViewChildren, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(tt.kind, "")
			d := g.Evaluate(tt.state)
			assert.Equal(t, tt.wantView, d.View)
			assert.Equal(t, tt.wantTo, d.Redirect)
		})
	}
}

func TestGuard_RedirectOncePerMount(t *testing.T) {
	g := NewGuard(Protect, "")

	assert.Equal(t, RouteLogin, g.Evaluate(stNoToken).Redirect)
	for i := 0; i < 3; i++ {
		d := g.Evaluate(stNoToken)
		assert.Equal(t, Route(""), d.Redirect)
		assert.Equal(t, ViewNothing, d.View, "protected content never renders without a token")
	}

	g.Mount()
	assert.Equal(t, RouteLogin, g.Evaluate(stNoToken).Redirect)
}

func TestGuard_CustomTarget(t *testing.T) {
	g := NewGuard(Guest, "/chat-history")
	assert.Equal(t, Route("/chat-history"), g.Evaluate(stAuthed).Redirect)
	assert.Equal(t, Route("/chat-history"), g.Target())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "checking", PhaseChecking.String())
	assert.Equal(t, "no-token", stNoToken.Phase().String())
}
