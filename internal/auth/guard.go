package auth

import "sync"

// Route is a UI location.
type Route string

// Routes the session and guards navigate to.
const (
	RouteLogin Route = "/auth/login"
	RouteHome  Route = "/topic-select"
)

// Phase is the guard-visible authentication phase.
type Phase int

const (
	PhaseNoToken Phase = iota
	PhaseChecking
	PhaseAuthenticated
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseNoToken:
		return "no-token"
	case PhaseChecking:
		return "checking"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Kind selects which audience a guard admits.
type Kind int

const (
	// Protect admits authenticated users only.
	Protect Kind = iota
	// Guest admits anonymous users only.
	Guest
)

// View is what a guarded route should render.
type View int

const (
	ViewNothing View = iota
	ViewChildren
	ViewFallback
)

func (v View) String() string {
	switch v {
	case ViewChildren:
		return "children"
	case ViewFallback:
		return "fallback"
	default:
		return "nothing"
	}
}

// Decision is the outcome of one guard evaluation. Redirect is empty unless
// the caller must navigate now.
type Decision struct {
	View     View
	Redirect Route
}

// Guard evaluates auth state for a route. A redirect is issued at most once
// per mount.
type Guard struct {
	kind   Kind
	target Route

	mu         sync.Mutex
	redirected bool
}

// NewGuard returns a guard of kind. An empty target selects the default:
// RouteLogin for Protect and RouteHome for Guest.
func NewGuard(kind Kind, target Route) *Guard {
	if target == "" {
		target = RouteLogin
		if kind == Guest {
			target = RouteHome
		}
	}
	return &Guard{kind: kind, target: target}
}

// Kind returns the guard kind.
func (g *Guard) Kind() Kind { return g.kind }

// Target returns the redirect route.
func (g *Guard) Target() Route { return g.target }

// Mount re-arms the redirect latch. Call it whenever the route is entered.
func (g *Guard) Mount() {
	g.mu.Lock()
	g.redirected = false
	g.mu.Unlock()
}

// Evaluate decides what to render for st.
func (g *Guard) Evaluate(st State) Decision {
	phase := st.Phase()

	var admit bool
	switch phase {
	case PhaseChecking:
		return Decision{View: ViewFallback}
	case PhaseAuthenticated:
		admit = g.kind == Protect
	default:
		admit = g.kind == Guest
	}
	if admit {
		return Decision{View: ViewChildren}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.redirected {
		return Decision{View: ViewNothing}
	}
	g.redirected = true
	return Decision{View: ViewNothing, Redirect: g.target}
}
