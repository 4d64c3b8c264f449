package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/auth"
	"github.com/malangee/malangee/internal/availability"
	"github.com/malangee/malangee/internal/browser"
	"github.com/malangee/malangee/internal/prefs"
	"github.com/malangee/malangee/pkg/client"
	"github.com/malangee/malangee/pkg/domain"
)

// Routes beyond the two the session knows about.
const (
	routeSignup       auth.Route = "/auth/signup"
	routeSetup        auth.Route = "/chat/setup"
	routeConversation auth.Route = "/chat/conversation"
	routeComplete     auth.Route = "/chat/complete"
	routeHistory      auth.Route = "/chat-history"
)

type view int

const (
	viewLogin view = iota
	viewSignup
	viewTopics
	viewSetup
	viewConversation
	viewComplete
	viewHistory
)

var routeViews = map[auth.Route]view{
	auth.RouteLogin:   viewLogin,
	routeSignup:       viewSignup,
	auth.RouteHome:    viewTopics,
	routeSetup:        viewSetup,
	routeConversation: viewConversation,
	routeComplete:     viewComplete,
	routeHistory:      viewHistory,
}

// Backend is the part of the API the views read directly.
type Backend interface {
	availability.API
	ListChatSessions(ctx context.Context, skip, limit int) ([]domain.ChatSession, error)
	GetChatSession(ctx context.Context, id string) (*domain.ChatSessionDetail, error)
	ServerInfo(ctx context.Context) (*domain.ServerInfo, error)
}

// Deps wires the App. Bus must be the Navigator the Session was built with.
type Deps struct {
	Session *auth.Session
	API     Backend
	Prefs   *prefs.Store
	Checks  availability.Config
	Bus     *Bus
	Version string
	WebURL  string
}

// App is the root Bubbletea model.
type App struct {
	deps Deps

	view     view
	guards   map[view]*auth.Guard
	auth     auth.State
	decision auth.Decision
	entered  bool
	gen      int

	login    loginModel
	signup   signupModel
	topics   topicsModel
	setup    setupModel
	conv     convModel
	complete completeModel
	history  historyModel

	spinner    spinner.Model
	helpOpen   bool
	helpCursor int
	notice     string
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates a new TUI application starting at the home route.
func NewApp(d Deps) App {
	if d.Prefs == nil {
		d.Prefs = prefs.New()
	}
	if d.Bus == nil {
		d.Bus = NewBus()
	}
	guards := map[view]*auth.Guard{
		viewLogin:  auth.NewGuard(auth.Guest, ""),
		viewSignup: auth.NewGuard(auth.Guest, ""),
	}
	for _, v := range []view{viewTopics, viewSetup, viewConversation, viewComplete, viewHistory} {
		guards[v] = auth.NewGuard(auth.Protect, "")
	}
	return App{
		deps:     d,
		view:     viewTopics,
		guards:   guards,
		decision: auth.Decision{View: auth.ViewFallback},
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.deps.Bus.listen(),
		func() tea.Msg { return navigateMsg{route: auth.RouteHome} },
		a.loadAuth(),
		a.spinner.Tick,
		shimmerTickCmd(),
		checkServer(a.deps.API, a.deps.Version),
	)
}

// loadAuth runs the current-user query and reports the resulting state.
func (a App) loadAuth() tea.Cmd {
	s := a.deps.Session
	return func() tea.Msg {
		return authStateMsg{state: s.Load(context.Background())}
	}
}

// refreshAuth refetches the profile, typically after a view saw a 401.
func (a App) refreshAuth() tea.Cmd {
	s := a.deps.Session
	return func() tea.Msg {
		s.RefreshUser(context.Background()) //nolint:errcheck // the state carries the outcome
		return authStateMsg{state: s.State()}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m, ok := msg.(scoped); ok && m.scope() != a.gen {
		return a, nil
	}

	switch msg := msg.(type) {
	case busMsg:
		model, cmd := a.Update(msg.msg)
		return model, tea.Batch(cmd, a.deps.Bus.listen())

	case navigateMsg:
		return a, a.navigate(msg.route)

	case authStateMsg:
		a.auth = msg.state
		return a, a.evaluate()

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case serverCheckMsg:
		a.notice = msg.notice
		return a, nil

	case authErrMsg:
		return a, a.refreshAuth()

	case loginDoneMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd

	case checkMsg:
		var cmd tea.Cmd
		if a.view == viewHistory {
			a.history, cmd = a.history.Update(msg)
		} else {
			a.signup, cmd = a.signup.Update(msg)
		}
		return a, cmd

	case signupDoneMsg:
		var cmd tea.Cmd
		a.signup, cmd = a.signup.Update(msg)
		return a, cmd

	case historyLoadedMsg, detailLoadedMsg, nicknameDoneMsg, deleteDoneMsg, copiedMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.Update(msg)
		return a, cmd

	case convTimerMsg:
		var cmd tea.Cmd
		a.conv, cmd = a.conv.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.leave()
			return a, tea.Quit
		}
		if a.helpOpen {
			return a.updateHelp(msg)
		}
		if !a.isEditing() {
			switch msg.String() {
			case "q":
				a.leave()
				return a, tea.Quit
			case "?":
				if a.view != viewConversation {
					a.helpOpen = true
					a.helpCursor = 0
					return a, nil
				}
			}
		}
	}

	if a.decision.View != auth.ViewChildren || !a.entered {
		return a, nil
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewSignup:
		a.signup, cmd = a.signup.Update(msg)
	case viewTopics:
		a.topics, cmd = a.topics.Update(msg)
	case viewSetup:
		a.setup, cmd = a.setup.Update(msg)
	case viewConversation:
		a.conv, cmd = a.conv.Update(msg)
	case viewComplete:
		a.complete, cmd = a.complete.Update(msg)
	case viewHistory:
		a.history, cmd = a.history.Update(msg)
	}
	return a, cmd
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc":
		a.helpOpen = false
	case "q":
		a.leave()
		return a, tea.Quit
	case "j", "down":
		if a.helpCursor < len(helpItems)-1 {
			a.helpCursor++
		}
	case "k", "up":
		if a.helpCursor > 0 {
			a.helpCursor--
		}
	case "enter":
		item := helpItems[a.helpCursor]
		browser.Open(browser.PageURL(a.deps.WebURL, string(item.route))) //nolint:errcheck // best-effort browser open
	}
	return a, nil
}

// navigate switches to route, re-arms its guard and evaluates it against
// the current session state.
func (a *App) navigate(route auth.Route) tea.Cmd {
	v, ok := routeViews[route]
	if !ok {
		a.notice = fmt.Sprintf("unknown route %s", route)
		return nil
	}
	a.leave()
	a.view = v
	a.gen++
	a.entered = false
	a.helpOpen = false
	a.guards[v].Mount()
	a.auth = a.deps.Session.State()
	return a.evaluate()
}

// evaluate applies the current view's guard. Children are entered once per
// navigation; a redirect navigates immediately.
func (a *App) evaluate() tea.Cmd {
	d := a.guards[a.view].Evaluate(a.auth)
	a.decision = d
	if d.Redirect != "" {
		return a.navigate(d.Redirect)
	}
	if d.View == auth.ViewChildren && !a.entered {
		a.entered = true
		return a.enter()
	}
	return nil
}

// enter builds a fresh model for the current view.
func (a *App) enter() tea.Cmd {
	d := a.deps
	switch a.view {
	case viewLogin:
		a.login = newLoginModel(d.Session, a.gen)
		return a.login.Init()
	case viewSignup:
		a.signup = newSignupModel(d, a.gen)
		return a.signup.Init()
	case viewTopics:
		a.topics = newTopicsModel(d, a.auth.User)
	case viewSetup:
		a.setup = newSetupModel(d.Prefs)
	case viewConversation:
		a.conv = newConvModel(d.Prefs, a.gen, nil)
		return a.conv.Init()
	case viewComplete:
		a.complete = newCompleteModel(d.Prefs.TakeDurations())
	case viewHistory:
		a.history = newHistoryModel(d, a.auth.User, a.gen)
		return a.history.Init()
	}
	return nil
}

// leave releases what the current view holds: pending checks and timers.
func (a *App) leave() {
	switch a.view {
	case viewSignup:
		a.signup.close()
	case viewHistory:
		a.history.close()
	}
}

func (a App) isEditing() bool {
	if a.decision.View != auth.ViewChildren {
		return false
	}
	switch a.view {
	case viewLogin, viewSignup:
		return true
	case viewHistory:
		return a.history.popup == popupNickname
	}
	return false
}

func (a App) View() string {
	header := center(renderShimmerLogo(a.frame), a.width)

	statusLine := phaseStyle(a.auth.Phase()).Render(a.auth.Phase().String())
	if a.auth.User != nil {
		statusLine = normalStyle.Render(a.auth.User.DisplayName()) + metaStyle.Render(" · ") + statusLine
	}
	if a.notice != "" {
		statusLine += metaStyle.Render(" · ") + hintStyle.Render(a.notice)
	}
	header += "\n" + center(statusLine, a.width)

	var body, help string
	switch a.decision.View {
	case auth.ViewFallback:
		body = "\n " + a.spinner.View() + " " + dimStyle.Render("로그인 상태를 확인하는 중...")
		help = helpBar(helpEntry("q", "quit"))
	case auth.ViewNothing:
		body = ""
		help = helpBar(helpEntry("q", "quit"))
	default:
		body, help = a.viewBody()
	}

	if a.helpOpen {
		body = helpView(a.helpCursor, a.deps.WebURL)
		help = helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("esc", "close"))
	}

	// Chrome budget: header(2) + route(1) + help(1) = 4 lines + body
	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	route := metaStyle.Render(" " + string(a.route()))
	return fmt.Sprintf("%s\n%s\n%s\n%s", header, route, body, help)
}

func (a App) viewBody() (string, string) {
	switch a.view {
	case viewLogin:
		return a.login.View(), helpBar(helpEntry("tab", "next"), helpEntry("enter", "login"), helpEntry("ctrl+n", "signup"), helpEntry("ctrl+c", "quit"))
	case viewSignup:
		return a.signup.View(), helpBar(helpEntry("tab", "next"), helpEntry("enter", "submit"), helpEntry("esc", "login"), helpEntry("ctrl+c", "quit"))
	case viewTopics:
		return a.topics.View(), helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "select"), helpEntry("?", "help"), helpEntry("q", "quit"))
	case viewSetup:
		return a.setup.View(), helpBar(a.setup.helpKeys()...)
	case viewConversation:
		return a.conv.View(), helpBar(a.conv.helpKeys()...)
	case viewComplete:
		return a.complete.View(), helpBar(helpEntry("h", "history"), helpEntry("enter", "home"), helpEntry("q", "quit"))
	case viewHistory:
		return a.history.View(), helpBar(a.history.helpKeys()...)
	}
	return "", ""
}

// route returns the route of the current view.
func (a App) route() auth.Route {
	for r, v := range routeViews {
		if v == a.view {
			return r
		}
	}
	return ""
}

// navigateCmd asks the App to move to route on the next loop turn.
func navigateCmd(route auth.Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route} }
}

// authErrMsg reports that a view request was rejected as unauthenticated.
type authErrMsg struct{}

// userMessage turns an error into the text shown to the user.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	if client.KindOf(err) == client.KindNetwork {
		return availability.MsgNetwork
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	if errors.Is(err, context.Canceled) {
		return ""
	}
	return err.Error()
}
