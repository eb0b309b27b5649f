package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/validation"
)

// Client routes.
const (
	PathRoot      = "/"
	PathSignup    = "/signup"
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

type access int

const (
	public access = iota
	private
)

var routes = map[string]access{
	PathSignup:    public,
	PathLogin:     public,
	PathDashboard: private,
}

// Decision is the outcome of a navigation: exactly one of Render or Redirect is set.
type Decision struct {
	Render   string
	Redirect string
}

// IsRedirect reports whether the decision moves to another path.
func (d Decision) IsRedirect() bool {
	return d.Redirect != ""
}

func render(view string) Decision {
	return Decision{Render: view}
}

func redirect(path string) Decision {
	return Decision{Redirect: path}
}

// FormError carries client-side validation failures. No request was sent.
type FormError struct {
	Fields validation.FieldErrors
}

func (e *FormError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid form"
	}
	return e.Fields[0].Message
}

// Gate owns the stored token and decides which views are reachable.
type Gate struct {
	api    API
	store  TokenStore
	now    func() time.Time
	logger *zap.Logger

	mu       sync.Mutex
	location string
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithLogger sets the gate's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// NewGate builds a gate over api and store.
func NewGate(api API, store TokenStore, opts ...Option) *Gate {
	g := &Gate{
		api:      api,
		store:    store,
		now:      time.Now,
		logger:   zap.NewNop(),
		location: PathRoot,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Init reads the stored token once at start and discards it if unusable.
func (g *Gate) Init() error {
	_, err := g.session()
	return err
}

// Session re-derives the session from storage. A stored token that no longer
// decodes or has expired is cleared.
func (g *Gate) Session() Session {
	s, err := g.session()
	if err != nil {
		g.logger.Warn("token store unavailable", zap.Error(err))
		return Anonymous{}
	}
	return s
}

// IsAuthenticated reports whether a non-expired token is stored.
func (g *Gate) IsAuthenticated() bool {
	_, ok := g.Session().(Authenticated)
	return ok
}

// Location returns the last rendered path.
func (g *Gate) Location() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.location
}

// PublicRoute renders view for anonymous users and sends everyone else to the dashboard.
func (g *Gate) PublicRoute(view string) Decision {
	if g.IsAuthenticated() {
		return redirect(PathDashboard)
	}
	return render(view)
}

// PrivateRoute renders view for authenticated users and sends everyone else to login.
func (g *Gate) PrivateRoute(view string) Decision {
	if !g.IsAuthenticated() {
		return redirect(PathLogin)
	}
	return render(view)
}

// Decide applies the route table to path without moving.
func (g *Gate) Decide(path string) Decision {
	acc, known := routes[path]
	switch {
	case !known:
		return redirect(PathLogin)
	case acc == private:
		return g.PrivateRoute(path)
	default:
		return g.PublicRoute(path)
	}
}

// Navigate follows redirects from path until a view renders and records it as
// the current location.
func (g *Gate) Navigate(path string) Decision {
	d := g.Decide(path)
	for hops := 0; d.IsRedirect() && hops < len(routes); hops++ {
		d = g.Decide(d.Redirect)
	}
	if d.Render != "" {
		g.mu.Lock()
		g.location = d.Render
		g.mu.Unlock()
	}
	return d
}

// SubmitSignup validates form locally, then registers. On success the token
// is stored and the gate moves to the dashboard.
func (g *Gate) SubmitSignup(ctx context.Context, form validation.SignupForm) (Decision, error) {
	if errs := validation.ValidateSignup(form); len(errs) > 0 {
		return Decision{}, &FormError{Fields: errs}
	}
	res, err := g.api.Signup(ctx, form)
	if err != nil {
		return Decision{}, err
	}
	return g.signIn(res.Token)
}

// SubmitLogin validates form locally, then logs in.
func (g *Gate) SubmitLogin(ctx context.Context, form validation.LoginForm) (Decision, error) {
	if errs := validation.ValidateLogin(form); len(errs) > 0 {
		return Decision{}, &FormError{Fields: errs}
	}
	res, err := g.api.Login(ctx, form)
	if err != nil {
		return Decision{}, err
	}
	return g.signIn(res.Token)
}

// Dashboard loads the current user. A 401 from the server logs the user out.
func (g *Gate) Dashboard(ctx context.Context) (*domain.PublicUser, Decision, error) {
	if d := g.PrivateRoute(PathDashboard); d.IsRedirect() {
		return nil, g.Navigate(d.Redirect), nil
	}
	token, err := g.store.Load()
	if err != nil {
		return nil, Decision{}, err
	}

	user, err := g.api.Me(ctx, token)
	if err != nil {
		if IsUnauthorized(err) {
			d, logoutErr := g.Logout()
			return nil, d, errors.Join(err, logoutErr)
		}
		return nil, Decision{}, err
	}
	return &user, g.Navigate(PathDashboard), nil
}

// Logout discards the token and returns to the login view. The server is not contacted.
func (g *Gate) Logout() (Decision, error) {
	if err := g.store.Clear(); err != nil {
		return Decision{}, err
	}
	return g.Navigate(PathLogin), nil
}

func (g *Gate) signIn(token string) (Decision, error) {
	if err := g.store.Save(token); err != nil {
		return Decision{}, err
	}
	return g.Navigate(PathDashboard), nil
}

func (g *Gate) session() (Session, error) {
	token, err := g.store.Load()
	if err != nil {
		return Anonymous{}, err
	}
	s := DeriveSession(token, g.now())
	if _, anon := s.(Anonymous); anon && token != "" {
		g.logger.Debug("discarding stored token")
		if err := g.store.Clear(); err != nil {
			return s, err
		}
	}
	return s, nil
}
