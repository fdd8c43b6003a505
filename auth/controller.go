// Package auth owns the session: it mediates login, signup, refresh, and
// logout against the backend, is the single writer of the credential store,
// and keeps the observable session state consistent with it.
package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brokerdeck/go-broker-client/api"
	"github.com/brokerdeck/go-broker-client/credentials"
	errs "github.com/brokerdeck/go-broker-client/internal/errors"
	"github.com/brokerdeck/go-broker-client/notify"
	"github.com/brokerdeck/go-broker-client/token/watch"
)

const (
	loginSuccessMessage  = "Successfully logged in!"
	signupSuccessMessage = "Account created successfully!"
	logoutMessage        = "You have been logged out"
	sessionExpiredNotice = "Session expired. Please sign in again."

	toastDuration = 5 * time.Second
)

// Controller is the session state machine. One controller is constructed at
// process start and handed to whatever needs it; there is one session per
// process.
type Controller struct {
	repo     credentials.Repo
	gateway  *api.Client
	notifier notify.Notifier

	watchInterval time.Duration
	warnThreshold time.Duration

	// opMu serializes the network-bound operations (login, signup,
	// refresh, logout) so concurrent calls can only replace whole
	// credentials, never interleave partial writes.
	opMu sync.Mutex

	// mu guards state and watcher. Held only for short, non-blocking
	// sections so the gateway's unauthorized callback can always acquire
	// it, even mid-login.
	mu      sync.Mutex
	state   SessionState
	watcher *watch.Watcher
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithWatchInterval sets the token watcher's polling cadence.
func WithWatchInterval(interval time.Duration) ControllerOption {
	return func(c *Controller) {
		c.watchInterval = interval
	}
}

// WithWarningThreshold sets the near-expiry warning window.
func WithWarningThreshold(threshold time.Duration) ControllerOption {
	return func(c *Controller) {
		c.warnThreshold = threshold
	}
}

// NewController wires the controller to its collaborators and registers it as
// the gateway's unauthorized handler.
func NewController(repo credentials.Repo, gateway *api.Client, notifier notify.Notifier, options ...ControllerOption) (*Controller, error) {
	if repo == nil {
		return nil, errors.New("[NewController] credential repo is required")
	}
	if gateway == nil {
		return nil, errors.New("[NewController] gateway is required")
	}
	if notifier == nil {
		return nil, errors.New("[NewController] notifier is required")
	}

	c := &Controller{
		repo:     repo,
		gateway:  gateway,
		notifier: notifier,
		state:    SessionState{Loading: true},
	}
	for _, opt := range options {
		opt(c)
	}

	gateway.SetUnauthorizedHandler(c.HandleUnauthorized)
	return c, nil
}

// State returns a snapshot of the current session state.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initialize runs once at process start. A complete stored credential is
// trusted without a server round-trip; the next request proves it invalid if
// it is. Returns true when a session was restored.
func (c *Controller) Initialize() (bool, error) {
	cred, err := c.repo.Get()
	if err != nil {
		c.mu.Lock()
		c.state = SessionState{Loading: false}
		c.mu.Unlock()
		return false, errs.Wrapf(err, "[Initialize] reading credential store")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cred == nil {
		c.state = SessionState{Loading: false}
		return false, nil
	}

	c.state = SessionState{
		Authenticated: true,
		User:          &User{Email: cred.UserEmail},
	}
	c.startWatcherLocked()
	return true, nil
}

// Login authenticates with the backend and, on success, persists the
// credential triple atomically and starts the token watcher. On failure the
// session stays unauthenticated with LastError set, and a typed error is
// returned for the caller to render.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, api.RouteAuthLogin, email, password, loginSuccessMessage, loginFailureMessage)
}

// Signup has the same contract as Login against the signup endpoint.
func (c *Controller) Signup(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, api.RouteAuthSignup, email, password, signupSuccessMessage, signupFailureMessage)
}

func (c *Controller) authenticate(ctx context.Context, endpoint, email, password, successMessage string, failureMessage func(error) string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	c.state.Loading = true
	c.state.LastError = ""
	c.mu.Unlock()

	var resp TokenResponse
	err := c.gateway.Post(ctx, endpoint, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		message := failureMessage(err)
		c.mu.Lock()
		c.state = SessionState{LastError: message}
		c.stopWatcherLocked()
		c.mu.Unlock()
		return errs.Wrapf(errs.ErrAuthenticationFailed, "%s", message)
	}

	cred := credentials.Credential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserEmail:    email,
	}
	if err := c.repo.Set(cred); err != nil {
		c.mu.Lock()
		c.state = SessionState{LastError: err.Error()}
		c.mu.Unlock()
		return errs.Wrapf(err, "[authenticate] persisting credential")
	}

	// The broker selection only serves the pre-authentication flow.
	if err := c.repo.ClearSelectedBroker(); err != nil {
		log.Warn().Err(err).Msg("failed to clear selected broker")
	}

	user := resp.User
	if user == nil {
		user = &User{Email: email}
	}

	c.mu.Lock()
	c.state = SessionState{Authenticated: true, User: user}
	c.startWatcherLocked()
	c.mu.Unlock()

	c.notifier.Emit(successMessage, notify.SeveritySuccess, toastDuration)
	return nil
}

// Logout best-effort notifies the backend, then unconditionally tears down
// the local session. A failed server call never blocks local teardown.
func (c *Controller) Logout(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.gateway.Post(ctx, api.RouteAuthLogout, nil, nil); err != nil {
		log.Warn().Err(err).Msg("logout request failed, continuing with local teardown")
	}

	if err := c.teardown(); err != nil {
		return err
	}
	c.notifier.Emit(logoutMessage, notify.SeverityInfo, toastDuration)
	return nil
}

// HandleUnauthorized is the automatic teardown path, invoked by the gateway
// on every 401 and by the watcher on natural expiry. It is idempotent:
// clearing an already-cleared store and re-entering the unauthenticated state
// is a no-op, not an error. It emits no notification itself; the gateway owns
// the user-facing session-expired message.
func (c *Controller) HandleUnauthorized() {
	if err := c.teardown(); err != nil {
		log.Error().Err(err).Msg("session teardown failed")
	}
}

func (c *Controller) teardown() error {
	err := c.repo.Clear()

	c.mu.Lock()
	c.state = SessionState{}
	c.stopWatcherLocked()
	c.mu.Unlock()

	return errs.Wrapf(err, "[teardown] clearing credential store")
}

// Refresh exchanges the stored refresh token for a new token pair. On success
// only the tokens are replaced, the user identity is untouched. On failure
// the session is torn down the same way a 401 is, and the error is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	cred, err := c.repo.Get()
	if err != nil {
		return errs.Wrapf(err, "[Refresh] reading credential store")
	}
	if cred == nil {
		c.HandleUnauthorized()
		return errs.ErrNoRefreshToken
	}

	var resp TokenResponse
	if err := c.gateway.Post(ctx, api.RouteAuthRefresh, refreshRequest{RefreshToken: cred.RefreshToken}, &resp); err != nil {
		// A 401 already tore the session down through the gateway;
		// any other failure takes the same path here.
		c.HandleUnauthorized()
		return errs.Wrapf(err, "[Refresh] token refresh failed")
	}

	if err := c.repo.UpdateTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		return errs.Wrapf(err, "[Refresh] persisting refreshed tokens")
	}

	c.mu.Lock()
	c.state.LastError = ""
	c.mu.Unlock()
	return nil
}

// ClearError clears LastError without other state change; the UI calls this
// when the user starts correcting input.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LastError = ""
}

// startWatcherLocked replaces any running watcher with a fresh one.
// Callers must hold c.mu.
func (c *Controller) startWatcherLocked() {
	if c.watcher != nil {
		c.watcher.Stop()
	}
	c.watcher = watch.New(c.repo, c.notifier, watch.Config{
		CheckInterval:    c.watchInterval,
		WarningThreshold: c.warnThreshold,
		OnExpired:        c.expired,
	})
	c.watcher.Start()
}

// stopWatcherLocked stops a running watcher. Callers must hold c.mu.
func (c *Controller) stopWatcherLocked() {
	if c.watcher != nil {
		c.watcher.Stop()
		c.watcher = nil
	}
}

// expired handles the watcher's terminal transition: natural expiry with no
// request in flight to produce a 401. Unlike the 401 path, the controller
// emits the user-facing notice here because no gateway response is involved.
func (c *Controller) expired() {
	c.HandleUnauthorized()
	c.notifier.Emit(sessionExpiredNotice, notify.SeverityWarning, 0)
}

// loginFailureMessage maps transport and status errors to the form-level
// message the UI renders.
func loginFailureMessage(err error) string {
	var apiErr *errs.APIError
	switch {
	case errs.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusBadRequest:
			return "Invalid email or password"
		case http.StatusInternalServerError:
			return "Server error. Please try again later."
		}
		return apiErr.Message
	case errs.Is(err, errs.ErrRequestTimeout):
		return "Request timeout. Please try again."
	case errs.Is(err, errs.ErrNetworkUnavailable):
		return "Network error. Please check your connection."
	}
	return "Login failed"
}

func signupFailureMessage(err error) string {
	var apiErr *errs.APIError
	switch {
	case errs.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusBadRequest:
			return "User already exists or invalid data"
		case http.StatusInternalServerError:
			return "Server error. Please try again later."
		}
		return apiErr.Message
	case errs.Is(err, errs.ErrRequestTimeout):
		return "Request timeout. Please try again."
	case errs.Is(err, errs.ErrNetworkUnavailable):
		return "Network error. Please check your connection."
	}
	return "Signup failed"
}
