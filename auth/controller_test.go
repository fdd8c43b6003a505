package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brokerdeck/go-broker-client/api"
	"github.com/brokerdeck/go-broker-client/auth"
	"github.com/brokerdeck/go-broker-client/credentials"
	"github.com/brokerdeck/go-broker-client/credentials/repofake"
	errs "github.com/brokerdeck/go-broker-client/internal/errors"
	"github.com/brokerdeck/go-broker-client/notify"
)

const (
	testEmail    = "u@x.com"
	testPassword = "secret1"
)

// testBackend is a scriptable authentication API.
type testBackend struct {
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []string
}

func (b *testBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.URL.Path)
	handler := b.handlers[r.URL.Path]
	b.mu.Unlock()

	if handler == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	handler(w, r)
}

func (b *testBackend) handle(path string, handler http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[path] = handler
}

func (b *testBackend) requestedPaths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func tokenJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  "a.b.c",
		"refresh_token": "r1",
		"expires_in":    3600,
	})
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []notify.Notification
}

func (r *recordingNotifier) Emit(message string, severity notify.Severity, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, notify.Notification{
		Message:  message,
		Severity: severity,
		Duration: duration,
	})
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notifications))
	for _, n := range r.notifications {
		out = append(out, n.Message)
	}
	return out
}

// testFixture holds all controller test dependencies.
type testFixture struct {
	backend    *testBackend
	repo       *repofake.FakeCredentialRepo
	notifier   *recordingNotifier
	gateway    *api.Client
	controller *auth.Controller
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend := &testBackend{handlers: map[string]http.HandlerFunc{}}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	repo := repofake.NewFakeCredentialRepo()
	notifier := &recordingNotifier{}

	gateway, err := api.NewClient(server.URL, repo, api.WithNotifier(notifier))
	require.NoError(t, err)

	// A one-hour cadence keeps watcher ticks out of these tests.
	controller, err := auth.NewController(repo, gateway, notifier,
		auth.WithWatchInterval(time.Hour))
	require.NoError(t, err)

	return &testFixture{
		backend:    backend,
		repo:       repo,
		notifier:   notifier,
		gateway:    gateway,
		controller: controller,
	}
}

func TestLoginSuccess(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, testEmail, body["email"])
		require.Equal(t, testPassword, body["password"])
		tokenJSON(w)
	})

	require.NoError(t, f.controller.Login(context.Background(), testEmail, testPassword))

	state := f.controller.State()
	require.True(t, state.Authenticated)
	require.False(t, state.Loading)
	require.Empty(t, state.LastError)
	require.Equal(t, testEmail, state.User.Email)

	cred, err := f.repo.Get()
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, "a.b.c", cred.AccessToken)
	require.Equal(t, "r1", cred.RefreshToken)
	require.Equal(t, testEmail, cred.UserEmail)

	require.Equal(t, []string{"Successfully logged in!"}, f.notifier.messages())
}

func TestLoginClearsBrokerSelection(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) { tokenJSON(w) })

	require.NoError(t, f.repo.SetSelectedBroker("2"))
	require.NoError(t, f.controller.Login(context.Background(), testEmail, testPassword))
	require.Empty(t, f.repo.SelectedBroker())
}

func TestLoginFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"})
	})

	err := f.controller.Login(context.Background(), testEmail, "wrong")
	require.ErrorIs(t, err, errs.ErrAuthenticationFailed)

	state := f.controller.State()
	require.False(t, state.Authenticated)
	require.False(t, state.Loading)
	require.Equal(t, "Invalid email or password", state.LastError)

	cred, getErr := f.repo.Get()
	require.NoError(t, getErr)
	require.Nil(t, cred)
	require.Empty(t, f.notifier.messages())
}

func TestLoginServerError(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := f.controller.Login(context.Background(), testEmail, testPassword)
	require.ErrorIs(t, err, errs.ErrAuthenticationFailed)
	require.Equal(t, "Server error. Please try again later.", f.controller.State().LastError)
}

func TestSignupSuccess(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/signup", func(w http.ResponseWriter, _ *http.Request) { tokenJSON(w) })

	require.NoError(t, f.controller.Signup(context.Background(), testEmail, testPassword))
	require.True(t, f.controller.State().Authenticated)
	require.Equal(t, []string{"Account created successfully!"}, f.notifier.messages())
}

func TestSignupDuplicateUser(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	err := f.controller.Signup(context.Background(), testEmail, testPassword)
	require.ErrorIs(t, err, errs.ErrAuthenticationFailed)
	require.Equal(t, "User already exists or invalid data", f.controller.State().LastError)
}

func TestLogoutTearsDownEvenWhenServerFails(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) { tokenJSON(w) })
	f.backend.handle("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	require.NoError(t, f.controller.Login(context.Background(), testEmail, testPassword))
	require.NoError(t, f.controller.Logout(context.Background()))

	require.False(t, f.controller.State().Authenticated)
	cred, err := f.repo.Get()
	require.NoError(t, err)
	require.Nil(t, cred)
	require.Contains(t, f.backend.requestedPaths(), "/auth/logout")
	require.Equal(t, []string{"Successfully logged in!", "You have been logged out"}, f.notifier.messages())
}

func TestHandleUnauthorizedIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) { tokenJSON(w) })
	require.NoError(t, f.controller.Login(context.Background(), testEmail, testPassword))

	f.controller.HandleUnauthorized()
	f.controller.HandleUnauthorized()

	require.False(t, f.controller.State().Authenticated)
	cred, err := f.repo.Get()
	require.NoError(t, err)
	require.Nil(t, cred)

	// Teardown emits no notification of its own.
	require.Equal(t, []string{"Successfully logged in!"}, f.notifier.messages())
}

func TestGatewayUnauthorizedTearsDownSession(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) { tokenJSON(w) })
	f.backend.handle("/holdings", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	require.NoError(t, f.controller.Login(context.Background(), testEmail, testPassword))

	// Any endpoint returning 401 tears the session down, with the caller's
	// error observing already-cleared credentials.
	err := f.gateway.Get(context.Background(), "/holdings", nil)
	require.Error(t, err)

	require.False(t, f.controller.State().Authenticated)
	cred, getErr := f.repo.Get()
	require.NoError(t, getErr)
	require.Nil(t, cred)
	require.Equal(t,
		[]string{"Successfully logged in!", "Session expired. Please sign in again."},
		f.notifier.messages())
}

func TestRefreshSuccess(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) { tokenJSON(w) })
	f.backend.handle("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "r1", body["refresh_token"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "a2.b2.c2",
			"refresh_token": "r2",
			"expires_in":    3600,
		})
	})

	require.NoError(t, f.controller.Login(context.Background(), testEmail, testPassword))
	require.NoError(t, f.controller.Refresh(context.Background()))

	cred, err := f.repo.Get()
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, "a2.b2.c2", cred.AccessToken)
	require.Equal(t, "r2", cred.RefreshToken)
	require.Equal(t, testEmail, cred.UserEmail)
	require.True(t, f.controller.State().Authenticated)
}

func TestRefreshFailureTearsDown(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) { tokenJSON(w) })
	f.backend.handle("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	require.NoError(t, f.controller.Login(context.Background(), testEmail, testPassword))

	err := f.controller.Refresh(context.Background())
	require.Error(t, err)

	require.False(t, f.controller.State().Authenticated)
	cred, getErr := f.repo.Get()
	require.NoError(t, getErr)
	require.Nil(t, cred)
}

func TestRefreshWithoutCredential(t *testing.T) {
	f := setupTestFixture(t)

	err := f.controller.Refresh(context.Background())
	require.ErrorIs(t, err, errs.ErrNoRefreshToken)
	require.Empty(t, f.backend.requestedPaths())
}

func TestInitializeRestoresStoredSession(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Set(credentials.Credential{
		AccessToken:  "a.b.c",
		RefreshToken: "r1",
		UserEmail:    testEmail,
	}))

	restored, err := f.controller.Initialize()
	require.NoError(t, err)
	require.True(t, restored)

	state := f.controller.State()
	require.True(t, state.Authenticated)
	require.False(t, state.Loading)
	require.Equal(t, testEmail, state.User.Email)

	// The stored credential is trusted without a server round-trip.
	require.Empty(t, f.backend.requestedPaths())
}

func TestInitializeWithoutStoredSession(t *testing.T) {
	f := setupTestFixture(t)

	restored, err := f.controller.Initialize()
	require.NoError(t, err)
	require.False(t, restored)

	state := f.controller.State()
	require.False(t, state.Authenticated)
	require.False(t, state.Loading)
}

func TestClearError(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_ = f.controller.Login(context.Background(), testEmail, "wrong")
	require.NotEmpty(t, f.controller.State().LastError)

	f.controller.ClearError()
	require.Empty(t, f.controller.State().LastError)
}
