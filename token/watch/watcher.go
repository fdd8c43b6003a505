// Package watch monitors the stored access token and raises expiration and
// near-expiration events for the lifetime of an authenticated session.
package watch

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brokerdeck/go-broker-client/notify"
	"github.com/brokerdeck/go-broker-client/token"
)

const (
	defaultCheckInterval    = time.Minute
	defaultWarningThreshold = 5 * time.Minute

	warningDisplayDuration = 10 * time.Second
)

// TokenSource provides the current access token; empty string means no token
// is stored.
type TokenSource interface {
	AccessToken() string
}

// Config carries the watcher's cadence and callbacks.
type Config struct {
	// CheckInterval is the polling cadence. Defaults to one minute.
	CheckInterval time.Duration

	// WarningThreshold is the remaining-lifetime window inside which a
	// near-expiry warning fires. Defaults to five minutes.
	WarningThreshold time.Duration

	// OnExpired fires once when the token is absent or expired; the
	// watcher stops afterwards.
	OnExpired func()

	// OnExpiringSoon fires once per warning window with the estimated
	// minutes left.
	OnExpiringSoon func(minutesLeft int)
}

// Watcher polls a token source on a fixed interval. A missing or expired
// token is a terminal transition: the expired callback fires once and the
// watcher stops itself. A token inside the warning window produces a single
// warning until the token leaves the window again (e.g. after a refresh).
type Watcher struct {
	cfg      Config
	tokens   TokenSource
	notifier notify.Notifier

	warningShown bool

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
	started   bool
	mu        sync.Mutex
}

// New creates a watcher. notifier may be nil, in which case no user-facing
// warning is broadcast.
func New(tokens TokenSource, notifier notify.Notifier, cfg Config) *Watcher {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultCheckInterval
	}
	if cfg.WarningThreshold <= 0 {
		cfg.WarningThreshold = defaultWarningThreshold
	}
	return &Watcher{
		cfg:      cfg,
		tokens:   tokens,
		notifier: notifier,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling. Calling Start more than once has no effect.
func (w *Watcher) Start() {
	w.startOnce.Do(func() {
		w.mu.Lock()
		w.started = true
		w.mu.Unlock()
		go w.run()
	})
}

// Stop cancels polling. It is idempotent, safe to call from any goroutine,
// and guarantees that no callback fires after it returns. Stopping a watcher
// that already stopped itself on expiry is a no-op.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})

	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
}

func (w *Watcher) run() {
	ticker := time.NewTicker(w.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			close(w.done)
			return
		case <-ticker.C:
			if terminal := w.tick(); terminal {
				// done closes before the expired callback so the
				// callback itself may call Stop without deadlocking.
				close(w.done)
				if w.cfg.OnExpired != nil {
					w.cfg.OnExpired()
				}
				return
			}
		}
	}
}

// tick evaluates the current token. It returns true on the terminal expired
// transition; the caller fires OnExpired.
func (w *Watcher) tick() bool {
	rawToken := w.tokens.AccessToken()

	if rawToken == "" || token.IsExpired(rawToken) {
		log.Debug().Msg("token watcher: token absent or expired, stopping")
		return true
	}

	if token.IsExpiringSoon(rawToken, w.cfg.WarningThreshold) {
		if !w.warningShown {
			minutesLeft := int((token.SecondsUntilExpiry(rawToken) + 59) / 60)
			log.Debug().Int("minutes_left", minutesLeft).Msg("token watcher: token expiring soon")
			if w.cfg.OnExpiringSoon != nil {
				w.cfg.OnExpiringSoon(minutesLeft)
			}
			if w.notifier != nil {
				w.notifier.Emit(expiryWarningMessage(minutesLeft), notify.SeverityWarning, warningDisplayDuration)
			}
			w.warningShown = true
		}
		return false
	}

	// A refresh may have extended the expiry past the warning window;
	// re-arm the warning.
	w.warningShown = false
	return false
}

func expiryWarningMessage(minutesLeft int) string {
	plural := "s"
	if minutesLeft == 1 {
		plural = ""
	}
	return fmt.Sprintf("Your session will expire in %d minute%s. Please save your work.", minutesLeft, plural)
}
