// Package main provides the brokercli binary: a terminal client for the
// multi-broker trading platform built on the session lifecycle SDK.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brokerdeck/go-broker-client/api"
	"github.com/brokerdeck/go-broker-client/auth"
	"github.com/brokerdeck/go-broker-client/credentials"
	"github.com/brokerdeck/go-broker-client/internal/config"
	"github.com/brokerdeck/go-broker-client/notify"
	"github.com/brokerdeck/go-broker-client/trading"
)

// App wires the SDK components together once at process start and hands the
// same instances to every command.
type App struct {
	cfg        config.Config
	repo       *credentials.FileRepo
	emitter    *notify.Emitter
	gateway    *api.Client
	controller *auth.Controller
	trading    *trading.Client
}

func main() {
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if config.GetEnv("DEBUG", "") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	app, err := newApp()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise")
	}

	if err := newRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() (*App, error) {
	cfg := config.New()

	repo, err := credentials.NewFileRepo(cfg.GetCredentialFile())
	if err != nil {
		return nil, err
	}

	emitter := notify.NewEmitter()
	emitter.Subscribe(printNotification)

	gateway, err := api.NewClient(cfg.GetBaseURL(), repo,
		api.WithTimeout(cfg.GetRequestTimeout()),
		api.WithNotifier(emitter),
	)
	if err != nil {
		return nil, err
	}

	controller, err := auth.NewController(repo, gateway, emitter,
		auth.WithWatchInterval(cfg.GetTokenCheckInterval()),
		auth.WithWarningThreshold(cfg.GetTokenWarningThreshold()),
	)
	if err != nil {
		return nil, err
	}

	tradingClient, err := trading.NewClient(gateway)
	if err != nil {
		return nil, err
	}

	if _, err := controller.Initialize(); err != nil {
		log.Warn().Err(err).Msg("session restore failed")
	}

	return &App{
		cfg:        cfg,
		repo:       repo,
		emitter:    emitter,
		gateway:    gateway,
		controller: controller,
		trading:    tradingClient,
	}, nil
}

func printNotification(n notify.Notification) {
	fmt.Printf("[%s] %s\n", n.Severity, n.Message)
}
