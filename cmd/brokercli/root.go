package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/brokerdeck/go-broker-client/brokers"
	"github.com/brokerdeck/go-broker-client/token"
)

func newRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "brokercli",
		Short:         "Terminal client for the multi-broker trading platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			figure.NewFigure(app.cfg.GetAppName(), "cybermedium", true).Print()
			fmt.Println()
			return cmd.Help()
		},
	}

	root.AddCommand(
		newBrokersCmd(app),
		newSignupCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newRefreshCmd(app),
		newStatusCmd(app),
		newWatchCmd(app),
		newHoldingsCmd(app),
		newOrderbookCmd(app),
		newPositionsCmd(app),
		newOrderCmd(app),
	)
	return root
}

func newBrokersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brokers",
		Short: "List brokers or select one before logging in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBROKER\t")
			for _, b := range brokers.All() {
				fmt.Fprintf(w, "%d\t%s %s\t\n", b.ID, b.Logo, b.Name)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if selected := brokers.Selected(app.repo); selected != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\nSelected: %s\n", selected.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "select <id>",
		Short: "Select a broker for the next login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("broker id must be a number: %q", args[0])
			}
			broker, err := brokers.Select(app.repo, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected %s %s\n", broker.Logo, broker.Name)
			return nil
		},
	})
	return cmd
}

func newSignupCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and start a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.controller.Signup(cmd.Context(), email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.controller.Login(cmd.Context(), email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.controller.Logout(cmd.Context())
		},
	}
}

func newRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new token pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.controller.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session refreshed")
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := app.controller.State()
			out := cmd.OutOrStdout()
			if !state.Authenticated {
				fmt.Fprintln(out, "Not logged in")
				if state.LastError != "" {
					fmt.Fprintf(out, "Last error: %s\n", state.LastError)
				}
				return nil
			}

			fmt.Fprintf(out, "Logged in as %s\n", state.User.Email)
			accessToken := app.repo.AccessToken()
			if token.IsExpired(accessToken) {
				fmt.Fprintln(out, "Access token: expired")
			} else {
				fmt.Fprintf(out, "Access token: valid for %ds\n", token.SecondsUntilExpiry(accessToken))
			}
			return nil
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay running and print session notifications until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.controller.State().Authenticated {
				return errors.New("not logged in")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Watching session, Ctrl-C to stop")

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}
}
