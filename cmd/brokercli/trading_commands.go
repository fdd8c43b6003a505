package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/brokerdeck/go-broker-client/internal/errors"
	"github.com/brokerdeck/go-broker-client/trading"
)

// withRetry retries transient transport failures. The gateway itself never
// retries; the explicit-retry policy lives with the caller.
func (a *App) withRetry(fn func() error) error {
	attempts := a.cfg.GetRetryAttempts()
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !errs.Is(err, errs.ErrNetworkUnavailable) {
			return err
		}
		time.Sleep(a.cfg.GetRetryDelay())
	}
	return err
}

func newHoldingsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "holdings",
		Short: "Show portfolio holdings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp *trading.HoldingsResponse
			err := app.withRetry(func() error {
				var fetchErr error
				resp, fetchErr = app.trading.Holdings(cmd.Context())
				return fetchErr
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tQTY\tAVG\tLTP\tP&L\tP&L%\t")
			for _, h := range resp.Holdings {
				fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
					h.Symbol, h.Quantity, h.AveragePrice, h.CurrentPrice, h.PNL, h.PNLPercent)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printPNLCard(out, resp.PNLCard)
			return nil
		},
	}
}

func newOrderbookCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "orderbook",
		Short: "Show open and recent orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp *trading.OrderbookResponse
			err := app.withRetry(func() error {
				var fetchErr error
				resp, fetchErr = app.trading.Orderbook(cmd.Context())
				return fetchErr
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSYMBOL\tSIDE\tQTY\tPRICE\tSTATUS\t")
			for _, o := range resp.Orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%s\t\n",
					o.ID, o.Symbol, o.OrderType, o.Quantity, o.Price, o.Status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printPNLCard(out, resp.PNLCard)
			return nil
		},
	}
}

func newPositionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "Show open positions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp *trading.PositionsResponse
			err := app.withRetry(func() error {
				var fetchErr error
				resp, fetchErr = app.trading.Positions(cmd.Context())
				return fetchErr
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tTYPE\tQTY\tAVG\tLTP\tUNREALIZED\t")
			for _, p := range resp.Positions {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t\n",
					p.Symbol, p.PositionType, p.Quantity, p.AveragePrice, p.CurrentPrice, p.UnrealizedPNL)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printPNLCard(out, resp.PNLCard)
			return nil
		},
	}
}

func newOrderCmd(app *App) *cobra.Command {
	var (
		symbol   string
		side     string
		category string
		quantity int64
		price    float64
	)
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place an order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := app.trading.PlaceOrder(cmd.Context(), trading.OrderRequest{
				Symbol:        symbol,
				OrderType:     trading.OrderSide(side),
				Quantity:      quantity,
				Price:         price,
				OrderCategory: trading.OrderCategory(category),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s: %s %d %s @ %.2f (%s)\n",
				resp.Order.ID, resp.Order.OrderType, resp.Order.Quantity,
				resp.Order.Symbol, resp.Order.Price, resp.Order.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "instrument symbol")
	cmd.Flags().StringVar(&side, "side", string(trading.OrderSideBuy), "BUY or SELL")
	cmd.Flags().StringVar(&category, "category", string(trading.OrderCategoryMarket), "MARKET or LIMIT")
	cmd.Flags().Int64Var(&quantity, "qty", 0, "order quantity")
	cmd.Flags().Float64Var(&price, "price", 0, "limit price")
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func printPNLCard(out io.Writer, card trading.PNLCard) {
	fmt.Fprintf(out, "\nTotal P&L: %.2f (%.2f%%)  Day: %.2f (%.2f%%)\n",
		card.TotalPNL, card.TotalPNLPercent, card.DayPNL, card.DayPNLPercent)
}
