// Package trading is the typed client for the platform's trading views:
// holdings, open orders, and positions, plus order placement. All traffic
// goes through the HTTP gateway, which carries the Authorization header and
// the 401 handling.
package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/brokerdeck/go-broker-client/api"
)

// Order validation bounds.
const (
	MinOrderQuantity = 1
	MaxOrderQuantity = 10000
	MinOrderPrice    = 0.01
	MaxOrderPrice    = 1000000
)

type Client struct {
	gateway *api.Client
}

func NewClient(gateway *api.Client) (*Client, error) {
	if gateway == nil {
		return nil, errors.New("[trading NewClient] gateway is required")
	}
	return &Client{gateway: gateway}, nil
}

func (c *Client) Holdings(ctx context.Context) (*HoldingsResponse, error) {
	var resp HoldingsResponse
	if err := c.gateway.Get(ctx, api.RouteHoldings, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Orderbook(ctx context.Context) (*OrderbookResponse, error) {
	var resp OrderbookResponse
	if err := c.gateway.Get(ctx, api.RouteOrderbook, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Positions(ctx context.Context) (*PositionsResponse, error) {
	var resp PositionsResponse
	if err := c.gateway.Get(ctx, api.RoutePositions, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PlaceOrder validates the request locally before sending it.
func (c *Client) PlaceOrder(ctx context.Context, order OrderRequest) (*OrderResponse, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	var resp OrderResponse
	if err := c.gateway.Post(ctx, api.RoutePlaceOrder, order, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate checks the order against the input bounds the platform enforces.
// Pricing rules beyond these bounds are the server's business.
func (r OrderRequest) Validate() error {
	if r.Symbol == "" {
		return errors.New("symbol is required")
	}
	if r.OrderType != OrderSideBuy && r.OrderType != OrderSideSell {
		return fmt.Errorf("order type must be %s or %s", OrderSideBuy, OrderSideSell)
	}
	if r.OrderCategory != OrderCategoryMarket && r.OrderCategory != OrderCategoryLimit {
		return fmt.Errorf("order category must be %s or %s", OrderCategoryMarket, OrderCategoryLimit)
	}
	if r.Quantity < MinOrderQuantity || r.Quantity > MaxOrderQuantity {
		return fmt.Errorf("quantity must be between %d and %d", MinOrderQuantity, MaxOrderQuantity)
	}
	if r.OrderCategory == OrderCategoryLimit && (r.Price < MinOrderPrice || r.Price > MaxOrderPrice) {
		return fmt.Errorf("price must be between %.2f and %.2f", MinOrderPrice, float64(MaxOrderPrice))
	}
	return nil
}
