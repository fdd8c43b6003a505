package trading

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderCategory distinguishes market from limit orders.
type OrderCategory string

const (
	OrderCategoryMarket OrderCategory = "MARKET"
	OrderCategoryLimit  OrderCategory = "LIMIT"
)

// OrderStatus is the lifecycle state of a placed order.
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// PositionType marks the direction of an open position.
type PositionType string

const (
	PositionLong  PositionType = "LONG"
	PositionShort PositionType = "SHORT"
)

type Holding struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name,omitempty"`
	Quantity     int64   `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
	CurrentPrice float64 `json:"current_price"`
	PNL          float64 `json:"pnl"`
	PNLPercent   float64 `json:"pnl_percent"`
}

type Position struct {
	Symbol               string       `json:"symbol"`
	Quantity             int64        `json:"quantity"`
	AveragePrice         float64      `json:"average_price"`
	CurrentPrice         float64      `json:"current_price"`
	UnrealizedPNL        float64      `json:"unrealized_pnl"`
	UnrealizedPNLPercent float64      `json:"unrealized_pnl_percent"`
	PositionType         PositionType `json:"position_type"`
}

type Order struct {
	ID           string      `json:"id"`
	Symbol       string      `json:"symbol"`
	OrderType    OrderSide   `json:"order_type"`
	Quantity     int64       `json:"quantity"`
	Price        float64     `json:"price"`
	Status       OrderStatus `json:"status"`
	OrderTime    string      `json:"order_time"`
	ExecutedTime string      `json:"executed_time,omitempty"`
}

// PNLCard is the profit-and-loss summary shown alongside every trading view.
type PNLCard struct {
	TotalPNL        float64 `json:"total_pnl"`
	TotalPNLPercent float64 `json:"total_pnl_percent"`
	DayPNL          float64 `json:"day_pnl"`
	DayPNLPercent   float64 `json:"day_pnl_percent"`
	RealizedPNL     float64 `json:"realized_pnl"`
	UnrealizedPNL   float64 `json:"unrealized_pnl"`
}

type HoldingsResponse struct {
	Holdings []Holding `json:"holdings"`
	PNLCard  PNLCard   `json:"pnl_card"`
}

type OrderbookResponse struct {
	Orders  []Order `json:"orders"`
	PNLCard PNLCard `json:"pnl_card"`
}

type PositionsResponse struct {
	Positions []Position `json:"positions"`
	PNLCard   PNLCard    `json:"pnl_card"`
}

// OrderRequest is the payload for placing an order.
type OrderRequest struct {
	Symbol        string        `json:"symbol"`
	OrderType     OrderSide     `json:"order_type"`
	Quantity      int64         `json:"quantity"`
	Price         float64       `json:"price"`
	OrderCategory OrderCategory `json:"order_category"`
}

// OrderResponse acknowledges a placed order.
type OrderResponse struct {
	Order   Order  `json:"order"`
	Message string `json:"message,omitempty"`
}
