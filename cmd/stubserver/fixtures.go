package main

import "github.com/brokerdeck/go-broker-client/trading"

// Canned trading data served to every authenticated user.

var fixturePNL = trading.PNLCard{
	TotalPNL:        12450.75,
	TotalPNLPercent: 8.42,
	DayPNL:          -320.10,
	DayPNLPercent:   -0.21,
	RealizedPNL:     4100.00,
	UnrealizedPNL:   8350.75,
}

var fixtureHoldings = []trading.Holding{
	{Symbol: "RELIANCE", Name: "Reliance Industries", Quantity: 25, AveragePrice: 2450.00, CurrentPrice: 2601.30, PNL: 3782.50, PNLPercent: 6.17},
	{Symbol: "TCS", Name: "Tata Consultancy Services", Quantity: 10, AveragePrice: 3320.00, CurrentPrice: 3510.45, PNL: 1904.50, PNLPercent: 5.74},
	{Symbol: "INFY", Name: "Infosys", Quantity: 40, AveragePrice: 1490.00, CurrentPrice: 1432.20, PNL: -2312.00, PNLPercent: -3.88},
}

var fixtureOrders = []trading.Order{
	{ID: "ord-1001", Symbol: "RELIANCE", OrderType: trading.OrderSideBuy, Quantity: 5, Price: 2590.00, Status: trading.OrderStatusCompleted, OrderTime: "2026-08-28T09:17:32Z", ExecutedTime: "2026-08-28T09:17:35Z"},
	{ID: "ord-1002", Symbol: "HDFCBANK", OrderType: trading.OrderSideSell, Quantity: 12, Price: 1655.50, Status: trading.OrderStatusPending, OrderTime: "2026-08-28T10:03:01Z"},
	{ID: "ord-1003", Symbol: "INFY", OrderType: trading.OrderSideBuy, Quantity: 20, Price: 1440.00, Status: trading.OrderStatusCancelled, OrderTime: "2026-08-27T14:45:19Z"},
}

var fixturePositions = []trading.Position{
	{Symbol: "NIFTYFUT", Quantity: 50, AveragePrice: 24310.00, CurrentPrice: 24402.50, UnrealizedPNL: 4625.00, UnrealizedPNLPercent: 0.38, PositionType: trading.PositionLong},
	{Symbol: "BANKNIFTY", Quantity: 15, AveragePrice: 51200.00, CurrentPrice: 50890.00, UnrealizedPNL: -4650.00, UnrealizedPNLPercent: -0.61, PositionType: trading.PositionShort},
}
