package entity

import "time"

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderFill is the confirmed result of an executed order as reported by the
// exchange. The filled quantity is ground truth: it may differ from the
// requested quantity and position updates must use it, never the request.
type OrderFill struct {
	Symbol    string
	Side      OrderSide
	Price     float64
	Quantity  float64
	Timestamp time.Time
}
