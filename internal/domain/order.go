package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusSent      OrderStatus = "sent"
)

// Active reports whether the status counts toward the one-active-order-per-customer rule.
func (s OrderStatus) Active() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

type Order struct {
	ID                string       `json:"id"`
	CustomerID        string       `json:"customer_id"`
	CustomerName      string       `json:"customer_name"`
	OrderText         string       `json:"order_text"`
	RequestedAt       time.Time    `json:"requested_at"`
	PickupWindow      PickupWindow `json:"pickup_window"`
	ConfirmedPickupAt *time.Time   `json:"confirmed_pickup_at,omitempty"`
	Status            OrderStatus  `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// PickupWindow is the range in which a prepared order can be collected.
// Labels are always derived from Start and End, never stored.
type PickupWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

const (
	DayLabelToday    = "hoy"
	DayLabelTomorrow = "mañana"
)

func (w PickupWindow) StartLabel(loc *time.Location) string {
	return ClockLabel(w.Start, loc)
}

func (w PickupWindow) EndLabel(loc *time.Location) string {
	return ClockLabel(w.End, loc)
}

// DayLabel names the window's start day relative to now: "hoy", "mañana" or DD/MM.
func (w PickupWindow) DayLabel(now time.Time, loc *time.Location) string {
	start := w.Start.In(loc)
	today := startOfDay(now.In(loc))
	startDay := startOfDay(start)

	switch {
	case startDay.Equal(today):
		return DayLabelToday
	case startDay.Equal(today.AddDate(0, 0, 1)):
		return DayLabelTomorrow
	default:
		return start.Format("02/01")
	}
}

// ClockLabel formats t as HH:MM in loc.
func ClockLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
