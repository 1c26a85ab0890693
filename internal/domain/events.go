package domain

import "time"

// OrderConfirmedEvent is published when a customer fixes a pickup time.
type OrderConfirmedEvent struct {
	OrderID           string    `json:"order_id"`
	CustomerID        string    `json:"customer_id"`
	CustomerName      string    `json:"customer_name"`
	OrderText         string    `json:"order_text"`
	ConfirmedPickupAt time.Time `json:"confirmed_pickup_at"`
	Summary           string    `json:"summary"`
	Timestamp         time.Time `json:"timestamp"`
}
