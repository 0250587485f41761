package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus represents where an order request is in the follow-up flow
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusContacted OrderStatus = "contacted"
	OrderStatusCompleted OrderStatus = "completed"
)

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusContacted, OrderStatusCompleted:
		return true
	}
	return false
}

// CustomerInfo holds the contact details collected at checkout
type CustomerInfo struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

// Order is a customer order request. Items and Total are frozen at submission;
// only Status changes afterwards.
type Order struct {
	ID        string                           `json:"id" gorm:"type:text;primaryKey"`
	Customer  datatypes.JSONType[CustomerInfo] `json:"customer" gorm:"column:customer_info;type:jsonb;not null"`
	Items     datatypes.JSONType[[]CartItem]   `json:"items" gorm:"type:jsonb;not null"`
	Total     decimal.Decimal                  `json:"total" gorm:"type:decimal(10,2);not null"`
	Status    OrderStatus                      `json:"status" gorm:"type:text;not null;default:'pending';index"`
	CreatedAt time.Time                        `json:"created_at" gorm:"index"`
}

// CustomerInfo returns the decoded customer details
func (o Order) CustomerInfo() CustomerInfo {
	return o.Customer.Data()
}

// ItemList returns the frozen cart snapshot
func (o Order) ItemList() []CartItem {
	return o.Items.Data()
}

// NewOrder builds a pending order from a cart. The items slice is copied so
// later changes to the caller's cart cannot leak into the order.
func NewOrder(id string, customer CustomerInfo, items []CartItem, total decimal.Decimal, now time.Time) Order {
	frozen := make([]CartItem, len(items))
	copy(frozen, items)
	return Order{
		ID:        id,
		Customer:  datatypes.NewJSONType(customer),
		Items:     datatypes.NewJSONType(frozen),
		Total:     total,
		Status:    OrderStatusPending,
		CreatedAt: now.UTC(),
	}
}

// SubmitOrderRequest is the checkout payload
type SubmitOrderRequest struct {
	Customer CustomerInfo    `json:"customer" binding:"required"`
	Items    []CartItem      `json:"items" binding:"required,min=1,dive"`
	Total    decimal.Decimal `json:"total"`
}

// UpdateOrderStatusRequest represents a request to move an order to a new status
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// ContactLinks are the out-of-band channels a customer can use to confirm an order
type ContactLinks struct {
	WhatsApp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`
}

type OrderResponse struct {
	Success bool          `json:"success"`
	Data    *Order        `json:"data"`
	Contact *ContactLinks `json:"contact,omitempty"`
	Message *string       `json:"message,omitempty"`
}

type OrderListResponse struct {
	Success bool    `json:"success"`
	Data    []Order `json:"data"`
	Total   int     `json:"total"`
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
