package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BillStatusPaid    = "paid"
	BillStatusUnpaid  = "unpaid"
	BillStatusOverdue = "overdue"
	BillStatusDraft   = "draft"
)

// BillStatuses lists every accepted bill status.
var BillStatuses = []string{BillStatusPaid, BillStatusUnpaid, BillStatusOverdue, BillStatusDraft}

// BillItem represents a single line on an invoice. Amount is stored as sent
// by the client and is the value totals are computed from.
type BillItem struct {
	Description string  `bson:"description" json:"description"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	Rate        float64 `bson:"rate" json:"rate"`
	Amount      float64 `bson:"amount" json:"amount"`
}

// Bill defines the persisted invoice document.
type Bill struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BillNumber     string              `bson:"billNumber" json:"billNumber"`
	Customer       Customer            `bson:"customer" json:"customer"`
	BillDate       time.Time           `bson:"billDate" json:"billDate"`
	DueDate        *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Items          []BillItem          `bson:"items" json:"items"`
	Subtotal       float64             `bson:"subtotal" json:"subtotal"`
	TaxRate        float64             `bson:"taxRate" json:"taxRate"`
	TaxAmount      float64             `bson:"taxAmount" json:"taxAmount"`
	Discount       float64             `bson:"discount" json:"discount"`
	GrandTotal     float64             `bson:"grandTotal" json:"grandTotal"`
	Status         string              `bson:"status" json:"status"`
	Notes          string              `bson:"notes,omitempty" json:"notes,omitempty"`
	PaymentDetails *PaymentDetails     `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	UserID         *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// OwnedBy reports whether the bill belongs to the given user id.
func (b Bill) OwnedBy(userID primitive.ObjectID) bool {
	return b.UserID != nil && *b.UserID == userID
}
