package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"billgen/internal/models"
)

const (
	BillCreated = "bill.created"
	BillUpdated = "bill.updated"
	BillDeleted = "bill.deleted"
)

// BillEvent describes a change to a bill. It carries identifiers and the
// headline figures only; consumers fetch the full bill if they need it.
type BillEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	BillID     string    `json:"billId"`
	BillNumber string    `json:"billNumber"`
	UserID     string    `json:"userId,omitempty"`
	Status     string    `json:"status"`
	GrandTotal float64   `json:"grandTotal"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewBillEvent(eventType string, bill *models.Bill) BillEvent {
	event := BillEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		BillID:     bill.ID.Hex(),
		BillNumber: bill.BillNumber,
		Status:     bill.Status,
		GrandTotal: bill.GrandTotal,
		Timestamp:  time.Now().UTC(),
	}
	if bill.UserID != nil {
		event.UserID = bill.UserID.Hex()
	}
	return event
}

func (e BillEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func BillEventFromJSON(data []byte) (*BillEvent, error) {
	var event BillEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
