package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is a customer record kept in the address book. TotalBills and
// TotalRevenue are display counters and are not maintained by any write path.
type Client struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Company      string              `bson:"company,omitempty" json:"company,omitempty"`
	Email        string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Address      string              `bson:"address,omitempty" json:"address,omitempty"`
	TotalBills   int                 `bson:"totalBills" json:"totalBills"`
	TotalRevenue float64             `bson:"totalRevenue" json:"totalRevenue"`
	UserID       *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}
