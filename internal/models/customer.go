package models

// Customer captures the billed party embedded in a bill.
type Customer struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// PaymentDetails holds the bank information printed on an invoice.
type PaymentDetails struct {
	BankName      string `bson:"bankName,omitempty" json:"bankName,omitempty"`
	AccountNumber string `bson:"accountNumber,omitempty" json:"accountNumber,omitempty"`
	SwiftBic      string `bson:"swiftBic,omitempty" json:"swiftBic,omitempty"`
}
