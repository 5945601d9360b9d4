package billing

import (
	"fmt"
	"strings"

	"billgen/internal/apperr"
	"billgen/internal/models"
)

// BillInput is the body of a create request. When Items is nil the caller
// must supply Subtotal and GrandTotal.
type BillInput struct {
	Customer       models.Customer        `json:"customer"`
	BillDate       *Date                  `json:"billDate"`
	DueDate        *Date                  `json:"dueDate"`
	Items          []models.BillItem      `json:"items"`
	Subtotal       *float64               `json:"subtotal"`
	TaxRate        *float64               `json:"taxRate"`
	TaxAmount      *float64               `json:"taxAmount"`
	Discount       *float64               `json:"discount"`
	GrandTotal     *float64               `json:"grandTotal"`
	Status         string                 `json:"status"`
	Notes          string                 `json:"notes"`
	PaymentDetails *models.PaymentDetails `json:"paymentDetails"`
}

// BillUpdate is the body of an update request; nil fields are left alone.
// billNumber, userId and createdAt cannot be patched.
type BillUpdate struct {
	Customer       *models.Customer       `json:"customer"`
	BillDate       *Date                  `json:"billDate"`
	DueDate        *Date                  `json:"dueDate"`
	Items          *[]models.BillItem     `json:"items"`
	Subtotal       *float64               `json:"subtotal"`
	TaxRate        *float64               `json:"taxRate"`
	TaxAmount      *float64               `json:"taxAmount"`
	Discount       *float64               `json:"discount"`
	GrandTotal     *float64               `json:"grandTotal"`
	Status         *string                `json:"status"`
	Notes          *string                `json:"notes"`
	PaymentDetails *models.PaymentDetails `json:"paymentDetails"`
}

// ValidStatus reports enum membership only; transitions are not enforced.
func ValidStatus(status string) bool {
	for _, s := range models.BillStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (in *BillInput) validate() error {
	var details []string
	if strings.TrimSpace(in.Customer.Name) == "" {
		details = append(details, "customer.name is required")
	}
	details = append(details, itemErrors(in.Items)...)
	if in.Status != "" && !ValidStatus(in.Status) {
		details = append(details, statusError(in.Status))
	}
	if in.Items == nil {
		if in.Subtotal == nil {
			details = append(details, "subtotal is required")
		}
		if in.GrandTotal == nil {
			details = append(details, "grandTotal is required")
		}
	}
	if len(details) > 0 {
		return apperr.Validation("Bill validation failed", details...)
	}
	return nil
}

func (in *BillUpdate) validate() error {
	var details []string
	if in.Customer != nil && strings.TrimSpace(in.Customer.Name) == "" {
		details = append(details, "customer.name is required")
	}
	if in.Items != nil {
		details = append(details, itemErrors(*in.Items)...)
	}
	if in.Status != nil && !ValidStatus(*in.Status) {
		details = append(details, statusError(*in.Status))
	}
	if len(details) > 0 {
		return apperr.Validation("Bill validation failed", details...)
	}
	return nil
}

func (in *BillUpdate) recomputesTotals() bool {
	return in.Items != nil || in.TaxRate != nil || in.Discount != nil
}

func itemErrors(items []models.BillItem) []string {
	var details []string
	for i, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			details = append(details, fmt.Sprintf("items[%d].description is required", i))
		}
	}
	return details
}

func statusError(status string) string {
	return fmt.Sprintf("status %q is not one of %s", status, strings.Join(models.BillStatuses, ", "))
}

// normalizeItems applies the default quantity of 1.
func normalizeItems(items []models.BillItem) []models.BillItem {
	if items == nil {
		return nil
	}
	out := make([]models.BillItem, len(items))
	for i, item := range items {
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		out[i] = item
	}
	return out
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
