package mongostore

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"billgen/internal/store"
)

// billFilterDocument translates a BillFilter into a query document. Search
// text is matched literally, case-insensitive, against the bill number and
// the customer name.
func billFilterDocument(f store.BillFilter) bson.M {
	filter := bson.M{}

	if f.OwnerID != nil {
		filter["userId"] = *f.OwnerID
	}

	switch len(f.Statuses) {
	case 0:
	case 1:
		filter["status"] = f.Statuses[0]
	default:
		filter["status"] = bson.M{"$in": f.Statuses}
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := regexp.QuoteMeta(search)
		filter["$or"] = []bson.M{
			{"billNumber": bson.M{"$regex": pattern, "$options": "i"}},
			{"customer.name": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	if f.BillDateFrom != nil || f.BillDateTo != nil {
		dateRange := bson.M{}
		if f.BillDateFrom != nil {
			dateRange["$gte"] = *f.BillDateFrom
		}
		if f.BillDateTo != nil {
			dateRange["$lt"] = *f.BillDateTo
		}
		filter["billDate"] = dateRange
	}

	return filter
}

func billPatchDocument(p store.BillPatch) bson.M {
	set := bson.M{"updatedAt": p.UpdatedAt}

	if p.Customer != nil {
		set["customer"] = *p.Customer
	}
	if p.BillDate != nil {
		set["billDate"] = *p.BillDate
	}
	if p.DueDate != nil {
		set["dueDate"] = *p.DueDate
	}
	if p.Items != nil {
		set["items"] = *p.Items
	}
	if p.Subtotal != nil {
		set["subtotal"] = *p.Subtotal
	}
	if p.TaxRate != nil {
		set["taxRate"] = *p.TaxRate
	}
	if p.TaxAmount != nil {
		set["taxAmount"] = *p.TaxAmount
	}
	if p.Discount != nil {
		set["discount"] = *p.Discount
	}
	if p.GrandTotal != nil {
		set["grandTotal"] = *p.GrandTotal
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	if p.PaymentDetails != nil {
		set["paymentDetails"] = *p.PaymentDetails
	}

	return set
}

func clientFilterDocument(f store.ClientFilter) bson.M {
	filter := bson.M{}
	if f.OwnerID != nil {
		filter["userId"] = *f.OwnerID
	}
	return filter
}
