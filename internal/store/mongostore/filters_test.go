package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"billgen/internal/models"
	"billgen/internal/store"
)

func TestBillFilterDocumentEmpty(t *testing.T) {
	assert.Empty(t, billFilterDocument(store.BillFilter{}))
}

func TestBillFilterDocumentOwnerAndSingleStatus(t *testing.T) {
	owner := primitive.NewObjectID()
	doc := billFilterDocument(store.BillFilter{
		OwnerID:  &owner,
		Statuses: []string{models.BillStatusPaid},
	})

	assert.Equal(t, owner, doc["userId"])
	assert.Equal(t, models.BillStatusPaid, doc["status"])
}

func TestBillFilterDocumentMultipleStatuses(t *testing.T) {
	doc := billFilterDocument(store.BillFilter{
		Statuses: []string{models.BillStatusUnpaid, models.BillStatusOverdue},
	})

	assert.Equal(t, bson.M{"$in": []string{"unpaid", "overdue"}}, doc["status"])
}

func TestBillFilterDocumentSearchIsEscaped(t *testing.T) {
	doc := billFilterDocument(store.BillFilter{Search: "  a.c (ltd) "})

	or, ok := doc["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"$regex": `a\.c \(ltd\)`, "$options": "i"}, or[0]["billNumber"])
	assert.Equal(t, bson.M{"$regex": `a\.c \(ltd\)`, "$options": "i"}, or[1]["customer.name"])
}

func TestBillFilterDocumentDateRangeIsHalfOpen(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	doc := billFilterDocument(store.BillFilter{BillDateFrom: &from, BillDateTo: &to})

	assert.Equal(t, bson.M{"$gte": from, "$lt": to}, doc["billDate"])
}

func TestBillPatchDocumentOnlySetsProvidedFields(t *testing.T) {
	now := time.Now()
	status := models.BillStatusPaid
	total := 42.5

	doc := billPatchDocument(store.BillPatch{
		Status:     &status,
		GrandTotal: &total,
		UpdatedAt:  now,
	})

	assert.Equal(t, bson.M{
		"status":     "paid",
		"grandTotal": 42.5,
		"updatedAt":  now,
	}, doc)
}
