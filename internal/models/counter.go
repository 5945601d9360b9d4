package models

import "time"

// Counter is a named monotonic sequence. Bill numbering keeps one counter per
// month keyed by the bill number prefix, e.g. "INV-2026-10".
type Counter struct {
	ID        string    `bson:"_id" json:"id"`
	Seq       int       `bson:"seq" json:"seq"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
