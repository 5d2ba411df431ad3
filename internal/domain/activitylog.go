package entity

import "time"

// ActivityLog records a status transition on a product or invoice
// (sold, restored, purged).
type ActivityLog struct {
	ID          int64     `db:"id" json:"id"`
	RelatedID   string    `db:"related_id" json:"related_id"`
	RelatedType string    `db:"related_type" json:"related_type"`
	OldStatus   string    `db:"old_status" json:"old_status"`
	NewStatus   string    `db:"new_status" json:"new_status"`
	ChangedBy   string    `db:"changed_by" json:"changed_by"`
	Note        string    `db:"note" json:"note,omitempty"`
	At          time.Time `db:"at" json:"at"`
}
