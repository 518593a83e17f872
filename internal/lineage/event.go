package lineage

import (
	"encoding/json"
	"time"

	"github.com/roach88/auditlens/internal/audit"
)

// EntityType tags which stream an event came from. Its numeric value is
// the tie-break rank when two events share a timestamp.
type EntityType int

const (
	EntityCustomer EntityType = iota + 1
	EntityOrder
	EntityPayment
)

// String returns the display name of the entity type.
func (t EntityType) String() string {
	switch t {
	case EntityCustomer:
		return "Customer"
	case EntityOrder:
		return "Order"
	case EntityPayment:
		return "Payment"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the display name.
func (t EntityType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Event is one step of a customer journey.
type Event struct {
	EntityType    EntityType      `json:"entity_type"`
	EntityID      int64           `json:"entity_id"`
	EntityName    string          `json:"entity_name"`
	Operation     audit.Operation `json:"operation_type"`
	ChangedAt     time.Time       `json:"changed_at"`
	ChangeDetails string          `json:"change_details"`
}

// before orders events by timestamp, then by entity rank.
func (e Event) before(other Event) bool {
	if !e.ChangedAt.Equal(other.ChangedAt) {
		return e.ChangedAt.Before(other.ChangedAt)
	}
	return e.EntityType < other.EntityType
}

const missing = "N/A"

// details renders "<Label>: <old> → <new>", with N/A for null values.
func details(label string, old, new audit.NullString) string {
	return label + ": " + old.Or(missing) + " → " + new.Or(missing)
}
