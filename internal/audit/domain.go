package audit

import "time"

// Actions recorded in the activity log.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionLogout = "logout"
)

// Entry is one append-only activity log record.
type Entry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Action     string    `json:"action"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ListFilters narrows activity log queries.
type ListFilters struct {
	ActorID  int64
	Entity   string
	Action   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}
