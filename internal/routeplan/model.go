package routeplan

import "time"

// RouteStatus is the lifecycle state of a planned route.
type RouteStatus string

const (
	StatusScheduled  RouteStatus = "scheduled"
	StatusInProgress RouteStatus = "in_progress"
	StatusCompleted  RouteStatus = "completed"
)

// Next returns the status one step forward, or "" when the route is terminal.
func (s RouteStatus) Next() RouteStatus {
	switch s {
	case StatusScheduled:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	}
	return ""
}

// Stop is one ordered visit on a route.
type Stop struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	Address    string `json:"address"`
	TimeSlot   string `json:"time_slot,omitempty"`
	StopOrder  int    `json:"stop_order"`
}

// Route is one supplier's delivery run for a day.
type Route struct {
	ID         int64       `json:"id"`
	RouteDate  time.Time   `json:"route_date"`
	SupplierID int64       `json:"supplier_id"`
	Status     RouteStatus `json:"status"`
	Stops      []Stop      `json:"stops"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// CreateRouteRequest is the payload for planning a route.
type CreateRouteRequest struct {
	RouteDate  time.Time         `json:"route_date" validate:"required"`
	SupplierID int64             `json:"supplier_id" validate:"required"`
	Stops      []CreateStopInput `json:"stops" validate:"required,min=1,dive"`
}

// CreateStopInput is one stop in a route creation payload.
type CreateStopInput struct {
	CustomerID int64  `json:"customer_id" validate:"required"`
	Address    string `json:"address" validate:"required"`
	TimeSlot   string `json:"time_slot"`
}

// ListFilters narrows route listings.
type ListFilters struct {
	SupplierID *int64
	Date       *time.Time
	Status     *RouteStatus
	Page       int
	PageSize   int
}
