/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the engine's record model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers via the worklog package, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - auth.go:     Auth request/response types
*/
package api

import "encoding/json"

// =============================================================================
// WORKLOG TYPES
// =============================================================================

// WorklogDTO represents a worklog record in API responses. Date is the
// stored encoding; Day is the normalized ISO calendar day (empty when
// the date could not be resolved).
type WorklogDTO struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Day           string  `json:"day,omitempty"`
	DurationHours float64 `json:"duration_hours"`
	Reason        string  `json:"reason"`
	Notes         string  `json:"notes,omitempty"`
}

// WorklogRequest is the body for create and update. DurationHours is a
// json.Number so non-numeric input maps to an out-of-range validation
// error instead of a generic decode failure. Overwrite opts into
// upsert-by-date on create: replace the existing same-day record
// instead of returning a conflict.
type WorklogRequest struct {
	Date          string      `json:"date"`
	DurationHours json.Number `json:"duration_hours"`
	Reason        string      `json:"reason"`
	Notes         string      `json:"notes"`
	Overwrite     bool        `json:"overwrite,omitempty"`
}

// CreateWorklogResponse echoes the stored record plus the session
// comment for the submitted hours.
type CreateWorklogResponse struct {
	Worklog WorklogDTO `json:"worklog"`
	Message string     `json:"message"`
}

// ConflictResponse reports an upsert-by-date conflict with the record
// already occupying the day.
type ConflictResponse struct {
	Error    string     `json:"error"`
	Existing WorklogDTO `json:"existing"`
}

// =============================================================================
// DERIVED VIEW TYPES
// =============================================================================

// MonthTotalDTO is one month's aggregate.
type MonthTotalDTO struct {
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	TotalHours float64 `json:"total_hours"`
	Entries    int     `json:"entries"`
}

// SummaryDTO pairs the current and previous month with the monthly
// qualitative comment for the current total.
type SummaryDTO struct {
	Current  MonthTotalDTO `json:"current_month"`
	Previous MonthTotalDTO `json:"previous_month"`
	Comment  string        `json:"comment"`
}

// HeatmapCellDTO is one day of the 28-cell intensity grid.
type HeatmapCellDTO struct {
	Day         string  `json:"day"`
	Hours       float64 `json:"hours"`
	Level       int     `json:"level"`
	MonthAnchor bool    `json:"month_anchor,omitempty"`
}

// =============================================================================
// GENERIC RESPONSES
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NoticeResponse carries an informational, non-error outcome such as
// an empty report month.
type NoticeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
