package domain

import (
	"slices"
	"time"
)

// BookingAction is what the operator selected after scanning.
type BookingAction string

const (
	ActionClockIn           BookingAction = "clock_in"
	ActionClockOut          BookingAction = "clock_out"
	ActionBusinessTripStart BookingAction = "business_trip_start"
	ActionBusinessTripEnd   BookingAction = "business_trip_end"
	ActionBreakStart        BookingAction = "break_start"
	ActionBreakEnd          BookingAction = "break_end"
)

// Actions lists every action the terminal knows, in menu order.
var Actions = []BookingAction{
	ActionClockIn,
	ActionClockOut,
	ActionBusinessTripStart,
	ActionBusinessTripEnd,
	ActionBreakStart,
	ActionBreakEnd,
}

// Valid reports whether a is one of Actions.
func (a BookingAction) Valid() bool {
	return slices.Contains(Actions, a)
}

// BookingRequest is one booking attempt. A zero OccursAt lets the HR
// platform assign the time.
type BookingRequest struct {
	PersonnelNumber string
	Action          BookingAction
	OccursAt        time.Time
}

// BookingResult is returned when the HR platform accepted a booking.
type BookingResult struct {
	Request    BookingRequest
	StatusCode int
	Attempted  time.Time
	Completed  time.Time
}

// BookingOutcome is the audit classification of an attempt.
type BookingOutcome string

const (
	OutcomeSucceeded     BookingOutcome = "succeeded"
	OutcomeFailed        BookingOutcome = "failed"
	OutcomeAuthFailed    BookingOutcome = "authentication_failed"
	OutcomeInvalidAction BookingOutcome = "invalid_action"
	OutcomeDuplicate     BookingOutcome = "duplicate"
)

// BookingLogEntry is the local audit record of a booking attempt.
type BookingLogEntry struct {
	ID              string         `json:"id" bson:"_id"`
	Terminal        string         `json:"terminal" bson:"terminal"`
	ChipID          string         `json:"chip_id" bson:"chip_id"`
	PersonnelNumber string         `json:"personnel_number" bson:"personnel_number"`
	Action          BookingAction  `json:"action" bson:"action"`
	Outcome         BookingOutcome `json:"outcome" bson:"outcome"`
	StatusCode      int            `json:"status_code,omitempty" bson:"status_code,omitempty"`
	Detail          string         `json:"detail,omitempty" bson:"detail,omitempty"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
}
