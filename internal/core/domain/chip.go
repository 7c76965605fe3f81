package domain

import (
	"strings"
	"time"
)

// ChipFrame is one delimited unit cut out of a serial reader's byte stream.
// It only lives while its identifier is extracted.
type ChipFrame struct {
	Raw      []byte // STX ... ETX inclusive
	Payload  []byte // bytes between the markers, checksum removed
	Checksum []byte
}

// ChipMapping assigns a badge to a person in the HR platform.
type ChipMapping struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	ChipID          string    `json:"chip_id" bson:"chip_id"`
	PersonnelNumber string    `json:"personnel_number" bson:"personnel_number"`
	FirstName       string    `json:"first_name" bson:"first_name"`
	LastName        string    `json:"last_name" bson:"last_name"`
	Active          bool      `json:"active" bson:"active"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// DisplayName is what the terminal greets the badge holder with.
func (m *ChipMapping) DisplayName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}
