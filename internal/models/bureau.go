// internal/models/bureau.go
package models

import "time"

// Bureau statuses.
const (
	BureauStatusPendingReview = "PENDING_REVIEW"
	BureauStatusActive        = "ACTIVE"
	BureauStatusSuspended     = "SUSPENDED"
)

// Bureau is a staffing agency registered on the platform.
type Bureau struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	OrgNumber    string    `json:"orgNumber" db:"org_number"`
	ContactName  string    `json:"contactName" db:"contact_name"`
	ContactEmail string    `json:"contactEmail" db:"contact_email"`
	ContactPhone string    `json:"contactPhone" db:"contact_phone"`
	Website      string    `json:"website,omitempty" db:"website"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Company is a client organization that engages bureaus.
type Company struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	OrgNumber    string `json:"orgNumber" db:"org_number"`
	ContactEmail string `json:"contactEmail" db:"contact_email"`
	ContactPhone string `json:"contactPhone" db:"contact_phone"`
}
