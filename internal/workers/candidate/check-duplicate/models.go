// internal/workers/candidate/check-duplicate/models.go
package checkduplicate

import "vms-workers/internal/models"

type Input struct {
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type Output struct {
	IsDuplicate bool                   `json:"isDuplicate"`
	Duplicate   *models.DuplicateMatch `json:"duplicate,omitempty"`
}
