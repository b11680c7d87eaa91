// internal/workers/contract/validate-terms/models.go
package validateterms

import "vms-workers/internal/wizard"

type Input struct {
	ContractType    string  `json:"contractType"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	ProbationMonths int     `json:"probationMonths"`
	NoticeMonths    int     `json:"noticeMonths"`
	VacationDays    int     `json:"vacationDays"`
	WorkingHours    float64 `json:"workingHours"`
}

type Output struct {
	Valid            bool                `json:"valid"`
	ValidationErrors []wizard.FieldError `json:"validationErrors,omitempty"`
}
