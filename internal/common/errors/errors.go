// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Contract / MSA / candidate business-rule errors
const (
	ErrCodeNoActiveMSA          ErrorCode = "NO_ACTIVE_MSA"
	ErrCodeMSANotFound          ErrorCode = "MSA_NOT_FOUND"
	ErrCodeMSAAlreadyDecided    ErrorCode = "MSA_ALREADY_DECIDED"
	ErrCodeMSARejectReasonEmpty ErrorCode = "MSA_REJECT_REASON_REQUIRED"
	ErrCodeMSALookupFailed      ErrorCode = "MSA_LOOKUP_FAILED"

	ErrCodeTemplateNotFound       ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeContractTermsInvalid   ErrorCode = "CONTRACT_TERMS_INVALID"
	ErrCodeRateCardNotFound       ErrorCode = "RATE_CARD_NOT_FOUND"
	ErrCodeFeeStructureNotFound   ErrorCode = "FEE_STRUCTURE_NOT_FOUND"
	ErrCodeFeeTypeUnsupported     ErrorCode = "FEE_TYPE_UNSUPPORTED"
	ErrCodeWizardSessionNotFound  ErrorCode = "WIZARD_SESSION_NOT_FOUND"
	ErrCodeWizardEventInvalid     ErrorCode = "WIZARD_EVENT_INVALID"
	ErrCodeDuplicateCandidate     ErrorCode = "DUPLICATE_CANDIDATE"
	ErrCodeBureauValidationFailed ErrorCode = "BUREAU_VALIDATION_FAILED"
	ErrCodeRegistryLookupFailed   ErrorCode = "REGISTRY_LOOKUP_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeInvalidQueryType         ErrorCode = "INVALID_QUERY_TYPE"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewNoActiveMSAError creates a non-retryable error for a company/bureau pair
// without an active agreement.
func NewNoActiveMSAError(companyID, bureauID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoActiveMSA,
		Message:   "No active MSA for company/bureau pair",
		Details:   fmt.Sprintf("companyId: %s, bureauId: %s", companyID, bureauID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMSANotFoundError creates a non-retryable MSA lookup error.
func NewMSANotFoundError(msaID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMSANotFound,
		Message:   "MSA not found",
		Details:   fmt.Sprintf("msaId: %s", msaID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMSARejectReasonEmptyError creates a non-retryable error for a rejection
// submitted without a reason.
func NewMSARejectReasonEmptyError(msaID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMSARejectReasonEmpty,
		Message:   "Rejection requires a non-empty reason",
		Details:   fmt.Sprintf("msaId: %s", msaID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMSALookupFailedError creates a retryable database error during MSA lookup.
func NewMSALookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMSALookupFailed,
		Message:   "Database error during MSA lookup",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(contractType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "No contract template for contract type",
		Details:   fmt.Sprintf("contractType: %s", contractType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContractTermsInvalidError creates a non-retryable terms validation error.
func NewContractTermsInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeContractTermsInvalid,
		Message:   "Contract terms failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeeStructureNotFoundError creates a non-retryable fee structure error.
func NewFeeStructureNotFoundError(bureauID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeeStructureNotFound,
		Message:   "No fee structure configured for bureau",
		Details:   fmt.Sprintf("bureauId: %s", bureauID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateCandidateError creates a non-retryable duplicate candidate error.
func NewDuplicateCandidateError(email, matchReason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateCandidate,
		Message:   "Candidate matches an existing protected submission",
		Details:   fmt.Sprintf("email: %s, matchReason: %s", email, matchReason),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBureauValidationFailedError creates a non-retryable onboarding validation error.
func NewBureauValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBureauValidationFailed,
		Message:   "Bureau registration data failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryLookupFailedError creates a retryable business-registry error.
func NewRegistryLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryLookupFailed,
		Message:   "Business registry lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidQueryTypeError creates a non-retryable invalid query type error.
func NewInvalidQueryTypeError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQueryType,
		Message:   "Unsupported query type",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (identical by
// convention, so workflow models can catch them by the same name).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeNoActiveMSA:                   "NO_ACTIVE_MSA",
	ErrCodeMSANotFound:                   "MSA_NOT_FOUND",
	ErrCodeMSAAlreadyDecided:             "MSA_ALREADY_DECIDED",
	ErrCodeMSARejectReasonEmpty:          "MSA_REJECT_REASON_REQUIRED",
	ErrCodeMSALookupFailed:               "MSA_LOOKUP_FAILED",
	ErrCodeTemplateNotFound:              "TEMPLATE_NOT_FOUND",
	ErrCodeContractTermsInvalid:          "CONTRACT_TERMS_INVALID",
	ErrCodeRateCardNotFound:              "RATE_CARD_NOT_FOUND",
	ErrCodeFeeStructureNotFound:          "FEE_STRUCTURE_NOT_FOUND",
	ErrCodeFeeTypeUnsupported:            "FEE_TYPE_UNSUPPORTED",
	ErrCodeWizardSessionNotFound:         "WIZARD_SESSION_NOT_FOUND",
	ErrCodeWizardEventInvalid:            "WIZARD_EVENT_INVALID",
	ErrCodeDuplicateCandidate:            "DUPLICATE_CANDIDATE",
	ErrCodeBureauValidationFailed:        "BUREAU_VALIDATION_FAILED",
	ErrCodeRegistryLookupFailed:          "REGISTRY_LOOKUP_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeInvalidQueryType:              "INVALID_QUERY_TYPE",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeMSALookupFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeRegistryLookupFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "MSA"):
		return "MSA"
	case strings.Contains(codeStr, "TEMPLATE") || strings.Contains(codeStr, "CONTRACT") || strings.Contains(codeStr, "WIZARD") || strings.Contains(codeStr, "FEE") || strings.Contains(codeStr, "RATE"):
		return "CONTRACT"
	case strings.Contains(codeStr, "CANDIDATE"):
		return "CANDIDATE"
	case strings.Contains(codeStr, "BUREAU") || strings.Contains(codeStr, "REGISTRY"):
		return "BUREAU"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
