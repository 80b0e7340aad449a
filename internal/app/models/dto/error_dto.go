package dto

import "time"

// ErrorCode identifies the kind of failure in an error payload
type ErrorCode string

const (
	ErrorCodeResourceNotFound      ErrorCode = "RES_001" // no student under the id or barcode
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002" // roll or registration number taken

	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeMissingField     ErrorCode = "VAL_002" // rollNo absent on submit
	ErrorCodeBadRequest       ErrorCode = "VAL_003"

	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeStoreError     ErrorCode = "SRV_002" // document store unreachable or failing
)

// ErrorSeverity tells operators whether a failure was the caller's or ours
type ErrorSeverity string

const (
	ErrorSeverityError    ErrorSeverity = "ERROR"
	ErrorSeverityCritical ErrorSeverity = "CRITICAL"
)

// ErrorDetail is the body of the "error" key. The form pages display Message.
type ErrorDetail struct {
	Code     ErrorCode     `json:"code" example:"RES_002"`
	Message  string        `json:"message" example:"Student with Roll Number R100 already exists!"`
	Field    string        `json:"field,omitempty" example:"rollNo"`
	Severity ErrorSeverity `json:"severity" example:"ERROR"`
	Details  interface{}   `json:"details,omitempty"`
}

// ErrorResponse is returned by every failing endpoint
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	RequestID string       `json:"requestId,omitempty" example:"3f0c9a52-6a8e-4d1b-9a51-2f1f9d0e7c11"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:     code,
		Message:  message,
		Severity: ErrorSeverityError,
	}
}

// WithField names the form field the error refers to
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// NewErrorResponse wraps a detail; requestID may be empty outside a request.
func NewErrorResponse(detail *ErrorDetail, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     detail,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}

// FieldError is one failed binding rule
type FieldError struct {
	Field   string `json:"field" example:"dob"`
	Message string `json:"message" example:"dob must be a date in YYYY-MM-DD format"`
}
