package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeValidation is used for request field validation failures
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInvalidDocument is used when a document fails integrity validation
	ErrCodeInvalidDocument = "ERR_INVALID_DOCUMENT"
	// ErrCodeInvalidTolerance is used when the tolerance configuration is unusable
	ErrCodeInvalidTolerance = "ERR_INVALID_TOLERANCE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeInvalidDocument:  http.StatusUnprocessableEntity,
	ErrCodeInvalidTolerance: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to API error codes.
// Document integrity rejections are all surfaced as ERR_INVALID_DOCUMENT.
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":     ErrCodeNotFound,
	"INVALID_INPUT": ErrCodeInvalidInput,
	"INVALID_STATE": ErrCodeInvalidState,

	"INVALID_DOCUMENT":       ErrCodeInvalidDocument,
	"INVALID_PO":             ErrCodeInvalidDocument,
	"INVALID_PO_NUMBER":      ErrCodeInvalidDocument,
	"INVALID_RECEIPT":        ErrCodeInvalidDocument,
	"INVALID_RECEIPT_NUMBER": ErrCodeInvalidDocument,
	"INVALID_INVOICE":        ErrCodeInvalidDocument,
	"INVALID_INVOICE_NUMBER": ErrCodeInvalidDocument,
	"INVALID_VENDOR":         ErrCodeInvalidDocument,
	"INVALID_STATUS":         ErrCodeInvalidDocument,
	"INVALID_ITEM":           ErrCodeInvalidDocument,
	"INVALID_QUANTITY":       ErrCodeInvalidDocument,
	"INVALID_PRICE":          ErrCodeInvalidDocument,
	"INVALID_TAX":            ErrCodeInvalidDocument,
	"INVALID_SHIPPING":       ErrCodeInvalidDocument,

	"INVALID_TOLERANCE": ErrCodeInvalidTolerance,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is and map to 500.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
