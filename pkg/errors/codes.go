package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Aliases used by call sites that predate the prefixed names.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Data Source Error Codes
const (
	ErrCodeDataSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeDataSourceParseError  ErrorCode = "SRC_004"
)

// Aggregation Error Codes
const (
	ErrCodeDataConsistency    ErrorCode = "AGG_001"
	ErrCodeInvariantViolation ErrorCode = "AGG_002"
)

// Import Error Codes
const (
	ErrCodeImportLocked    ErrorCode = "IMP_001"
	ErrCodeSinkUnknown     ErrorCode = "IMP_002"
	ErrCodeSinkWriteFailed ErrorCode = "IMP_003"
	ErrCodeExportRejected  ErrorCode = "IMP_004"
)

// CodeMalformedRecord is the code carried by every rejected input line.
const CodeMalformedRecord = ErrCodeDataSourceParseError

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeDataSourceUnavailable: http.StatusServiceUnavailable,
	ErrCodeDataSourceParseError:  http.StatusUnprocessableEntity,

	ErrCodeDataConsistency:    http.StatusInternalServerError,
	ErrCodeInvariantViolation: http.StatusInternalServerError,

	ErrCodeImportLocked:    http.StatusConflict,
	ErrCodeSinkUnknown:     http.StatusBadRequest,
	ErrCodeSinkWriteFailed: http.StatusBadGateway,
	ErrCodeExportRejected:  http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",

	ErrCodeDataSourceUnavailable: "data source unavailable",
	ErrCodeDataSourceParseError:  "malformed record in data source",

	ErrCodeDataConsistency:    "aggregation data inconsistent",
	ErrCodeInvariantViolation: "aggregation invariant violated",

	ErrCodeImportLocked:    "another import holds the lock",
	ErrCodeSinkUnknown:     "unknown concept sink",
	ErrCodeSinkWriteFailed: "concept sink write failed",
	ErrCodeExportRejected:  "exported documents rejected",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsFatalForImport reports whether an error with this code must abort the
// whole concept stream. Every aggregation and parse failure is fatal.
func IsFatalForImport(code ErrorCode) bool {
	switch ModuleForCode(code) {
	case "AGG", "SRC", "IMP":
		return true
	}
	return code == ErrCodeInternal
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
