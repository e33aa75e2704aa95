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
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_003"
	ErrCodeConflict        ErrorCode = "COMMON_004"
	ErrCodeValidation      ErrorCode = "COMMON_005"
	ErrCodeSerialization   ErrorCode = "COMMON_006"
	ErrCodeDatabaseError   ErrorCode = "COMMON_007"
	ErrCodeCacheError      ErrorCode = "COMMON_008"
	ErrCodeMessagingError  ErrorCode = "COMMON_009"
	ErrCodeNotImplemented  ErrorCode = "COMMON_010"
	ErrCodeTimeout         ErrorCode = "COMMON_011"
	ErrCodeExternalService ErrorCode = "COMMON_012"
)

// Aliases used throughout the codebase for readability.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeDatabaseError  = ErrCodeDatabaseError
	CodeCacheError     = ErrCodeCacheError
	CodeMessagingError = ErrCodeMessagingError
	CodeNotImplemented = ErrCodeNotImplemented
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeOK             = ErrorCode("OK")
)

// Molecular Graph Error Codes
const (
	ErrCodeGraphAtomNotFound    ErrorCode = "GRAPH_001"
	ErrCodeGraphBondNotFound    ErrorCode = "GRAPH_002"
	ErrCodeGraphSelfBond        ErrorCode = "GRAPH_003"
	ErrCodeGraphEmptyMolecule   ErrorCode = "GRAPH_004"
	ErrCodeGraphInvalidDocument ErrorCode = "GRAPH_005"
)

// Valence / Structural Analysis Error Codes
const (
	ErrCodeValenceExceeded       ErrorCode = "VAL_001"
	ErrCodeValenceUnknownElement ErrorCode = "VAL_002"
	ErrCodeChargeImbalance       ErrorCode = "VAL_003"
)

// Reaction Error Codes
const (
	ErrCodeReactionNoMolecule       ErrorCode = "RXN_001"
	ErrCodeReactionNoReagents       ErrorCode = "RXN_002"
	ErrCodeReactionUnknownCategory  ErrorCode = "RXN_003"
	ErrCodeReactionReagentMismatch  ErrorCode = "RXN_004"
	ErrCodeReactionGroupMissing     ErrorCode = "RXN_005"
	ErrCodeReactionConditionMissing ErrorCode = "RXN_006"
	ErrCodeReactionIncompatible     ErrorCode = "RXN_007"
	ErrCodeReactionRewriteFailed    ErrorCode = "RXN_008"
	ErrCodeReactionNotValidated     ErrorCode = "RXN_009"
)

// Format / Codec Error Codes
const (
	ErrCodeFormatInvalidSMILES ErrorCode = "FMT_001"
	ErrCodeFormatInvalidSDF    ErrorCode = "FMT_002"
	ErrCodeFormatUnsupported   ErrorCode = "FMT_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeValidation:      http.StatusUnprocessableEntity,
	ErrCodeSerialization:   http.StatusInternalServerError,
	ErrCodeDatabaseError:   http.StatusInternalServerError,
	ErrCodeCacheError:      http.StatusInternalServerError,
	ErrCodeMessagingError:  http.StatusInternalServerError,
	ErrCodeNotImplemented:  http.StatusNotImplemented,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeExternalService: http.StatusBadGateway,

	ErrCodeGraphAtomNotFound:    http.StatusNotFound,
	ErrCodeGraphBondNotFound:    http.StatusNotFound,
	ErrCodeGraphSelfBond:        http.StatusBadRequest,
	ErrCodeGraphEmptyMolecule:   http.StatusBadRequest,
	ErrCodeGraphInvalidDocument: http.StatusBadRequest,

	ErrCodeValenceExceeded:       http.StatusUnprocessableEntity,
	ErrCodeValenceUnknownElement: http.StatusUnprocessableEntity,
	ErrCodeChargeImbalance:       http.StatusUnprocessableEntity,

	ErrCodeReactionNoMolecule:       http.StatusBadRequest,
	ErrCodeReactionNoReagents:       http.StatusBadRequest,
	ErrCodeReactionUnknownCategory:  http.StatusUnprocessableEntity,
	ErrCodeReactionReagentMismatch:  http.StatusUnprocessableEntity,
	ErrCodeReactionGroupMissing:     http.StatusUnprocessableEntity,
	ErrCodeReactionConditionMissing: http.StatusUnprocessableEntity,
	ErrCodeReactionIncompatible:     http.StatusUnprocessableEntity,
	ErrCodeReactionRewriteFailed:    http.StatusInternalServerError,
	ErrCodeReactionNotValidated:     http.StatusConflict,

	ErrCodeFormatInvalidSMILES: http.StatusBadRequest,
	ErrCodeFormatInvalidSDF:    http.StatusBadRequest,
	ErrCodeFormatUnsupported:   http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:        "internal error",
	ErrCodeBadRequest:      "bad request",
	ErrCodeNotFound:        "resource not found",
	ErrCodeConflict:        "resource conflict",
	ErrCodeValidation:      "validation failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeDatabaseError:   "database error",
	ErrCodeCacheError:      "cache error",
	ErrCodeMessagingError:  "messaging error",
	ErrCodeNotImplemented:  "not implemented",
	ErrCodeTimeout:         "request timeout",
	ErrCodeExternalService: "external service error",

	ErrCodeGraphAtomNotFound:    "atom not found in graph",
	ErrCodeGraphBondNotFound:    "bond not found in graph",
	ErrCodeGraphSelfBond:        "bond cannot connect an atom to itself",
	ErrCodeGraphEmptyMolecule:   "molecule has no atoms",
	ErrCodeGraphInvalidDocument: "invalid molecule document",

	ErrCodeValenceExceeded:       "atom exceeds allowed valence",
	ErrCodeValenceUnknownElement: "element not present in valence table",
	ErrCodeChargeImbalance:       "molecule is not charge balanced",

	ErrCodeReactionNoMolecule:       "no molecule supplied",
	ErrCodeReactionNoReagents:       "no reagents supplied",
	ErrCodeReactionUnknownCategory:  "reaction category could not be determined",
	ErrCodeReactionReagentMismatch:  "supplied reagents do not match category requirements",
	ErrCodeReactionGroupMissing:     "required functional group not present",
	ErrCodeReactionConditionMissing: "required reaction conditions not satisfied",
	ErrCodeReactionIncompatible:     "incompatible reagent/condition combination",
	ErrCodeReactionRewriteFailed:    "transformation rewrite failed",
	ErrCodeReactionNotValidated:     "reaction has not been validated",

	ErrCodeFormatInvalidSMILES: "invalid SMILES input",
	ErrCodeFormatInvalidSDF:    "invalid SDF input",
	ErrCodeFormatUnsupported:   "unsupported molecule format",
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

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
