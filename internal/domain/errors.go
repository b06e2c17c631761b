package domain

import "net/http"

// ErrorCode is a stable machine-readable error identifier surfaced to API
// clients. Codes never carry internal detail.
type ErrorCode string

const (
	CodeInvalidCredentials      ErrorCode = "INVALID_CREDENTIALS"
	CodeUserAlreadyExists       ErrorCode = "USER_ALREADY_EXISTS"
	CodeInvalidToken            ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired            ErrorCode = "TOKEN_EXPIRED"
	CodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"
	CodeRateLimitExceeded       ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeOrganizationNotFound    ErrorCode = "ORGANIZATION_NOT_FOUND"
	CodeSessionInvalidated      ErrorCode = "SESSION_INVALIDATED"
	CodeSessionStorageFailed    ErrorCode = "SESSION_STORAGE_FAILED"
	CodeWeakPassword            ErrorCode = "WEAK_PASSWORD"
	CodeInvalidEmail            ErrorCode = "INVALID_EMAIL"
	CodeAccountDisabled         ErrorCode = "ACCOUNT_DISABLED"
)

// AuthError is a typed failure carrying the API error code and HTTP status.
type AuthError struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *AuthError) Error() string { return string(e.Code) + ": " + e.Message }

// Is makes two AuthErrors with the same code equal under errors.Is, so
// sentinel values below can be matched against wrapped copies.
func (e *AuthError) Is(target error) bool {
	other, ok := target.(*AuthError)
	return ok && other.Code == e.Code
}

// Sentinel errors for the auth flows. Handlers map them to responses by code;
// anything unmatched collapses to a generic 500.
var (
	ErrInvalidCredentials = &AuthError{Code: CodeInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrUserAlreadyExists  = &AuthError{Code: CodeUserAlreadyExists, Status: http.StatusConflict, Message: "User already exists"}
	ErrInvalidToken       = &AuthError{Code: CodeInvalidToken, Status: http.StatusUnauthorized, Message: "Invalid token"}
	ErrTokenExpired       = &AuthError{Code: CodeTokenExpired, Status: http.StatusUnauthorized, Message: "Token expired"}
	ErrSessionInvalidated = &AuthError{Code: CodeSessionInvalidated, Status: http.StatusUnauthorized, Message: "Session invalidated"}
	ErrSessionStorage     = &AuthError{Code: CodeSessionStorageFailed, Status: http.StatusInternalServerError, Message: "Session storage failed"}
	ErrAccountDisabled    = &AuthError{Code: CodeAccountDisabled, Status: http.StatusUnauthorized, Message: "Account disabled"}
	ErrOrganizationNotFound = &AuthError{Code: CodeOrganizationNotFound, Status: http.StatusUnauthorized, Message: "Organization not found or inactive"}
)
