package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	CredentialsErrorInvalidRequest = "CREDENTIALS_INVALID_REQUEST"
	CredentialsErrorNotFound       = "CREDENTIALS_NOT_FOUND"
	CredentialsErrorRepository     = "CREDENTIALS_REPOSITORY_ERROR"
	CredentialsErrorUnknown        = "CREDENTIALS_UNKNOWN"
)

// NewInvalidRequestError builds the rejection returned when caller input is
// malformed or a provider does not support the requested credential type.
func NewInvalidRequestError(message string) *goerrors.Error {
	return newCredentialsError(message, goerrors.CategoryBadInput, CredentialsErrorInvalidRequest)
}

func NewNotFoundError(message string) *goerrors.Error {
	return newCredentialsError(message, goerrors.CategoryNotFound, CredentialsErrorNotFound)
}

// NewRepositoryError wraps a storage failure with operation context.
func NewRepositoryError(operation string, cause error) *goerrors.Error {
	message := "core: " + strings.TrimSpace(operation) + " failed"
	return ensureCredentialsErrorEnvelope(
		goerrors.Wrap(cause, goerrors.CategoryOperation, message).
			WithTextCode(CredentialsErrorRepository),
	)
}

func NewUnknownError(message string, cause error) *goerrors.Error {
	if cause == nil {
		return newCredentialsError(message, goerrors.CategoryInternal, CredentialsErrorUnknown)
	}
	return ensureCredentialsErrorEnvelope(
		goerrors.Wrap(cause, goerrors.CategoryInternal, message).
			WithTextCode(CredentialsErrorUnknown),
	)
}

func IsInvalidRequest(err error) bool {
	return errorHasCategory(err, goerrors.CategoryBadInput, goerrors.CategoryValidation)
}

func IsNotFound(err error) bool {
	return errorHasCategory(err, goerrors.CategoryNotFound)
}

func errorHasCategory(err error, categories ...goerrors.Category) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	for _, category := range categories {
		if richErr.Category == category {
			return true
		}
	}
	return false
}

func credentialsErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureCredentialsErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "unsupported credential type"),
		strings.Contains(msg, "unsupported user credential type"):
		return newCredentialsError(err.Error(), goerrors.CategoryBadInput, CredentialsErrorInvalidRequest)
	case strings.Contains(msg, "not found"):
		return newCredentialsError(err.Error(), goerrors.CategoryNotFound, CredentialsErrorNotFound)
	case strings.Contains(msg, "decode credential payload"),
		strings.Contains(msg, "unknown credential type"):
		return newCredentialsError(err.Error(), goerrors.CategoryInternal, CredentialsErrorUnknown)
	case strings.Contains(msg, "sqlstore:"), strings.Contains(msg, "repository"):
		return newCredentialsError(err.Error(), goerrors.CategoryOperation, CredentialsErrorRepository)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newCredentialsError(err.Error(), goerrors.CategoryBadInput, CredentialsErrorInvalidRequest)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureCredentialsErrorEnvelope(mapped)
}

func newCredentialsError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureCredentialsErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureCredentialsErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = credentialsHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultCredentialsTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultCredentialsTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return CredentialsErrorInvalidRequest
	case goerrors.CategoryNotFound:
		return CredentialsErrorNotFound
	case goerrors.CategoryOperation, goerrors.CategoryExternal:
		return CredentialsErrorRepository
	default:
		return CredentialsErrorUnknown
	}
}

func credentialsHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
