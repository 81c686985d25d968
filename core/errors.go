package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ChatErrorBadInput           = "CHAT_BAD_INPUT"
	ChatErrorProviderNotFound   = "CHAT_PROVIDER_NOT_FOUND"
	ChatErrorCredentialMissing  = "CHAT_CREDENTIAL_MISSING"
	ChatErrorCredentialRejected = "CHAT_CREDENTIAL_REJECTED"
	ChatErrorTransportFailure   = "CHAT_TRANSPORT_FAILURE"
	ChatErrorSwitchSuperseded   = "CHAT_SWITCH_SUPERSEDED"
	ChatErrorInternal           = "CHAT_INTERNAL_ERROR"
)

func chatErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureChatErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrProviderNotFound):
		return newChatError(err.Error(), goerrors.CategoryNotFound, ChatErrorProviderNotFound)
	case errors.Is(err, ErrCredentialMissing):
		return newChatError(err.Error(), goerrors.CategoryBadInput, ChatErrorCredentialMissing)
	case errors.Is(err, ErrCredentialRejected):
		return newChatError(err.Error(), goerrors.CategoryAuth, ChatErrorCredentialRejected)
	case errors.Is(err, ErrTransportFailure):
		return newChatError(err.Error(), goerrors.CategoryExternal, ChatErrorTransportFailure)
	case errors.Is(err, ErrSwitchSuperseded):
		return newChatError(err.Error(), goerrors.CategoryConflict, ChatErrorSwitchSuperseded)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "provider") && strings.Contains(msg, "not registered"):
		return newChatError(err.Error(), goerrors.CategoryNotFound, ChatErrorProviderNotFound)
	case strings.Contains(msg, "credential") && strings.Contains(msg, "missing"):
		return newChatError(err.Error(), goerrors.CategoryBadInput, ChatErrorCredentialMissing)
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "forbidden"):
		return newChatError(err.Error(), goerrors.CategoryAuth, ChatErrorCredentialRejected)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "connection refused"):
		return newChatError(err.Error(), goerrors.CategoryExternal, ChatErrorTransportFailure)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newChatError(err.Error(), goerrors.CategoryBadInput, ChatErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureChatErrorEnvelope(mapped)
}

func newChatError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureChatErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureChatErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = chatHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultChatTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultChatTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ChatErrorBadInput
	case goerrors.CategoryNotFound:
		return ChatErrorProviderNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ChatErrorCredentialRejected
	case goerrors.CategoryConflict:
		return ChatErrorSwitchSuperseded
	case goerrors.CategoryExternal:
		return ChatErrorTransportFailure
	default:
		return ChatErrorInternal
	}
}

func chatHTTPStatus(category goerrors.Category) int {
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
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
