package transport

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// CredentialStatus interprets a validation probe result. A 2xx means the key
// was accepted, 401 and 403 mean the remote explicitly rejected it, and any
// other status is a transport-level failure the caller must not treat as a
// verdict on the key.
func CredentialStatus(res Response, providerID string) (bool, error) {
	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return true, nil
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, StatusError(res, providerID)
	}
}

// StatusError converts a non-2xx reply into an error envelope keyed off the
// status code class.
func StatusError(res Response, providerID string) error {
	message := fmt.Sprintf("transport: %s returned status %d", strings.TrimSpace(providerID), res.StatusCode)
	metadata := map[string]any{
		"provider_id": strings.TrimSpace(providerID),
		"status_code": res.StatusCode,
	}
	if snippet := bodySnippet(res.Body); snippet != "" {
		metadata["body"] = snippet
	}

	category := goerrors.CategoryExternal
	switch {
	case res.StatusCode == http.StatusUnauthorized:
		category = goerrors.CategoryAuth
	case res.StatusCode == http.StatusForbidden:
		category = goerrors.CategoryAuthz
	case res.StatusCode == http.StatusTooManyRequests:
		category = goerrors.CategoryRateLimit
	case res.StatusCode >= 400 && res.StatusCode < 500:
		category = goerrors.CategoryBadInput
	}
	return transportError(message, category, res.StatusCode, metadata)
}

func bodySnippet(body []byte) string {
	const max = 256
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > max {
		trimmed = trimmed[:max]
	}
	return trimmed
}
