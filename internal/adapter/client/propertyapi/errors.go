package propertyapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

const maxDetailLen = 200

// NetworkError means the request never got a response from the service.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: could not reach the property service (%s): %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response. Message holds the detail the service
// sent back, if any.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.StatusCode, e.Message)
}

// Is lets a 404 match domain.ErrPropertyNotFound.
func (e *ServerError) Is(target error) bool {
	return target == domain.ErrPropertyNotFound && e.StatusCode == http.StatusNotFound
}

func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

func newServerError(op string, status int, body []byte) *ServerError {
	return &ServerError{Op: op, StatusCode: status, Message: detail(status, body)}
}

// detail picks a human readable message out of an error body. JSON bodies
// are searched for the usual message fields; anything else is used as text.
func detail(status int, body []byte) string {
	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		for _, key := range []string{"message", "error", "title", "detail"} {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" || strings.HasPrefix(text, "{") || strings.HasPrefix(text, "<") {
		return http.StatusText(status)
	}
	if len(text) > maxDetailLen {
		text = truncate(text, maxDetailLen) + "..."
	}
	return text
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
