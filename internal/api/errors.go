package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// APIError is a non-2xx response from the server. Code carries the short
// machine error code when the body has one, Message the human message.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	case e.Code != "":
		return fmt.Sprintf("api: %s (status %d)", e.Code, e.Status)
	default:
		return fmt.Sprintf("api: status %d", e.Status)
	}
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	// Error bodies come in two shapes: {"error": "code"} and
	// {"message": "text"}. Anything else is kept as the bare status.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		apiErr.Code = parsed.Error
		apiErr.Message = parsed.Message
	}
	return apiErr
}
