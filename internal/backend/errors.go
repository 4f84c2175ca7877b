package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error is the single uniform error returned for every failed backend
// call. Message is always human-readable and safe to render inline next
// to the form or action that triggered the call; callers never branch
// on the raw HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// errorBody mirrors the two message shapes the backend emits: a
// "detail" field (checked first) or a "message" field.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// parseError reads the body of a non-2xx response and translates it into
// an *Error. The body is fully consumed. If no parseable message field is
// present the message falls back to "Error <status>".
func parseError(resp *http.Response) error {
	msg := fmt.Sprintf("Error %d", resp.StatusCode)

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err == nil {
		var body errorBody
		if json.Unmarshal(bodyBytes, &body) == nil {
			switch {
			case body.Detail != "":
				msg = body.Detail
			case body.Message != "":
				msg = body.Message
			}
		}
	}

	return &Error{Status: resp.StatusCode, Message: msg}
}

// IsUnauthorized reports whether err is a backend rejection of the
// caller's credentials (401). The session layer clears the stored token
// when this is true.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusUnauthorized
}
