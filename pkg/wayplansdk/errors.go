package wayplansdk

import "fmt"

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string              `json:"error"`
	Message    string              `json:"message"`
	Fields     map[string][]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wayplan: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("wayplan: %s (http %d)", e.Code, e.StatusCode)
}

// Is reports whether the target is an APIError with the same code, so
// callers can match on errors.Is(err, &APIError{Code: "invalid_credentials"}).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.StatusCode == 0 || t.StatusCode == e.StatusCode)
}
