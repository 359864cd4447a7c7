package backend

import "errors"

// Failure taxonomy. The client wraps every failure in one of these so the
// log line can name its kind; none of them ever reach the caller.
var (
	// ErrNetwork means the request could not be sent or the response could
	// not be read.
	ErrNetwork = errors.New("network failure")

	// ErrHTTPStatus means the backend answered with a non-2xx status.
	ErrHTTPStatus = errors.New("http error")

	// ErrMalformed means the body was not JSON or lacked required fields.
	ErrMalformed = errors.New("malformed response")
)

// failureKind names the taxonomy bucket of err for structured logging.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
