package errors

import "net/http"

// FromUpstreamStatus maps an upstream HTTP status to a project error.
// what names the upstream call for the message, e.g. "drs object fetch"
func FromUpstreamStatus(status int, what string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Newf(ErrorCodeUpstream, "%s denied with status %d", what, status)
	case status == http.StatusNotFound:
		return Newf(ErrorCodeNotFound, "%s returned not found", what)
	case status == http.StatusTooManyRequests:
		return Newf(ErrorCodeTooManyRequests, "%s rate limited", what)
	case status >= 500:
		return Newf(ErrorCodeUpstream, "%s failed with status %d", what, status)
	default:
		return Newf(ErrorCodeUpstream, "%s unexpected status %d", what, status)
	}
}

// IsRetryable reports whether err represents a transient condition where a
// caller-initiated retry may succeed
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	case ErrorCodeUpstream:
		// upstream 5xx wrapped by FromUpstreamStatus
		return true
	default:
		return false
	}
}
