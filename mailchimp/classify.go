package mailchimp

import (
	"net/http"
	"strconv"
)

// errorStatuses are the remote statuses always treated as errors.
// 404 is added unless the caller suppresses it.
var errorStatuses = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusUnauthorized:        true,
	http.StatusForbidden:           true,
	http.StatusMethodNotAllowed:    true,
	http.StatusNotAcceptable:       true,
	http.StatusUnprocessableEntity: true,
}

// Classify decides whether a remote response is a known error. It returns
// nil when it is not; shaping a success envelope is left to the caller.
// suppress404 is for lookups where absence is a valid answer.
func Classify(status int, body any, suppress404 bool) *Envelope {
	if !isErrorStatus(status, suppress404) {
		return nil
	}

	message, ok := stringField(body, "detail")
	if !ok {
		message = http.StatusText(status)
	}

	return &Envelope{
		Outcome: OutcomeError,
		Code:    ErrorCode(strconv.Itoa(status)),
		Status:  status,
		Message: message,
		Raw:     body,
	}
}

func isErrorStatus(status int, suppress404 bool) bool {
	if status == http.StatusNotFound {
		return !suppress404
	}
	return errorStatuses[status]
}
