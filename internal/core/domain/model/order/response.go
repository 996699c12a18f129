package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Response represents an agent's reaction to a delivery offer.
// An offer starts as pending and resolves to exactly one of accepted,
// rejected, or timeout.
type Response int

const (
	// ResponseNone indicates no offer has ever been made.
	ResponseNone Response = iota

	// ResponsePending indicates the offer is awaiting the agent's answer.
	ResponsePending

	// ResponseAccepted indicates the agent took the delivery.
	ResponseAccepted

	// ResponseRejected indicates the agent declined the offer.
	ResponseRejected

	// ResponseTimeout indicates the agent never answered within the
	// assignment timeout and the offer was revoked.
	ResponseTimeout
)

func getResponseStrings() map[Response]string {
	return map[Response]string{
		ResponseNone:     "none",
		ResponsePending:  "pending",
		ResponseAccepted: "accepted",
		ResponseRejected: "rejected",
		ResponseTimeout:  "timeout",
	}
}

// ResponseFromString parses the persisted string representation of a response.
func ResponseFromString(s string) (Response, error) {
	for response, str := range getResponseStrings() {
		if str == s {
			return response, nil
		}
	}
	return ResponseNone, errs.NewValueIsInvalidErrorWithCause(
		"response",
		fmt.Errorf("%q is not a valid agent response", s),
	)
}

// Validate checks if the Response value is part of the closed enumeration.
func (r Response) Validate() error {
	if _, ok := getResponseStrings()[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("response", fmt.Errorf("%d is not a valid response", r))
	}
	return nil
}

// String returns the persisted name of the response.
func (r Response) String() string {
	if str, ok := getResponseStrings()[r]; ok {
		return str
	}
	return "none"
}

// IsResolved reports whether the response is a final answer to an offer.
func (r Response) IsResolved() bool {
	return r == ResponseAccepted || r == ResponseRejected || r == ResponseTimeout
}
