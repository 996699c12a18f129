package services

import (
	"time"

	"dispatch/internal/pkg/errs"
)

// Default dispatch tuning values. They mirror the marketplace's production
// settings and can be overridden through configuration.
const (
	// DefaultOrderRetryCooldown is how long the retry pass leaves an order
	// alone after its latest offer, whatever the outcome.
	DefaultOrderRetryCooldown = 2 * time.Minute

	// DefaultAgentRetryCooldown is how long an agent who already saw an
	// order is excluded from new offers for that same order.
	DefaultAgentRetryCooldown = 5 * time.Minute

	// DefaultAssignmentTimeout is how long an agent has to answer an offer
	// before it is revoked and the order reassigned.
	DefaultAssignmentTimeout = 3 * time.Minute

	// DefaultMaxRetryAttempts is the ledger length at which automatic
	// dispatch gives up and escalates the order.
	DefaultMaxRetryAttempts = 10

	// DefaultMaxConcurrentDeliveries caps how many orders an agent can hold
	// at once, counting unanswered offers.
	DefaultMaxConcurrentDeliveries = 3
)

// DispatchSettings carries the tunable policy knobs of the dispatch core.
// A zero value is not usable; obtain one from NewDispatchSettings or
// DefaultDispatchSettings.
type DispatchSettings struct {
	OrderRetryCooldown      time.Duration
	AgentRetryCooldown      time.Duration
	AssignmentTimeout       time.Duration
	MaxRetryAttempts        int
	MaxConcurrentDeliveries int
}

// DefaultDispatchSettings returns the production defaults.
func DefaultDispatchSettings() DispatchSettings {
	return DispatchSettings{
		OrderRetryCooldown:      DefaultOrderRetryCooldown,
		AgentRetryCooldown:      DefaultAgentRetryCooldown,
		AssignmentTimeout:       DefaultAssignmentTimeout,
		MaxRetryAttempts:        DefaultMaxRetryAttempts,
		MaxConcurrentDeliveries: DefaultMaxConcurrentDeliveries,
	}
}

// NewDispatchSettings validates and returns custom dispatch settings.
func NewDispatchSettings(
	orderRetryCooldown time.Duration,
	agentRetryCooldown time.Duration,
	assignmentTimeout time.Duration,
	maxRetryAttempts int,
	maxConcurrentDeliveries int,
) (DispatchSettings, error) {
	s := DispatchSettings{
		OrderRetryCooldown:      orderRetryCooldown,
		AgentRetryCooldown:      agentRetryCooldown,
		AssignmentTimeout:       assignmentTimeout,
		MaxRetryAttempts:        maxRetryAttempts,
		MaxConcurrentDeliveries: maxConcurrentDeliveries,
	}
	if err := s.Validate(); err != nil {
		return DispatchSettings{}, err
	}
	return s, nil
}

// Validate checks that every knob carries a usable value.
func (s DispatchSettings) Validate() error {
	if s.OrderRetryCooldown <= 0 {
		return errs.NewValueIsRequiredError("orderRetryCooldown")
	}
	if s.AgentRetryCooldown <= 0 {
		return errs.NewValueIsRequiredError("agentRetryCooldown")
	}
	if s.AssignmentTimeout <= 0 {
		return errs.NewValueIsRequiredError("assignmentTimeout")
	}
	if s.MaxRetryAttempts <= 0 {
		return errs.NewValueIsRequiredError("maxRetryAttempts")
	}
	if s.MaxConcurrentDeliveries <= 0 {
		return errs.NewValueIsRequiredError("maxConcurrentDeliveries")
	}
	return nil
}
