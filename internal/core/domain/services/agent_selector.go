package services

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// ErrNoEligibleAgent is returned when no agent in the candidate pool can take
// the order. Retry-pass callers treat it as a normal outcome: the order stays
// pending until a later pass or escalation.
var ErrNoEligibleAgent = errors.New("no eligible delivery agent found")

// AgentSelector is a domain service that picks the best delivery agent for an
// order from a candidate pool.
//
// Selection policy:
//   - Only eligible agents with spare capacity are considered.
//   - Agents who saw this order within the agent cooldown are excluded,
//     as are agents the caller explicitly excludes.
//   - Among located agents the one closest to the order's pickup point wins.
//   - A located agent always beats an agent with no reported position.
//   - When nobody can be ranked by distance, the least-loaded agent wins,
//     with the lexically smaller agent ID breaking exact ties so the choice
//     is deterministic.
type AgentSelector struct {
	settings DispatchSettings
}

// NewAgentSelector creates an AgentSelector with the given policy settings.
func NewAgentSelector(settings DispatchSettings) (AgentSelector, error) {
	if err := settings.Validate(); err != nil {
		return AgentSelector{}, err
	}
	return AgentSelector{settings: settings}, nil
}

// Select picks the best agent for the order, or ErrNoEligibleAgent when the
// pool offers nobody. Agents listed in exclude never win, whatever their
// standing; the reject flow uses this to avoid re-offering to the agent who
// just declined.
func (s AgentSelector) Select(
	o *order.Order,
	candidates []*agent.DeliveryAgent,
	now time.Time,
	exclude ...kernel.UUID,
) (*agent.DeliveryAgent, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	eligible := s.EligibleAgents(o, candidates, now, exclude...)
	if len(eligible) == 0 {
		return nil, ErrNoEligibleAgent
	}

	pickup, hasPickup := o.PickupPoint()

	var best *agent.DeliveryAgent
	bestDistance := 0.0
	bestLocated := false

	for _, candidate := range eligible {
		located := false
		distance := 0.0
		if hasPickup && candidate.Location() != nil {
			if d, ok := candidate.Location().DistanceTo(pickup); ok {
				located = true
				distance = d
			}
		}

		if best == nil || closer(candidate, located, distance, best, bestLocated, bestDistance) {
			best = candidate
			bestLocated = located
			bestDistance = distance
		}
	}

	return best, nil
}

// EligibleAgents filters the candidate pool down to agents dispatch may offer
// this order to right now.
func (s AgentSelector) EligibleAgents(
	o *order.Order,
	candidates []*agent.DeliveryAgent,
	now time.Time,
	exclude ...kernel.UUID,
) []*agent.DeliveryAgent {
	eligible := make([]*agent.DeliveryAgent, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate == nil || candidate.Validate() != nil {
			continue
		}
		if !candidate.CanAcceptOffer(s.settings.MaxConcurrentDeliveries) {
			continue
		}
		if isExcluded(candidate.ID(), exclude) {
			continue
		}
		if o.WasOfferedWithin(candidate.ID(), s.settings.AgentRetryCooldown, now) {
			continue
		}
		eligible = append(eligible, candidate)
	}

	return eligible
}

// closer reports whether candidate should replace the current best pick.
func closer(
	candidate *agent.DeliveryAgent, candidateLocated bool, candidateDistance float64,
	best *agent.DeliveryAgent, bestLocated bool, bestDistance float64,
) bool {
	if candidateLocated != bestLocated {
		return candidateLocated
	}
	if candidateLocated {
		if candidateDistance != bestDistance {
			return candidateDistance < bestDistance
		}
		return tieBreak(candidate, best)
	}
	if candidate.AssignedOrders() != best.AssignedOrders() {
		return candidate.AssignedOrders() < best.AssignedOrders()
	}
	return tieBreak(candidate, best)
}

func tieBreak(candidate, best *agent.DeliveryAgent) bool {
	return candidate.ID().String() < best.ID().String()
}

func isExcluded(id kernel.UUID, exclude []kernel.UUID) bool {
	for _, e := range exclude {
		if id.IsEqual(e) {
			return true
		}
	}
	return false
}
