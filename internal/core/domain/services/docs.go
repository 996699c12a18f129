// Package services contains stateless domain services of the dispatch core.
//
// AgentSelector encapsulates the agent-ranking policy: eligibility filtering,
// per-order agent cooldowns, nearest-by-distance ranking with a least-loaded
// fallback, and deterministic tie-breaking. DispatchSettings carries the
// tunable policy knobs (cooldowns, offer timeout, retry and capacity limits)
// shared by the selector and the application-layer dispatch passes.
//
// Services operate purely on domain aggregates and hold no infrastructure
// dependencies, keeping the ranking policy unit-testable in isolation.
package services
