// Package agent provides the DeliveryAgent aggregate root: the courier-side
// model of the dispatch core. It tracks the eligibility flags dispatch
// filters on, the agent's last reported position, and the workload counters
// that bound how many concurrent orders an agent can hold.
package agent
