package model

// Zone is a monitored safezone as returned by the zones listing endpoint.
// Only the identity is kept; zones are transient and never persisted.
type Zone struct {
	ID string
}
