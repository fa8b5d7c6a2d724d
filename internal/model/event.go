package model

// SourceType is the sourcetype stamped on every emitted audit event.
const SourceType = "safezone:audit"

// AuditEvent is the normalized form of one vendor audit record, ready for
// emission to a sink. Data holds the flattened record and must stay
// JSON-serializable; nothing XML-specific may leak into it.
type AuditEvent struct {
	// Timestamp is the raw vendor timestamp string from the record. It is
	// converted to Time at emission, not here, so flattening stays pure.
	Timestamp string `json:"-"`

	// Time is the event time in epoch seconds. Nil when the raw timestamp
	// could not be parsed; the sink then assigns ingestion time.
	Time *float64 `json:"time,omitempty"`

	Source     string         `json:"source"`
	SourceType string         `json:"sourcetype"`
	Index      string         `json:"index,omitempty"`
	Data       map[string]any `json:"event"`
}
