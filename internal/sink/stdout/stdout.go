package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/szaudit/internal/model"
)

// Sink writes JSON-encoded audit events to stdout, one per line.
type Sink struct {
	enc *json.Encoder
}

// New creates a stdout sink with optional pretty-printed JSON.
func New(pretty bool) *Sink {
	return newTo(os.Stdout, pretty)
}

func newTo(w io.Writer, pretty bool) *Sink {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Sink{enc: enc}
}

func (s *Sink) Write(_ context.Context, event model.AuditEvent) error {
	if err := s.enc.Encode(event); err != nil {
		return fmt.Errorf("stdout sink: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}
