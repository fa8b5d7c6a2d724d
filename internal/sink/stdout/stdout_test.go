package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/crimson-sun/szaudit/internal/model"
)

func TestWrite_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	s := newTo(&buf, false)

	epoch := 1704067200.0
	events := []model.AuditEvent{
		{Time: &epoch, Source: "Z1", SourceType: model.SourceType, Index: "main", Data: map[string]any{"record_id": "R1"}},
		{Source: "Z2", SourceType: model.SourceType, Data: map[string]any{"record_id": "R2"}},
	}
	for _, ev := range events {
		if err := s.Write(context.Background(), ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if first["source"] != "Z1" || first["time"] != epoch {
		t.Fatalf("unexpected first line: %v", first)
	}
	if first["event"].(map[string]any)["record_id"] != "R1" {
		t.Fatalf("unexpected event payload: %v", first["event"])
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	// Unparseable time is omitted, not zero.
	if _, present := second["time"]; present {
		t.Fatalf("expected time omitted, got %v", second["time"])
	}
}

func TestClose_Noop(t *testing.T) {
	if err := New(false).Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
