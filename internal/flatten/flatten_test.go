package flatten

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/szaudit/internal/model"
	"github.com/crimson-sun/szaudit/internal/xmltree"
)

func parseRecord(t *testing.T, doc string) *xmltree.Element {
	t.Helper()
	root, err := xmltree.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func TestRecord_Attributes(t *testing.T) {
	el := parseRecord(t, `<record id="R1" timestamp="2024-01-01T00:00:00Z" type="alarm" service="doors"/>`)
	ev := Record(el, "Z1")

	assert.Equal(t, "Z1", ev.Source)
	assert.Equal(t, model.SourceType, ev.SourceType)
	assert.Equal(t, "2024-01-01T00:00:00Z", ev.Timestamp)
	assert.Equal(t, "R1", ev.Data["record_id"])
	assert.Equal(t, "alarm", ev.Data["type"])
	assert.Equal(t, "doors", ev.Data["service"])
	// id and timestamp do not appear under their attribute names.
	assert.NotContains(t, ev.Data, "id")
	assert.NotContains(t, ev.Data, "timestamp")
}

func TestRecord_DescAndUnknownChildren(t *testing.T) {
	el := parseRecord(t, `<record id="R1"><desc>door alarm</desc><location>lobby</location></record>`)
	ev := Record(el, "Z1")

	assert.Equal(t, "door alarm", ev.Data["description"])
	assert.Equal(t, "lobby", ev.Data["location"])
}

func TestRecord_RepeatedUnknownChildLastWins(t *testing.T) {
	el := parseRecord(t, `<record><note>first</note><note>second</note></record>`)
	ev := Record(el, "Z1")
	assert.Equal(t, "second", ev.Data["note"])
}

func TestRecord_ParamKeyPrecedence(t *testing.T) {
	el := parseRecord(t, `<record><params>
		<param name="user" tag-id="7" type="string">alice</param>
		<param tag-id="9" type="string">badge</param>
		<param name="door" type="string">north</param>
		<param type="int">42</param>
	</params></record>`)
	ev := Record(el, "Z1")

	params, ok := ev.Data["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"value": "alice", "type": "string", "name": "user", "tag_id": "7"}, params["user_7"])
	assert.Contains(t, params, "9")
	assert.Contains(t, params, "door")
	assert.Equal(t, map[string]any{"value": "42", "type": "int", "name": "", "tag_id": ""}, params["param_int"])
}

func TestRecord_ParamTypeOnlyDistinctKeys(t *testing.T) {
	el := parseRecord(t, `<record><params>
		<param type="string">a</param>
		<param type="int">1</param>
	</params></record>`)
	ev := Record(el, "Z1")

	params := ev.Data["params"].(map[string]any)
	require.Len(t, params, 2)
	assert.Contains(t, params, "param_string")
	assert.Contains(t, params, "param_int")
}

func TestRecord_ParamCollisionLastWins(t *testing.T) {
	// Two parameters with the same type and no other identity collide on
	// param_<type>; the documented behavior is that the last one wins.
	el := parseRecord(t, `<record><params>
		<param type="string">first</param>
		<param type="string">second</param>
	</params></record>`)
	ev := Record(el, "Z1")

	params := ev.Data["params"].(map[string]any)
	require.Len(t, params, 1)
	assert.Equal(t, "second", params["param_string"].(map[string]any)["value"])
}

func TestRecord_TagsOrderedSkippingEmpty(t *testing.T) {
	el := parseRecord(t, `<record><tags><tag>fire</tag><tag></tag><tag>exit</tag></tags></record>`)
	ev := Record(el, "Z1")
	assert.Equal(t, []string{"fire", "exit"}, ev.Data["tags"])
}

func TestRecord_NamespacedAndBareAreEquivalent(t *testing.T) {
	const inner = `<record id="R1" timestamp="2024-01-01T00:00:00Z" type="alarm">
		<desc>door alarm</desc>
		<params><param name="user" tag-id="7" type="string">alice</param></params>
		<tags><tag>fire</tag></tags>
		<extra>value</extra>
	</record>`

	bare := Record(parseRecord(t, inner), "Z1")
	wrapped := parseRecord(t, fmt.Sprintf(`<records xmlns=%q>%s</records>`, "http://schemas.criticalarc.net/audit", inner))
	namespaced := Record(wrapped.Children[0], "Z1")

	bareJSON, err := json.Marshal(bare.Data)
	require.NoError(t, err)
	nsJSON, err := json.Marshal(namespaced.Data)
	require.NoError(t, err)
	assert.Equal(t, string(bareJSON), string(nsJSON))
}

func TestRecord_Idempotent(t *testing.T) {
	el := parseRecord(t, `<record id="R1" timestamp="t"><desc>x</desc><tags><tag>a</tag></tags></record>`)
	first := Record(el, "Z1")
	second := Record(el, "Z1")
	assert.Equal(t, first, second)
}

func TestRecord_DataIsJSONSerializable(t *testing.T) {
	el := parseRecord(t, `<record id="R1" timestamp="2024-01-01T00:00:00Z">
		<desc>d</desc>
		<params><param type="string">v</param></params>
		<tags><tag>t</tag></tags>
		<other>o</other>
	</record>`)
	ev := Record(el, "Z1")
	_, err := json.Marshal(ev.Data)
	require.NoError(t, err)
}

func TestRecord_EmptyTagsYieldEmptyList(t *testing.T) {
	el := parseRecord(t, `<record><tags></tags></record>`)
	ev := Record(el, "Z1")
	assert.Equal(t, []string{}, ev.Data["tags"])
}
