// Package flatten converts raw audit-record XML elements into normalized
// audit events. Flattening is pure: no I/O, no clock, and running it twice
// on the same element yields equal output.
package flatten

import (
	"github.com/crimson-sun/szaudit/internal/model"
	"github.com/crimson-sun/szaudit/internal/xmltree"
)

// handler processes one child element of a record into the data map.
type handler func(data map[string]any, el *xmltree.Element)

// childHandlers dispatches on the child's local tag name, so namespaced and
// unnamespaced documents flatten identically. Tags not listed here fall
// through to defaultChild.
var childHandlers = map[string]handler{
	"desc":   descChild,
	"params": paramsChild,
	"tags":   tagsChild,
}

// Record flattens one raw audit record into an event sourced from the given
// zone. The record's id attribute becomes data.record_id; the timestamp
// attribute becomes the event's raw timestamp (converted to epoch at
// emission); every other attribute is copied to the data top level by name.
func Record(el *xmltree.Element, zoneID string) model.AuditEvent {
	data := make(map[string]any)

	var rawTimestamp string
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "id":
			data["record_id"] = a.Value
		case "timestamp":
			rawTimestamp = a.Value
		default:
			data[a.Name.Local] = a.Value
		}
	}

	for _, child := range el.Children {
		h, ok := childHandlers[child.Local]
		if !ok {
			h = defaultChild
		}
		h(data, child)
	}

	return model.AuditEvent{
		Timestamp:  rawTimestamp,
		Source:     zoneID,
		SourceType: model.SourceType,
		Data:       data,
	}
}

func descChild(data map[string]any, el *xmltree.Element) {
	data["description"] = el.Text
}

// paramsChild maps each parameter to a derived key. Key precedence:
// name_tagid when both are present, else tagid, else name, else
// "param_<type>". Colliding keys silently overwrite, last one wins; a
// documented limitation, not corrected here.
func paramsChild(data map[string]any, el *xmltree.Element) {
	params := make(map[string]any, len(el.Children))
	for _, p := range el.Children {
		name := p.AttrValue("name")
		tagID := p.AttrValue("tag-id")
		typ := p.AttrValue("type")

		var key string
		switch {
		case name != "" && tagID != "":
			key = name + "_" + tagID
		case tagID != "":
			key = tagID
		case name != "":
			key = name
		default:
			key = "param_" + typ
		}

		params[key] = map[string]any{
			"value":  p.Text,
			"type":   typ,
			"name":   name,
			"tag_id": tagID,
		}
	}
	data["params"] = params
}

// tagsChild collects tag texts in document order, skipping empty ones.
func tagsChild(data map[string]any, el *xmltree.Element) {
	tags := []string{}
	for _, t := range el.Children {
		if t.Text == "" {
			continue
		}
		tags = append(tags, t.Text)
	}
	data["tags"] = tags
}

// defaultChild copies unrecognized children by local tag name, last wins on
// repeats.
func defaultChild(data map[string]any, el *xmltree.Element) {
	data[el.Local] = el.Text
}
