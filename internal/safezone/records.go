package safezone

import (
	"context"
	"net/url"
	"time"

	"github.com/crimson-sun/szaudit/internal/xmltree"
)

// AuditNS is the vendor XML namespace for the audit records endpoint.
const AuditNS = "http://schemas.criticalarc.net/audit"

// windowTimeFormat is the from/to wire format the audit endpoint expects:
// UTC with millisecond precision. It must match the vendor byte-for-byte, so
// keep it in one place.
const windowTimeFormat = "2006-01-02T15:04:05.000Z"

// recordQueries is the ordered candidate list for locating record elements,
// mirroring the zones listing strategy.
var recordQueries = []xmltree.Query{
	{Space: AuditNS, Local: "record"},
	{Local: "record"},
}

// FormatWindowTime renders a window bound in the vendor's from/to format.
func FormatWindowTime(t time.Time) string {
	return t.UTC().Format(windowTimeFormat)
}

// FetchRecords fetches the audit records for one zone within [start, end).
// Records are returned in document order as raw elements; flattening is the
// caller's concern. A non-2xx response yields *APIError and is fatal for the
// current run.
func (c *Client) FetchRecords(ctx context.Context, zoneID string, start, end time.Time) ([]*xmltree.Element, error) {
	query := url.Values{
		"from": {FormatWindowTime(start)},
		"to":   {FormatWindowTime(end)},
	}
	path := "/api/audit/" + url.PathEscape(zoneID) + "/records"

	root, err := c.getXML(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return root.FindFirst(recordQueries...), nil
}
