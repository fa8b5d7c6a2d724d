package safezone

import (
	"context"

	"github.com/crimson-sun/szaudit/internal/model"
	"github.com/crimson-sun/szaudit/internal/xmltree"
)

// SafezonesNS is the vendor XML namespace for the zones listing endpoint.
// Some deployments serve the document without it, hence the bare fallback
// query below.
const SafezonesNS = "http://schemas.criticalarc.net/safezones"

// zoneQueries is the ordered candidate list for locating zone elements:
// namespace-qualified first, bare local name second. First non-empty result
// wins.
var zoneQueries = []xmltree.Query{
	{Space: SafezonesNS, Local: "safezone"},
	{Local: "safezone"},
}

// ListZones fetches the monitored zones for the client's customer. Zones are
// returned in document order. A non-2xx response yields *APIError and is
// fatal for the current run.
func (c *Client) ListZones(ctx context.Context) ([]model.Zone, error) {
	root, err := c.getXML(ctx, "/api/safezones", nil)
	if err != nil {
		return nil, err
	}

	var zones []model.Zone
	for _, el := range root.FindFirst(zoneQueries...) {
		id := el.AttrValue("id")
		if id == "" {
			continue
		}
		zones = append(zones, model.Zone{ID: id})
	}
	return zones, nil
}
