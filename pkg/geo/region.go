// Package geo holds the policy that turns a reverse-geocoder address block
// into a single administrative region name.
package geo

// Unknown is returned when neither an address field nor a display name is usable.
const Unknown = "Unknown"

// RegionFields lists the address keys consulted by ResolveRegion, highest
// priority first. Zoom level 8 lookups usually fill "state"; the rest cover
// countries whose first-level subdivision is tagged differently.
var RegionFields = []string{
	"state",
	"region",
	"county",
	"state_district",
	"province",
	"village",
}

// ResolveRegion returns the first non-empty string among RegionFields in
// address, then displayName, then Unknown. Values are returned verbatim.
func ResolveRegion(address map[string]any, displayName string) string {
	if name, ok := FirstField(address, RegionFields); ok {
		return name
	}
	if displayName != "" {
		return displayName
	}
	return Unknown
}

// FirstField evaluates keys in order and reports the first one holding a
// non-empty string value.
func FirstField(address map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		if v, ok := address[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
