package location

import (
	"encoding/json"

	"statefinder/pkg/geo"
)

// ReverseResponse keeps the parts of a Nominatim jsonv2 reverse response the
// region policy reads. Address values stay untyped; mirrors and compatible
// services occasionally send numbers.
type ReverseResponse struct {
	DisplayName string
	Address     map[string]any
}

// UnmarshalJSON ignores every other field, and an address or display_name of
// the wrong type is treated as absent.
func (r *ReverseResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Address     json.RawMessage `json:"address"`
		DisplayName json.RawMessage `json:"display_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = ReverseResponse{}
	if len(raw.Address) > 0 {
		var address map[string]any
		if json.Unmarshal(raw.Address, &address) == nil {
			r.Address = address
		}
	}
	if len(raw.DisplayName) > 0 {
		var name string
		if json.Unmarshal(raw.DisplayName, &name) == nil {
			r.DisplayName = name
		}
	}
	return nil
}

// Region resolves the state-level name of the place.
func (r *ReverseResponse) Region() string {
	if r == nil {
		return geo.Unknown
	}
	return geo.ResolveRegion(r.Address, r.DisplayName)
}
