package profile

import (
	"encoding/json"
	"strings"
)

// LocationKind tags which legacy wire shape a LocationFix was built from.
type LocationKind string

const (
	LocationKindCoordinates LocationKind = "coordinates" // lat/lng pair
	LocationKindAddress     LocationKind = "address"     // free-form address string
)

// LocationFix is the one canonical location shape. The backend has shipped
// three historical encodings ({lat,lng} object, [lat,lng] array, bare
// address string); NormalizeLocation folds all of them into this union so
// "has location" is answered in exactly one place.
type LocationFix struct {
	Kind    LocationKind `json:"kind"`
	Lat     float64      `json:"lat,omitempty"`
	Lng     float64      `json:"lng,omitempty"`
	Address string       `json:"address,omitempty"`
}

// Usable reports whether the fix actually carries a location.
func (f *LocationFix) Usable() bool {
	if f == nil {
		return false
	}
	switch f.Kind {
	case LocationKindCoordinates:
		return true
	case LocationKindAddress:
		return strings.TrimSpace(f.Address) != ""
	}
	return false
}

// NormalizeLocation adapts any of the legacy profile location shapes into a
// canonical LocationFix. Recognised inputs:
//
//   - map with "lat" and "lng" (or "latitude"/"longitude") numbers
//   - map with a "coordinates" two-element array
//   - two-element numeric array
//   - non-empty string address
//
// Returns false for anything else, including nil.
func NormalizeLocation(raw interface{}) (*LocationFix, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case *LocationFix:
		if v.Usable() {
			return v, true
		}
		return nil, false
	case LocationFix:
		return NormalizeLocation(&v)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false
		}
		return &LocationFix{Kind: LocationKindAddress, Address: v}, true
	case []interface{}:
		return pairToFix(v)
	case map[string]interface{}:
		if lat, ok := numberField(v, "lat", "latitude"); ok {
			if lng, ok := numberField(v, "lng", "longitude"); ok {
				return &LocationFix{Kind: LocationKindCoordinates, Lat: lat, Lng: lng}, true
			}
		}
		if coords, ok := v["coordinates"].([]interface{}); ok {
			return pairToFix(coords)
		}
		if addr, ok := v["address"].(string); ok && strings.TrimSpace(addr) != "" {
			return &LocationFix{Kind: LocationKindAddress, Address: addr}, true
		}
		return nil, false
	}
	return nil, false
}

func pairToFix(pair []interface{}) (*LocationFix, bool) {
	if len(pair) != 2 {
		return nil, false
	}
	lat, ok1 := asFloat(pair[0])
	lng, ok2 := asFloat(pair[1])
	if !ok1 || !ok2 {
		return nil, false
	}
	return &LocationFix{Kind: LocationKindCoordinates, Lat: lat, Lng: lng}, true
}

func numberField(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := asFloat(m[k]); ok {
			return f, true
		}
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
