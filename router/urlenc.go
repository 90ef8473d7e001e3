package router

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-nav-router/routes"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// PathFor encodes a screen and its params as an address-bar path: the
// screen name as the path segment, one query entry per param. Non-string
// values are JSON-encoded.
func PathFor(route routes.Screen, params map[string]interface{}) string {
	path := "/" + string(route)
	if len(params) == 0 {
		return path
	}
	values := url.Values{}
	for key, value := range params {
		values.Set(key, encodeParam(value))
	}
	return path + "?" + values.Encode()
}

// ParsePath reverses PathFor. Query values that fail JSON decoding fall
// back to the raw string; the address bar is user-editable and must never
// be able to break navigation.
func ParsePath(path string) (routes.Screen, map[string]interface{}, error) {
	parsed, err := url.Parse(path)
	if err != nil {
		return "", nil, errors.Wrap(err, "[router.ParsePath] parse")
	}
	name := strings.TrimPrefix(parsed.Path, "/")
	if name == "" {
		return "", nil, errors.New("[router.ParsePath] empty screen name")
	}
	query := parsed.Query()
	if len(query) == 0 {
		return routes.Screen(name), nil, nil
	}
	params := make(map[string]interface{}, len(query))
	for key := range query {
		params[key] = decodeParam(query.Get(key))
	}
	return routes.Screen(name), params, nil
}

func encodeParam(value interface{}) string {
	if s, ok := value.(string); ok {
		// A string whose text happens to be a JSON literal ("123", "true")
		// must survive the round trip as a string, so it gets quoted.
		if gjson.Valid(s) {
			raw, _ := json.Marshal(s)
			return string(raw)
		}
		return s
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}

// decodeParam round-trips values written by encodeParam: best-effort JSON
// decode, falling back to the raw string. The address bar is user-editable,
// so a value that fails to parse must never break navigation.
func decodeParam(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !gjson.Valid(trimmed) {
		return raw
	}
	switch trimmed[0] {
	case '{', '[', '"', 't', 'f', 'n', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var value interface{}
		if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
			return raw
		}
		return value
	}
	return raw
}
