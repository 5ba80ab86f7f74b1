package hub

// Device configuration model.
//
// VegeHub firmware ships two incompatible configuration schemas:
//
//   - Legacy: top-level "hub" object plus a top-level "api_key" string.
//   - Modern: a top-level "endpoints" array of endpoint objects.
//
// Classification lives in DetectSchema and nowhere else. The rule is strict:
// a payload is Modern if and only if the "endpoints" key is present AND its
// value is a JSON array. An empty array is still Modern. A null value, even
// with the key present, means Legacy — legacy firmware answers the combined
// config request with "endpoints": null. Checking key presence alone has
// misclassified legacy devices before; keep the array-type check.

// HomeAssistantEndpointName is the logical name of the endpoint the driver
// manages in modern configurations.
const HomeAssistantEndpointName = "HomeAssistant"

// Schema identifies which configuration shape a device answered with.
type Schema int

const (
	// SchemaUnknown means the payload has not been classified.
	SchemaUnknown Schema = iota
	// SchemaLegacy is the older hub/api_key shape.
	SchemaLegacy
	// SchemaModern is the newer endpoints-array shape.
	SchemaModern
)

// String returns a human-readable name for the schema.
func (s Schema) String() string {
	switch s {
	case SchemaLegacy:
		return "legacy"
	case SchemaModern:
		return "modern"
	default:
		return "unknown"
	}
}

// Config is a tagged view over a device configuration response. Exactly one
// of the variant fields is meaningful, selected by Schema. The raw decoded
// body is retained so that a read-modify-write cycle preserves every field
// the firmware sent, including ones this driver knows nothing about.
type Config struct {
	// Schema is the classified variant.
	Schema Schema

	// Legacy holds the decoded legacy view when Schema == SchemaLegacy.
	Legacy *LegacyConfig

	// Endpoints holds the decoded endpoint list when Schema == SchemaModern.
	// An empty (non-nil) slice is a valid modern configuration.
	Endpoints []Endpoint

	raw map[string]any
}

// LegacyConfig is the read-only typed view of a legacy configuration.
type LegacyConfig struct {
	// Hub is the decoded "hub" section, nil if the device omitted it.
	Hub map[string]any

	// APIKey is the top-level "api_key" value, empty if absent.
	APIKey string

	// HasAPIKey distinguishes an empty key from a missing one.
	HasAPIKey bool
}

// Endpoint is one entry of a modern configuration's endpoint list.
type Endpoint struct {
	ID               int            `json:"id"`
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	Enabled          bool           `json:"enabled"`
	ConnectionMethod string         `json:"connection_method"`
	Config           map[string]any `json:"config"`
}

// Raw returns the full decoded response body backing this configuration.
// Callers must not mutate it; use ModifyConfig to derive a patched copy.
func (c *Config) Raw() map[string]any {
	return c.raw
}

// DetectSchema classifies a decoded configuration payload. See the package
// rule above: Modern iff "endpoints" is present and is an array.
func DetectSchema(raw map[string]any) Schema {
	v, ok := raw["endpoints"]
	if !ok {
		return SchemaLegacy
	}
	if _, isArray := v.([]any); isArray {
		return SchemaModern
	}
	// Key present but null (or some other non-array value the firmware
	// should never send): treat as legacy.
	return SchemaLegacy
}

// ParseConfig classifies a decoded configuration payload and builds the
// typed view for the detected variant.
func ParseConfig(raw map[string]any) *Config {
	cfg := &Config{Schema: DetectSchema(raw), raw: raw}

	switch cfg.Schema {
	case SchemaModern:
		entries, _ := raw["endpoints"].([]any)
		cfg.Endpoints = make([]Endpoint, 0, len(entries))
		for _, entry := range entries {
			obj, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			cfg.Endpoints = append(cfg.Endpoints, decodeEndpoint(obj))
		}

	case SchemaLegacy:
		legacy := &LegacyConfig{}
		if hubSection, ok := raw["hub"].(map[string]any); ok {
			legacy.Hub = hubSection
		}
		if key, ok := raw["api_key"].(string); ok {
			legacy.APIKey = key
			legacy.HasAPIKey = true
		}
		cfg.Legacy = legacy
	}

	return cfg
}

// decodeEndpoint builds the typed endpoint view from a decoded JSON object.
func decodeEndpoint(obj map[string]any) Endpoint {
	ep := Endpoint{}
	if id, ok := asInt(obj["id"]); ok {
		ep.ID = id
	}
	ep.Name, _ = obj["name"].(string)
	ep.Type, _ = obj["type"].(string)
	ep.Enabled, _ = obj["enabled"].(bool)
	ep.ConnectionMethod, _ = obj["connection_method"].(string)
	if cfg, ok := obj["config"].(map[string]any); ok {
		ep.Config = cfg
	}
	return ep
}

// ModifyConfig produces a patched copy of a configuration payload that
// points the device at the given server with the given API key. The input is
// never mutated; all fields not touched by the patch are carried over
// unchanged. The response-status "error" field is stripped, since it is not
// part of the configuration proper.
//
// Legacy: sets top-level api_key, hub.server_url and hub.server_type. Both
// the "hub" section and the "api_key" field must already exist; a legacy
// payload missing either cannot be patched safely and yields a SchemaError.
//
// Modern: updates the config.api_key and config.url of the endpoint named
// "HomeAssistant", synthesizing a new enabled endpoint (id = highest
// existing id + 1) when none exists. Every other endpoint is carried over
// untouched, and the full endpoint list is written back — the device
// replaces the whole collection on write, it does not merge.
func ModifyConfig(raw map[string]any, apiKey, serverAddr string) (map[string]any, error) {
	if raw == nil {
		return nil, &SchemaError{Reason: "empty configuration payload"}
	}

	modified, ok := deepCopyValue(raw).(map[string]any)
	if !ok {
		return nil, &SchemaError{Reason: "configuration payload is not an object"}
	}
	delete(modified, "error")

	switch DetectSchema(modified) {
	case SchemaModern:
		entries, _ := modified["endpoints"].([]any)
		modified["endpoints"] = patchEndpoints(entries, apiKey, serverAddr)
		return modified, nil

	case SchemaLegacy:
		hubSection, hasHub := modified["hub"].(map[string]any)
		if !hasHub {
			return nil, &SchemaError{Reason: `legacy configuration has no "hub" section`}
		}
		if _, hasKey := modified["api_key"]; !hasKey {
			return nil, &SchemaError{Reason: `legacy configuration has no "api_key" field`}
		}
		modified["api_key"] = apiKey
		hubSection["server_url"] = serverAddr
		hubSection["server_type"] = legacyServerTypeCustom
		return modified, nil
	}

	return nil, &SchemaError{Reason: "configuration matches neither legacy nor modern schema"}
}

// legacyServerTypeCustom is the hub.server_type value legacy firmware uses
// for a user-supplied update server.
const legacyServerTypeCustom = 3

// patchEndpoints updates or synthesizes the HomeAssistant endpoint in a
// copied endpoint list.
func patchEndpoints(entries []any, apiKey, serverAddr string) []any {
	maxID := 0
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := asInt(obj["id"]); ok && id > maxID {
			maxID = id
		}
		if name, _ := obj["name"].(string); name != HomeAssistantEndpointName {
			continue
		}
		cfg, ok := obj["config"].(map[string]any)
		if !ok {
			cfg = map[string]any{}
			obj["config"] = cfg
		}
		cfg["api_key"] = apiKey
		cfg["url"] = serverAddr
		return entries
	}

	// No HomeAssistant endpoint yet: append a fresh one.
	return append(entries, map[string]any{
		"id":                maxID + 1,
		"name":              HomeAssistantEndpointName,
		"type":              "custom",
		"enabled":           true,
		"connection_method": "wifi",
		"config": map[string]any{
			"api_key":     apiKey,
			"data_format": "json",
			"url":         serverAddr,
		},
	})
}

// asInt extracts an integer id from a decoded JSON value. Ids arrive as
// float64 from encoding/json but as int from hand-built payloads in tests.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// deepCopyValue copies a decoded JSON value (maps, slices, scalars).
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = deepCopyValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = deepCopyValue(inner)
		}
		return out
	default:
		return v
	}
}
