package graph

import "sort"

// Properties is the typed key-value container attached to nodes and links.
type Properties map[string]any

// hiddenKeys are audit and ownership keys that never appear in user-facing
// detail views. The filter is enforced once, at the rendering boundary,
// instead of ad hoc per call site.
var hiddenKeys = map[string]struct{}{
	"user_id":    {},
	"owner_id":   {},
	"created_by": {},
	"created_at": {},
	"updated_at": {},
}

// Hidden reports whether a property key is excluded from display.
func Hidden(key string) bool {
	_, ok := hiddenKeys[key]
	return ok
}

// Display returns a copy of the properties with all hidden keys removed.
func (p Properties) Display() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		if Hidden(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// DisplayKeys returns the visible property keys in sorted order, so detail
// panels and rendered output are deterministic.
func (p Properties) DisplayKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if Hidden(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Name returns the "name" property as a string, or "" if absent.
func (p Properties) Name() string {
	if v, ok := p["name"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
