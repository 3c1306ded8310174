package smartcontent

import "context"

// ForceParam is the reserved params key read by SearchMap.
const ForceParam = "force"

// SplitForce returns a copy of params without the ForceParam key, and whether
// that key was set to true. params is not modified.
func SplitForce(params map[string]any) (map[string]any, bool) {
	force, _ := params[ForceParam].(bool)

	out := make(map[string]any, len(params))
	for k, v := range params {
		if k == ForceParam {
			continue
		}
		out[k] = v
	}

	return out, force
}

// SearchMap calls h.Search for map shaped params. A true "force" entry forces
// the fetch; the entry itself is never passed to the search function.
func SearchMap[C any](ctx context.Context, h *Handle[map[string]any, C], params map[string]any) {
	p, force := SplitForce(params)
	h.Search(ctx, p, WithForce(force))
}
