package smartcontent

import "encoding/json"

// Item is a single piece of fetched content. ComponentName identifies the
// display component that renders it, Props are passed to that component.
type Item struct {
	ComponentName string         `json:"componentName"`
	Props         map[string]any `json:"props,omitempty"`
}

// Content is an ordered list of items, as returned by most search functions.
type Content []Item

// MarshalJSON encodes nil content as an empty list.
func (c Content) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]Item(c))
}
