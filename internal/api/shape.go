package api

import "encoding/json"

// DecodeList defensively decodes a list endpoint's body. The backend
// sometimes returns a bare array and sometimes an object wrapping the array
// under a named key ({"templates": [...]}). Any shape mismatch, decode error,
// or nil body yields an empty slice so one drifted resource never blocks the
// rest of a view from rendering.
func DecodeList[T any](raw json.RawMessage, wrapperKey string) []T {
	if len(raw) == 0 {
		return []T{}
	}

	var bare []T
	if err := json.Unmarshal(raw, &bare); err == nil {
		if bare == nil {
			return []T{}
		}
		return bare
	}

	if wrapperKey != "" {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err == nil {
			if inner, ok := wrapped[wrapperKey]; ok {
				var list []T
				if err := json.Unmarshal(inner, &list); err == nil && list != nil {
					return list
				}
			}
		}
	}

	return []T{}
}
