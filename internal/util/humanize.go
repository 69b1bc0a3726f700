package util

import "strings"

// TitleFromID turns a machine id like "hallucination_detection" into
// "Hallucination Detection". Used wherever a template or dataset id stands in
// for a missing display name.
func TitleFromID(id string) string {
	parts := strings.Split(id, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// MachineID derives a machine identifier from a human name: lowercased, each
// run of whitespace collapsed to a single underscore. "Hallucination
// Detection" becomes "hallucination_detection".
func MachineID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "_")
}
