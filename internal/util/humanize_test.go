package util

import "testing"

func TestTitleFromID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"hallucination_detection", "Hallucination Detection"},
		{"qa_golden_set", "Qa Golden Set"},
		{"retrieval", "Retrieval"},
		{"", ""},
		{"double__underscore", "Double  Underscore"},
	}
	for _, tt := range tests {
		if got := TitleFromID(tt.id); got != tt.want {
			t.Errorf("TitleFromID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestMachineID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Hallucination Detection", "hallucination_detection"},
		{"  Answer   Relevance  ", "answer_relevance"},
		{"single", "single"},
		{"", ""},
		{"MiXeD CaSe", "mixed_case"},
	}
	for _, tt := range tests {
		if got := MachineID(tt.name); got != tt.want {
			t.Errorf("MachineID(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMachineIDRoundTrip(t *testing.T) {
	// A title produced from a machine id maps back to the same id.
	id := "hallucination_detection"
	if got := MachineID(TitleFromID(id)); got != id {
		t.Errorf("MachineID(TitleFromID(%q)) = %q", id, got)
	}
}
