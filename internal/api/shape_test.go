package api

import (
	"encoding/json"
	"testing"
)

type shapeItem struct {
	Name string `json:"name"`
}

func TestDecodeListBareArray(t *testing.T) {
	raw := json.RawMessage(`[{"name":"a"},{"name":"b"}]`)
	got := DecodeList[shapeItem](raw, "items")
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeListWrapped(t *testing.T) {
	raw := json.RawMessage(`{"items":[{"name":"a"}],"count":1}`)
	got := DecodeList[shapeItem](raw, "items")
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeListDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  string
	}{
		{"nil body", "", "items"},
		{"wrong wrapper key", `{"other":[{"name":"a"}]}`, "items"},
		{"no wrapper key given", `{"items":[{"name":"a"}]}`, ""},
		{"scalar body", `42`, "items"},
		{"invalid json", `{nope`, "items"},
		{"null body", `null`, "items"},
		{"wrapped null", `{"items":null}`, "items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeList[shapeItem](json.RawMessage(tt.raw), tt.key)
			if got == nil {
				t.Fatal("want non-nil empty slice")
			}
			if len(got) != 0 {
				t.Fatalf("want empty, got %+v", got)
			}
		})
	}
}
