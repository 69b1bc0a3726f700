package console

import (
	"reflect"
	"testing"

	"github.com/smartfactory/llmops-console/internal/model"
)

func TestFilterAudit(t *testing.T) {
	logs := []model.AuditLog{
		{ID: "1", Type: "evaluator", Action: "created", User: "admin@corp", Details: "Hallucination Detection enabled"},
		{ID: "2", Type: "template", Action: "updated", User: "ops@corp", Details: "prompt revised"},
		{ID: "3", Type: "Evaluator", Action: "deleted", User: "admin@corp", Details: "stale evaluator removed"},
	}

	tests := []struct {
		name       string
		typeFilter string
		search     string
		wantIDs    []string
	}{
		{"sentinel passes all", AllTypes, "", []string{"1", "2", "3"}},
		{"type matches case-insensitively", "evaluator", "", []string{"1", "3"}},
		{"type template", "template", "", []string{"2"}},
		{"search over action", AllTypes, "CREATED", []string{"1"}},
		{"search over details", AllTypes, "prompt", []string{"2"}},
		{"search over user", AllTypes, "admin", []string{"1", "3"}},
		{"type and search combined", "evaluator", "deleted", []string{"3"}},
		{"no match", "template", "deleted", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAudit(logs, tt.typeFilter, tt.search)
			ids := make([]string, 0, len(got))
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("got %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}
