package console

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/smartfactory/llmops-console/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleLogs() []model.EvaluationLog {
	return []model.EvaluationLog{
		{EvaluatorName: "Hallucination Detection", Status: "completed", TraceID: "t-1"},
		{EvaluatorName: "Answer Relevance", Status: "Completed", TraceID: "t-2"},
		{EvaluatorName: "Hallucination Detection", Status: "error", TraceID: "t-3"},
		{EvaluatorName: "Answer Relevance", Status: "timeout", TraceID: "t-4"},
	}
}

func TestFilterLogs(t *testing.T) {
	logs := sampleLogs()
	tests := []struct {
		name      string
		evaluator string
		status    string
		wantIDs   []string
	}{
		{"both sentinels pass all", AllEvaluators, AllStatus, []string{"t-1", "t-2", "t-3", "t-4"}},
		{"evaluator exact match", "Hallucination Detection", AllStatus, []string{"t-1", "t-3"}},
		{"status case-insensitive", AllEvaluators, "Completed", []string{"t-1", "t-2"}},
		{"both filters", "Answer Relevance", "Timeout", []string{"t-4"}},
		{"no match", "Answer Relevance", "Error", []string{}},
		{"evaluator name is not case-folded", "hallucination detection", AllStatus, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterLogs(logs, tt.evaluator, tt.status)
			ids := make([]string, 0, len(got))
			for _, l := range got {
				ids = append(ids, l.TraceID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("got %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestEvaluatorOptions(t *testing.T) {
	got := EvaluatorOptions(sampleLogs())
	want := []string{AllEvaluators, "Hallucination Detection", "Answer Relevance"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEvaluatorOptionsEmptyLogs(t *testing.T) {
	got := EvaluatorOptions(nil)
	if !reflect.DeepEqual(got, []string{AllEvaluators}) {
		t.Errorf("got %v", got)
	}
}

func TestResolveTemplateName(t *testing.T) {
	templates := []model.Template{
		{TemplateID: "hallucination", Name: "Hallucination Check"},
		{TemplateID: "nameless_template"},
	}
	tests := []struct {
		name       string
		templateID string
		want       string
	}{
		{"known id", "hallucination", "Hallucination Check"},
		{"known id without name humanizes", "nameless_template", "Nameless Template"},
		{"unknown id humanizes", "answer_relevance", "Answer Relevance"},
		{"empty id", "", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTemplateName(templates, tt.templateID); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCycleOption(t *testing.T) {
	options := []string{"a", "b", "c"}
	tests := []struct {
		current string
		want    string
	}{
		{"a", "b"},
		{"b", "c"},
		{"c", "a"},
		{"unknown", "a"},
	}
	for _, tt := range tests {
		if got := cycleOption(options, tt.current); got != tt.want {
			t.Errorf("cycleOption(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
	if got := cycleOption(nil, "x"); got != "x" {
		t.Errorf("empty options: got %q", got)
	}
}

func TestStaleTraceResponseIsDropped(t *testing.T) {
	v := newEvaluatorsView(nil, discardLogger(), tabLogs)
	v.loading = 0

	// Two requests issued back to back; the slow first response must not
	// overwrite the modal owned by the second.
	v.traceSeq = 2
	v.modalOpen = true
	v.modalLoading = true

	_, _ = v.Update(traceLoadedMsg{seq: 1, trace: model.Trace{TraceID: "stale"}})
	if !v.modalLoading {
		t.Fatal("stale response cleared the loading state")
	}
	if v.modalTrace.TraceID == "stale" {
		t.Fatal("stale trace reached the modal")
	}

	_, _ = v.Update(traceLoadedMsg{seq: 2, trace: model.Trace{TraceID: "fresh"}})
	if v.modalLoading || v.modalTrace.TraceID != "fresh" {
		t.Fatalf("latest response not applied: %+v", v.modalTrace)
	}
}
