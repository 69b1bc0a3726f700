package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/smartfactory/llmops-console/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewBaseURLPriority(t *testing.T) {
	t.Run("env wins over configured", func(t *testing.T) {
		t.Setenv(EnvBaseURL, "http://from-env.example")
		c := New("http://from-config.example", time.Second, nil)
		if got := c.BaseURL(); got != "http://from-env.example" {
			t.Fatalf("BaseURL() = %q", got)
		}
	})
	t.Run("configured when env unset", func(t *testing.T) {
		t.Setenv(EnvBaseURL, "")
		c := New("http://from-config.example", time.Second, nil)
		if got := c.BaseURL(); got != "http://from-config.example" {
			t.Fatalf("BaseURL() = %q", got)
		}
	})
}

func TestListEndpointsPassBodyThrough(t *testing.T) {
	body := `{"traces":[{"trace_id":"t-1"}],"total":1}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/traces" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	t.Setenv(EnvBaseURL, "")
	c := New(srv.URL, time.Second, nil)
	raw, err := c.Traces(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// The client does not reshape list bodies; callers own that.
	if string(raw) != body {
		t.Fatalf("raw = %s", raw)
	}
}

func TestTraceDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/traces/t-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(model.Trace{TraceID: "t-1", Question: "q", Tokens: 12})
	}))
	defer srv.Close()

	t.Setenv(EnvBaseURL, "")
	c := New(srv.URL, time.Second, nil)
	trace, err := c.Trace(context.Background(), "t-1")
	if err != nil {
		t.Fatal(err)
	}
	if trace.TraceID != "t-1" || trace.Prompt() != "q" || trace.Tokens != 12 {
		t.Fatalf("trace = %+v", trace)
	}
}

func TestStatusErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	t.Setenv(EnvBaseURL, "")
	c := New(srv.URL, time.Second, nil)
	_, err := c.Evaluators(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("want StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d", statusErr.StatusCode)
	}
}

func TestCreateEvaluatorSendsPayload(t *testing.T) {
	var got model.EvaluatorCreate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/evaluators" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	t.Setenv(EnvBaseURL, "")
	c := New(srv.URL, time.Second, nil)
	payload := model.EvaluatorCreate{
		ScoreName: "hallucination_detection",
		Template:  model.TemplateRef{ID: "hallucination", Model: "gpt-4o-mini", PromptVersion: "v1"},
		Status:    "enabled",
		Target:    "traces",
		Execution: model.ExecutionSettings{SamplingRate: 1.0, DelayMS: 5000},
	}
	if err := c.CreateEvaluator(context.Background(), payload); err != nil {
		t.Fatal(err)
	}
	if got.ScoreName != payload.ScoreName || got.Execution.DelayMS != 5000 {
		t.Fatalf("server saw %+v", got)
	}
}

func TestRunDatasetEscapesName(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
	}))
	defer srv.Close()

	t.Setenv(EnvBaseURL, "")
	c := New(srv.URL, time.Second, nil)
	if err := c.RunDataset(context.Background(), "qa/golden set"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/datasets/qa%2Fgolden%20set/run" {
		t.Fatalf("path = %q", gotPath)
	}
}
