package model

// Entities mirror the backend's JSON documents. The backend owns these
// shapes; the console never persists them beyond view state. Several fields
// exist in two spellings because older traces used different keys.

type Trace struct {
	TraceID   string             `json:"trace_id"`
	SessionID string             `json:"session_id"`
	Timestamp string             `json:"timestamp"`
	Question  string             `json:"question,omitempty"`
	Input     string             `json:"input,omitempty"`
	Answer    string             `json:"answer,omitempty"`
	Output    string             `json:"output,omitempty"`
	Context   string             `json:"context,omitempty"`
	LatencyMS float64            `json:"latency_ms,omitempty"`
	Latency   float64            `json:"latency,omitempty"`
	Tokens    int                `json:"tokens"`
	Cost      float64            `json:"cost"`
	Scores    map[string]float64 `json:"scores,omitempty"`
}

// Prompt returns the recorded input under either key.
func (t Trace) Prompt() string {
	if t.Question != "" {
		return t.Question
	}
	return t.Input
}

// Response returns the recorded output under either key.
func (t Trace) Response() string {
	if t.Answer != "" {
		return t.Answer
	}
	return t.Output
}

// LatencyMillis returns the latency under either key.
func (t Trace) LatencyMillis() float64 {
	if t.LatencyMS != 0 {
		return t.LatencyMS
	}
	return t.Latency
}

type Session struct {
	SessionID   string  `json:"session_id"`
	User        string  `json:"user,omitempty"`
	UserID      string  `json:"user_id,omitempty"`
	TraceCount  int     `json:"trace_count"`
	TotalTokens int     `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost"`
	CreatedAt   string  `json:"created,omitempty"`
}

// Owner returns the session's user under either key.
func (s Session) Owner() string {
	if s.User != "" {
		return s.User
	}
	if s.UserID != "" {
		return s.UserID
	}
	return "unknown"
}

type Evaluator struct {
	EvaluatorID string  `json:"evaluator_id"`
	Name        string  `json:"name"`
	Active      bool    `json:"active"`
	TemplateID  string  `json:"template_id"`
	ScoreName   string  `json:"score_name"`
	Target      string  `json:"target"`
	Sampling    float64 `json:"sampling"`
	CreatedAt   string  `json:"created_at"`
}

type Template struct {
	TemplateID     string   `json:"template_id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Template       string   `json:"template"`
	Model          string   `json:"model"`
	Inputs         []string `json:"inputs"`
	InputVariables []string `json:"input_variables,omitempty"`
	Version        string   `json:"version"`
	UpdatedAt      string   `json:"updated_at"`
}

// DeclaredInputs returns the template's input-variable list, falling back to
// the legacy field name used by older template documents.
func (t Template) DeclaredInputs() []string {
	if len(t.Inputs) > 0 {
		return t.Inputs
	}
	return t.InputVariables
}

type EvaluationLog struct {
	Timestamp     string  `json:"timestamp"`
	EvaluatorName string  `json:"evaluator_name"`
	TraceID       string  `json:"trace_id"`
	Score         float64 `json:"score"`
	Duration      float64 `json:"duration"`
	Status        string  `json:"status"`
}

type Dataset struct {
	Name string `json:"name"`
	Path string `json:"path"`

	// Description is presentation-only, attached client-side by name lookup.
	Description string `json:"-"`
}

type DatasetItem struct {
	ID          string              `json:"id"`
	DatasetName string              `json:"dataset_name,omitempty"`
	Category    string              `json:"category"`
	Input       DatasetItemInput    `json:"input"`
	Expected    DatasetItemExpected `json:"expected_output"`
	Metadata    DatasetItemMetadata `json:"metadata"`
}

type DatasetItemInput struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type DatasetItemExpected struct {
	Answer   string   `json:"answer"`
	KeyFacts []string `json:"key_facts,omitempty"`
}

type DatasetItemMetadata struct {
	Difficulty string `json:"difficulty"`
	RiskLevel  string `json:"risk_level"`
	Domain     string `json:"domain"`
	VerifiedBy string `json:"verified_by,omitempty"`
}

type AuditLog struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Type      string `json:"type"`
	User      string `json:"user"`
	Details   string `json:"details"`
}

// EvaluatorCreate is the POST /evaluators payload.
type EvaluatorCreate struct {
	ScoreName       string            `json:"score_name"`
	Template        TemplateRef       `json:"template"`
	Status          string            `json:"status"`
	Target          string            `json:"target"`
	VariableMapping map[string]string `json:"variable_mapping"`
	Execution       ExecutionSettings `json:"execution"`
}

type TemplateRef struct {
	ID            string `json:"id"`
	Model         string `json:"model"`
	PromptVersion string `json:"prompt_version"`
}

type ExecutionSettings struct {
	SamplingRate float64 `json:"sampling_rate"`
	DelayMS      int     `json:"delay_ms"`
}

// TemplateCreate is the POST /templates payload. The machine id is sent under
// both keys; the declared input list is user-supplied, not extracted from the
// prompt text.
type TemplateCreate struct {
	ID         string   `json:"id"`
	TemplateID string   `json:"template_id"`
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	Desc       string   `json:"description"`
	Model      string   `json:"model"`
	OutputType string   `json:"output_type,omitempty"`
	Inputs     []string `json:"inputs"`
	Template   string   `json:"template"`
	UpdatedAt  string   `json:"updated_at"`
}
