package eval

import (
	"time"

	"github.com/jinno0sec/copilot-instruction-eval/internal/metrics"
)

// Instruction is one evaluation task: a prompt plus its expected output,
// tagged with type and difficulty. Instructions are immutable once loaded
// and identified by ID.
type Instruction struct {
	ID             string `json:"id" yaml:"id"`
	Type           string `json:"type" yaml:"type"`
	Difficulty     string `json:"difficulty" yaml:"difficulty"`
	Prompt         string `json:"prompt" yaml:"prompt"`
	ExpectedOutput string `json:"expected_output" yaml:"expected_output"`
}

// InstructionResult is the completed comparison for one instruction.
// Metrics are present only for the agent whose call succeeded. Raw
// response text is kept for in-process reporting but never persisted.
type InstructionResult struct {
	InstructionID   string           `json:"instruction_id"`
	InstructionType string           `json:"instruction_type"`
	Difficulty      string           `json:"difficulty"`
	V1Success       bool             `json:"v1_success"`
	V2Success       bool             `json:"v2_success"`
	V1Metrics       *metrics.Metrics `json:"v1_metrics,omitempty"`
	V2Metrics       *metrics.Metrics `json:"v2_metrics,omitempty"`
	V1Error         string           `json:"v1_error,omitempty"`
	V2Error         string           `json:"v2_error,omitempty"`
	V1Response      string           `json:"-"`
	V2Response      string           `json:"-"`
}

// Run is the persisted report for one complete batch execution.
type Run struct {
	RunID     string               `json:"run_id"`
	Timestamp time.Time            `json:"timestamp"`
	Config    ReportConfig         `json:"config"`
	Results   []*InstructionResult `json:"results"`
}

// RunConfig is the in-memory run configuration, secrets intact. It is
// never serialized directly; persistence goes through Redacted().
type RunConfig struct {
	AgentV1Endpoint  string
	AgentV2Endpoint  string
	AgentV2Model     string
	APIKeyV1         string
	APIKeyV2         string
	InstructionsFile string
	ResultsDir       string
	Timeout          time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
	FlushEvery       int
}

// ReportConfig is the serializable view of a RunConfig with API keys
// replaced by a redaction marker.
type ReportConfig struct {
	AgentV1Endpoint  string  `json:"agent_v1_endpoint"`
	AgentV2Endpoint  string  `json:"agent_v2_endpoint"`
	AgentV2Model     string  `json:"agent_v2_model,omitempty"`
	APIKeyV1         string  `json:"api_key_v1"`
	APIKeyV2         string  `json:"api_key_v2"`
	InstructionsFile string  `json:"instructions_file"`
	ResultsDir       string  `json:"results_dir"`
	Timeout          float64 `json:"timeout"`
	MaxRetries       int     `json:"max_retries"`
	RetryDelay       float64 `json:"retry_delay"`
}

// RedactionMarker replaces API keys in persisted output.
const RedactionMarker = "***REDACTED***"

// Redacted returns the persistence view of the configuration. The raw
// key values never reach the serializer.
func (c RunConfig) Redacted() ReportConfig {
	return ReportConfig{
		AgentV1Endpoint:  c.AgentV1Endpoint,
		AgentV2Endpoint:  c.AgentV2Endpoint,
		AgentV2Model:     c.AgentV2Model,
		APIKeyV1:         RedactionMarker,
		APIKeyV2:         RedactionMarker,
		InstructionsFile: c.InstructionsFile,
		ResultsDir:       c.ResultsDir,
		Timeout:          c.Timeout.Seconds(),
		MaxRetries:       c.MaxRetries,
		RetryDelay:       c.RetryDelay.Seconds(),
	}
}
