package eval

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jinno0sec/copilot-instruction-eval/internal/metrics"
)

const (
	resultsJSONName = "evaluation_results.json"
	resultsCSVName  = "evaluation_results.csv"
)

// Store collects instruction results into a Run and persists it. It is
// the single owner of the growing result sequence; Append and Flush are
// safe for use from one writer and concurrent readers.
type Store struct {
	mu  sync.Mutex
	dir string
	run *Run
}

// NewStore creates the results directory and an empty run stamped with a
// fresh ULID. The embedded configuration is redacted up front so secret
// values never enter the store.
func NewStore(cfg RunConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.ResultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &Store{
		dir: cfg.ResultsDir,
		run: &Run{
			RunID:     ulid.Make().String(),
			Timestamp: time.Now(),
			Config:    cfg.Redacted(),
		},
	}, nil
}

// Append records a completed instruction result.
func (s *Store) Append(result *InstructionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Results = append(s.run.Results, result)
}

// Run returns the current run snapshot.
func (s *Store) Run() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

// Flush writes the in-progress run to the results file. The write goes
// through a temp file and rename so a crash mid-write cannot corrupt a
// previously flushed report.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	path := filepath.Join(s.dir, resultsJSONName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace results file: %w", err)
	}
	return nil
}

// Finalize writes the completed run and its flattened CSV companion.
func (s *Store) Finalize() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.writeCSV()
}

var csvMetricColumns = []string{
	"response_length", "expected_length", "length_ratio",
	"jaccard_similarity", "bleu_score", "rouge_1", "rouge_2", "rouge_l",
	"response_time",
}

func (s *Store) writeCSV() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(filepath.Join(s.dir, resultsCSVName))
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"instruction_id", "instruction_type", "difficulty", "v1_success", "v2_success"}
	for _, version := range []string{"v1", "v2"} {
		for _, col := range csvMetricColumns {
			header = append(header, version+"_"+col)
		}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range s.run.Results {
		row := []string{
			result.InstructionID,
			result.InstructionType,
			result.Difficulty,
			boolToCSV(result.V1Success),
			boolToCSV(result.V2Success),
		}
		row = append(row, metricColumns(result.V1Metrics)...)
		row = append(row, metricColumns(result.V2Metrics)...)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func metricColumns(m *metrics.Metrics) []string {
	cols := make([]string, len(csvMetricColumns))
	if m == nil {
		return cols
	}
	cols[0] = strconv.Itoa(m.ResponseLength)
	cols[1] = strconv.Itoa(m.ExpectedLength)
	if m.LengthRatio != nil {
		cols[2] = formatFloat(*m.LengthRatio)
	}
	cols[3] = formatFloat(m.JaccardSimilarity)
	cols[4] = formatFloat(m.BLEUScore)
	cols[5] = formatFloat(m.ROUGE1)
	cols[6] = formatFloat(m.ROUGE2)
	cols[7] = formatFloat(m.ROUGEL)
	cols[8] = formatFloat(m.ResponseTime)
	return cols
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func boolToCSV(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// LoadRun reconstructs a persisted run for downstream reporting.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return &run, nil
}
