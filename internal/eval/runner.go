package eval

import (
	"context"
	"log"
	"sync"

	"github.com/jinno0sec/copilot-instruction-eval/internal/agent"
	"github.com/jinno0sec/copilot-instruction-eval/internal/metrics"
)

// Runner drives one evaluation batch: for each instruction it invokes
// both agents, scores successful responses against the expected output,
// and records one InstructionResult per instruction in input order.
type Runner struct {
	v1         agent.Client
	v2         agent.Client
	store      *Store
	flushEvery int
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithStore attaches a store that receives results incrementally and is
// flushed every flushEvery instructions.
func WithStore(store *Store) RunnerOption {
	return func(r *Runner) {
		r.store = store
	}
}

// WithFlushEvery sets how many instructions may complete between flushes.
func WithFlushEvery(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.flushEvery = n
		}
	}
}

// NewRunner creates a runner comparing the two agent clients.
func NewRunner(v1, v2 agent.Client, opts ...RunnerOption) *Runner {
	r := &Runner{
		v1:         v1,
		v2:         v2,
		flushEvery: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunAll evaluates every instruction in order. A failure of either agent
// on one instruction never stops the batch. When the context is canceled
// no further agent calls are issued; results already completed are kept
// and flushed.
func (r *Runner) RunAll(ctx context.Context, instructions []*Instruction) ([]*InstructionResult, error) {
	results := make([]*InstructionResult, 0, len(instructions))

	for i, ins := range instructions {
		if ctx.Err() != nil {
			log.Printf("run aborted after %d/%d instructions", len(results), len(instructions))
			break
		}

		log.Printf("evaluating instruction %s (%s, %s)", ins.ID, ins.Type, ins.Difficulty)
		result := r.evaluate(ctx, ins)
		results = append(results, result)

		if r.store != nil {
			r.store.Append(result)
			if (i+1)%r.flushEvery == 0 {
				if err := r.store.Flush(); err != nil {
					log.Printf("flush failed: %v", err)
				}
			}
		}
	}

	if r.store != nil {
		if err := r.store.Flush(); err != nil {
			return results, err
		}
	}
	return results, nil
}

// evaluate runs both agent calls for one instruction concurrently and
// joins them into a single result.
func (r *Runner) evaluate(ctx context.Context, ins *Instruction) *InstructionResult {
	var wg sync.WaitGroup
	var v1, v2 outcome

	wg.Add(2)
	go func() {
		defer wg.Done()
		v1 = callAndScore(ctx, r.v1, ins)
	}()
	go func() {
		defer wg.Done()
		v2 = callAndScore(ctx, r.v2, ins)
	}()
	wg.Wait()

	return &InstructionResult{
		InstructionID:   ins.ID,
		InstructionType: ins.Type,
		Difficulty:      ins.Difficulty,
		V1Success:       v1.err == "",
		V2Success:       v2.err == "",
		V1Metrics:       v1.metrics,
		V2Metrics:       v2.metrics,
		V1Error:         v1.err,
		V2Error:         v2.err,
		V1Response:      v1.response,
		V2Response:      v2.response,
	}
}

// outcome is one agent's side of an instruction evaluation. Exactly one
// of metrics/err is set.
type outcome struct {
	metrics  *metrics.Metrics
	response string
	err      string
}

func callAndScore(ctx context.Context, c agent.Client, ins *Instruction) outcome {
	resp, err := c.Invoke(ctx, ins.Prompt)
	if err != nil {
		log.Printf("instruction %s: agent call failed: %v", ins.ID, err)
		return outcome{err: err.Error()}
	}

	m := metrics.Compute(ins.ExpectedOutput, resp.Text, resp.Elapsed)
	return outcome{metrics: &m, response: resp.Text}
}
