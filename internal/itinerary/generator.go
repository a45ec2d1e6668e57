package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-trip-planner/internal/llm"
)

const schedulerAgentName = "scheduler"

var (
	// ErrGenerationUnavailable covers a missing generator and transport failures.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	// ErrMalformedResponse means no JSON object could be recovered from the output.
	ErrMalformedResponse = errors.New("malformed schedule response")
)

// Proposal is the outcome of one generation call: either a decoded JSON
// object in Schedule, or a non-nil Err wrapping one of the sentinels.
type Proposal struct {
	Schedule map[string]json.RawMessage
	Err      error
	Meta     llm.AgentMeta
}

// OK reports whether a schedule object was recovered.
func (p Proposal) OK() bool {
	return p.Err == nil && p.Schedule != nil
}

// ScheduleGenerator makes a single call to a TextGenerator. It does not retry.
type ScheduleGenerator struct {
	textGen llm.TextGenerator
}

// NewScheduleGenerator wraps textGen. A nil textGen yields a generator that
// always reports ErrGenerationUnavailable.
func NewScheduleGenerator(textGen llm.TextGenerator) *ScheduleGenerator {
	return &ScheduleGenerator{textGen: textGen}
}

// Propose asks the generator for a schedule. It never returns an error
// directly; failures are carried in Proposal.Err.
func (g *ScheduleGenerator) Propose(ctx context.Context, req ScheduleRequest) Proposal {
	meta := llm.AgentMeta{AgentName: schedulerAgentName}
	if g == nil || g.textGen == nil {
		return Proposal{Err: fmt.Errorf("%w: schedule generator not configured", ErrGenerationUnavailable), Meta: meta}
	}

	prompt, err := buildSchedulePrompt(req)
	if err != nil {
		return Proposal{Err: fmt.Errorf("%w: %v", ErrGenerationUnavailable, err), Meta: meta}
	}

	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, prompt)
	meta.Latency = time.Since(start)
	if err != nil {
		return Proposal{Err: fmt.Errorf("%w: %v", ErrGenerationUnavailable, err), Meta: meta}
	}
	meta.Usage = resp.Usage

	obj, err := llm.ExtractJSONObject(resp.Content)
	if err != nil {
		return Proposal{Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err), Meta: meta}
	}

	return Proposal{Schedule: obj, Meta: meta}
}
