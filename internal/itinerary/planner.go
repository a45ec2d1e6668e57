package itinerary

import (
	"context"
	"errors"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/logger"

	"github.com/google/uuid"
)

const (
	warnFallbackUsed      = "Fallback time-blocking heuristic used."
	warnMalformedResponse = "Schedule generator returned no parseable JSON object."
	warnNoCandidates      = "No candidate activities available; generation skipped."
)

// Planner runs the scheduling pipeline for one trip at a time. It holds no
// per-run state and is safe for concurrent use.
type Planner struct {
	generator *ScheduleGenerator
	enricher  *Enricher
	defaults  config.PlannerDefaults
	log       *logger.Logger
	newRunID  func() string
}

// NewPlanner wires the pipeline. generator and enricher may be nil.
func NewPlanner(generator *ScheduleGenerator, enricher *Enricher, defaults config.PlannerDefaults, log *logger.Logger) *Planner {
	if log == nil {
		log = logger.Nop()
	}
	return &Planner{
		generator: generator,
		enricher:  enricher,
		defaults:  defaults,
		log:       log.With("component", "Planner"),
		newRunID:  func() string { return uuid.NewString() },
	}
}

// BuildSchedule turns a trip request into enriched day plans. It never
// fails: when generation is unavailable or unusable the deterministic
// fallback schedule is returned and the reason is recorded in Meta.
func (p *Planner) BuildSchedule(ctx context.Context, req TripRequest) Result {
	catalog := NormalizeCatalog(req.Attractions, req.Research.Dining, p.defaults.MealOptionLimit)
	travelDays := TravelDays(req.Preferences)

	result := Result{
		Meta: PlanningMeta{
			RunID:           p.newRunID(),
			TravelDays:      travelDays,
			TotalCandidates: len(catalog.Activities),
			Warnings:        []string{},
		},
	}
	log := p.log.With("run_id", result.Meta.RunID)

	if len(catalog.Activities) == 0 {
		result.Meta.Warnings = append(result.Meta.Warnings, warnNoCandidates)
	} else {
		scheduleReq := BuildScheduleRequest(req.Preferences, catalog, req.Research, p.defaults)
		proposal := p.generator.Propose(ctx, scheduleReq)
		result.Generation = proposal.Meta

		switch {
		case errors.Is(proposal.Err, ErrGenerationUnavailable):
			log.Warn("schedule generation unavailable", "error", proposal.Err)
			result.Meta.LLMError = proposal.Err.Error()
		case errors.Is(proposal.Err, ErrMalformedResponse):
			log.Warn("schedule generation returned malformed output", "error", proposal.Err)
			result.Meta.Warnings = append(result.Meta.Warnings, warnMalformedResponse)
		case proposal.OK():
			m := Materialize(proposal.Schedule, catalog, scheduleReq.DayConstraints.DayStart, travelDays)
			result.Meta.Warnings = append(result.Meta.Warnings, m.Warnings...)
			result.Meta.Unplaced = m.Unplaced
			if m.Usable() {
				result.Days = m.Days
				result.Meta.Strategy = StrategyLLM
			}
			log.Debug("materialized schedule", "days", len(m.Days), "warnings", len(m.Warnings))
		}
	}

	if result.Days == nil {
		result.Days = ChunkFallback(catalog.Activities, travelDays, p.defaults.BlocksPerDay)
		result.Meta.Strategy = StrategyFallback
		result.Meta.Warnings = append(result.Meta.Warnings, warnFallbackUsed)
	}

	log.Info("schedule built",
		"strategy", result.Meta.Strategy,
		"days", len(result.Days),
		"candidates", result.Meta.TotalCandidates,
		"warnings", len(result.Meta.Warnings))

	p.enricher.Enrich(ctx, result.Days, TravelMode(req.Preferences, p.defaults.DefaultTravelMode))
	return result
}
