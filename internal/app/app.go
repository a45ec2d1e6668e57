package app

import (
	"context"
	"fmt"
	"strings"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/export"
	"ai-trip-planner/internal/ghost"
	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/logger"
	"ai-trip-planner/internal/metrics"
)

// Exporter archives a finished planning run.
type Exporter interface {
	Export(ctx context.Context, userID string, req itinerary.TripRequest, result itinerary.Result) ([]export.UploadResult, error)
}

// PlanOptions selects the side effects of a planning run.
type PlanOptions struct {
	Save    bool
	Publish bool
	Draft   bool
	Export  bool
}

// PlanOutcome is a planning result plus whatever side effects produced.
type PlanOutcome struct {
	Result  itinerary.Result
	Context string
	Post    *ghost.Post
	Uploads []export.UploadResult
	// Errors from optional side effects. The plan itself is still valid.
	SideEffectErrors []string
}

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	log          *logger.Logger
	planner      *itinerary.Planner
	planRepo     *itinerary.PlanRepository
	metricsStore *metrics.Store
	ghostClient  ghost.Client
	exporter     Exporter
}

// NewApp creates an App. planRepo, metricsStore, ghostClient and exporter
// may be nil; the matching features then report an error or are skipped.
func NewApp(
	cfg *config.Config,
	log *logger.Logger,
	planner *itinerary.Planner,
	planRepo *itinerary.PlanRepository,
	metricsStore *metrics.Store,
	ghostClient ghost.Client,
	exporter Exporter,
) *App {
	if log == nil {
		log = logger.Nop()
	}
	return &App{
		cfg:          cfg,
		log:          log,
		planner:      planner,
		planRepo:     planRepo,
		metricsStore: metricsStore,
		ghostClient:  ghostClient,
		exporter:     exporter,
	}
}

// PlanTrip builds the schedule for req and runs the requested side
// effects. It only fails when ctx is done before planning starts.
func (a *App) PlanTrip(ctx context.Context, userID string, req itinerary.TripRequest, opts PlanOptions) (PlanOutcome, error) {
	if err := ctx.Err(); err != nil {
		return PlanOutcome{}, err
	}

	result := a.planner.BuildSchedule(ctx, req)
	out := PlanOutcome{
		Result: result,
		Context: itinerary.FormatPlanningContext(itinerary.ContextInput{
			Preferences:         req.Preferences,
			Research:            req.Research,
			Days:                result.Days,
			Meta:                &result.Meta,
			Budget:              req.Budget,
			SelectedAttractions: req.Attractions,
		}),
	}
	log := a.log.With("user_id", userID, "run_id", result.Meta.RunID)

	if a.metricsStore != nil {
		if err := a.metricsStore.RecordMeta(ctx, result.Generation, string(result.Meta.Strategy)); err != nil {
			log.Warn("failed to record metrics", "error", err)
		}
	}

	if opts.Save {
		if a.planRepo == nil {
			out.SideEffectErrors = append(out.SideEffectErrors, "plan history not configured")
		} else if err := a.planRepo.Save(ctx, userID, req, result); err != nil {
			log.Error("failed to save plan", "error", err)
			out.SideEffectErrors = append(out.SideEffectErrors, fmt.Sprintf("save: %v", err))
		}
	}

	if opts.Publish || opts.Draft {
		post, err := a.publish(ctx, req, result, opts.Publish)
		if err != nil {
			log.Error("failed to publish itinerary", "error", err)
			out.SideEffectErrors = append(out.SideEffectErrors, fmt.Sprintf("publish: %v", err))
		}
		out.Post = post
	}

	if opts.Export {
		if a.exporter == nil {
			out.SideEffectErrors = append(out.SideEffectErrors, "export not configured")
		} else {
			uploads, err := a.exporter.Export(ctx, userID, req, result)
			if err != nil {
				log.Error("failed to export itinerary", "error", err)
				out.SideEffectErrors = append(out.SideEffectErrors, fmt.Sprintf("export: %v", err))
			}
			out.Uploads = uploads
		}
	}

	log.Info("trip planned",
		"strategy", result.Meta.Strategy,
		"days", len(result.Days),
		"side_effect_errors", len(out.SideEffectErrors))
	return out, nil
}

func (a *App) publish(ctx context.Context, req itinerary.TripRequest, result itinerary.Result, live bool) (*ghost.Post, error) {
	if a.ghostClient == nil {
		return nil, ghost.ErrNotConfigured
	}
	html, err := itinerary.RenderHTML(result)
	if err != nil {
		return nil, err
	}

	tags := []string{"itinerary"}
	if dest := req.Preferences.DestinationCity.String(); dest != "" {
		tags = append(tags, dest)
	}
	return a.ghostClient.CreatePost(ctx, ghost.PostInput{
		Title:   itinerary.Title(req.Preferences, len(result.Days)),
		HTML:    html,
		Excerpt: Excerpt(result),
		Tags:    tags,
		Publish: live,
	})
}

// Excerpt lists the first stops of the trip, for post summaries.
func Excerpt(result itinerary.Result) string {
	var names []string
	for _, d := range result.Days {
		for _, s := range d.Stops {
			if s.Type == itinerary.BlockActivity && s.Name != "" {
				names = append(names, s.Name)
			}
			if len(names) == 4 {
				return strings.Join(names, ", ") + " and more"
			}
		}
	}
	return strings.Join(names, ", ")
}

// LastPlan returns the user's most recent stored plan.
func (a *App) LastPlan(ctx context.Context, userID string) (itinerary.StoredPlan, error) {
	if a.planRepo == nil {
		return itinerary.StoredPlan{}, fmt.Errorf("plan history not configured")
	}
	return a.planRepo.Latest(ctx, userID)
}

// History lists the user's recent plans, newest first.
func (a *App) History(ctx context.Context, userID string, limit int) ([]itinerary.StoredPlan, error) {
	if a.planRepo == nil {
		return nil, fmt.Errorf("plan history not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	return a.planRepo.ListRecentByUserID(ctx, userID, limit)
}

// Usage returns daily generation totals for the last days.
func (a *App) Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	if a.metricsStore == nil {
		return nil, fmt.Errorf("metrics not configured")
	}
	return a.metricsStore.GetDailyUsage(ctx, days)
}

// CleanupMetrics deletes metric rows older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	if a.metricsStore == nil {
		return 0, fmt.Errorf("metrics not configured")
	}
	return a.metricsStore.Cleanup(ctx, days)
}

// Health reports process stats next to the database size.
func (a *App) Health() metrics.SysHealth {
	path := ""
	if a.cfg != nil {
		path = a.cfg.DatabasePath
	}
	return metrics.GetSysHealth(path)
}

// PublishStored publishes a previously saved plan of userID identified by
// runID, searching the most recent plans.
func (a *App) PublishStored(ctx context.Context, userID, runID string, live bool) (*ghost.Post, error) {
	plans, err := a.History(ctx, userID, 20)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		if p.RunID == runID {
			return a.publish(ctx, p.Request, p.Result, live)
		}
	}
	return nil, itinerary.ErrPlanNotFound
}
