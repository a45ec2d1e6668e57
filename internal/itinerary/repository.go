package itinerary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrPlanNotFound is returned when a user has no stored plans.
var ErrPlanNotFound = errors.New("trip plan not found")

// StoredPlan is a persisted planning run.
type StoredPlan struct {
	ID          int64
	UserID      string
	RunID       string
	Destination string
	Strategy    Strategy
	TravelDays  int
	Request     TripRequest
	Result      Result
	CreatedAt   time.Time
}

// PlanRepository is a database-backed history of planning runs.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Save stores the request and its result for userID.
func (r *PlanRepository) Save(ctx context.Context, userID string, req TripRequest, result Result) error {
	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal trip request: %w", err)
	}
	resData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal trip result: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO trip_plans
		    (user_id, run_id, destination, strategy, travel_days, request_data, result_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID,
		result.Meta.RunID,
		req.Preferences.DestinationCity.String(),
		string(result.Meta.Strategy),
		result.Meta.TravelDays,
		reqData,
		resData,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save trip plan for user %s: %w", userID, err)
	}
	return nil
}

// Latest returns the most recent plan for userID.
func (r *PlanRepository) Latest(ctx context.Context, userID string) (StoredPlan, error) {
	plans, err := r.ListRecentByUserID(ctx, userID, 1)
	if err != nil {
		return StoredPlan{}, err
	}
	if len(plans) == 0 {
		return StoredPlan{}, ErrPlanNotFound
	}
	return plans[0], nil
}

// ListRecentByUserID retrieves the N most recent plans for a user, newest first.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]StoredPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, run_id, destination, strategy, travel_days, request_data, result_data, created_at
		FROM trip_plans
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent trip plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []StoredPlan
	for rows.Next() {
		var (
			p                StoredPlan
			strategy         string
			reqData, resData []byte
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.RunID, &p.Destination, &strategy, &p.TravelDays, &reqData, &resData, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip plan: %w", err)
		}
		p.Strategy = Strategy(strategy)
		if err := json.Unmarshal(reqData, &p.Request); err != nil {
			return nil, fmt.Errorf("failed to decode stored request %s: %w", p.RunID, err)
		}
		if err := json.Unmarshal(resData, &p.Result); err != nil {
			return nil, fmt.Errorf("failed to decode stored result %s: %w", p.RunID, err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
