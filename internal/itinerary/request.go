package itinerary

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"ai-trip-planner/internal/config"
)

//go:embed schedule_prompt.md
var schedulePrompt string

var schedulePromptTmpl = template.Must(template.New("schedule").Parse(schedulePrompt))

// DayConstraints bound every generated day.
type DayConstraints struct {
	DayStart     string `json:"day_start"`
	DayEnd       string `json:"day_end"`
	BlocksPerDay int    `json:"blocks_per_day"`
}

// PreferenceSummary is the compact traveler profile sent to the generator.
type PreferenceSummary struct {
	Destination   string   `json:"destination"`
	TravelDays    int      `json:"travel_days"`
	StartDate     string   `json:"start_date,omitempty"`
	Travelers     int      `json:"travelers,omitempty"`
	Kids          string   `json:"kids,omitempty"`
	ActivityPref  string   `json:"activity_pref,omitempty"`
	CuisinePref   string   `json:"cuisine_pref,omitempty"`
	TravelMode    string   `json:"travel_mode"`
	NeedCarRental string   `json:"need_car_rental,omitempty"`
	BudgetUSD     *float64 `json:"budget_usd,omitempty"`
}

type activityEntry struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Category      string                  `json:"category,omitempty"`
	DurationHours float64                 `json:"duration_hours"`
	IdealWindow   string                  `json:"ideal_window"`
	AreaBucket    string                  `json:"area_bucket,omitempty"`
	Rating        *float64                `json:"rating,omitempty"`
	ReviewCount   int                     `json:"review_count"`
	Address       string                  `json:"address,omitempty"`
	Hours         map[string]OpeningHours `json:"hours,omitempty"`
}

type mealEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address,omitempty"`
	PriceLevel  *int     `json:"price_level,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`
	AreaBucket  string   `json:"area_bucket,omitempty"`
}

type weatherEntry struct {
	Date          string `json:"date"`
	TempLow       string `json:"temp_low,omitempty"`
	TempHigh      string `json:"temp_high,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Precipitation string `json:"precipitation,omitempty"`
}

// ScheduleRequest is the payload handed to the schedule generator.
type ScheduleRequest struct {
	TravelDays     int               `json:"travel_days"`
	DayConstraints DayConstraints    `json:"day_constraints"`
	Preferences    PreferenceSummary `json:"preferences"`
	Activities     []activityEntry   `json:"activities"`
	MealOptions    []mealEntry       `json:"meal_options"`
	Weather        []weatherEntry    `json:"weather"`
}

// TravelDays clamps the requested day count to at least one.
func TravelDays(prefs Preferences) int {
	return SafeInt(int(prefs.TravelDays), 1)
}

// TravelMode is the upper-cased routing mode, defaulting to fallback.
func TravelMode(prefs Preferences, fallback string) string {
	mode := strings.ToUpper(prefs.TravelMode.String())
	if mode == "" {
		mode = strings.ToUpper(fallback)
	}
	if mode == "" {
		mode = "DRIVE"
	}
	return mode
}

// BuildScheduleRequest assembles the generator payload. It is pure.
func BuildScheduleRequest(prefs Preferences, catalog Catalog, research Research, defaults config.PlannerDefaults) ScheduleRequest {
	days := TravelDays(prefs)

	blocks := defaults.BlocksPerDay
	if blocks < 1 {
		blocks = 1
	}
	dayStart, dayEnd := defaults.DayStart, defaults.DayEnd
	if dayStart == "" {
		dayStart = "09:00"
	}
	if dayEnd == "" {
		dayEnd = "21:30"
	}

	req := ScheduleRequest{
		TravelDays: days,
		DayConstraints: DayConstraints{
			DayStart:     dayStart,
			DayEnd:       dayEnd,
			BlocksPerDay: blocks,
		},
		Preferences: PreferenceSummary{
			Destination:   prefs.DestinationCity.String(),
			TravelDays:    days,
			StartDate:     prefs.StartDate.String(),
			Travelers:     int(prefs.NumPeople),
			Kids:          prefs.Kids.String(),
			ActivityPref:  prefs.ActivityPref.String(),
			CuisinePref:   prefs.CuisinePref.String(),
			TravelMode:    TravelMode(prefs, defaults.DefaultTravelMode),
			NeedCarRental: prefs.NeedCarRental.String(),
			BudgetUSD:     prefs.BudgetUSD.Ptr(),
		},
		Activities:  make([]activityEntry, 0, len(catalog.Activities)),
		MealOptions: make([]mealEntry, 0, len(catalog.Meals)),
		Weather:     []weatherEntry{},
	}

	for _, a := range catalog.Activities {
		req.Activities = append(req.Activities, activityEntry{
			ID:            a.ID,
			Name:          a.Name,
			Category:      a.Category,
			DurationHours: a.DurationHours,
			IdealWindow:   a.IdealWindow,
			AreaBucket:    a.AreaBucket,
			Rating:        a.Rating,
			ReviewCount:   a.ReviewCount,
			Address:       a.Address,
			Hours:         a.Hours,
		})
	}
	for _, m := range catalog.Meals {
		req.MealOptions = append(req.MealOptions, mealEntry{
			ID:          m.ID,
			Name:        m.Name,
			Address:     m.Address,
			PriceLevel:  m.PriceLevel,
			Rating:      m.Rating,
			ReviewCount: m.ReviewCount,
			AreaBucket:  m.AreaBucket,
		})
	}

	limit := defaults.WeatherLimit
	if limit <= 0 {
		limit = 5
	}
	for i, w := range research.Weather {
		if i >= limit {
			break
		}
		req.Weather = append(req.Weather, weatherEntry{
			Date:          w.Date.String(),
			TempLow:       w.TempLow.String(),
			TempHigh:      w.TempHigh.String(),
			Summary:       w.Summary.String(),
			Precipitation: w.Precipitation.String(),
		})
	}

	return req
}

type schedulePromptData struct {
	Payload      string
	TravelDays   int
	DayStart     string
	DayEnd       string
	BlocksPerDay int
}

func buildSchedulePrompt(req ScheduleRequest) (string, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schedule request: %w", err)
	}

	var buf bytes.Buffer
	err = schedulePromptTmpl.Execute(&buf, schedulePromptData{
		Payload:      string(payload),
		TravelDays:   req.TravelDays,
		DayStart:     req.DayConstraints.DayStart,
		DayEnd:       req.DayConstraints.DayEnd,
		BlocksPerDay: req.DayConstraints.BlocksPerDay,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render schedule prompt: %w", err)
	}
	return buf.String(), nil
}
