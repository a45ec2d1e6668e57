package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlannerDefaults are the tunables of the scheduling pipeline. They can be
// overridden by a YAML file referenced from PLANNER_CONFIG_PATH.
type PlannerDefaults struct {
	DayStart          string `yaml:"day_start"`
	DayEnd            string `yaml:"day_end"`
	BlocksPerDay      int    `yaml:"blocks_per_day"`
	MealOptionLimit   int    `yaml:"meal_option_limit"`
	WeatherLimit      int    `yaml:"weather_limit"`
	ImageryRadiusM    int    `yaml:"imagery_radius_m"`
	ImagerySource     string `yaml:"imagery_source"`
	DefaultTravelMode string `yaml:"default_travel_mode"`
}

// DefaultPlannerDefaults returns the built-in planner settings.
func DefaultPlannerDefaults() PlannerDefaults {
	return PlannerDefaults{
		DayStart:          "09:00",
		DayEnd:            "21:30",
		BlocksPerDay:      3,
		MealOptionLimit:   8,
		WeatherLimit:      5,
		ImageryRadiusM:    75,
		ImagerySource:     "outdoor",
		DefaultTravelMode: "DRIVE",
	}
}

// LoadPlannerDefaults reads the YAML file at path on top of the built-in
// defaults. An empty path returns the defaults unchanged.
func LoadPlannerDefaults(path string) (PlannerDefaults, error) {
	defaults := DefaultPlannerDefaults()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("failed to read planner config %s: %w", path, err)
	}

	loaded := defaults
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return defaults, fmt.Errorf("failed to parse planner config %s: %w", path, err)
	}
	return loaded.withDefaults(), nil
}

// withDefaults fills zero values and clamps out-of-range numbers.
func (p PlannerDefaults) withDefaults() PlannerDefaults {
	d := DefaultPlannerDefaults()
	if p.DayStart == "" {
		p.DayStart = d.DayStart
	}
	if p.DayEnd == "" {
		p.DayEnd = d.DayEnd
	}
	if p.BlocksPerDay < 1 {
		p.BlocksPerDay = 1
	}
	if p.MealOptionLimit <= 0 {
		p.MealOptionLimit = d.MealOptionLimit
	}
	if p.WeatherLimit <= 0 {
		p.WeatherLimit = d.WeatherLimit
	}
	if p.ImageryRadiusM <= 0 {
		p.ImageryRadiusM = d.ImageryRadiusM
	}
	if p.ImagerySource == "" {
		p.ImagerySource = d.ImagerySource
	}
	if p.DefaultTravelMode == "" {
		p.DefaultTravelMode = d.DefaultTravelMode
	}
	return p
}
