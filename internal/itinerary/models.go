package itinerary

import (
	"encoding/json"

	"ai-trip-planner/internal/llm"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RawCoordinate decodes a {"lat","lng"} object, tolerating strings and
// missing fields. Valid is false unless both components parsed.
type RawCoordinate struct {
	Coordinate
	Valid bool
}

func (c *RawCoordinate) UnmarshalJSON(b []byte) error {
	*c = RawCoordinate{}
	if !isObject(b) {
		return nil
	}
	var fields struct {
		Lat       FlexFloat `json:"lat"`
		Lng       FlexFloat `json:"lng"`
		Latitude  FlexFloat `json:"latitude"`
		Longitude FlexFloat `json:"longitude"`
	}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil
	}
	lat, lng := fields.Lat, fields.Lng
	if !lat.Valid {
		lat = fields.Latitude
	}
	if !lng.Valid {
		lng = fields.Longitude
	}
	if lat.Valid && lng.Valid {
		*c = RawCoordinate{Coordinate: Coordinate{Lat: lat.Value, Lng: lng.Value}, Valid: true}
	}
	return nil
}

func (c RawCoordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Coordinate)
}

func (c RawCoordinate) ptr() *Coordinate {
	if !c.Valid {
		return nil
	}
	coord := c.Coordinate
	return &coord
}

// RawPlace is an attraction or dining record as produced by the research
// tooling. Records that are not JSON objects decode to the zero value and
// are later dropped for having no name.
type RawPlace struct {
	ID          FlexString    `json:"id"`
	Name        FlexString    `json:"name"`
	Address     FlexString    `json:"address"`
	Coord       RawCoordinate `json:"coord"`
	Category    FlexString    `json:"category"`
	Rating      FlexFloat     `json:"rating"`
	ReviewCount FlexInt       `json:"review_count"`
	PriceLevel  PriceLevel    `json:"price_level"`
	Hours       FlexStrings   `json:"hours"`
	Source      FlexString    `json:"source"`
}

func (p *RawPlace) UnmarshalJSON(b []byte) error {
	type plain RawPlace
	var decoded plain
	if !isObject(b) || json.Unmarshal(b, &decoded) != nil {
		*p = RawPlace{}
		return nil
	}
	*p = RawPlace(decoded)
	return nil
}

// OpeningHours is one weekday's window. Both ends are nil on closed days.
type OpeningHours struct {
	Open  *string `json:"open"`
	Close *string `json:"close"`
}

// Activity is a normalized point of interest.
type Activity struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Address       string                  `json:"address"`
	Coord         *Coordinate             `json:"coord,omitempty"`
	Category      string                  `json:"category,omitempty"`
	Rating        *float64                `json:"rating,omitempty"`
	ReviewCount   int                     `json:"review_count"`
	DurationHours float64                 `json:"duration_hours"`
	IdealWindow   string                  `json:"ideal_window"`
	AreaBucket    string                  `json:"area_bucket,omitempty"`
	Hours         map[string]OpeningHours `json:"hours"`
	Source        string                  `json:"source"`
}

// MealOption is a normalized dining candidate.
type MealOption struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Coord       *Coordinate `json:"coord,omitempty"`
	PriceLevel  *int        `json:"price_level,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
	ReviewCount int         `json:"review_count"`
	AreaBucket  string      `json:"area_bucket,omitempty"`
	Source      string      `json:"source"`
}

// BlockType tags a scheduled unit of time.
type BlockType string

const (
	BlockActivity BlockType = "activity"
	BlockMeal     BlockType = "meal"
	BlockFlex     BlockType = "flex"
	BlockBuffer   BlockType = "buffer"
	BlockTravel   BlockType = "travel"
)

// Stop is a validated activity, flex, buffer or travel block.
type Stop struct {
	Type          BlockType   `json:"type"`
	ActivityID    string      `json:"activity_id,omitempty"`
	Name          string      `json:"name"`
	Address       string      `json:"address,omitempty"`
	Coord         *Coordinate `json:"coord,omitempty"`
	StartTime     string      `json:"start_time"`
	EndTime       string      `json:"end_time"`
	DurationHours float64     `json:"duration_hours"`
	Category      string      `json:"category,omitempty"`
	Rating        *float64    `json:"rating,omitempty"`
	ReviewCount   int         `json:"review_count,omitempty"`
	IdealWindow   string      `json:"ideal_window,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	Source        string      `json:"source,omitempty"`
	StreetViewURL string      `json:"streetview_url,omitempty"`
}

// Meal is a validated meal block.
type Meal struct {
	MealID        string      `json:"meal_id"`
	Name          string      `json:"name"`
	Address       string      `json:"address,omitempty"`
	Coord         *Coordinate `json:"coord,omitempty"`
	StartTime     string      `json:"start_time"`
	EndTime       string      `json:"end_time"`
	DurationHours float64     `json:"duration_hours"`
	PriceLevel    *int        `json:"price_level,omitempty"`
	Rating        *float64    `json:"rating,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	Source        string      `json:"source,omitempty"`
}

// RouteInfo is the routed geometry of one day.
type RouteInfo struct {
	DistanceM int               `json:"distance_m"`
	DurationS int               `json:"duration_s"`
	Polyline  string            `json:"polyline"`
	Legs      []json.RawMessage `json:"legs"`
	Mode      string            `json:"mode"`
}

// DayPlan is one itinerary day. Day is always resequenced to 1..N.
type DayPlan struct {
	Day        int        `json:"day"`
	Theme      string     `json:"theme,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Stops      []Stop     `json:"stops"`
	Meals      []Meal     `json:"meals"`
	Route      *RouteInfo `json:"route,omitempty"`
	RouteError string     `json:"route_error,omitempty"`
}

// Strategy names the path that produced the days.
type Strategy string

const (
	StrategyLLM      Strategy = "llm"
	StrategyFallback Strategy = "fallback"
)

// PlanningMeta describes how a schedule was produced.
type PlanningMeta struct {
	RunID           string   `json:"run_id"`
	Strategy        Strategy `json:"strategy"`
	TravelDays      int      `json:"travel_days"`
	TotalCandidates int      `json:"total_candidates"`
	Warnings        []string `json:"warnings"`
	Unplaced        []string `json:"unplaced,omitempty"`
	LLMError        string   `json:"llm_error,omitempty"`
}

// Result is the output of one planning call.
type Result struct {
	Days []DayPlan    `json:"days"`
	Meta PlanningMeta `json:"meta"`

	// Generation is the scheduler call's usage, zero when it never ran.
	Generation llm.AgentMeta `json:"-"`
}

// Preferences is the traveler's intake, decoded tolerantly.
type Preferences struct {
	Name            FlexString `json:"name"`
	DestinationCity FlexString `json:"destination_city"`
	TravelDays      FlexInt    `json:"travel_days"`
	StartDate       FlexString `json:"start_date"`
	NumPeople       FlexInt    `json:"num_people"`
	Kids            FlexString `json:"kids"`
	ActivityPref    FlexString `json:"activity_pref"`
	CuisinePref     FlexString `json:"cuisine_pref"`
	TravelMode      FlexString `json:"travel_mode"`
	NeedCarRental   FlexString `json:"need_car_rental"`
	BudgetUSD       FlexFloat  `json:"budget_usd"`
}

// WeatherDay is one forecast entry.
type WeatherDay struct {
	Date          FlexString `json:"date"`
	TempLow       FlexString `json:"temp_low"`
	TempHigh      FlexString `json:"temp_high"`
	Summary       FlexString `json:"summary"`
	Precipitation FlexString `json:"precipitation"`
}

type Hotel struct {
	Name     FlexString `json:"name"`
	Price    FlexString `json:"price"`
	Currency FlexString `json:"currency"`
	Rating   FlexString `json:"rating"`
}

type CarRental struct {
	Supplier FlexString `json:"supplier"`
	Vehicle  struct {
		Class        FlexString `json:"class"`
		Seats        FlexString `json:"seats"`
		Transmission FlexString `json:"transmission"`
	} `json:"vehicle"`
	Price struct {
		Amount   FlexString `json:"amount"`
		Currency FlexString `json:"currency"`
	} `json:"price"`
}

type FuelPrices struct {
	Location FlexString `json:"location"`
	State    FlexString `json:"state"`
	Regular  FlexString `json:"regular"`
	Midgrade FlexString `json:"midgrade"`
	Premium  FlexString `json:"premium"`
	Diesel   FlexString `json:"diesel"`
	Unit     FlexString `json:"unit"`
	Source   FlexString `json:"source"`

	// Daily car rental rates gathered alongside fuel prices.
	EconomyCarDaily FlexString `json:"economy_car_daily"`
	CompactCarDaily FlexString `json:"compact_car_daily"`
	MidsizeCarDaily FlexString `json:"midsize_car_daily"`
	SUVDaily        FlexString `json:"suv_daily"`
}

// Distance is a precomputed origin/destination pair.
type Distance struct {
	OriginName FlexString `json:"origin_name"`
	DestName   FlexString `json:"dest_name"`
	DistanceM  FlexFloat  `json:"distance_m"`
	DurationS  FlexFloat  `json:"duration_s"`
}

// Research is the bundle gathered by upstream research tooling.
type Research struct {
	Weather     []WeatherDay `json:"weather"`
	Dining      []RawPlace   `json:"dining"`
	Attractions []RawPlace   `json:"attractions"`
	Hotels      []Hotel      `json:"hotels"`
	CarRentals  []CarRental  `json:"car_rentals"`
	FuelPrices  *FuelPrices  `json:"fuel_prices"`
	Distances   []Distance   `json:"distances"`
}

// BudgetRange is an externally estimated trip budget in USD.
type BudgetRange struct {
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	Expected float64 `json:"expected"`
}

// TripRequest is everything the caller hands to BuildSchedule.
type TripRequest struct {
	Preferences Preferences  `json:"preferences"`
	Attractions []RawPlace   `json:"attractions"`
	Research    Research     `json:"research"`
	Budget      *BudgetRange `json:"budget,omitempty"`
}
