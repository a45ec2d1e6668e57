package itinerary

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Catalog is the deduplicated candidate set for one planning run.
type Catalog struct {
	Activities []Activity
	Meals      []MealOption

	activityIndex map[string]int
	mealIndex     map[string]int
}

// Activity looks an activity up by id.
func (c Catalog) Activity(id string) (Activity, bool) {
	i, ok := c.activityIndex[id]
	if !ok {
		return Activity{}, false
	}
	return c.Activities[i], true
}

// Meal looks a meal option up by id.
func (c Catalog) Meal(id string) (MealOption, bool) {
	i, ok := c.mealIndex[id]
	if !ok {
		return MealOption{}, false
	}
	return c.Meals[i], true
}

// ActivityByName is a case-insensitive exact name match; the first wins.
func (c Catalog) ActivityByName(name string) (Activity, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Activity{}, false
	}
	for _, a := range c.Activities {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Activity{}, false
}

// MealByName is a case-insensitive exact name match; the first wins.
func (c Catalog) MealByName(name string) (MealOption, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return MealOption{}, false
	}
	for _, m := range c.Meals {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return MealOption{}, false
}

// NormalizeCatalog converts raw attraction and dining records into
// catalogs. Records without a name are dropped. Meal options keep input
// order and are capped at mealLimit.
func NormalizeCatalog(attractions, dining []RawPlace, mealLimit int) Catalog {
	c := Catalog{
		Activities:    make([]Activity, 0, len(attractions)),
		Meals:         []MealOption{},
		activityIndex: make(map[string]int, len(attractions)),
		mealIndex:     make(map[string]int),
	}

	seen := make(map[string]bool, len(attractions))
	for idx, raw := range attractions {
		a, ok := normalizeAttraction(raw, idx, seen)
		if !ok {
			continue
		}
		c.activityIndex[a.ID] = len(c.Activities)
		c.Activities = append(c.Activities, a)
	}

	seenMeals := make(map[string]bool)
	for idx, raw := range dining {
		if mealLimit > 0 && len(c.Meals) >= mealLimit {
			break
		}
		m, ok := normalizeMeal(raw, idx, seenMeals)
		if !ok {
			continue
		}
		c.mealIndex[m.ID] = len(c.Meals)
		c.Meals = append(c.Meals, m)
	}

	return c
}

func normalizeAttraction(raw RawPlace, idx int, seen map[string]bool) (Activity, bool) {
	name := raw.Name.String()
	if name == "" {
		return Activity{}, false
	}
	category := raw.Category.String()
	hours := ParseOpeningHours(raw.Hours)
	coord := raw.Coord.ptr()

	return Activity{
		ID:            uniqueID(raw.ID.String(), name, "activity", idx, seen),
		Name:          name,
		Address:       raw.Address.String(),
		Coord:         coord,
		Category:      category,
		Rating:        raw.Rating.Ptr(),
		ReviewCount:   nonNegative(int(raw.ReviewCount)),
		DurationHours: EstimateDuration(category),
		IdealWindow:   DeriveIdealWindow(hours, category),
		AreaBucket:    AreaBucket(coord),
		Hours:         hours,
		Source:        sourceOrDefault(raw.Source),
	}, true
}

func normalizeMeal(raw RawPlace, idx int, seen map[string]bool) (MealOption, bool) {
	name := raw.Name.String()
	if name == "" {
		return MealOption{}, false
	}
	coord := raw.Coord.ptr()
	return MealOption{
		ID:          uniqueID("", name, "meal", idx, seen),
		Name:        name,
		Address:     raw.Address.String(),
		Coord:       coord,
		PriceLevel:  raw.PriceLevel.Ptr(),
		Rating:      raw.Rating.Ptr(),
		ReviewCount: nonNegative(int(raw.ReviewCount)),
		AreaBucket:  AreaBucket(coord),
		Source:      sourceOrDefault(raw.Source),
	}, true
}

// uniqueID slugifies the source id (or the name) and suffixes -2, -3, ...
// until the id is unused.
func uniqueID(sourceID, name, kind string, idx int, seen map[string]bool) string {
	base := Slugify(sourceID)
	if base == "" {
		base = Slugify(name)
	}
	if base == "" {
		base = fmt.Sprintf("%s-%d", kind, idx+1)
	}
	id := base
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	seen[id] = true
	return id
}

var durationRules = []struct {
	keywords []string
	hours    float64
}{
	{[]string{"theme_park", "theme park", "amusement", "zoo", "aquarium"}, 3.5},
	{[]string{"museum", "gallery"}, 2.5},
	{[]string{"park", "garden", "trail"}, 2.0},
	{[]string{"tour", "sight", "viewpoint", "tower"}, 1.5},
	{[]string{"shopping", "market"}, 1.5},
}

const defaultDurationHours = 2.0

// EstimateDuration maps a category to a typical visit length in hours.
func EstimateDuration(category string) float64 {
	c := strings.ToLower(category)
	if c == "" {
		return defaultDurationHours
	}
	for _, rule := range durationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(c, kw) {
				return rule.hours
			}
		}
	}
	return defaultDurationHours
}

// Ideal windows.
const (
	WindowMorning   = "morning"
	WindowAfternoon = "afternoon"
	WindowEvening   = "evening"
	WindowSunset    = "sunset"
)

// DeriveIdealWindow labels when an activity is best visited, from the
// average closing time first and the category second.
func DeriveIdealWindow(hours map[string]OpeningHours, category string) string {
	total, count := 0, 0
	for _, h := range hours {
		if h.Open == nil || h.Close == nil {
			continue
		}
		open, okOpen := ParseTimeToMinutes(*h.Open)
		closing, okClose := ParseTimeToMinutes(*h.Close)
		if !okOpen || !okClose {
			continue
		}
		if closing <= open {
			closing += minutesPerDay
		}
		total += closing
		count++
	}
	if count > 0 {
		avg := total / count
		switch {
		case avg <= 16*60:
			return WindowMorning
		case avg >= 20*60:
			return WindowEvening
		}
	}

	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "observatory"), strings.Contains(c, "viewpoint"):
		return WindowSunset
	case strings.Contains(c, "night"), strings.Contains(c, "bar"):
		return WindowEvening
	}
	return WindowAfternoon
}

// AreaBucket rounds a coordinate to a ~1.1 km grid cell key.
func AreaBucket(coord *Coordinate) string {
	if coord == nil {
		return ""
	}
	return bucketPart(coord.Lat) + "_" + bucketPart(coord.Lng)
}

func bucketPart(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

var rangeSeparator = regexp.MustCompile(`\s*(?:–|—|-|\bto\b)\s*`)

// ParseOpeningHours parses lines such as "Monday: 9:00 AM – 5:00 PM" into
// a weekday keyed map. "Closed" days map to nil open and close.
func ParseOpeningHours(lines []string) map[string]OpeningHours {
	out := make(map[string]OpeningHours)
	for _, line := range lines {
		line = cleanSpaces(line)
		colon := strings.Index(line, ":")
		if colon <= 0 {
			continue
		}
		day := strings.ToLower(strings.TrimSpace(line[:colon]))
		rest := strings.TrimSpace(line[colon+1:])
		lower := strings.ToLower(rest)

		switch {
		case strings.Contains(lower, "closed"):
			out[day] = OpeningHours{}
			continue
		case strings.Contains(lower, "24 hours"):
			out[day] = OpeningHours{Open: strPtr("00:00"), Close: strPtr("24:00")}
			continue
		}

		ranges := strings.Split(rest, ",")
		open, _ := splitRange(ranges[0])
		_, closing := splitRange(ranges[len(ranges)-1])
		if open == "" || closing == "" {
			continue
		}
		if !hasMeridiem(open) && hasMeridiem(closing) {
			open += " " + meridiem(closing)
		}
		openMin, okOpen := ParseTimeToMinutes(open)
		closeMin, okClose := ParseTimeToMinutes(closing)
		if !okOpen || !okClose {
			continue
		}
		out[day] = OpeningHours{Open: strPtr(FormatMinutes(openMin)), Close: strPtr(FormatMinutes(closeMin))}
	}
	return out
}

func splitRange(s string) (string, string) {
	parts := rangeSeparator.Split(strings.TrimSpace(s), 2)
	if len(parts) != 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

func hasMeridiem(s string) bool {
	return meridiem(s) != ""
}

func meridiem(s string) string {
	l := strings.ToLower(s)
	switch {
	case strings.HasSuffix(l, "am"):
		return "AM"
	case strings.HasSuffix(l, "pm"):
		return "PM"
	}
	return ""
}

func sourceOrDefault(s FlexString) string {
	if v := s.String(); v != "" {
		return v
	}
	return "google"
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func strPtr(s string) *string {
	return &s
}
