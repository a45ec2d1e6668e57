package itinerary

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	warnMissingDays  = "Schedule missing 'days' array"
	warnNoUsableDays = "Schedule did not contain any usable days."
)

// Materialized is what the materializer salvaged from a proposal. An empty
// Days slice means nothing usable was found.
type Materialized struct {
	Days     []DayPlan
	Warnings []string
	Unplaced []string
}

// Usable reports whether at least one day survived validation.
func (m Materialized) Usable() bool {
	return len(m.Days) > 0
}

type proposedDay struct {
	Day      FlexInt         `json:"day"`
	Theme    FlexString      `json:"theme"`
	Summary  FlexString      `json:"summary"`
	Notes    FlexString      `json:"notes"`
	DayStart json.RawMessage `json:"day_start"`
	Blocks   json.RawMessage `json:"blocks"`
}

type proposedBlock struct {
	Type          FlexString      `json:"type"`
	ActivityID    FlexString      `json:"activity_id"`
	MealID        FlexString      `json:"meal_id"`
	ActivityName  FlexString      `json:"activity_name"`
	Name          FlexString      `json:"name"`
	StartTime     json.RawMessage `json:"start_time"`
	EndTime       json.RawMessage `json:"end_time"`
	DurationHours FlexFloat       `json:"duration_hours"`
	Notes         FlexString      `json:"notes"`
}

func (b proposedBlock) kind() BlockType {
	switch t := BlockType(strings.ToLower(b.Type.String())); t {
	case BlockMeal, BlockFlex, BlockBuffer, BlockTravel:
		return t
	default:
		return BlockActivity
	}
}

func (b proposedBlock) ref() string {
	if id := b.ActivityID.String(); id != "" {
		return id
	}
	return b.MealID.String()
}

func (b proposedBlock) label() string {
	if n := b.ActivityName.String(); n != "" {
		return n
	}
	return b.Name.String()
}

// describe names a block for warnings.
func (b proposedBlock) describe() string {
	if l := b.label(); l != "" {
		return l
	}
	if r := b.ref(); r != "" {
		return r
	}
	return "unnamed"
}

type sortableDay struct {
	plan     DayPlan
	proposed int
	order    int
}

// Materialize validates an untrusted proposal against the catalog.
// It never fails; unusable input yields an empty Days slice plus warnings.
func Materialize(proposal map[string]json.RawMessage, catalog Catalog, dayStart string, travelDays int) Materialized {
	out := Materialized{Warnings: []string{}}
	out.Unplaced = decodeUnplaced(proposal["unplaced"])

	var rawDays []json.RawMessage
	if raw, ok := proposal["days"]; !ok || json.Unmarshal(raw, &rawDays) != nil || rawDays == nil {
		out.Warnings = append(out.Warnings, warnMissingDays)
		return out
	}

	defaultStart, ok := ParseTimeToMinutes(dayStart)
	if !ok {
		defaultStart = 9 * 60
	}

	var days []sortableDay
	usable := 0
	for idx, raw := range rawDays {
		if !isObject(raw) {
			out.Warnings = append(out.Warnings, fmt.Sprintf("Skipping day entry %d: not an object.", idx+1))
			continue
		}
		var pd proposedDay
		if err := json.Unmarshal(raw, &pd); err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("Skipping day entry %d: %v.", idx+1, err))
			continue
		}

		label := int(pd.Day)
		if label <= 0 {
			label = idx + 1
		}
		plan, warnings := materializeDay(pd, label, catalog, defaultStart)
		out.Warnings = append(out.Warnings, warnings...)
		if len(plan.Stops)+len(plan.Meals) > 0 {
			usable++
		}
		days = append(days, sortableDay{plan: plan, proposed: label, order: idx})
	}

	if usable == 0 {
		out.Warnings = append(out.Warnings, warnNoUsableDays)
		return out
	}

	sort.SliceStable(days, func(i, j int) bool {
		if days[i].proposed != days[j].proposed {
			return days[i].proposed < days[j].proposed
		}
		return days[i].order < days[j].order
	})

	out.Days = make([]DayPlan, 0, len(days))
	for i, d := range days {
		d.plan.Day = i + 1
		out.Days = append(out.Days, d.plan)
	}

	if len(out.Days) < travelDays {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"Schedule covers %d day(s) but %d were requested.", len(out.Days), travelDays))
	}
	return out
}

func materializeDay(pd proposedDay, label int, catalog Catalog, defaultStart int) (DayPlan, []string) {
	plan := DayPlan{
		Day:     label,
		Theme:   pd.Theme.String(),
		Summary: pd.Summary.String(),
		Notes:   pd.Notes.String(),
		Stops:   []Stop{},
		Meals:   []Meal{},
	}
	var warnings []string

	cursor := defaultStart
	if start, ok := ParseTimeToMinutes(decodeAny(pd.DayStart)); ok {
		cursor = start
	}

	var rawBlocks []json.RawMessage
	if len(pd.Blocks) > 0 && string(pd.Blocks) != "null" {
		if err := json.Unmarshal(pd.Blocks, &rawBlocks); err != nil {
			warnings = append(warnings, fmt.Sprintf("Day %d: 'blocks' is not an array.", label))
		}
	}

	for idx, raw := range rawBlocks {
		if !isObject(raw) {
			warnings = append(warnings, fmt.Sprintf("Day %d: skipping block %d: not an object.", label, idx+1))
			continue
		}
		var block proposedBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			warnings = append(warnings, fmt.Sprintf("Day %d: skipping block %d: %v.", label, idx+1, err))
			continue
		}

		end, warning := placeBlock(&plan, block, catalog, cursor)
		if warning != "" {
			warnings = append(warnings, fmt.Sprintf("Day %d: %s", label, warning))
			continue
		}
		cursor = end
	}

	return plan, warnings
}

// placeBlock resolves a block, appends it to plan and returns its end
// minute. A non-empty warning means the block was dropped.
func placeBlock(plan *DayPlan, block proposedBlock, catalog Catalog, cursor int) (int, string) {
	start, ok := ParseTimeToMinutes(decodeAny(block.StartTime))
	if !ok {
		start = cursor
	}
	explicitEnd, hasEnd := ParseTimeToMinutes(decodeAny(block.EndTime))
	kind := block.kind()

	switch kind {
	case BlockMeal:
		meal, found := catalog.Meal(block.ref())
		if !found {
			meal, found = catalog.MealByName(block.label())
		}
		if !found {
			return 0, fmt.Sprintf("dropped meal block %q: not among meal options.", block.describe())
		}
		end, warning := blockEnd(start, explicitEnd, hasEnd, math.Max(block.DurationHours.Value, 1.0), 1.0)
		if warning != "" {
			return 0, fmt.Sprintf("dropped meal block %q: %s", block.describe(), warning)
		}
		plan.Meals = append(plan.Meals, Meal{
			MealID:        meal.ID,
			Name:          meal.Name,
			Address:       meal.Address,
			Coord:         meal.Coord,
			StartTime:     FormatMinutes(start),
			EndTime:       FormatMinutes(end),
			DurationHours: round2(float64(end-start) / 60),
			PriceLevel:    meal.PriceLevel,
			Rating:        meal.Rating,
			Notes:         block.Notes.String(),
			Source:        meal.Source,
		})
		return end, ""

	case BlockFlex, BlockBuffer, BlockTravel:
		name := block.label()
		if name == "" {
			name = "Flex time"
			if kind == BlockTravel {
				name = "Travel time"
			}
		}
		end, warning := blockEnd(start, explicitEnd, hasEnd, math.Max(block.DurationHours.Value, 1.0), 1.0)
		if warning != "" {
			return 0, fmt.Sprintf("dropped %s block %q: %s", kind, name, warning)
		}
		plan.Stops = append(plan.Stops, Stop{
			Type:          kind,
			Name:          name,
			StartTime:     FormatMinutes(start),
			EndTime:       FormatMinutes(end),
			DurationHours: round2(float64(end-start) / 60),
			Notes:         block.Notes.String(),
		})
		return end, ""

	default:
		act, found := catalog.Activity(block.ref())
		if !found {
			act, found = catalog.ActivityByName(block.label())
		}
		if !found {
			return 0, fmt.Sprintf("dropped activity block %q: not in the activity catalog.", block.describe())
		}
		end, warning := blockEnd(start, explicitEnd, hasEnd, act.DurationHours, math.Max(act.DurationHours, 1.0))
		if warning != "" {
			return 0, fmt.Sprintf("dropped activity block %q: %s", act.Name, warning)
		}
		plan.Stops = append(plan.Stops, Stop{
			Type:          BlockActivity,
			ActivityID:    act.ID,
			Name:          act.Name,
			Address:       act.Address,
			Coord:         act.Coord,
			StartTime:     FormatMinutes(start),
			EndTime:       FormatMinutes(end),
			DurationHours: round2(float64(end-start) / 60),
			Category:      act.Category,
			Rating:        act.Rating,
			ReviewCount:   act.ReviewCount,
			IdealWindow:   act.IdealWindow,
			Notes:         block.Notes.String(),
			Source:        act.Source,
		})
		return end, ""
	}
}

// blockEnd derives the end minute: the explicit end when given, otherwise
// start plus hours. An end at or before start is replaced by start plus
// repairHours. Ends are capped at midnight, and a block that cannot end
// after its start is rejected.
func blockEnd(start, explicitEnd int, hasEnd bool, hours, repairHours float64) (int, string) {
	end := start + hoursToMinutes(hours)
	if hasEnd {
		end = explicitEnd
	}
	if end <= start {
		end = start + hoursToMinutes(repairHours)
	}
	if end > minutesPerDay {
		end = minutesPerDay
	}
	if end <= start {
		return 0, fmt.Sprintf("starts at %s, too late to fit before midnight.", FormatMinutes(start))
	}
	return end, ""
}

func decodeUnplaced(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if isObject(item) {
			var ref struct {
				ActivityID FlexString `json:"activity_id"`
				ID         FlexString `json:"id"`
				Name       FlexString `json:"name"`
			}
			if json.Unmarshal(item, &ref) != nil {
				continue
			}
			for _, v := range []FlexString{ref.ActivityID, ref.ID, ref.Name} {
				if s := v.String(); s != "" {
					out = append(out, s)
					break
				}
			}
			continue
		}
		var s FlexString
		_ = s.UnmarshalJSON(item)
		if s.String() != "" {
			out = append(out, s.String())
		}
	}
	return out
}
