package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ai-trip-planner/internal/itinerary"
)

// formatItineraryMarkdown renders a result for Telegram's legacy Markdown.
func formatItineraryMarkdown(title string, result itinerary.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗺️ *%s*\n", escapeMarkdown(title))

	for _, day := range result.Days {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "*Day %d*", day.Day)
		if day.Theme != "" {
			fmt.Fprintf(&sb, " · %s", escapeMarkdown(day.Theme))
		}
		sb.WriteString("\n")

		if len(day.Stops) == 0 && len(day.Meals) == 0 {
			sb.WriteString("_Free day to explore_\n")
		}
		for _, s := range day.Stops {
			icon := "📍"
			switch s.Type {
			case itinerary.BlockTravel:
				icon = "🚶"
			case itinerary.BlockFlex, itinerary.BlockBuffer:
				icon = "☕"
			}
			fmt.Fprintf(&sb, "%s %s–%s %s", icon, s.StartTime, s.EndTime, escapeMarkdown(s.Name))
			if s.StreetViewURL != "" {
				fmt.Fprintf(&sb, " ([view](%s))", s.StreetViewURL)
			}
			sb.WriteString("\n")
		}
		for _, m := range day.Meals {
			fmt.Fprintf(&sb, "🍽 %s %s\n", m.StartTime, escapeMarkdown(m.Name))
		}
		if r := day.Route; r != nil {
			fmt.Fprintf(&sb, "🚗 %.1f km · %.0f min (%s)\n", float64(r.DistanceM)/1000, float64(r.DurationS)/60, strings.ToLower(r.Mode))
		}
		if day.Notes != "" {
			fmt.Fprintf(&sb, "_%s_\n", escapeMarkdown(day.Notes))
		}
	}

	if result.Meta.Strategy == itinerary.StrategyFallback {
		sb.WriteString("\n⚠️ Generated with the fallback scheduler.\n")
	}
	if n := len(result.Meta.Unplaced); n > 0 {
		fmt.Fprintf(&sb, "\n🧳 %d attraction(s) did not fit: %s\n", n, escapeMarkdown(strings.Join(result.Meta.Unplaced, ", ")))
	}
	return sb.String()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// truncate keeps a message under Telegram's length limit.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxMessageLength-1]) + "…"
}
