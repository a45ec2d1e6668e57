package itinerary

const (
	fallbackStartMinute = 9 * 60
	fallbackDayNote     = "Automatically chunked fallback schedule."
)

// ChunkFallback spreads activities over max(1, travelDays) days in input
// order, placing stops back to back from 09:00 with a fixed block length
// of max(2, 12/blocksPerDay) whole hours. When a chunk would run past
// midnight the block length shrinks. If even one-minute blocks do not fit
// after 09:00 the day starts at 00:00, and a chunk larger than a day of
// one-minute blocks is truncated, so every stop ends after it starts.
func ChunkFallback(activities []Activity, travelDays, blocksPerDay int) []DayPlan {
	if travelDays < 1 {
		travelDays = 1
	}
	if blocksPerDay < 1 {
		blocksPerDay = 1
	}

	perDay := (len(activities) + travelDays - 1) / travelDays
	if perDay < 1 {
		perDay = 1
	}
	blockHours := 12 / blocksPerDay
	if blockHours < 2 {
		blockHours = 2
	}

	days := make([]DayPlan, 0, travelDays)
	for d := 0; d < travelDays; d++ {
		lo := d * perDay
		hi := lo + perDay
		if lo > len(activities) {
			lo = len(activities)
		}
		if hi > len(activities) {
			hi = len(activities)
		}
		chunk := activities[lo:hi]

		dayStart, blockMinutes := fallbackStartMinute, blockHours*60
		if n := len(chunk); n > 0 && dayStart+n*blockMinutes > minutesPerDay {
			blockMinutes = (minutesPerDay - dayStart) / n
			if blockMinutes < 1 {
				dayStart, blockMinutes = 0, minutesPerDay/n
			}
			if blockMinutes < 1 {
				blockMinutes = 1
				chunk = chunk[:minutesPerDay]
			}
		}

		stops := make([]Stop, 0, len(chunk))
		for pos, a := range chunk {
			start := dayStart + pos*blockMinutes
			end := start + blockMinutes
			stops = append(stops, Stop{
				Type:          BlockActivity,
				ActivityID:    a.ID,
				Name:          a.Name,
				Address:       a.Address,
				Coord:         a.Coord,
				StartTime:     FormatMinutes(start),
				EndTime:       FormatMinutes(end),
				DurationHours: round2(float64(blockMinutes) / 60),
				Category:      a.Category,
				Rating:        a.Rating,
				ReviewCount:   a.ReviewCount,
				IdealWindow:   a.IdealWindow,
				Source:        a.Source,
			})
		}

		days = append(days, DayPlan{
			Day:   d + 1,
			Notes: fallbackDayNote,
			Stops: stops,
			Meals: []Meal{},
		})
	}
	return days
}
