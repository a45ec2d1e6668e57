package itinerary

import (
	"fmt"
	"strings"
)

// ContextInput is everything FormatPlanningContext can render. Every field
// is optional.
type ContextInput struct {
	Preferences         Preferences
	Research            Research
	Days                []DayPlan
	Meta                *PlanningMeta
	Budget              *BudgetRange
	SelectedAttractions []RawPlace
}

// FormatPlanningContext renders preferences, the itinerary outline and the
// research bundle as a plain-text briefing for downstream agents.
func FormatPlanningContext(in ContextInput) string {
	var b strings.Builder
	p := in.Preferences

	b.WriteString("=== USER PREFERENCES ===\n")
	fmt.Fprintf(&b, "Name: %s\n", orNA(p.Name.String()))
	fmt.Fprintf(&b, "Destination: %s\n", orNA(p.DestinationCity.String()))
	fmt.Fprintf(&b, "Duration: %s days\n", intOrNA(int(p.TravelDays)))
	fmt.Fprintf(&b, "Start Date: %s\n", orNA(p.StartDate.String()))
	fmt.Fprintf(&b, "Budget: $%s USD\n", floatOrNA(p.BudgetUSD))
	fmt.Fprintf(&b, "Travelers: %s people\n", intOrNA(int(p.NumPeople)))
	fmt.Fprintf(&b, "Kids: %s\n", orNA(p.Kids.String()))
	fmt.Fprintf(&b, "Activity Preference: %s\n", orNA(p.ActivityPref.String()))
	fmt.Fprintf(&b, "Cuisine Preference: %s\n", orNA(p.CuisinePref.String()))
	fmt.Fprintf(&b, "Car Rental: %s\n\n", orNA(p.NeedCarRental.String()))

	if len(in.SelectedAttractions) > 0 {
		b.WriteString("=== USER-APPROVED ATTRACTIONS ===\n")
		n := 0
		for _, a := range in.SelectedAttractions {
			if a.Name.String() == "" {
				continue
			}
			n++
			fmt.Fprintf(&b, "%d. %s - %s\n", n, a.Name.String(), orNA(a.Address.String()))
		}
		b.WriteString("\n")
	}

	if len(in.Days) > 0 {
		b.WriteString("=== ITINERARY OUTLINE ===\n")
		if in.Meta != nil && in.Meta.Strategy != "" {
			fmt.Fprintf(&b, "Strategy: %s\n", in.Meta.Strategy)
		}
		for _, day := range in.Days {
			names := make([]string, 0, len(day.Stops))
			for _, s := range day.Stops {
				names = append(names, orDefault(s.Name, "Attraction"))
			}
			summary := strings.Join(names, ", ")
			if summary == "" {
				summary = "Flex time / explore"
			}
			fmt.Fprintf(&b, "Day %d: %s\n", day.Day, summary)
			for _, m := range day.Meals {
				fmt.Fprintf(&b, "  • Meal at %s: %s\n", m.StartTime, m.Name)
			}
			if r := day.Route; r != nil && r.DistanceM > 0 {
				fmt.Fprintf(&b, "  • Route: %.1f km, %.0f min (%s)\n",
					float64(r.DistanceM)/1000, float64(r.DurationS)/60, orDefault(r.Mode, "DRIVE"))
			}
			for _, s := range day.Stops {
				if s.StreetViewURL != "" {
					fmt.Fprintf(&b, "  • Street View preview: %s: %s\n", s.Name, s.StreetViewURL)
				}
			}
		}
		if in.Budget != nil {
			fmt.Fprintf(&b, "Budget range (USD): $%.0f – $%.0f (expected $%.0f)\n",
				in.Budget.Low, in.Budget.High, in.Budget.Expected)
		}
		b.WriteString("\n")
	}

	r := in.Research
	if len(r.Weather) > 0 {
		b.WriteString("=== WEATHER FORECAST ===\n")
		for i, w := range r.Weather {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "%s: %s to %s, %s, Precipitation: %s\n",
				orNA(w.Date.String()), orNA(w.TempLow.String()), orNA(w.TempHigh.String()),
				orNA(w.Summary.String()), orNA(w.Precipitation.String()))
		}
		b.WriteString("\n")
	}

	if len(r.Attractions) > 0 {
		b.WriteString("=== TOP ATTRACTIONS ===\n")
		for i, a := range r.Attractions {
			if i >= 8 {
				break
			}
			fmt.Fprintf(&b, "%d. %s (%s, %d reviews) - %s\n",
				i+1, orDefault(a.Name.String(), "Attraction"), ratingLabel(a.Rating), int(a.ReviewCount), orNA(a.Address.String()))
		}
		b.WriteString("\n")
	}

	if len(r.Dining) > 0 {
		b.WriteString("=== RESTAURANT RECOMMENDATIONS ===\n")
		for i, d := range r.Dining {
			if i >= 6 {
				break
			}
			level := 2
			if d.PriceLevel.Valid {
				level = d.PriceLevel.Value
			}
			fmt.Fprintf(&b, "%d. %s (%s, %s) - %s\n",
				i+1, orDefault(d.Name.String(), "Restaurant"), ratingLabel(d.Rating), strings.Repeat("$", level), orNA(d.Address.String()))
		}
		b.WriteString("\n")
	}

	if len(r.Hotels) > 0 {
		b.WriteString("=== HOTEL OPTIONS ===\n")
		for i, h := range r.Hotels {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "%d. %s - $%s %s - Rating: %s\n",
				i+1, orNA(h.Name.String()), orNA(h.Price.String()), orDefault(h.Currency.String(), "USD"), orNA(h.Rating.String()))
		}
		b.WriteString("\n")
	}

	if len(r.CarRentals) > 0 {
		b.WriteString("=== CAR RENTAL OPTIONS ===\n")
		for i, c := range r.CarRentals {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "%d. %s - %s (%s seats, %s) - $%s %s\n",
				i+1, orNA(c.Supplier.String()), orNA(c.Vehicle.Class.String()), orNA(c.Vehicle.Seats.String()),
				orNA(c.Vehicle.Transmission.String()), orNA(c.Price.Amount.String()), orDefault(c.Price.Currency.String(), "USD"))
		}
		b.WriteString("\n")
	}

	if fp := r.FuelPrices; fp != nil {
		unit := orDefault(fp.Unit.String(), "gallon")
		b.WriteString("=== FUEL PRICES ===\n")
		fmt.Fprintf(&b, "Location: %s (%s)\n", orNA(fp.Location.String()), orNA(fp.State.String()))
		fmt.Fprintf(&b, "Regular: $%s/%s\n", orNA(fp.Regular.String()), unit)
		fmt.Fprintf(&b, "Midgrade: $%s/%s\n", orNA(fp.Midgrade.String()), unit)
		fmt.Fprintf(&b, "Premium: $%s/%s\n", orNA(fp.Premium.String()), unit)
		fmt.Fprintf(&b, "Diesel: $%s/%s\n", orNA(fp.Diesel.String()), unit)
		fmt.Fprintf(&b, "Source: %s\n\n", orNA(fp.Source.String()))

		var rates []string
		for _, r := range []struct {
			label string
			rate  FlexString
		}{
			{"Economy", fp.EconomyCarDaily},
			{"Compact", fp.CompactCarDaily},
			{"Midsize", fp.MidsizeCarDaily},
			{"SUV", fp.SUVDaily},
		} {
			if v := r.rate.String(); v != "" && v != "0" {
				rates = append(rates, fmt.Sprintf("%s: $%s/day", r.label, v))
			}
		}
		if len(rates) > 0 {
			b.WriteString("=== CAR RENTAL DAILY RATES ===\n")
			b.WriteString(strings.Join(rates, "\n"))
			b.WriteString("\n\n")
		}
	}

	if len(r.Distances) > 0 {
		b.WriteString("=== DISTANCES BETWEEN TOP ATTRACTIONS ===\n")
		for i, d := range r.Distances {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "%s → %s: %.1f km, %.0f min drive\n",
				orDefault(d.OriginName.String(), "Origin"), orDefault(d.DestName.String(), "Dest"),
				d.DistanceM.Value/1000, d.DurationS.Value/60)
		}
		b.WriteString("\n")
	}

	if in.Meta != nil && len(in.Meta.Warnings) > 0 {
		b.WriteString("=== PLANNING NOTES ===\n")
		for _, w := range in.Meta.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func orNA(s string) string {
	return orDefault(s, "N/A")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func intOrNA(n int) string {
	if n <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", n)
}

func floatOrNA(f FlexFloat) string {
	if !f.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.0f", f.Value)
}

func ratingLabel(r FlexFloat) string {
	if !r.Valid || r.Value == 0 {
		return "No rating"
	}
	return fmt.Sprintf("%g⭐", r.Value)
}
