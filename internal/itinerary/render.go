package itinerary

import (
	"bytes"
	"fmt"
	"html/template"
)

var itineraryHTML = template.Must(template.New("itinerary").Funcs(template.FuncMap{
	"km":      func(m int) string { return fmt.Sprintf("%.1f", float64(m)/1000) },
	"minutes": func(s int) string { return fmt.Sprintf("%.0f", float64(s)/60) },
}).Parse(`{{range .Days}}<h2>Day {{.Day}}{{if .Theme}}: {{.Theme}}{{end}}</h2>
{{if .Summary}}<p>{{.Summary}}</p>
{{end}}<ul>
{{range .Stops}}<li><strong>{{.StartTime}}–{{.EndTime}}</strong> {{.Name}}{{if .Address}} <em>({{.Address}})</em>{{end}}{{if .Notes}}<br>{{.Notes}}{{end}}{{if .StreetViewURL}}<br><img src="{{.StreetViewURL}}" alt="{{.Name}}">{{end}}</li>
{{end}}{{range .Meals}}<li><strong>{{.StartTime}}</strong> Meal at {{.Name}}{{if .Address}} <em>({{.Address}})</em>{{end}}</li>
{{end}}</ul>
{{with .Route}}<p>Route: {{km .DistanceM}} km, {{minutes .DurationS}} min ({{.Mode}})</p>
{{end}}{{if .Notes}}<p><em>{{.Notes}}</em></p>
{{end}}{{end}}`))

// Title is a human-readable headline for a trip.
func Title(prefs Preferences, days int) string {
	dest := prefs.DestinationCity.String()
	if dest == "" {
		return fmt.Sprintf("%d-Day Itinerary", days)
	}
	unit := "Days"
	if days == 1 {
		unit = "Day"
	}
	return fmt.Sprintf("%d %s in %s", days, unit, dest)
}

// RenderHTML renders the itinerary days as an HTML fragment for publishing.
func RenderHTML(result Result) (string, error) {
	var buf bytes.Buffer
	if err := itineraryHTML.Execute(&buf, result); err != nil {
		return "", fmt.Errorf("failed to render itinerary html: %w", err)
	}
	return buf.String(), nil
}
