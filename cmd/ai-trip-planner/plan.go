package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ai-trip-planner/internal/app"
	"ai-trip-planner/internal/itinerary"

	"github.com/spf13/cobra"
)

var planFlags struct {
	input       string
	userID      string
	save        bool
	publish     bool
	draft       bool
	export      bool
	showContext bool
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build an itinerary from a trip request",
	Long: `Read a trip request JSON document and print the resulting itinerary.

The request has the shape {"preferences": {...}, "attractions": [...],
"research": {...}}. Use --save, --publish and --export to store, post or
archive the result.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVarP(&planFlags.input, "input", "i", "-", "trip request JSON file, - for stdin")
	f.StringVar(&planFlags.userID, "user", "cli", "user id the plan is stored under")
	f.BoolVar(&planFlags.save, "save", false, "store the plan in the database")
	f.BoolVar(&planFlags.publish, "publish", false, "publish the itinerary to Ghost")
	f.BoolVar(&planFlags.draft, "draft", false, "with --publish, create a draft instead of a live post")
	f.BoolVar(&planFlags.export, "export", false, "upload JSON and HTML copies to S3")
	f.BoolVar(&planFlags.showContext, "context", false, "print the planning context instead of JSON")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	req, err := readTripRequest(planFlags.input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out, err := current.app.PlanTrip(cmd.Context(), planFlags.userID, req, app.PlanOptions{
		Save:    planFlags.save,
		Publish: planFlags.publish,
		Draft:   planFlags.draft,
		Export:  planFlags.export,
	})
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	for _, e := range out.SideEffectErrors {
		fmt.Fprintf(stderr, "warning: %s\n", e)
	}
	if out.Post != nil {
		fmt.Fprintf(stderr, "published: %s (%s)\n", out.Post.Title, out.Post.URL)
	}
	for _, u := range out.Uploads {
		fmt.Fprintf(stderr, "exported: %s\n", u.PublicURL)
	}

	if planFlags.showContext {
		fmt.Fprintln(cmd.OutOrStdout(), out.Context)
		return nil
	}
	return printJSON(cmd.OutOrStdout(), out.Result)
}

// readTripRequest decodes the request at path, or from stdin when path is "-".
func readTripRequest(path string, stdin io.Reader) (itinerary.TripRequest, error) {
	var req itinerary.TripRequest
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("failed to open trip request: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("failed to decode trip request: %w", err)
	}
	return req, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
