// Command transit-query is a one-shot CLI against a transit.Service,
// useful for checking a static/feed setup without standing up the HTTP
// server.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jusunglee/transit-go/internal/alerts"
	"github.com/jusunglee/transit-go/internal/departures"
	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/pkg/transit"
)

var (
	staticRoot  string
	feedBaseURL string
	tz          string
)

func main() {
	root := &cobra.Command{
		Use:   "transit-query",
		Short: "Query a transit static/feed setup directly, without the HTTP server",
	}
	root.PersistentFlags().StringVar(&staticRoot, "static-root", "data/gtfs", "root directory of the per-system GTFS static corpus")
	root.PersistentFlags().StringVar(&feedBaseURL, "feed-base-url", "", "base URL for GTFS-Realtime trip-update and alert feeds")
	root.PersistentFlags().StringVar(&tz, "tz", "America/New_York", "operational time zone for schedule resolution")

	root.AddCommand(newStationsCmd(), newDeparturesCmd(), newAlertsCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func newService() (*transit.Service, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", tz, err)
	}
	return transit.NewService(transit.Config{
		StaticRoot:  staticRoot,
		FeedBaseURL: feedBaseURL,
		Location:    loc,
	})
}

func newStationsCmd() *cobra.Command {
	var query, system string
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List stations matching a name query and/or system",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			stations, err := svc.Stations(transit.StationFilter{
				Query:  query,
				System: models.System(strings.ToUpper(system)),
			})
			if err != nil {
				return err
			}
			if len(stations) == 0 {
				fmt.Println("no matching stations")
				return nil
			}
			for _, s := range stations {
				fmt.Printf("%s\t%s\t%s\n", s.ID, s.Name, s.System)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "q", "", "case-insensitive name substring")
	cmd.Flags().StringVar(&system, "system", "", "LIRR, MNR, or SUBWAY")
	return cmd
}

func newDeparturesCmd() *cobra.Command {
	var limitMinutes int
	var source string
	cmd := &cobra.Command{
		Use:   "departures <stationId>",
		Short: "List upcoming departures for a namespaced station id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			opts := departures.Options{Source: departures.SourceBoth}
			if limitMinutes > 0 {
				opts.LimitMinutes = &limitMinutes
			}
			if source != "" {
				opts.Source = departures.Source(source)
			}
			results, err := svc.Departures(context.Background(), args[0], opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("no departures found")
				return nil
			}
			for _, d := range results {
				fmt.Printf("%s %s -> %s  %s  %s\n", d.ScheduledTime.Format("3:04 PM"), d.RouteID, d.Destination, d.Status, d.Track)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limitMinutes, "limit-minutes", 0, "only include departures within this many minutes (0 = no limit)")
	cmd.Flags().StringVar(&source, "source", "", "realtime, scheduled, or empty for both")
	return cmd
}

func newAlertsCmd() *cobra.Command {
	var stationID, lines string
	var activeNow bool
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List current service alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			filter := alerts.Filter{StationID: stationID, ActiveNow: activeNow, IncludeLabels: true}
			if lines != "" {
				filter.Lines = strings.Split(lines, ",")
			}
			results, err := svc.Alerts(context.Background(), filter)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("no matching alerts")
				return nil
			}
			for _, a := range results {
				fmt.Printf("[%s] %s\n", strings.Join(a.AffectedLines, ","), a.Header)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stationID, "station", "", "namespaced station id")
	cmd.Flags().StringVar(&lines, "lines", "", "comma-separated namespaced route ids")
	cmd.Flags().BoolVar(&activeNow, "active-now", false, "only alerts currently active")
	return cmd
}
