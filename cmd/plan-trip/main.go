// Command plan-trip submits a trip request to the itinerary API, polls the
// job to completion with progress output, and prints the assembled
// itinerary. An interrupted run resumes its pending job on the next
// invocation instead of creating a duplicate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/job"
	"github.com/wanderplan/wanderplan/internal/trip"
	"github.com/wanderplan/wanderplan/pkg/planner"
	"github.com/wanderplan/wanderplan/shared/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		serverURL   = flag.String("server", "http://localhost:8080", "Itinerary API base URL")
		tripType    = flag.String("type", trip.TypeRoundTrip, "Trip type: round_trip or one_way")
		origin      = flag.String("from", "", "Origin city")
		destination = flag.String("to", "", "Destination city")
		departure   = flag.String("depart", "", "Departure date (YYYY-MM-DD)")
		returnDate  = flag.String("return", "", "Return date (YYYY-MM-DD, round trips only)")
		travelers   = flag.Int("travelers", 1, "Number of travelers")
		travelClass = flag.String("class", trip.ClassEconomy, "Travel class")
		interests   = flag.String("interests", "", "Free-text interests, comma separated")
		priceRange  = flag.String("budget", "", "Price range: budget, mid, luxury or any")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	appLogger, err := logger.New(&logger.Config{Level: level, Format: "console", TimeFormat: time.Kitchen})
	if err != nil {
		return err
	}

	req, err := buildRequest(*tripType, *origin, *destination, *departure, *returnDate, *travelers, *travelClass, *interests, *priceRange)
	if err != nil {
		return err
	}

	cachePath, err := planner.DefaultCachePath()
	if err != nil {
		return err
	}

	client := planner.NewClient(&planner.Config{
		BaseURL: *serverURL,
		Logger:  appLogger.Logger,
	})

	session := planner.NewSession(&planner.SessionConfig{
		Client:   client,
		Cache:    planner.NewFileStore(cachePath),
		Observer: newProgressPrinter(),
		Logger:   appLogger.Logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Planning your trip to %s...\n", req.Destination)

	outcome, err := session.StartOrResume(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			appLogger.Info("Interrupted; rerun to resume the pending job",
				slog.String("cache", cachePath),
			)
			return nil
		}
		return err
	}

	if !outcome.Completed() {
		return fmt.Errorf("itinerary generation failed: %s", outcome.FailedFor)
	}

	printItinerary(outcome.Itinerary)
	return nil
}

func buildRequest(tripType, origin, destination, departure, returnDate string, travelers int, travelClass, interests, priceRange string) (*trip.Request, error) {
	req := &trip.Request{
		TripType:    tripType,
		Origin:      origin,
		Destination: destination,
		Travelers:   travelers,
		TravelClass: travelClass,
		Interests:   interests,
		PriceRange:  priceRange,
	}

	if departure != "" {
		d, err := trip.ParseDate(departure)
		if err != nil {
			return nil, err
		}
		req.DepartureDate = d
	}
	if returnDate != "" {
		d, err := trip.ParseDate(returnDate)
		if err != nil {
			return nil, err
		}
		req.ReturnDate = d
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// newProgressPrinter renders one line per stage advance with a step counter.
// Repeat polls of the same stage stay silent.
func newProgressPrinter() planner.ProgressObserver {
	lastIndex := -1
	total := len(job.Stages())
	return func(u planner.ProgressUpdate) {
		if u.StepIndex == lastIndex {
			return
		}
		lastIndex = u.StepIndex
		fmt.Fprintf(os.Stderr, "  [%d/%d] %s\n", u.StepIndex+1, total, u.Message)
	}
}

func printItinerary(it *itinerary.Itinerary) {
	fmt.Printf("\n%s\n", it.Title)
	if it.Personalization != "" {
		fmt.Printf("%s\n", it.Personalization)
	}

	for _, day := range it.Days {
		fmt.Printf("\nDay %d - %s, %d\n", day.Number, day.Date, day.Year)
		for _, a := range day.Activities {
			fmt.Printf("  %-10s %s\n", a.Time, a.Title)
			if a.Description != "" {
				fmt.Printf("             %s\n", a.Description)
			}
		}
	}
}
