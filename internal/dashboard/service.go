package dashboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crystaldash/crystaldash/internal/store"
)

// ForecastSource provides the point forecast products.
type ForecastSource interface {
	FetchDaily(ctx context.Context) ([]DailyForecast, error)
	FetchHourly(ctx context.Context) ([]HourlyForecast, error)
}

// RoadsSource provides cameras, station readings, and pass conditions.
type RoadsSource interface {
	FetchCameras(ctx context.Context) ([]Camera, error)
	FetchStations(ctx context.Context) ([]StationReading, error)
	FetchPasses(ctx context.Context) ([]PassCondition, error)
}

// AvalancheSource provides the current avalanche forecast, or nil when the
// source is not configured.
type AvalancheSource interface {
	FetchForecast(ctx context.Context) (*AvalancheDanger, error)
}

// ResortSource provides lift and run status.
type ResortSource interface {
	FetchStatus(ctx context.Context) ([]LiftStatus, []RunStatus, error)
}

// FreezingSource provides the freezing-level height series.
type FreezingSource interface {
	FetchFreezingLevel(ctx context.Context) ([]FreezingPoint, error)
}

// ReportSource provides the scraped pass report for one pass slug.
type ReportSource interface {
	FetchPassReport(ctx context.Context, id string) (*PassReport, error)
}

// Sources bundles every upstream the service aggregates. Nil members are
// skipped and their snapshot fields keep their defaults.
type Sources struct {
	Forecast  ForecastSource
	Roads     RoadsSource
	Avalanche AvalancheSource
	Resort    ResortSource
	Freezing  FreezingSource
	Report    ReportSource
}

// Options tunes the service's caching and fetch behaviour.
type Options struct {
	StateTTL      time.Duration // snapshot cache TTL
	ReportTTL     time.Duration // pass-report cache TTL (longer; the page is scraped)
	FetchTimeout  time.Duration // per-upstream-call deadline
	PrimaryPassID string        // pass slug embedded in the snapshot's roads section
}

// Service builds the aggregated Snapshot from all sources and caches it so
// repeated client polls do not re-hit upstream providers.
type Service struct {
	sources Sources
	opts    Options

	cache   *store.Cache[Snapshot]
	reports *store.KeyedCache[PassReport]
}

// NewService creates a Service with the given sources and options.
func NewService(sources Sources, opts Options) *Service {
	if opts.StateTTL <= 0 {
		opts.StateTTL = 60 * time.Second
	}
	if opts.ReportTTL <= 0 {
		opts.ReportTTL = 15 * time.Minute
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 8 * time.Second
	}

	return &Service{
		sources: sources,
		opts:    opts,
		cache:   store.NewCache[Snapshot](opts.StateTTL),
		reports: store.NewKeyedCache[PassReport](opts.ReportTTL),
	}
}

// GetState returns the current Snapshot, rebuilding it only when the cached
// one has aged past the TTL. A fetcher failure never aborts the build; the
// affected field simply keeps its default. Only a panic during assembly
// surfaces as an error.
func (s *Service) GetState(ctx context.Context) (snap Snapshot, err error) {
	if cached, ok := s.cache.Get(); ok {
		return cached, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot assembly failed: %v", r)
		}
	}()

	snap = s.buildSnapshot(ctx)
	s.cache.Set(snap)
	return snap, nil
}

// buildSnapshot fans out to every configured source concurrently and joins
// all results before assembling. Each goroutine writes to its own variable,
// so no result lock is needed.
func (s *Service) buildSnapshot(ctx context.Context) Snapshot {
	buildID := uuid.NewString()
	started := time.Now()

	var (
		wg sync.WaitGroup

		daily    []DailyForecast
		hourly   []HourlyForecast
		freezing []FreezingPoint
		cams     []Camera
		stations []StationReading
		passes   []PassCondition
		report   *PassReport
		aval     *AvalancheDanger
		lifts    []LiftStatus
		runs     []RunStatus
	)

	run := func(name string, fetch func(ctx context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()

			fctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
			defer cancel()

			if err := fetch(fctx); err != nil {
				log.Printf("build %s: %s fetch failed: %v", buildID, name, err)
			}
		}()
	}

	if s.sources.Forecast != nil {
		run("daily forecast", func(ctx context.Context) (err error) {
			daily, err = s.sources.Forecast.FetchDaily(ctx)
			return err
		})
		run("hourly forecast", func(ctx context.Context) (err error) {
			hourly, err = s.sources.Forecast.FetchHourly(ctx)
			return err
		})
	}
	if s.sources.Freezing != nil {
		run("freezing level", func(ctx context.Context) (err error) {
			freezing, err = s.sources.Freezing.FetchFreezingLevel(ctx)
			return err
		})
	}
	if s.sources.Roads != nil {
		run("cameras", func(ctx context.Context) (err error) {
			cams, err = s.sources.Roads.FetchCameras(ctx)
			return err
		})
		run("stations", func(ctx context.Context) (err error) {
			stations, err = s.sources.Roads.FetchStations(ctx)
			return err
		})
		run("passes", func(ctx context.Context) (err error) {
			passes, err = s.sources.Roads.FetchPasses(ctx)
			return err
		})
	}
	if s.sources.Report != nil && s.opts.PrimaryPassID != "" {
		run("pass report", func(ctx context.Context) (err error) {
			report, err = s.passReport(ctx, s.opts.PrimaryPassID)
			return err
		})
	}
	if s.sources.Avalanche != nil {
		run("avalanche forecast", func(ctx context.Context) (err error) {
			aval, err = s.sources.Avalanche.FetchForecast(ctx)
			return err
		})
	}
	if s.sources.Resort != nil {
		run("lift status", func(ctx context.Context) (err error) {
			lifts, runs, err = s.sources.Resort.FetchStatus(ctx)
			return err
		})
	}

	wg.Wait()

	snap := Snapshot{
		GeneratedAt: time.Now().UTC(),
		BuildID:     buildID,
		Forecast: ForecastSection{
			Daily:         emptyIfNil(daily),
			Hourly:        emptyIfNil(hourly),
			FreezingLevel: emptyIfNil(freezing),
		},
		Cams:    emptyIfNil(cams),
		Weather: emptyIfNil(stations),
		Roads: RoadsSection{
			Passes: emptyIfNil(passes),
			Report: report,
		},
		Aval:  aval,
		Snow:  DeriveSnow(daily),
		Lifts: emptyIfNil(lifts),
		Runs:  emptyIfNil(runs),
	}

	log.Printf("build %s: snapshot assembled in %s", buildID, time.Since(started).Round(time.Millisecond))
	return snap
}

// PassReport returns the scraped report for a pass slug, served from the
// report cache when fresh.
func (s *Service) PassReport(ctx context.Context, id string) (PassReport, error) {
	report, err := s.passReport(ctx, id)
	if err != nil {
		return PassReport{}, err
	}
	return *report, nil
}

func (s *Service) passReport(ctx context.Context, id string) (*PassReport, error) {
	if cached, ok := s.reports.Get(id); ok {
		return &cached, nil
	}
	if s.sources.Report == nil {
		return nil, fmt.Errorf("pass report source not configured")
	}

	report, err := s.sources.Report.FetchPassReport(ctx, id)
	if err != nil {
		return nil, err
	}

	s.reports.Set(id, *report)
	return report, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
