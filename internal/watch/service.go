package watch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akoval/frostwatch/internal/delivery"
	"github.com/akoval/frostwatch/internal/forecast"
	"github.com/akoval/frostwatch/internal/geo"
	"github.com/akoval/frostwatch/internal/notify"
	"github.com/akoval/frostwatch/internal/store"
)

// clusterConcurrency caps how many clusters one tick processes at once.
const clusterConcurrency = 8

// Store is the slice of the persistent store the watch service needs.
type Store interface {
	AllLocations() ([]store.Location, error)
	GetLocation(id string) (store.Location, error)
	LastNotification(locationID string) (*notify.Record, error)
	RecordNotification(intent notify.Intent) (string, error)
	MarkSent(id string) error
	MarkResolved(id string) error
}

// Config carries the externally configured decision values.
type Config struct {
	FreezeThresholdC float64
	WarningWindow    time.Duration
	ClusterRadiusM   float64
	FetchTimeout     time.Duration
}

// Service drives one polling tick end to end: cluster the registered
// locations, resolve one forecast per cluster, analyze each member, and
// run the notification engine over the result. Failures are isolated per
// cluster and per location; a tick always visits everything it can.
type Service struct {
	store    Store
	client   *forecast.Client
	engine   *notify.Engine
	notifier delivery.Notifier
	cfg      Config
}

func New(st Store, client *forecast.Client, engine *notify.Engine, notifier delivery.Notifier, cfg Config) *Service {
	return &Service{
		store:    st,
		client:   client,
		engine:   engine,
		notifier: notifier,
		cfg:      cfg,
	}
}

// RunTick executes one polling pass over all registered locations.
func (s *Service) RunTick(ctx context.Context) error {
	locs, err := s.store.AllLocations()
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	if len(locs) == 0 {
		return nil
	}

	clusters := s.clusterLocations(locs)

	g := &errgroup.Group{}
	g.SetLimit(clusterConcurrency)
	for _, cluster := range clusters {
		cluster := cluster
		g.Go(func() error {
			s.processCluster(ctx, cluster)
			// Cluster failures are logged in place so sibling clusters
			// keep going.
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) clusterLocations(locs []store.Location) []geo.Cluster[store.Location] {
	// Stable order makes greedy cluster membership reproducible across runs.
	sort.Slice(locs, func(i, j int) bool { return locs[i].ID < locs[j].ID })
	return geo.Group(locs, func(l store.Location) geo.Coordinate { return l.Coord }, s.cfg.ClusterRadiusM)
}

func (s *Service) processCluster(ctx context.Context, cluster geo.Cluster[store.Location]) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	series, err := s.client.Fetch(fetchCtx, cluster.Rep)
	cancel()
	if err != nil {
		// Provider failure skips the whole cluster; the next scheduled
		// tick retries, never this one.
		log.Printf("watch: fetch failed for cluster %s (%d locations): %v",
			cluster.Key, len(cluster.Members), err)
		return
	}

	// Every member of the cluster sees the same fetched series.
	for _, loc := range cluster.Members {
		if err := s.processLocation(ctx, loc, series); err != nil {
			log.Printf("watch: location %s (%s): %v", loc.Name, loc.ID, err)
		}
	}
}

func (s *Service) processLocation(ctx context.Context, loc store.Location, series forecast.Series) error {
	analysis, err := forecast.Analyze(series, s.cfg.FreezeThresholdC, s.cfg.WarningWindow)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	return s.engine.WithLocation(loc.ID, func() error {
		last, err := s.store.LastNotification(loc.ID)
		if err != nil {
			return fmt.Errorf("last notification: %w", err)
		}

		intent := s.engine.Decide(loc.ID, analysis, last)
		if intent == nil {
			return nil
		}

		id, err := s.store.RecordNotification(*intent)
		if err != nil {
			return fmt.Errorf("record %s: %w", intent.Kind, err)
		}
		if intent.Kind == notify.KindAllClear && last != nil {
			if err := s.store.MarkResolved(last.ID); err != nil {
				return fmt.Errorf("resolve %s: %w", last.ID, err)
			}
		}

		msg := delivery.RenderIntent(loc.Name, *intent)
		if err := s.notifier.Deliver(ctx, loc.OwnerID, msg); err != nil {
			// Left unsent on purpose: sent_at stays NULL so the delivery
			// failure is visible in the store.
			return fmt.Errorf("deliver %s: %w", intent.Kind, err)
		}
		return s.store.MarkSent(id)
	})
}

// RunMorningSummary computes the once-daily freeze outlook and delivers
// one digest per owner with affected locations. It is gated only by the
// daily trigger and is independent of the per-location state machine.
func (s *Service) RunMorningSummary(ctx context.Context) error {
	locs, err := s.store.AllLocations()
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	if len(locs) == 0 {
		return nil
	}

	var inputs []notify.SummaryInput
	for _, cluster := range s.clusterLocations(locs) {
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		series, err := s.client.Fetch(fetchCtx, cluster.Rep)
		cancel()
		if err != nil {
			log.Printf("watch: summary fetch failed for cluster %s: %v", cluster.Key, err)
			continue
		}

		for _, loc := range cluster.Members {
			analysis, err := forecast.Analyze(series, s.cfg.FreezeThresholdC, s.cfg.WarningWindow)
			if err != nil {
				log.Printf("watch: summary analyze failed for %s: %v", loc.ID, err)
				continue
			}
			inputs = append(inputs, notify.SummaryInput{
				OwnerID:      loc.OwnerID,
				LocationID:   loc.ID,
				LocationName: loc.Name,
				FreezeTime:   analysis.FirstFreezeTime,
				FreezeTemp:   analysis.FirstFreezeTemp,
				Expected:     analysis.FreezeExpectedToday,
			})
		}
	}

	for _, summary := range notify.BuildSummaries(inputs) {
		if err := s.deliverSummary(ctx, summary); err != nil {
			log.Printf("watch: summary for owner %s: %v", summary.OwnerID, err)
		}
	}
	return nil
}

func (s *Service) deliverSummary(ctx context.Context, summary notify.Summary) error {
	var ids []string
	for _, entry := range summary.Entries {
		id, err := s.store.RecordNotification(notify.Intent{
			LocationID:  entry.LocationID,
			Kind:        notify.KindMorningSummary,
			Temperature: entry.FreezeTemp,
			EventTime:   entry.FreezeTime,
		})
		if err != nil {
			return fmt.Errorf("record summary entry: %w", err)
		}
		ids = append(ids, id)
	}

	if err := s.notifier.Deliver(ctx, summary.OwnerID, delivery.RenderSummary(summary)); err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if err := s.store.MarkSent(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AnalyzeLocation fetches and analyzes one location on demand, for the
// HTTP surface.
func (s *Service) AnalyzeLocation(ctx context.Context, locationID string) (forecast.Analysis, error) {
	loc, err := s.store.GetLocation(locationID)
	if err != nil {
		return forecast.Analysis{}, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	series, err := s.client.Fetch(fetchCtx, loc.Coord)
	if err != nil {
		return forecast.Analysis{}, err
	}
	return forecast.Analyze(series, s.cfg.FreezeThresholdC, s.cfg.WarningWindow)
}
