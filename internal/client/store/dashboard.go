package store

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/logging"
	"golang.org/x/sync/errgroup"
)

// DashboardSource is the remote side of a DashboardStore.
type DashboardSource interface {
	Summary(ctx context.Context) (models.Summary, error)
	Overdue(ctx context.Context) ([]models.OverdueBorrower, error)
}

// DashboardStore holds the merged summary and overdue list.
type DashboardStore struct {
	src DashboardSource
	log logging.Logger

	mu      sync.RWMutex
	data    models.DashboardData
	loading int
	loaded  bool
}

func NewDashboardStore(src DashboardSource, log logging.Logger) *DashboardStore {
	return &DashboardStore{
		src:  src,
		log:  log.With("store", "dashboard"),
		data: models.DashboardData{OverdueBorrowers: []models.OverdueBorrower{}},
	}
}

// Load fetches both parts concurrently and publishes them together. If either
// request fails the previous data is kept.
func (d *DashboardStore) Load(ctx context.Context) {
	d.mu.Lock()
	d.loading++
	d.mu.Unlock()

	var (
		summary models.Summary
		overdue []models.OverdueBorrower
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = d.src.Summary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		overdue, err = d.src.Overdue(gctx)
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading--

	if err != nil {
		d.log.Error(ctx, "failed to load dashboard", "error", err)
		return
	}
	if overdue == nil {
		overdue = []models.OverdueBorrower{}
	}
	d.data = models.DashboardData{Summary: summary, OverdueBorrowers: overdue}
	d.loaded = true
}

// Data returns a snapshot of the dashboard.
func (d *DashboardStore) Data() models.DashboardData {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := d.data
	out.OverdueBorrowers = slices.Clone(d.data.OverdueBorrowers)
	return out
}

// Loading reports whether a load is in flight.
func (d *DashboardStore) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading > 0
}

func (d *DashboardStore) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}
