package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/libdesk/internal/client/client"
	"github.com/dmitrijs2005/libdesk/internal/client/models"
)

const (
	SummaryPath = "/dashboard/summary/"
	OverduePath = "/dashboard/overdue/"
)

type DashboardRepository struct {
	api API
}

func NewDashboardRepository(api API) *DashboardRepository {
	return &DashboardRepository{api: api}
}

func (r *DashboardRepository) Summary(ctx context.Context) (models.Summary, error) {
	var out models.Summary
	if err := r.api.Do(ctx, client.Request{Method: http.MethodGet, Path: SummaryPath, Result: &out}); err != nil {
		return models.Summary{}, fmt.Errorf("dashboard summary: %w", err)
	}
	return out, nil
}

func (r *DashboardRepository) Overdue(ctx context.Context) ([]models.OverdueBorrower, error) {
	var out []models.OverdueBorrower
	if err := r.api.Do(ctx, client.Request{Method: http.MethodGet, Path: OverduePath, Result: &out}); err != nil {
		return nil, fmt.Errorf("dashboard overdue: %w", err)
	}
	if out == nil {
		out = []models.OverdueBorrower{}
	}
	return out, nil
}
