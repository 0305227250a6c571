package provider

import (
	"context"

	"github.com/fightsight/engine/internal/domain/model"
)

// ReportClient calls the report-generation provider over HTTP. It satisfies
// classify.ReportGenerator and shares the classifier's error mapping.
type ReportClient struct {
	inner *ClassifierClient
}

// NewReportClient creates a report client for the given base URL.
func NewReportClient(baseURL, apiKey string, opts ...Option) *ReportClient {
	return &ReportClient{
		inner: NewClassifierClient(baseURL, apiKey, opts...),
	}
}

// Generate submits the aggregated session summary and returns the narrative
// report.
func (r *ReportClient) Generate(ctx context.Context, input model.ReportInput) (model.GeneratedReport, error) {
	var report model.GeneratedReport
	if err := r.inner.post(ctx, r.inner.baseURL+reportPath, input, &report); err != nil {
		return model.GeneratedReport{}, err
	}
	return report, nil
}
