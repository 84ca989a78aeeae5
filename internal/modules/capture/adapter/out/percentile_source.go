package out

import (
	"context"
	"fmt"

	analyticsdto "fitlab/internal/modules/analytics/dto"
	analyticsin "fitlab/internal/modules/analytics/port/in"
	"fitlab/internal/modules/capture/domain"
	captureout "fitlab/internal/modules/capture/port/out"
)

type SyntheticPercentileSource struct {
	draw domain.PercentileFunc
}

func NewSyntheticPercentileSource(draw domain.PercentileFunc) captureout.PercentileSource {
	return SyntheticPercentileSource{draw: draw}
}

func (s SyntheticPercentileSource) Percentile(context.Context, domain.PercentileQuery) (int, error) {
	return s.draw(), nil
}

// PluginPercentileSource asks an analytics plugin for norm-referenced
// percentiles.
type PluginPercentileSource struct {
	analytics analyticsin.Usecase
	plugin    string
}

func NewPluginPercentileSource(analytics analyticsin.Usecase, plugin string) captureout.PercentileSource {
	return PluginPercentileSource{analytics: analytics, plugin: plugin}
}

func (s PluginPercentileSource) Percentile(ctx context.Context, query domain.PercentileQuery) (int, error) {
	out, err := s.analytics.Percentile(ctx, analyticsdto.PercentileInput{
		Plugin:   s.plugin,
		TestName: query.TestName,
		Category: query.Category,
		Score:    query.Score,
		Unit:     query.Unit,
	})
	if err != nil {
		return 0, fmt.Errorf("plugin %s percentile: %w", s.plugin, err)
	}
	return out.Percentile, nil
}
