package service

import (
	"context"
	"fmt"
	"strings"

	"fitlab/internal/modules/capture/domain"
	captureout "fitlab/internal/modules/capture/port/out"
	"fitlab/internal/platform/category"
	"fitlab/internal/platform/clock"
	apperrors "fitlab/internal/platform/errors"
	"fitlab/internal/platform/id"
	"fitlab/internal/platform/logging"
)

type CaptureService struct {
	clock      clock.Clock
	resultIDs  id.Generator
	attemptIDs id.Generator
	table      domain.ScoringTable
	percentile captureout.PercentileSource
	fallback   domain.PercentileFunc
	logger     logging.Logger
}

// NewCaptureService scores with the default table. percentile may be
// nil, in which case fallback alone decides.
func NewCaptureService(
	clk clock.Clock,
	resultIDs, attemptIDs id.Generator,
	percentile captureout.PercentileSource,
	fallback domain.PercentileFunc,
	logger logging.Logger,
) *CaptureService {
	if logger == nil {
		logger = logging.Nop()
	}
	if fallback == nil {
		fallback = domain.SyntheticPercentile(uint64(clk.Now().UnixNano()))
	}
	return &CaptureService{
		clock:      clk,
		resultIDs:  resultIDs,
		attemptIDs: attemptIDs,
		table:      domain.DefaultScoringTable(),
		percentile: percentile,
		fallback:   fallback,
		logger:     logger,
	}
}

func (s *CaptureService) WithScoringTable(table domain.ScoringTable) *CaptureService {
	s.table = table
	return s
}

func (s *CaptureService) Rule(c category.Category) domain.ScoringRule {
	return s.table.Rule(c)
}

func (s *CaptureService) Open(testID, testName, rawCategory string) (domain.Attempt, error) {
	if strings.TrimSpace(testID) == "" || strings.TrimSpace(testName) == "" {
		return domain.Attempt{}, fmt.Errorf("%w: test id and name are required", apperrors.ErrInvalidInput)
	}
	return domain.NewAttempt(s.attemptIDs.New(), testID, testName, category.Parse(rawCategory)), nil
}

func (s *CaptureService) Start(attempt *domain.Attempt) error {
	return attempt.Start(s.clock.Now())
}

func (s *CaptureService) AddRepetition(attempt *domain.Attempt) error {
	return attempt.AddRepetition(s.table.Rule(attempt.Category))
}

func (s *CaptureService) Elapsed(attempt *domain.Attempt) {
	attempt.Elapsed(s.clock.Now())
}

// Stop completes the attempt and scores it. The personal-best flag is
// left for the caller, which owns the history.
func (s *CaptureService) Stop(ctx context.Context, attempt *domain.Attempt) (domain.Result, error) {
	m, err := attempt.Stop(s.clock.Now())
	if err != nil {
		return domain.Result{}, err
	}
	score, unit := s.table.Score(attempt.Category, m)
	result := domain.Result{
		ID:          s.resultIDs.New(),
		AttemptID:   attempt.ID,
		TestID:      attempt.TestID,
		TestName:    attempt.TestName,
		Category:    attempt.Category,
		Score:       score,
		Unit:        unit,
		Date:        clock.Date(attempt.StoppedAt),
		Elapsed:     m.Elapsed,
		Reps:        m.Reps,
		StartedAt:   attempt.StartedAt,
		CompletedAt: attempt.StoppedAt,
	}
	result.Percentile = s.percentileFor(ctx, domain.PercentileQuery{
		TestName: result.TestName,
		Category: result.Category.String(),
		Score:    result.Score,
		Unit:     result.Unit,
	})
	attempt.LastResultID = result.ID
	return result, nil
}

func (s *CaptureService) Reset(attempt *domain.Attempt) {
	attempt.Reset()
}

func (s *CaptureService) Beats(c category.Category, candidate, incumbent float64) bool {
	return s.table.Beats(c, candidate, incumbent)
}

func (s *CaptureService) percentileFor(ctx context.Context, query domain.PercentileQuery) int {
	if s.percentile == nil {
		return domain.ClampPercentile(s.fallback())
	}
	p, err := s.percentile.Percentile(ctx, query)
	if err != nil {
		s.logger.Warn("percentile source failed, using synthetic value", "test", query.TestName, "error", err)
		return domain.ClampPercentile(s.fallback())
	}
	return domain.ClampPercentile(p)
}
