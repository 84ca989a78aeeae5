package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fitlab/internal/modules/results/domain"
	resultsout "fitlab/internal/modules/results/port/out"
	"fitlab/internal/platform/category"
	apperrors "fitlab/internal/platform/errors"
)

// QueryService answers history questions straight from the repository,
// bypassing the bounded cache.
type QueryService struct {
	queries resultsout.ResultQueries
}

func NewQueryService(queries resultsout.ResultQueries) *QueryService {
	return &QueryService{queries: queries}
}

func (s *QueryService) PersonalBests(ctx context.Context, athleteID string) ([]domain.TestResult, error) {
	all, err := s.queries.Find(ctx, domain.Filter{AthleteID: strings.TrimSpace(athleteID), Order: domain.OrderNewest})
	if err != nil {
		return nil, fmt.Errorf("find results: %w", err)
	}
	return domain.PersonalBests(all), nil
}

// PersonalBest returns the best stored result for one test, and false
// when the athlete has never recorded it.
func (s *QueryService) PersonalBest(ctx context.Context, athleteID, testName string) (domain.TestResult, bool, error) {
	testName = strings.TrimSpace(testName)
	if testName == "" {
		return domain.TestResult{}, false, fmt.Errorf("%w: test name is required", apperrors.ErrInvalidInput)
	}
	all, err := s.queries.Find(ctx, domain.Filter{AthleteID: strings.TrimSpace(athleteID), TestName: testName})
	if err != nil {
		return domain.TestResult{}, false, fmt.Errorf("find results: %w", err)
	}
	bests := domain.PersonalBests(all)
	if len(bests) == 0 {
		return domain.TestResult{}, false, nil
	}
	return bests[0], true, nil
}

func (s *QueryService) ByCategory(ctx context.Context, raw string, limit int) ([]domain.TestResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: category is required", apperrors.ErrInvalidInput)
	}
	items, err := s.queries.Find(ctx, domain.Filter{Category: category.Parse(raw), Limit: limit, Order: domain.OrderNewest})
	if err != nil {
		return nil, fmt.Errorf("find results: %w", err)
	}
	return items, nil
}

// Top ranks best first: fastest for Speed, highest everywhere else.
func (s *QueryService) Top(ctx context.Context, testName string, limit int) ([]domain.TestResult, error) {
	if limit <= 0 {
		limit = domain.MaxRecent
	}
	items, err := s.queries.Find(ctx, domain.Filter{TestName: strings.TrimSpace(testName), Limit: limit, Order: domain.OrderBest})
	if err != nil {
		return nil, fmt.Errorf("find results: %w", err)
	}
	return items, nil
}

func (s *QueryService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: result id is required", apperrors.ErrInvalidInput)
	}
	if err := s.queries.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete result %s: %w", id, err)
	}
	return nil
}
