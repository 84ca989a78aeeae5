package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fitlab/internal/modules/capture/domain"
	"fitlab/internal/modules/capture/dto"
	capturein "fitlab/internal/modules/capture/port/in"
	captureout "fitlab/internal/modules/capture/port/out"
	"fitlab/internal/modules/capture/service"
	catalogin "fitlab/internal/modules/catalog/port/in"
	resultsdto "fitlab/internal/modules/results/dto"
	resultsin "fitlab/internal/modules/results/port/in"
	apperrors "fitlab/internal/platform/errors"
	"fitlab/internal/platform/logging"
)

// Interactor drives the current attempt. Operations are serialized so
// a ticking TUI and concurrent HTTP calls see one consistent attempt.
type Interactor struct {
	mu       sync.Mutex
	svc      *service.CaptureService
	catalog  catalogin.Usecase
	results  resultsin.Usecase
	attempts captureout.AttemptStore
	journal  captureout.ResultJournal
	logger   logging.Logger
}

// NewInteractor wires the capture flow. journal and results may be nil.
func NewInteractor(
	svc *service.CaptureService,
	catalog catalogin.Usecase,
	results resultsin.Usecase,
	attempts captureout.AttemptStore,
	journal captureout.ResultJournal,
	logger logging.Logger,
) capturein.Usecase {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Interactor{svc: svc, catalog: catalog, results: results, attempts: attempts, journal: journal, logger: logger}
}

func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (dto.AttemptOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	current, err := i.attempts.LoadActive(ctx)
	switch {
	case err == nil && current.Phase == domain.PhaseRunning:
		return dto.AttemptOutput{}, fmt.Errorf("%w: %s", apperrors.ErrActiveAttemptExists, current.TestName)
	case err != nil && !errors.Is(err, apperrors.ErrNoActiveAttempt):
		return dto.AttemptOutput{}, err
	}

	test, err := i.catalog.GetTest(ctx, input.TestID)
	if err != nil {
		return dto.AttemptOutput{}, err
	}
	attempt, err := i.svc.Open(test.ID, test.Name, test.Category)
	if err != nil {
		return dto.AttemptOutput{}, err
	}
	if err := i.attempts.SaveActive(ctx, attempt); err != nil {
		return dto.AttemptOutput{}, err
	}
	return i.toOutput(attempt), nil
}

func (i *Interactor) Start(ctx context.Context) (dto.AttemptOutput, error) {
	return i.mutate(ctx, func(attempt *domain.Attempt) error {
		return i.svc.Start(attempt)
	})
}

// AddRepetition applies count reps one at a time and stops at the first
// rejection. Reps already applied are kept.
func (i *Interactor) AddRepetition(ctx context.Context, input dto.RepetitionInput) (dto.AttemptOutput, error) {
	if input.Count < 1 {
		return dto.AttemptOutput{}, fmt.Errorf("%w: repetition count must be at least 1", apperrors.ErrInvalidInput)
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	attempt, err := i.attempts.LoadActive(ctx)
	if err != nil {
		return dto.AttemptOutput{}, err
	}
	applied := 0
	var repErr error
	for n := 0; n < input.Count; n++ {
		if repErr = i.svc.AddRepetition(&attempt); repErr != nil {
			break
		}
		applied++
	}
	if applied > 0 {
		if err := i.attempts.SaveActive(ctx, attempt); err != nil {
			return dto.AttemptOutput{}, err
		}
	}
	return i.toOutput(attempt), repErr
}

func (i *Interactor) Stop(ctx context.Context, input dto.StopInput) (dto.StopOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	attempt, err := i.attempts.LoadActive(ctx)
	if err != nil {
		return dto.StopOutput{}, err
	}
	result, err := i.svc.Stop(ctx, &attempt)
	if err != nil {
		return dto.StopOutput{}, err
	}
	result.AthleteID = input.AthleteID
	result.Notes = input.Notes
	result.PersonalBest = i.personalBest(ctx, result)

	if err := i.attempts.SaveActive(ctx, attempt); err != nil {
		return dto.StopOutput{}, err
	}
	out := dto.StopOutput{Attempt: i.toOutput(attempt), Result: toResultOutput(result)}
	if i.journal != nil {
		path, err := i.journal.Write(ctx, result)
		if err != nil {
			i.logger.Warn("write result note failed", "result_id", result.ID, "error", err)
		}
		out.NotePath = path
	}
	if i.results != nil {
		if err := i.results.Submit(ctx, toSubmission(result)); err != nil {
			return out, fmt.Errorf("submit result %s: %w", result.ID, err)
		}
	}
	return out, nil
}

// Reset never fails on a missing attempt; there is simply nothing to clear.
func (i *Interactor) Reset(ctx context.Context) (dto.AttemptOutput, error) {
	out, err := i.mutate(ctx, func(attempt *domain.Attempt) error {
		i.svc.Reset(attempt)
		return nil
	})
	if errors.Is(err, apperrors.ErrNoActiveAttempt) {
		return dto.AttemptOutput{Phase: string(domain.PhaseReady)}, nil
	}
	return out, err
}

func (i *Interactor) Status(ctx context.Context) (dto.AttemptOutput, error) {
	return i.mutate(ctx, func(attempt *domain.Attempt) error {
		i.svc.Elapsed(attempt)
		return nil
	})
}

// mutate loads the attempt, applies fn and saves it when fn succeeds.
func (i *Interactor) mutate(ctx context.Context, fn func(*domain.Attempt) error) (dto.AttemptOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	attempt, err := i.attempts.LoadActive(ctx)
	if err != nil {
		return dto.AttemptOutput{}, err
	}
	if err := fn(&attempt); err != nil {
		return i.toOutput(attempt), err
	}
	if err := i.attempts.SaveActive(ctx, attempt); err != nil {
		return dto.AttemptOutput{}, err
	}
	return i.toOutput(attempt), nil
}

// personalBest compares against the stored history for the same test.
// With no history the result is a best; a failed lookup is not.
func (i *Interactor) personalBest(ctx context.Context, result domain.Result) bool {
	if i.results == nil {
		return false
	}
	best, err := i.results.PersonalBest(ctx, resultsdto.PersonalBestInput{AthleteID: result.AthleteID, TestName: result.TestName})
	if err != nil {
		i.logger.Warn("personal best lookup failed", "test", result.TestName, "error", err)
		return false
	}
	if !best.Found {
		return true
	}
	return i.svc.Beats(result.Category, result.Score, best.Result.Score)
}

func (i *Interactor) toOutput(attempt domain.Attempt) dto.AttemptOutput {
	rule := i.svc.Rule(attempt.Category)
	elapsed := attempt.Watermark
	switch attempt.Phase {
	case domain.PhaseCompleted:
		elapsed = attempt.StoppedAt.Sub(attempt.StartedAt)
	case domain.PhaseReady:
		elapsed = 0
	}
	return dto.AttemptOutput{
		AttemptID:       attempt.ID,
		TestID:          attempt.TestID,
		TestName:        attempt.TestName,
		Category:        attempt.Category.String(),
		Phase:           string(attempt.Phase),
		Unit:            rule.Unit,
		RepetitionBased: rule.RepetitionBased,
		Elapsed:         elapsed,
		Reps:            attempt.Reps,
		StartedAt:       attempt.StartedAt,
		LastResultID:    attempt.LastResultID,
	}
}

func toResultOutput(result domain.Result) dto.ResultOutput {
	return dto.ResultOutput{
		ID:           result.ID,
		TestName:     result.TestName,
		Category:     result.Category.String(),
		Score:        result.Score,
		Unit:         result.Unit,
		Date:         result.Date,
		Percentile:   result.Percentile,
		Elapsed:      result.Elapsed,
		Reps:         result.Reps,
		AthleteID:    result.AthleteID,
		Notes:        result.Notes,
		PersonalBest: result.PersonalBest,
	}
}

func toSubmission(result domain.Result) resultsdto.TestResult {
	return resultsdto.TestResult{
		ID:           result.ID,
		TestName:     result.TestName,
		Category:     result.Category.String(),
		Score:        result.Score,
		Unit:         result.Unit,
		Date:         result.Date,
		Percentile:   result.Percentile,
		AthleteID:    result.AthleteID,
		Notes:        result.Notes,
		PersonalBest: result.PersonalBest,
	}
}
