package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fitlab/internal/modules/results/domain"
	resultsout "fitlab/internal/modules/results/port/out"
	apperrors "fitlab/internal/platform/errors"
	"fitlab/internal/platform/logging"
)

const DefaultTimeout = 5 * time.Second

var errNoSnapshot = errors.New("repository closed the stream before emitting")

type LoadReport struct {
	Count    int
	Fallback bool
	// Applied is false when the load was abandoned because its owner
	// went away before the repository answered.
	Applied bool
}

type submission struct {
	seq    uint64
	result domain.TestResult
}

// RecentResults is the bounded newest-first cache of results. Every
// mutation happens under mu, so a load racing a submit ends up as either
// the old cache plus the submit or the loaded snapshot plus the submit.
type RecentResults struct {
	repo    resultsout.ResultRepository
	logger  logging.Logger
	policy  domain.WritePolicy
	timeout time.Duration

	life   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	cache     []domain.TestResult
	seq       uint64
	submitted []submission
	closed    bool
}

type Option func(*RecentResults)

func WithPolicy(policy domain.WritePolicy) Option {
	return func(s *RecentResults) { s.policy = policy }
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *RecentResults) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(s *RecentResults) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewRecentResults(repo resultsout.ResultRepository, opts ...Option) *RecentResults {
	life, cancel := context.WithCancel(context.Background())
	s := &RecentResults{
		repo:    repo,
		logger:  logging.Nop(),
		policy:  domain.WriteOptimistic,
		timeout: DefaultTimeout,
		life:    life,
		cancel:  cancel,
		cache:   []domain.TestResult{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the cache with the first snapshot the repository emits.
// Read failures and timeouts install the fallback sample instead. If ctx
// or the store itself is done first, nothing is applied.
func (s *RecentResults) Load(ctx context.Context) LoadReport {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return LoadReport{}
	}
	startSeq := s.seq
	s.mu.Unlock()

	loadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(s.life, cancel)
	defer stop()

	snapshot, err := s.firstSnapshot(loadCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || ctx.Err() != nil {
		s.logger.Debug("discarding results load after owner went away", "error", err)
		return LoadReport{}
	}
	fallback := false
	if err != nil {
		s.logger.Warn("results load failed, serving sample data", "error", err)
		snapshot = domain.FallbackSample()
		fallback = true
	}
	next := domain.Take(snapshot, domain.MaxRecent)
	for _, sub := range s.submitted {
		if sub.seq <= startSeq || domain.ContainsID(snapshot, sub.result.ID) {
			continue
		}
		next = domain.PrependBounded(next, sub.result, domain.MaxRecent)
	}
	s.cache = next
	return LoadReport{Count: len(next), Fallback: fallback, Applied: true}
}

func (s *RecentResults) firstSnapshot(ctx context.Context) ([]domain.TestResult, error) {
	stream, err := s.repo.ObserveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe results: %w", err)
	}
	select {
	case snapshot, ok := <-stream:
		if !ok {
			return nil, errNoSnapshot
		}
		return snapshot, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("observe results: %w", ctx.Err())
	}
}

// Submit persists result and prepends it to the cache. Persistence runs
// detached from ctx cancellation so a closing caller does not lose the
// result, but it is still bounded by the store timeout.
func (s *RecentResults) Submit(ctx context.Context, result domain.TestResult) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.repo.Save(saveCtx, result); err != nil {
		if s.policy == domain.WriteStrict {
			return fmt.Errorf("save result %s: %w", result.ID, err)
		}
		s.logger.Warn("result save failed, keeping in-memory copy", "result_id", result.ID, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.cache = domain.PrependBounded(s.cache, result, domain.MaxRecent)
	s.submitted = append(s.submitted, submission{seq: s.seq, result: result})
	if len(s.submitted) > domain.MaxRecent {
		s.submitted = s.submitted[len(s.submitted)-domain.MaxRecent:]
	}
	return nil
}

// ListRecent returns a copy of the cache, cut to limit when limit > 0.
func (s *RecentResults) ListRecent(limit int) []domain.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Take(s.cache, limit)
}

// Forget drops every cached entry with id.
func (s *RecentResults) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]domain.TestResult, 0, len(s.cache))
	for _, r := range s.cache {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.cache = kept
}

func (s *RecentResults) Policy() domain.WritePolicy {
	return s.policy
}

// Close cancels in-flight loads. It is safe to call more than once.
func (s *RecentResults) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

func (s *RecentResults) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
