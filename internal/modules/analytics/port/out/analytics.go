package out

import (
	"context"
	"time"

	"fitlab/internal/modules/analytics/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Host starts plugin processes. Every Session owns one process and must
// be closed by the caller.
type Host interface {
	Connect(ctx context.Context, manifest domain.Manifest) (Session, error)
}

type Session interface {
	Metadata(ctx context.Context) (domain.Metadata, error)
	Commands(ctx context.Context) ([]domain.CommandDescriptor, error)
	Run(ctx context.Context, invocation domain.Invocation, timeout time.Duration) (domain.Outcome, error)
	Close()
}
