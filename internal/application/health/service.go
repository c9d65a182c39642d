package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	corehealth "oficri/mesapartes/internal/core/health"
)

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
}

// Service exposes health-check use cases to adapters. The database is
// part of the snapshot: a failed ping degrades the overall status.
type Service struct {
	meta      Metadata
	pool      *pgxpool.Pool
	startedAt time.Time
}

// NewService creates a new health service. pool may be nil in tests.
func NewService(meta Metadata, pool *pgxpool.Pool) *Service {
	return &Service{
		meta:      meta,
		pool:      pool,
		startedAt: time.Now().UTC(),
	}
}

// Status returns the current availability snapshot.
func (s *Service) Status(ctx context.Context) corehealth.Status {
	uptime := time.Since(s.startedAt)

	estado := "UP"
	db := "UP"
	if s.pool != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.pool.Ping(pingCtx); err != nil {
			estado = "DEGRADED"
			db = "DOWN"
		}
	}

	return corehealth.Status{
		Service:     s.meta.Service,
		Version:     s.meta.Version,
		Environment: s.meta.Environment,
		Status:      estado,
		Database:    db,
		StartedAt:   s.startedAt,
		Uptime:      uptime.String(),
		UptimeSecs:  int64(uptime.Seconds()),
	}
}
