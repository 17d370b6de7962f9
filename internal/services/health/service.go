package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the payload served by GET /health.
type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s Status) Healthy() bool {
	return s.Status == "healthy"
}

// Service checks store connectivity.
type Service struct {
	db      Pinger
	timeout time.Duration
}

// NewService constructs a health service. A nil db means in-memory repositories.
func NewService(db Pinger) *Service {
	return &Service{db: db, timeout: 2 * time.Second}
}

// Check pings the database and reports the outcome.
func (s *Service) Check(ctx context.Context) Status {
	if s.db == nil {
		return Status{Status: "healthy", Database: "memory"}
	}
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		return Status{Status: "unhealthy", Database: "disconnected"}
	}
	return Status{Status: "healthy", Database: "connected"}
}
