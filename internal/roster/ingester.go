package roster

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

// Ingester allows one ingestion at a time per draft code.
type Ingester struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	logger   *zap.Logger
}

func NewIngester(logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		inFlight: make(map[string]struct{}),
		logger:   logger,
	}
}

func (i *Ingester) Ingest(ctx context.Context, code string, r io.Reader) ([]engine.Participant, error) {
	if !i.acquire(code) {
		return nil, ErrIngestionInProgress
	}
	defer i.release(code)

	res, err := ParseContext(ctx, r)
	if err != nil {
		i.logger.Warn("roster ingestion failed", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	i.logger.Info("roster ingested",
		zap.String("code", code),
		zap.Int("participants", len(res.Participants)),
		zap.Int("dropped", res.Dropped),
		zap.Int("duplicates", res.Duplicates),
	)
	return res.Participants, nil
}

func (i *Ingester) acquire(code string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, busy := i.inFlight[code]; busy {
		return false
	}
	i.inFlight[code] = struct{}{}
	return true
}

func (i *Ingester) release(code string) {
	i.mu.Lock()
	delete(i.inFlight, code)
	i.mu.Unlock()
}
