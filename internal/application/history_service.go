package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/ports"
	"github.com/bnema/minechat/internal/queue"
	"go.uber.org/zap"
)

// HistoryService is the storage side of the persistence queue.
type HistoryService struct {
	repo   ports.HistoryRepository
	logger *zap.Logger
}

func NewHistoryService(repo ports.HistoryRepository, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HistoryService{repo: repo, logger: logger}
}

func (s *HistoryService) List(ctx context.Context) ([]domain.HistoryRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return records, nil
}

// Replay puts every stored message on the display queue, oldest first.
func (s *HistoryService) Replay(ctx context.Context, display *queue.Queue[string]) (int, error) {
	records, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	for _, record := range records {
		display.Put(record.DisplayLine())
	}

	return len(records), nil
}

// SaveLoop stores records until ctx is done, then flushes what is still queued.
func (s *HistoryService) SaveLoop(ctx context.Context, records *queue.Queue[domain.HistoryRecord]) error {
	for {
		record, err := records.Get(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.flush(context.WithoutCancel(ctx), records)
				return nil
			}
			return err
		}

		s.save(ctx, record)
	}
}

func (s *HistoryService) flush(ctx context.Context, records *queue.Queue[domain.HistoryRecord]) {
	for {
		record, ok := records.TryGet()
		if !ok {
			return
		}
		s.save(ctx, record)
	}
}

func (s *HistoryService) save(ctx context.Context, record domain.HistoryRecord) {
	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.Error("save message failed", zap.String("text", record.Text), zap.Error(err))
	}
}
