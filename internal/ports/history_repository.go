package ports

import (
	"context"

	"github.com/bnema/minechat/internal/domain"
)

type HistoryRepository interface {
	Save(ctx context.Context, record domain.HistoryRecord) error
	List(ctx context.Context) ([]domain.HistoryRecord, error)
}
