package pipeline

import (
	"context"

	"github.com/quakeline/nordic-etl/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order. The Kafka sink
// and the optional SQLite catalog both receive every batch; the first loader
// failure aborts the batch so the pipeline's retry covers all sinks.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, events []domain.Event) error {
	for _, l := range m {
		if err := l.LoadBatch(ctx, events); err != nil {
			return err
		}
	}
	return nil
}
