package analytics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oselz/ai-gateway/internal/analytics"
	"github.com/oselz/ai-gateway/internal/store"
	"github.com/oselz/ai-gateway/internal/store/model"
)

type fakeRepo struct {
	mu   sync.Mutex
	logs []*model.RequestLog
}

func (f *fakeRepo) Requests() store.RequestRepository { return (*fakeRequests)(f) }
func (f *fakeRepo) Close() error                      { return nil }

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}

type fakeRequests fakeRepo

func (f *fakeRequests) Log(ctx context.Context, log *model.RequestLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeRequests) GetRecent(ctx context.Context, limit int) ([]model.RequestLog, error) {
	return nil, nil
}

func (f *fakeRequests) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	return nil, nil
}

func TestIngestor_FlushesOnStop(t *testing.T) {
	repo := &fakeRepo{}
	ing := analytics.NewIngestor(zap.NewNop(), repo)
	ing.Start(context.Background())

	for i := 0; i < 3; i++ {
		ing.Log(&model.RequestLog{ID: "req", Endpoint: "chat"})
	}
	ing.Stop()

	// Stop blocks until the final flush lands, so the logs must already be
	// in the repository with no waiting.
	require.Equal(t, 3, repo.count())
}

func TestIngestor_FlushesFullBatch(t *testing.T) {
	repo := &fakeRepo{}
	ing := analytics.NewIngestor(zap.NewNop(), repo)
	ing.Start(context.Background())
	defer ing.Stop()

	// batch size is 50; exceeding it forces a flush without waiting for
	// the ticker
	for i := 0; i < 60; i++ {
		ing.Log(&model.RequestLog{ID: "req", Endpoint: "chat"})
	}

	require.Eventually(t, func() bool {
		return repo.count() >= 50
	}, time.Second, 10*time.Millisecond)
}

func TestNopIngestor(t *testing.T) {
	var ing analytics.Ingestor = analytics.NopIngestor{}
	ing.Start(context.Background())
	ing.Log(&model.RequestLog{ID: "req"})
	ing.Stop()
}
