package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oselz/ai-gateway/internal/store"
	"github.com/oselz/ai-gateway/internal/store/model"
)

// Ingestor handles the asynchronous persistence of request logs. Logging a
// request never blocks the hot path; when the buffer is full the log is
// dropped.
type Ingestor interface {
	Log(log *model.RequestLog)
	Start(ctx context.Context)
	Stop()
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	logChan   chan *model.RequestLog
	done      chan struct{}
	batchSize int
	flushTime time.Duration
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return &ingestor{
		logger:    logger,
		repo:      repo,
		logChan:   make(chan *model.RequestLog, 10000),
		batchSize: 50,
		flushTime: 5 * time.Second,
	}
}

func (i *ingestor) Log(log *model.RequestLog) {
	select {
	case i.logChan <- log:
	default:
		i.logger.Warn("Analytics buffer full, dropping log", zap.String("request_id", log.ID))
	}
}

func (i *ingestor) Start(ctx context.Context) {
	i.done = make(chan struct{})
	go i.worker(ctx)
}

// Stop drains the buffer and blocks until the worker's final flush has
// completed, so the store can be closed safely right after.
func (i *ingestor) Stop() {
	close(i.logChan)
	if i.done != nil {
		<-i.done
	}
}

func (i *ingestor) worker(ctx context.Context) {
	defer close(i.done)

	batch := make([]*model.RequestLog, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		for _, log := range batch {
			if err := i.repo.Requests().Log(context.Background(), log); err != nil {
				i.logger.Error("Failed to persist request log", zap.String("id", log.ID), zap.Error(err))
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case log, ok := <-i.logChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, log)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}

// NopIngestor discards everything; used when the analytics store is disabled.
type NopIngestor struct{}

func (NopIngestor) Log(*model.RequestLog) {}
func (NopIngestor) Start(context.Context) {}
func (NopIngestor) Stop() {}
