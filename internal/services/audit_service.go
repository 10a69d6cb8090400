package services

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/metrics"
)

// AuditServiceImpl implements domain.AuditSink. Writes run in the background
// on a context detached from the request, so neither a slow store nor a
// cancelled request can fail or delay the caller.
type AuditServiceImpl struct {
	repo      domain.AuditRepository
	publisher domain.AuditPublisher
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger

	wg sync.WaitGroup
}

// NewAuditService creates an audit sink. publisher and m may be nil.
func NewAuditService(repo domain.AuditRepository, publisher domain.AuditPublisher, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *AuditServiceImpl {
	return &AuditServiceImpl{
		repo:      repo,
		publisher: publisher,
		timeout:   timeout,
		metrics:   m,
		logger:    logger,
	}
}

// Record implements domain.AuditSink
func (s *AuditServiceImpl) Record(ctx context.Context, identityID string, action domain.AuditAction, ip string) {
	entry := domain.NewAuditEntry(identityID, action, ip)
	entry.ID = ulid.Make().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		if err := s.repo.Append(writeCtx, entry); err != nil {
			s.degraded("store", entry, err)
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(writeCtx, entry); err != nil {
				s.degraded("broker", entry, err)
			}
		}
	}()
}

// Wait implements domain.AuditSink
func (s *AuditServiceImpl) Wait() {
	s.wg.Wait()
}

func (s *AuditServiceImpl) degraded(target string, entry *domain.AuditEntry, err error) {
	s.metrics.AuthOutcome(metrics.OutcomeAuditDegraded)
	s.logger.Warn("audit sink degraded",
		zap.String("target", target),
		zap.String("action", string(entry.Action)),
		zap.String("entry_id", entry.ID),
		zap.Error(err),
	)
}
