package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rtcstack/rtc-token-service/internal/domain"
	"github.com/rtcstack/rtc-token-service/internal/events"
	"github.com/rtcstack/rtc-token-service/internal/repository"
)

// AuditService records issued tokens to the audit log.
type AuditService struct {
	dispatcher events.Dispatcher
	issuances  repository.IssuanceRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, issuances repository.IssuanceRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		issuances:  issuances,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil || a.issuances == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTokenIssued, a.handleTokenIssued)
}

func (a *AuditService) handleTokenIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TokenIssuedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	issuance := &domain.TokenIssuance{
		Channel:    payload.Channel,
		UID:        payload.UID,
		Role:       payload.Role,
		TTLSeconds: payload.TTLSeconds,
		RequestID:  event.RequestID,
		IssuedAt:   event.Timestamp,
	}
	if err := a.issuances.Create(ctx, issuance); err != nil {
		return fmt.Errorf("record token issuance: %w", err)
	}
	a.logger.Debug("TokenIssued recorded",
		zap.Int64("id", issuance.ID),
		zap.String("channel", issuance.Channel),
		zap.String("request_id", issuance.RequestID))
	return nil
}
