package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rtcstack/rtc-token-service/internal/auth"
	"github.com/rtcstack/rtc-token-service/internal/codec"
	"github.com/rtcstack/rtc-token-service/internal/domain"
	"github.com/rtcstack/rtc-token-service/internal/events"
	"github.com/rtcstack/rtc-token-service/internal/observability"
	apperrors "github.com/rtcstack/rtc-token-service/pkg/util/errorutil"
)

// MissingCredentialsMessage is returned while the RTC application is not configured.
const MissingCredentialsMessage = "Missing AGORA_APP_ID / AGORA_APP_CERTIFICATE"

const redactedSecret = "[redacted]"

// DefaultAuditTimeout bounds how long issued-token handlers may hold up a response.
const DefaultAuditTimeout = 500 * time.Millisecond

// TokenDispatcher signs tokens through the linked codec.
type TokenDispatcher interface {
	Dispatch(ctx context.Context, creds domain.Credentials, channel string, uid uint32, role domain.Role, ttl uint32) (string, error)
}

// TokenService issues channel tokens.
type TokenService struct {
	creds      domain.Credentials
	dispatcher TokenDispatcher
	events     events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	auditWait  time.Duration
}

// TokenDependencies encapsulates collaborators of the token service.
type TokenDependencies struct {
	Dispatcher   TokenDispatcher
	Events       events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	// AuditTimeout caps TokenIssued handlers. Zero means DefaultAuditTimeout.
	AuditTimeout time.Duration
}

// NewTokenService builds the service. Credentials are captured once and never re-read.
func NewTokenService(creds domain.Credentials, deps TokenDependencies) *TokenService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	auditWait := deps.AuditTimeout
	if auditWait <= 0 {
		auditWait = DefaultAuditTimeout
	}
	return &TokenService{
		creds:      creds,
		dispatcher: deps.Dispatcher,
		events:     deps.Events,
		metrics:    deps.Metrics,
		logger:     logger,
		auditWait:  auditWait,
	}
}

// Credentials reports the configured credentials.
func (s *TokenService) Credentials() domain.Credentials {
	return s.creds
}

// IssueToken resolves the requested role and signs a token. The request must already be
// validated.
func (s *TokenService) IssueToken(ctx context.Context, req domain.TokenRequest) (string, error) {
	if !s.creds.Complete() {
		s.metrics.RecordIssuance("", "unconfigured")
		return "", apperrors.NewConfigurationError(MissingCredentialsMessage)
	}

	role := auth.ResolveRole(req.Role)
	token, err := s.dispatcher.Dispatch(ctx, s.creds, req.Channel, req.UID, role, req.TTLSeconds)
	if err != nil {
		s.metrics.RecordIssuance(role.String(), "failed")
		return "", s.dispatchError(err, req)
	}

	s.metrics.RecordIssuance(role.String(), "issued")
	s.publishIssued(ctx, req, role)
	return token, nil
}

func (s *TokenService) dispatchError(err error, req domain.TokenRequest) error {
	err = &redactedError{err: err, secret: s.creds.AppCertificate}

	var dispatchErr *codec.DispatchError
	if errors.As(err, &dispatchErr) && dispatchErr.Kind == codec.NoCompatibleEntryPoint {
		s.logger.Error("token codec exposes no compatible entry point",
			zap.String("channel", req.Channel),
			zap.String("request_id", req.RequestID),
			zap.Strings("probed", dispatchErr.Probed))
	}

	return apperrors.NewTokenGenerationError(err)
}

func (s *TokenService) publishIssued(ctx context.Context, req domain.TokenRequest, role domain.Role) {
	if s.events == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTokenIssued,
		RequestID: req.RequestID,
		Timestamp: time.Now().UTC(),
		Payload: events.TokenIssuedPayload{
			Channel:    req.Channel,
			UID:        req.UID,
			Role:       role,
			TTLSeconds: req.TTLSeconds,
		},
	}
	// the token is already signed; a cancelled request must not drop its audit row
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.auditWait)
	defer cancel()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("token issued event handlers failed",
			zap.String("request_id", req.RequestID), zap.Error(err))
	}
}

// redactedError hides the application certificate from codec error messages.
type redactedError struct {
	err    error
	secret string
}

func (e *redactedError) Error() string {
	msg := e.err.Error()
	if e.secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, e.secret, redactedSecret)
}

func (e *redactedError) Unwrap() error {
	return e.err
}
