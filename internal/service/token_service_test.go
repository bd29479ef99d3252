package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtcstack/rtc-token-service/internal/codec"
	"github.com/rtcstack/rtc-token-service/internal/domain"
	"github.com/rtcstack/rtc-token-service/internal/events"
	"github.com/rtcstack/rtc-token-service/internal/observability"
	apperrors "github.com/rtcstack/rtc-token-service/pkg/util/errorutil"
)

type dispatchCall struct {
	creds   domain.Credentials
	channel string
	uid     uint32
	role    domain.Role
	ttl     uint32
}

type stubDispatcher struct {
	calls      []dispatchCall
	token      string
	err        error
	onDispatch func()
}

func (s *stubDispatcher) Dispatch(_ context.Context, creds domain.Credentials, channel string, uid uint32, role domain.Role, ttl uint32) (string, error) {
	s.calls = append(s.calls, dispatchCall{creds, channel, uid, role, ttl})
	if s.onDispatch != nil {
		s.onDispatch()
	}
	return s.token, s.err
}

var testCreds = domain.Credentials{AppID: "app-id", AppCertificate: "s3cr3t-cert"}

func TestIssueToken_ResolvesRoleAndDispatches(t *testing.T) {
	stub := &stubDispatcher{token: "tok-abc"}
	metrics := observability.NewMetrics()
	svc := NewTokenService(testCreds, TokenDependencies{Dispatcher: stub, Metrics: metrics})

	token, err := svc.IssueToken(context.Background(), domain.TokenRequest{Channel: "room1", UID: 42, Role: " Audience ", TTLSeconds: 600})
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, dispatchCall{testCreds, "room1", 42, domain.RoleSubscriber, 600}, stub.calls[0])
	assert.Equal(t, int64(1), metrics.Snapshot().Issuances["subscriber|issued"])
}

func TestIssueToken_MissingCredentials(t *testing.T) {
	for _, creds := range []domain.Credentials{
		{},
		{AppID: "app-id"},
		{AppCertificate: "s3cr3t-cert"},
	} {
		stub := &stubDispatcher{token: "tok"}
		svc := NewTokenService(creds, TokenDependencies{Dispatcher: stub})

		_, err := svc.IssueToken(context.Background(), domain.TokenRequest{Channel: "room1", TTLSeconds: 60})
		require.Error(t, err)

		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, "CONFIGURATION_ERROR", domainErr.Code)
		assert.Equal(t, 500, domainErr.HTTPStatus)
		assert.Contains(t, domainErr.Message, "Missing")
		assert.NotContains(t, err.Error(), "s3cr3t-cert")
		assert.Empty(t, stub.calls)
	}
}

func TestIssueToken_SigningFailureRedactsCertificate(t *testing.T) {
	stub := &stubDispatcher{err: &codec.DispatchError{
		Kind:       codec.SigningFailed,
		EntryPoint: "BuildTokenWithUid/7",
		Err:        errors.New("bad certificate s3cr3t-cert"),
	}}
	svc := NewTokenService(testCreds, TokenDependencies{Dispatcher: stub})

	_, err := svc.IssueToken(context.Background(), domain.TokenRequest{Channel: "room1", TTLSeconds: 60})
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrSigningFailed)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "TOKEN_GENERATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Message, "Token generation failed")
	assert.Contains(t, domainErr.Message, "[redacted]")
	assert.NotContains(t, domainErr.Message, "s3cr3t-cert")
	assert.NotContains(t, err.Error(), "s3cr3t-cert")
}

func TestIssueToken_NoCompatibleEntryPoint(t *testing.T) {
	d := codec.NewDispatcher(codec.Symbols{})
	svc := NewTokenService(testCreds, TokenDependencies{Dispatcher: d})

	_, err := svc.IssueToken(context.Background(), domain.TokenRequest{Channel: "room1", TTLSeconds: 60})
	assert.ErrorIs(t, err, codec.ErrNoCompatibleEntryPoint)
	assert.Equal(t, 500, apperrors.ToDomainError(err).HTTPStatus)
}

func TestIssueToken_PublishesEventOnlyOnSuccess(t *testing.T) {
	bus := events.NewInMemoryDispatcher()
	var published []events.Event
	bus.Subscribe(events.EventTokenIssued, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return errors.New("listener failure does not fail issuance")
	})

	stub := &stubDispatcher{token: "tok"}
	svc := NewTokenService(testCreds, TokenDependencies{Dispatcher: stub, Events: bus})

	token, err := svc.IssueToken(context.Background(), domain.TokenRequest{Channel: "room1", UID: 3, Role: "host", TTLSeconds: 90, RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	require.Len(t, published, 1)
	assert.Equal(t, "req-1", published[0].RequestID)
	assert.Equal(t, events.TokenIssuedPayload{Channel: "room1", UID: 3, Role: domain.RolePublisher, TTLSeconds: 90}, published[0].Payload)

	stub.err = errors.New("boom")
	_, err = svc.IssueToken(context.Background(), domain.TokenRequest{Channel: "room1", TTLSeconds: 90})
	require.Error(t, err)
	assert.Len(t, published, 1)
}

func TestIssueToken_AuditHandlersAreBounded(t *testing.T) {
	bus := events.NewInMemoryDispatcher()
	var handlerErr error
	bus.Subscribe(events.EventTokenIssued, func(ctx context.Context, _ events.Event) error {
		<-ctx.Done()
		handlerErr = ctx.Err()
		return handlerErr
	})

	svc := NewTokenService(testCreds, TokenDependencies{
		Dispatcher:   &stubDispatcher{token: "tok"},
		Events:       bus,
		AuditTimeout: 20 * time.Millisecond,
	})

	started := time.Now()
	token, err := svc.IssueToken(context.Background(), domain.TokenRequest{Channel: "room1", TTLSeconds: 90})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.ErrorIs(t, handlerErr, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestIssueToken_AuditSurvivesCancelledRequest(t *testing.T) {
	bus := events.NewInMemoryDispatcher()
	var handlerErr error
	bus.Subscribe(events.EventTokenIssued, func(ctx context.Context, _ events.Event) error {
		handlerErr = ctx.Err()
		return nil
	})

	stub := &stubDispatcher{token: "tok"}
	svc := NewTokenService(testCreds, TokenDependencies{Dispatcher: stub, Events: bus})

	ctx, cancel := context.WithCancel(context.Background())
	stub.onDispatch = cancel
	_, err := svc.IssueToken(ctx, domain.TokenRequest{Channel: "room1", TTLSeconds: 90})
	require.NoError(t, err)
	assert.NoError(t, handlerErr)
}
