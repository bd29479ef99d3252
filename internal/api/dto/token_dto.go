package dto

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rtcstack/rtc-token-service/internal/domain"
	apperrors "github.com/rtcstack/rtc-token-service/pkg/util/errorutil"
)

// TokenQuery is the raw query string of GET /rtc/token.
type TokenQuery struct {
	Channel string `query:"channel"`
	UID     string `query:"uid"`
	Role    string `query:"role"`
	TTL     string `query:"ttl"`
}

// TokenResponse is returned on successful issuance.
type TokenResponse struct {
	Token string `json:"token"`
}

// HealthResponse reports configuration presence without revealing secrets.
type HealthResponse struct {
	OK         bool `json:"ok"`
	HasAppID   bool `json:"has_app_id"`
	HasAppCert bool `json:"has_app_cert"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ToRequest validates the query and applies defaults.
func (q TokenQuery) ToRequest() (domain.TokenRequest, error) {
	if q.Channel == "" {
		return domain.TokenRequest{}, apperrors.NewValidationError("channel is required", map[string]any{"field": "channel"})
	}

	uidRaw := strings.TrimSpace(q.UID)
	if uidRaw == "" {
		return domain.TokenRequest{}, apperrors.NewValidationError("uid is required", map[string]any{"field": "uid"})
	}
	uid, err := strconv.ParseInt(uidRaw, 10, 64)
	if err != nil {
		return domain.TokenRequest{}, apperrors.NewValidationError("uid must be an integer", map[string]any{"field": "uid"})
	}
	if uid < 0 || uid > math.MaxUint32 {
		return domain.TokenRequest{}, apperrors.NewValidationError(
			fmt.Sprintf("uid must be between 0 and %d", uint32(math.MaxUint32)), map[string]any{"field": "uid"})
	}

	ttl := int64(domain.DefaultTokenTTLSeconds)
	if ttlRaw := strings.TrimSpace(q.TTL); ttlRaw != "" {
		ttl, err = strconv.ParseInt(ttlRaw, 10, 64)
		if err != nil {
			return domain.TokenRequest{}, apperrors.NewValidationError("ttl must be an integer", map[string]any{"field": "ttl"})
		}
	}
	if ttl < domain.MinTokenTTLSeconds || ttl > domain.MaxTokenTTLSeconds {
		return domain.TokenRequest{}, apperrors.NewValidationError(
			fmt.Sprintf("ttl must be between %d and %d", domain.MinTokenTTLSeconds, domain.MaxTokenTTLSeconds),
			map[string]any{"field": "ttl"})
	}

	role := q.Role
	if role == "" {
		role = domain.DefaultRole
	}

	return domain.TokenRequest{
		Channel:    q.Channel,
		UID:        uint32(uid),
		Role:       role,
		TTLSeconds: uint32(ttl),
	}, nil
}
