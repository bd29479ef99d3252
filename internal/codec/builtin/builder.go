// Package builtin is the token builder linked into the service when no plugin is configured.
// Tokens are HS256 JWTs signed with a key derived from the application certificate.
package builtin

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/rtcstack/rtc-token-service/internal/codec"
)

const keyInfo = "rtc-token/v1"

// Role is the privilege role numbering shared with RTC token builders.
type Role uint16

const (
	RolePublisher  Role = 1
	RoleSubscriber Role = 2
)

// Claims describes the token payload.
type Claims struct {
	AppID              string           `json:"app_id"`
	Channel            string           `json:"channel"`
	UID                uint32           `json:"uid"`
	Role               Role             `json:"role"`
	PrivilegeExpiresAt *jwt.NumericDate `json:"privilege_exp"`
	jwt.RegisteredClaims
}

// Builder signs channel tokens.
type Builder struct {
	issuer string
	now    func() time.Time
}

// NewBuilder returns a builder stamping tokens with issuer.
func NewBuilder(issuer string) *Builder {
	return &Builder{issuer: issuer, now: time.Now}
}

// Library exposes the builder under the seven argument entry point name.
func (b *Builder) Library() codec.Symbols {
	return codec.Symbols{"BuildTokenWithUid": b.BuildTokenWithUid}
}

// BuildTokenWithUid signs a token for uid on channelName. tokenExpire and privilegeExpire are
// lifetimes in seconds from now.
func (b *Builder) BuildTokenWithUid(appID, appCertificate, channelName string, uid uint32, role Role, tokenExpire, privilegeExpire uint32) (string, error) {
	if appID == "" || appCertificate == "" {
		return "", errors.New("app id and app certificate are required")
	}
	if channelName == "" {
		return "", errors.New("channel name is required")
	}
	if tokenExpire == 0 {
		return "", errors.New("token expire must be positive")
	}
	if role != RolePublisher && role != RoleSubscriber {
		return "", fmt.Errorf("unsupported role %d", role)
	}

	key, err := SigningKey(appID, appCertificate)
	if err != nil {
		return "", err
	}

	issuedAt := b.now()
	claims := &Claims{
		AppID:              appID,
		Channel:            channelName,
		UID:                uid,
		Role:               role,
		PrivilegeExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Duration(privilegeExpire) * time.Second)),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    b.issuer,
			Subject:   strconv.FormatUint(uint64(uid), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Duration(tokenExpire) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// SigningKey derives the HMAC key for an application. RTC backends verify tokens with the same
// derivation.
func SigningKey(appID, appCertificate string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(appCertificate), []byte(appID), []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	return key, nil
}
