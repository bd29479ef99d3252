package builtin

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtcstack/rtc-token-service/internal/codec"
	"github.com/rtcstack/rtc-token-service/internal/domain"
)

func fixedBuilder(now time.Time) *Builder {
	b := NewBuilder("test-issuer")
	b.now = func() time.Time { return now }
	return b
}

func parse(t *testing.T, token, appID, appCert string) *Claims {
	t.Helper()
	key, err := SigningKey(appID, appCert)
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	return claims
}

func TestBuildTokenWithUid_Claims(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	b := fixedBuilder(now)

	token, err := b.BuildTokenWithUid("app", "cert", "room1", 42, RoleSubscriber, 3600, 600)
	require.NoError(t, err)

	claims := parse(t, token, "app", "cert")
	assert.Equal(t, "app", claims.AppID)
	assert.Equal(t, "room1", claims.Channel)
	assert.Equal(t, uint32(42), claims.UID)
	assert.Equal(t, RoleSubscriber, claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, now.Add(10*time.Minute).Unix(), claims.PrivilegeExpiresAt.Unix())
}

func TestBuildTokenWithUid_WrongCertificateFailsVerification(t *testing.T) {
	token, err := NewBuilder("iss").BuildTokenWithUid("app", "cert", "room1", 1, RolePublisher, 60, 60)
	require.NoError(t, err)

	key, err := SigningKey("app", "other-cert")
	require.NoError(t, err)
	_, err = jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) { return key, nil })
	assert.Error(t, err)
}

func TestBuildTokenWithUid_RejectsInvalidInput(t *testing.T) {
	b := NewBuilder("iss")
	tests := []struct {
		name    string
		appID   string
		cert    string
		channel string
		role    Role
		expire  uint32
	}{
		{"missing app id", "", "cert", "room", RolePublisher, 60},
		{"missing certificate", "app", "", "room", RolePublisher, 60},
		{"missing channel", "app", "cert", "", RolePublisher, 60},
		{"unknown role", "app", "cert", "room", 7, 60},
		{"zero expiry", "app", "cert", "room", RolePublisher, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.BuildTokenWithUid(tt.appID, tt.cert, tt.channel, 1, tt.role, tt.expire, tt.expire)
			assert.Error(t, err)
		})
	}
}

func TestSigningKey_IsDeterministicPerApp(t *testing.T) {
	a, err := SigningKey("app", "cert")
	require.NoError(t, err)
	b, err := SigningKey("app", "cert")
	require.NoError(t, err)
	c, err := SigningKey("other-app", "cert")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

func TestLibrary_ResolvesSevenArgumentEntryPoint(t *testing.T) {
	d := codec.NewDispatcher(NewBuilder("iss").Library())

	entry, err := d.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "BuildTokenWithUid/7", entry.Name)

	token, err := d.Dispatch(context.Background(), domain.Credentials{AppID: "app", AppCertificate: "cert"}, "room1", 9, domain.RolePublisher, 120)
	require.NoError(t, err)
	claims := parse(t, token, "app", "cert")
	assert.Equal(t, RolePublisher, claims.Role)
	assert.Equal(t, claims.ExpiresAt.Unix(), claims.PrivilegeExpiresAt.Unix())
}
