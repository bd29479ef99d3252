package auth

import (
	"strings"

	"github.com/rtcstack/rtc-token-service/internal/domain"
)

var roleAliases = map[string]domain.Role{
	"rolepublisher": domain.RolePublisher,
	"publisher":     domain.RolePublisher,
	"pub":           domain.RolePublisher,
	"broadcaster":   domain.RolePublisher,
	"host":          domain.RolePublisher,

	"rolesubscriber": domain.RoleSubscriber,
	"subscriber":     domain.RoleSubscriber,
	"sub":            domain.RoleSubscriber,
	"audience":       domain.RoleSubscriber,
}

// ResolveRole maps a free-form role name onto a canonical role.
// Matching ignores case and surrounding whitespace; unknown names resolve to publisher.
func ResolveRole(role string) domain.Role {
	if resolved, ok := roleAliases[strings.ToLower(strings.TrimSpace(role))]; ok {
		return resolved
	}
	return domain.RolePublisher
}
