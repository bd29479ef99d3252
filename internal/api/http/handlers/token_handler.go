package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rtcstack/rtc-token-service/internal/api/dto"
	"github.com/rtcstack/rtc-token-service/internal/observability"
	"github.com/rtcstack/rtc-token-service/internal/service"
	apperrors "github.com/rtcstack/rtc-token-service/pkg/util/errorutil"
)

// TokenHandler exposes token issuance.
type TokenHandler struct {
	tokens *service.TokenService
}

// NewTokenHandler constructs handler.
func NewTokenHandler(tokens *service.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Issue handles GET /rtc/token.
func (h *TokenHandler) Issue(c *fiber.Ctx) error {
	var query dto.TokenQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	req, err := query.ToRequest()
	if err != nil {
		return err
	}
	req.RequestID = observability.RequestID(c)

	token, err := h.tokens.IssueToken(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{Token: token})
}
