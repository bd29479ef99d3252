package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rtcstack/rtc-token-service/internal/domain"
)

// IssuanceRepository stores token issuance audit entries.
type IssuanceRepository interface {
	Create(ctx context.Context, issuance *domain.TokenIssuance) error
}

type issuanceRepository struct {
	pool *pgxpool.Pool
}

// NewIssuanceRepository builds repository.
func NewIssuanceRepository(pool *pgxpool.Pool) IssuanceRepository {
	return &issuanceRepository{pool: pool}
}

func (r *issuanceRepository) Create(ctx context.Context, issuance *domain.TokenIssuance) error {
	const query = `
        INSERT INTO token_issuances (channel, uid, role, ttl_seconds, request_id, issued_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		issuance.Channel,
		int64(issuance.UID),
		issuance.Role.String(),
		int32(issuance.TTLSeconds),
		issuance.RequestID,
		issuance.IssuedAt,
	).Scan(&issuance.ID)
}
