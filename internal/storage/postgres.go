package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radiusdt/vector-insights/internal/models"
)

const campaignSchema = `
CREATE TABLE IF NOT EXISTS campaigns (
	id               TEXT PRIMARY KEY,
	account_id       TEXT NOT NULL DEFAULT '',
	name             TEXT NOT NULL,
	type             TEXT NOT NULL,
	status           TEXT NOT NULL,
	bidding_strategy TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS campaigns_account_id_idx ON campaigns (account_id);
`

const campaignColumns = `id, account_id, name, type, status, bidding_strategy, created_at, updated_at`

// PostgresCampaignRepo implements CampaignRepo using PostgreSQL.
type PostgresCampaignRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCampaignRepo(pool *pgxpool.Pool) *PostgresCampaignRepo {
	return &PostgresCampaignRepo{pool: pool}
}

// Migrate creates the campaigns table if needed.
func (r *PostgresCampaignRepo) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, campaignSchema); err != nil {
		return fmt.Errorf("failed to migrate campaigns: %w", err)
	}
	return nil
}

// Seed upserts each campaign, leaving existing rows' creation time intact.
func (r *PostgresCampaignRepo) Seed(ctx context.Context, campaigns []*models.Campaign) error {
	for _, c := range campaigns {
		if err := r.Upsert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresCampaignRepo) ListByAccount(ctx context.Context, accountID string) ([]*models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE account_id = '' OR account_id = $1
		ORDER BY id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *PostgresCampaignRepo) GetByID(ctx context.Context, accountID, id string) (*models.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE id = $1 AND (account_id = '' OR account_id = $2)
	`, id, accountID)

	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	created := c.CreatedAt
	if created.IsZero() {
		created = now
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns (`+campaignColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			bidding_strategy = EXCLUDED.bidding_strategy,
			updated_at = EXCLUDED.updated_at
	`, c.ID, models.NormalizeAccountID(c.AccountID), c.Name, string(c.Type), c.Status, c.BiddingStrategy, created, now)
	if err != nil {
		return fmt.Errorf("failed to upsert campaign: %w", err)
	}
	return nil
}

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var (
		c   models.Campaign
		typ string
	)
	if err := row.Scan(&c.ID, &c.AccountID, &c.Name, &typ, &c.Status, &c.BiddingStrategy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan campaign: %w", err)
	}
	c.Type = models.CampaignType(typ)
	return &c, nil
}
