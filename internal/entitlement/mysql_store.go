package entitlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// usageKey is the metadata-bag key holding the free-tier counter.
const usageKey = "free_usage"

// MySQLStore keeps the usage counter in the users table's
// private_metadata JSON column and derives the plan from the
// user_subscriptions table (an active, unexpired subscription to the
// 'premium' plan means premium).
type MySQLStore struct {
	DB *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

func (s *MySQLStore) GetPlanAndUsage(ctx context.Context, userID int64) (Plan, Usage, error) {
	var active int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM user_subscriptions us
		JOIN plans p ON p.id = us.plan_id
		WHERE us.user_id = ? AND us.status = 'active' AND us.expires_at > NOW() AND p.name = 'premium'
	`, userID).Scan(&active)
	if err != nil {
		return "", Usage{}, fmt.Errorf("checking premium subscription: %w", err)
	}
	if active > 0 {
		return PlanPremium, Usage{}, nil
	}

	meta, err := s.readMetadata(ctx, userID)
	if err != nil {
		return "", Usage{}, err
	}
	return PlanFree, usageFromMetadata(meta), nil
}

func (s *MySQLStore) InitUsage(ctx context.Context, userID int64) error {
	meta, err := s.readMetadata(ctx, userID)
	if err != nil {
		return err
	}
	// Only the counter changes; sibling keys survive the write.
	meta[usageKey] = 0
	return s.writeMetadata(ctx, userID, meta)
}

func (s *MySQLStore) IncrementUsage(ctx context.Context, userID int64) error {
	meta, err := s.readMetadata(ctx, userID)
	if err != nil {
		return err
	}
	usage := usageFromMetadata(meta)
	// Parse-and-increment: a missing or non-numeric value counts as 0.
	meta[usageKey] = usage.Count + 1
	return s.writeMetadata(ctx, userID, meta)
}

func (s *MySQLStore) readMetadata(ctx context.Context, userID int64) (map[string]any, error) {
	var raw sql.NullString
	err := s.DB.QueryRowContext(ctx,
		"SELECT private_metadata FROM users WHERE id = ?", userID).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("reading metadata for user %d: %w", userID, err)
	}

	meta := map[string]any{}
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &meta); err != nil {
			// A corrupt bag is unreadable state, not a quota decision.
			return nil, fmt.Errorf("decoding metadata for user %d: %w", userID, err)
		}
	}
	return meta, nil
}

func (s *MySQLStore) writeMetadata(ctx context.Context, userID int64, meta map[string]any) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata for user %d: %w", userID, err)
	}
	_, err = s.DB.ExecContext(ctx,
		"UPDATE users SET private_metadata = ? WHERE id = ?", string(raw), userID)
	if err != nil {
		return fmt.Errorf("writing metadata for user %d: %w", userID, err)
	}
	return nil
}

// usageFromMetadata interprets the stored counter. JSON numbers decode
// as float64; anything else under the key is treated as absent.
func usageFromMetadata(meta map[string]any) Usage {
	v, ok := meta[usageKey]
	if !ok {
		return Usage{}
	}
	switch n := v.(type) {
	case float64:
		return Usage{Count: int(n), Present: true}
	case int:
		return Usage{Count: n, Present: true}
	default:
		return Usage{}
	}
}
