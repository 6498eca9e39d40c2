package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var stock sql.NullInt64
	err := scanner.Scan(
		&r.ID, &r.FamilyID, &r.Title, &r.Description, &r.PointCost,
		&r.Photos, &stock, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if stock.Valid {
		v := int(stock.Int64)
		r.Stock = &v
	}
	return &r, nil
}

const rewardCols = `id, family_id, title, description, point_cost, photos, stock, is_active, created_at, updated_at`

func (s *RewardStore) Create(familyID int64, title, description string, pointCost int, photos model.StringList, stock *int) (*model.Reward, error) {
	var st sql.NullInt64
	if stock != nil {
		st = sql.NullInt64{Int64: int64(*stock), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO rewards (family_id, title, description, point_cost, photos, stock) VALUES (?, ?, ?, ?, ?, ?)`,
		familyID, title, description, pointCost, photos, st,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// ListActive returns the family's active rewards.
func (s *RewardStore) ListActive(familyID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE family_id = ? AND is_active = 1 ORDER BY created_at ASC, id ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

// Redeem spends the user's points on the reward: it records a pending
// redemption, deducts the point cost, and decrements stock when the reward is
// limited. All in one transaction, with conditional updates so two concurrent
// redemptions can never oversell stock or drive points negative.
func (s *RewardStore) Redeem(familyID, rewardID, userID int64) (*model.RewardRedemption, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		pointCost int
		stock     sql.NullInt64
		isActive  bool
	)
	err = tx.QueryRow(
		`SELECT point_cost, stock, is_active FROM rewards WHERE id = ? AND family_id = ?`,
		rewardID, familyID,
	).Scan(&pointCost, &stock, &isActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	if !isActive {
		return nil, ErrNotFound
	}
	if stock.Valid && stock.Int64 <= 0 {
		return nil, ErrOutOfStock
	}

	var points int
	err = tx.QueryRow(`SELECT points FROM users WHERE id = ? AND family_id = ?`, userID, familyID).Scan(&points)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if points < pointCost {
		return nil, ErrInsufficientPoints
	}

	result, err := tx.Exec(
		`INSERT INTO reward_redemptions (reward_id, user_id, status) VALUES (?, ?, 'pending')`,
		rewardID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}
	redemptionID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	// Conditional decrements guard against a racing redemption that committed
	// between our reads and these writes.
	res, err := tx.Exec(
		`UPDATE users SET points = points - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND points >= ?`,
		pointCost, userID, pointCost,
	)
	if err != nil {
		return nil, fmt.Errorf("deduct points: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("deduct points: %w", err)
	} else if n == 0 {
		return nil, ErrInsufficientPoints
	}

	if stock.Valid {
		res, err := tx.Exec(
			`UPDATE rewards SET stock = stock - 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND stock > 0`,
			rewardID,
		)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		} else if n == 0 {
			return nil, ErrOutOfStock
		}
	}

	var redemption model.RewardRedemption
	err = tx.QueryRow(
		`SELECT id, reward_id, user_id, status, created_at FROM reward_redemptions WHERE id = ?`,
		redemptionID,
	).Scan(&redemption.ID, &redemption.RewardID, &redemption.UserID, &redemption.Status, &redemption.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get redemption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &redemption, nil
}
