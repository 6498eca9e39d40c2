package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

type AllowanceStore struct {
	db *sql.DB
}

func NewAllowanceStore(db *sql.DB) *AllowanceStore {
	return &AllowanceStore{db: db}
}

func scanAllowanceTransaction(scanner interface{ Scan(...any) error }) (*model.AllowanceTransaction, error) {
	var t model.AllowanceTransaction
	err := scanner.Scan(
		&t.ID, &t.UserID, &t.Type, &t.Amount, &t.JarDistribution,
		&t.Source, &t.Note, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const allowanceCols = `id, user_id, type, amount, jar_distribution, source, note, created_at`

// SplitAmount divides an amount in cents across the three jars by percentage.
// Spend and save take their floor shares; give absorbs the remainder, so the
// three parts always sum to amount exactly.
func SplitAmount(amount int64, spendPct, savePct int) model.Jars {
	spend := amount * int64(spendPct) / 100
	save := amount * int64(savePct) / 100
	return model.Jars{
		Spend: spend,
		Save:  save,
		Give:  amount - spend - save,
	}
}

// Deposit credits amount cents to the member's jars per the percentage split
// and appends the ledger row. The jar update and the ledger row commit
// together or not at all. ErrNotFound when the target is not in the family.
func (s *AllowanceStore) Deposit(familyID, userID, amount int64, spendPct, savePct int, note string) (*model.AllowanceTransaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var jars model.Jars
	err = tx.QueryRow(`SELECT jars FROM users WHERE id = ? AND family_id = ?`, userID, familyID).Scan(&jars)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get jars: %w", err)
	}

	dist := SplitAmount(amount, spendPct, savePct)
	jars.Spend += dist.Spend
	jars.Save += dist.Save
	jars.Give += dist.Give

	if _, err := tx.Exec(
		`UPDATE users SET jars = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		jars, userID,
	); err != nil {
		return nil, fmt.Errorf("update jars: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO allowance_transactions (user_id, type, amount, jar_distribution, source, note)
		 VALUES (?, 'deposit', ?, ?, 'allowance', ?)`,
		userID, amount, dist, note,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	txnID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	txn, err := scanAllowanceTransaction(tx.QueryRow(`SELECT `+allowanceCols+` FROM allowance_transactions WHERE id = ?`, txnID))
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return txn, nil
}

// ListByUser returns the user's ledger, newest first.
func (s *AllowanceStore) ListByUser(userID int64) ([]model.AllowanceTransaction, error) {
	rows, err := s.db.Query(
		`SELECT `+allowanceCols+` FROM allowance_transactions WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListByFamily returns every family member's ledger rows, newest first, with
// the member attached to each row.
func (s *AllowanceStore) ListByFamily(familyID int64) ([]model.AllowanceTransaction, error) {
	rows, err := s.db.Query(
		`SELECT t.id, t.user_id, t.type, t.amount, t.jar_distribution, t.source, t.note, t.created_at
		 FROM allowance_transactions t
		 JOIN users u ON u.id = t.user_id
		 WHERE u.family_id = ?
		 ORDER BY t.created_at DESC, t.id DESC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return txns, nil
	}

	userRows, err := s.db.Query(`SELECT `+userCols+` FROM users WHERE family_id = ?`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer userRows.Close()

	users := make(map[int64]*model.User)
	for userRows.Next() {
		u, err := scanUser(userRows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users[u.ID] = u
	}
	if err := userRows.Err(); err != nil {
		return nil, err
	}

	for i := range txns {
		txns[i].User = users[txns[i].UserID]
	}
	return txns, nil
}

func collectTransactions(rows *sql.Rows) ([]model.AllowanceTransaction, error) {
	var txns []model.AllowanceTransaction
	for rows.Next() {
		t, err := scanAllowanceTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}
