package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/dukerupert/hearth/internal/model"
)

// codeAlphabet excludes 0/O and 1/I to keep join codes easy to read aloud.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
	codeAttempts = 5
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	err := scanner.Scan(&f.ID, &f.Name, &f.FamilyCode, &f.PINHash, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

const familyCols = `id, name, family_code, pin_hash, created_at, updated_at`

// Register creates a family and its first parent user in one transaction.
// The join code is generated here; a collision with an existing family is
// retried with a fresh code.
func (s *FamilyStore) Register(name, pinHash, parentName, parentAvatar string) (*model.Family, *model.User, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var familyID int64
	for attempt := 0; ; attempt++ {
		code, err := generateFamilyCode()
		if err != nil {
			return nil, nil, fmt.Errorf("generate family code: %w", err)
		}

		result, err := tx.Exec(
			`INSERT INTO families (name, family_code, pin_hash) VALUES (?, ?, ?)`,
			name, code, pinHash,
		)
		if err == nil {
			familyID, err = result.LastInsertId()
			if err != nil {
				return nil, nil, fmt.Errorf("last insert id: %w", err)
			}
			break
		}
		if attempt+1 >= codeAttempts {
			return nil, nil, fmt.Errorf("insert family: %w", err)
		}
	}

	userResult, err := tx.Exec(
		`INSERT INTO users (family_id, name, role, avatar) VALUES (?, ?, 'parent', ?)`,
		familyID, parentName, parentAvatar,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("insert parent user: %w", err)
	}
	userID, err := userResult.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("last insert id: %w", err)
	}

	family, err := scanFamily(tx.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, familyID))
	if err != nil {
		return nil, nil, fmt.Errorf("get family: %w", err)
	}
	user, err := scanUser(tx.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, userID))
	if err != nil {
		return nil, nil, fmt.Errorf("get parent user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return family, user, nil
}

func (s *FamilyStore) GetByID(id int64) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

// GetByCode looks up a family by join code, case-insensitively.
func (s *FamilyStore) GetByCode(code string) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE family_code = ?`, code)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family by code: %w", err)
	}
	return f, nil
}

func generateFamilyCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
