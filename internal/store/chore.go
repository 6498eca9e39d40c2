package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hearth/internal/chore"
	"github.com/dukerupert/hearth/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	err := scanner.Scan(
		&c.ID, &c.FamilyID, &c.Title, &c.Description, &c.Points,
		&c.Schedule, &c.Difficulty, &c.Photos, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.ChoreAssignment, error) {
	var a model.ChoreAssignment
	err := scanner.Scan(&a.ID, &a.ChoreID, &a.UserID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.ChoreCompletion, error) {
	var c model.ChoreCompletion
	var timeSpent sql.NullInt64
	var approvedAt sql.NullTime

	err := scanner.Scan(
		&c.ID, &c.AssignmentID, &c.UserID, &c.Status,
		&c.BeforePhotos, &c.AfterPhotos, &c.Notes, &timeSpent, &approvedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if timeSpent.Valid {
		v := int(timeSpent.Int64)
		c.TimeSpent = &v
	}
	if approvedAt.Valid {
		c.ApprovedAt = &approvedAt.Time
	}
	return &c, nil
}

const choreCols = `id, family_id, title, description, points, schedule, difficulty, photos, created_at, updated_at`
const assignmentCols = `id, chore_id, user_id, status, created_at, updated_at`
const completionCols = `id, assignment_id, user_id, status, before_photos, after_photos, notes, time_spent, approved_at, created_at`

// Create persists the chore and one pending assignment per assignee in a
// single transaction, so a bad assignee id rolls the whole chore back.
func (s *ChoreStore) Create(familyID int64, title, description string, points int, schedule model.Schedule, difficulty string, photos model.StringList, assigneeIDs []int64) (*model.Chore, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO chores (family_id, title, description, points, schedule, difficulty, photos) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		familyID, title, description, points, schedule, difficulty, photos,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	choreID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, userID := range assigneeIDs {
		// Assignees must belong to the same family as the chore.
		var memberID int64
		err := tx.QueryRow(`SELECT id FROM users WHERE id = ? AND family_id = ?`, userID, familyID).Scan(&memberID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("assignee %d: %w", userID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("check assignee: %w", err)
		}

		if _, err := tx.Exec(
			`INSERT INTO chore_assignments (chore_id, user_id, status) VALUES (?, ?, ?)`,
			choreID, userID, chore.StatusPending,
		); err != nil {
			return nil, fmt.Errorf("insert assignment: %w", err)
		}
	}

	c, err := scanChore(tx.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, choreID))
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

// GetDetail returns the chore with its assignments (and their users and
// completions), scoped to the family.
func (s *ChoreStore) GetDetail(familyID, choreID int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ? AND family_id = ?`, choreID, familyID)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}

	chores := []model.Chore{*c}
	if err := s.attachAssignments(familyID, chores); err != nil {
		return nil, err
	}
	return &chores[0], nil
}

// ListByFamily returns all family chores with nested assignments and
// completions.
func (s *ChoreStore) ListByFamily(familyID int64) ([]model.Chore, error) {
	rows, err := s.db.Query(
		`SELECT `+choreCols+` FROM chores WHERE family_id = ? ORDER BY created_at ASC, id ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachAssignments(familyID, chores); err != nil {
		return nil, err
	}
	return chores, nil
}

// attachAssignments fills Assignments (with user and completions) for each
// chore in place.
func (s *ChoreStore) attachAssignments(familyID int64, chores []model.Chore) error {
	if len(chores) == 0 {
		return nil
	}

	byChore := make(map[int64]*model.Chore, len(chores))
	for i := range chores {
		byChore[chores[i].ID] = &chores[i]
	}

	rows, err := s.db.Query(
		`SELECT a.id, a.chore_id, a.user_id, a.status, a.created_at, a.updated_at
		 FROM chore_assignments a
		 JOIN chores c ON c.id = a.chore_id
		 WHERE c.family_id = ?
		 ORDER BY a.id ASC`,
		familyID,
	)
	if err != nil {
		return fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return fmt.Errorf("scan assignment: %w", err)
		}
		c, ok := byChore[a.ChoreID]
		if !ok {
			continue
		}
		c.Assignments = append(c.Assignments, *a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Pointers into the assignment slices are only safe once every append is
	// done; an earlier append could reallocate the backing array.
	byAssignment := make(map[int64]*model.ChoreAssignment)
	for _, c := range byChore {
		for i := range c.Assignments {
			byAssignment[c.Assignments[i].ID] = &c.Assignments[i]
		}
	}

	userRows, err := s.db.Query(`SELECT `+userCols+` FROM users WHERE family_id = ?`, familyID)
	if err != nil {
		return fmt.Errorf("list assignment users: %w", err)
	}
	defer userRows.Close()

	users := make(map[int64]*model.User)
	for userRows.Next() {
		u, err := scanUser(userRows)
		if err != nil {
			return fmt.Errorf("scan user: %w", err)
		}
		users[u.ID] = u
	}
	if err := userRows.Err(); err != nil {
		return err
	}
	for _, a := range byAssignment {
		a.User = users[a.UserID]
	}

	compRows, err := s.db.Query(
		`SELECT `+prefixedCompletionCols("cc")+`
		 FROM chore_completions cc
		 JOIN chore_assignments a ON a.id = cc.assignment_id
		 JOIN chores c ON c.id = a.chore_id
		 WHERE c.family_id = ?
		 ORDER BY cc.id ASC`,
		familyID,
	)
	if err != nil {
		return fmt.Errorf("list completions: %w", err)
	}
	defer compRows.Close()

	for compRows.Next() {
		comp, err := scanCompletion(compRows)
		if err != nil {
			return fmt.Errorf("scan completion: %w", err)
		}
		if a, ok := byAssignment[comp.AssignmentID]; ok {
			a.Completions = append(a.Completions, *comp)
		}
	}
	return compRows.Err()
}

func prefixedCompletionCols(alias string) string {
	return alias + `.id, ` + alias + `.assignment_id, ` + alias + `.user_id, ` + alias + `.status, ` +
		alias + `.before_photos, ` + alias + `.after_photos, ` + alias + `.notes, ` +
		alias + `.time_spent, ` + alias + `.approved_at, ` + alias + `.created_at`
}

// SubmitCompletion records proof-of-work for the submitting user's own
// assignment on the chore and marks the assignment completed. Both writes
// happen in one transaction. ErrNotFound when the user has no assignment on
// the chore, ErrInvalidTransition when the assignment is already awaiting
// review or approved.
func (s *ChoreStore) SubmitCompletion(choreID, userID int64, beforePhotos, afterPhotos model.StringList, notes string, timeSpent *int) (*model.ChoreCompletion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Newest matching assignment wins; rejection may legitimately be
	// followed by a fresh assignment on the same chore.
	var (
		assignmentID int64
		status       string
	)
	err = tx.QueryRow(
		`SELECT id, status FROM chore_assignments WHERE chore_id = ? AND user_id = ? ORDER BY id DESC LIMIT 1`,
		choreID, userID,
	).Scan(&assignmentID, &status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}

	if !chore.CanTransition(chore.Status(status), chore.StatusCompleted) {
		return nil, fmt.Errorf("submit from %s: %w", status, ErrInvalidTransition)
	}

	var ts sql.NullInt64
	if timeSpent != nil {
		ts = sql.NullInt64{Int64: int64(*timeSpent), Valid: true}
	}

	result, err := tx.Exec(
		`INSERT INTO chore_completions (assignment_id, user_id, status, before_photos, after_photos, notes, time_spent)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		assignmentID, userID, chore.ReviewPending, beforePhotos, afterPhotos, notes, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	completionID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE chore_assignments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		chore.StatusCompleted, assignmentID,
	); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	completion, err := scanCompletion(tx.QueryRow(`SELECT `+completionCols+` FROM chore_completions WHERE id = ?`, completionID))
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return completion, nil
}

// ReviewCompletion approves or rejects a pending completion, mirrors the
// verdict onto the assignment, and on approval credits the submitter with the
// chore's points and bumps their streak. Everything runs in one transaction;
// a completion that was already reviewed returns ErrAlreadyReviewed and
// changes nothing, so points can never be awarded twice.
func (s *ChoreStore) ReviewCompletion(familyID, completionID int64, approve bool) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		assignmentID     int64
		userID           int64
		status           string
		assignmentStatus string
		points           int
	)
	err = tx.QueryRow(
		`SELECT cc.assignment_id, cc.user_id, cc.status, a.status, c.points
		 FROM chore_completions cc
		 JOIN chore_assignments a ON a.id = cc.assignment_id
		 JOIN chores c ON c.id = a.chore_id
		 WHERE cc.id = ? AND c.family_id = ?`,
		completionID, familyID,
	).Scan(&assignmentID, &userID, &status, &assignmentStatus, &points)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get completion: %w", err)
	}

	if status != chore.ReviewPending {
		return "", ErrAlreadyReviewed
	}

	verdictStatus := chore.ReviewStatus(approve)
	if !chore.CanTransition(chore.Status(assignmentStatus), verdictStatus) {
		return "", fmt.Errorf("review from %s: %w", assignmentStatus, ErrInvalidTransition)
	}
	verdict := string(verdictStatus)

	var approvedAt any
	if approve {
		approvedAt = time.Now().UTC()
	}
	if _, err := tx.Exec(
		`UPDATE chore_completions SET status = ?, approved_at = ? WHERE id = ?`,
		verdict, approvedAt, completionID,
	); err != nil {
		return "", fmt.Errorf("update completion: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE chore_assignments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		verdict, assignmentID,
	); err != nil {
		return "", fmt.Errorf("update assignment: %w", err)
	}

	if approve {
		if _, err := tx.Exec(
			`UPDATE users SET points = points + ?, streak = streak + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			points, userID,
		); err != nil {
			return "", fmt.Errorf("award points: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return verdict, nil
}
