package resumes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"resume-manager/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, owner_id, title, content, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		const insertResume = `
INSERT INTO resumes (title, content, owner_id, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
		if err := tx.QueryRowContext(ctx, insertResume,
			resume.Title,
			resume.Content,
			resume.UserID,
			resume.CreatedAt,
		).Scan(&resume.ID); err != nil {
			return err
		}

		const insertHistory = `
INSERT INTO resume_history (resume_id, content, improved_content, created_at)
VALUES ($1, $2, NULL, $3)`
		_, err := tx.ExecContext(ctx, insertHistory, resume.ID, resume.Content, resume.CreatedAt)
		return err
	})
	if err != nil {
		return Resume{}, err
	}
	return resume, nil
}

func (r *PGRepo) Get(ctx context.Context, userID, resumeID int64) (Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE id = $1 AND owner_id = $2
LIMIT 1`
	return scanResume(r.DB.QueryRowContext(ctx, query, resumeID, userID))
}

func (r *PGRepo) List(ctx context.Context, userID int64, offset, limit int) ([]Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE owner_id = $1
ORDER BY COALESCE(updated_at, created_at) DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, userID, resumeID int64, patch Patch, now time.Time) (Resume, error) {
	var out Resume
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		current, err := lockResume(ctx, tx, userID, resumeID)
		if err != nil {
			return err
		}
		next, changed := applyPatch(current, patch)
		if !changed {
			out = current
			return nil
		}
		if next.Content != current.Content {
			if _, err := insertHistory(ctx, tx, resumeID, current.Content, next.Content, now); err != nil {
				return err
			}
		}
		const update = `
UPDATE resumes
SET title = $1, content = $2, updated_at = $3
WHERE id = $4`
		if _, err := tx.ExecContext(ctx, update, next.Title, next.Content, now, resumeID); err != nil {
			return err
		}
		next.UpdatedAt = &now
		out = next
		return nil
	})
	if err != nil {
		return Resume{}, err
	}
	return out, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, resumeID int64) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := lockResume(ctx, tx, userID, resumeID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM resume_history WHERE resume_id = $1`, resumeID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, resumeID)
		return err
	})
}

func (r *PGRepo) AppendHistoryAndSetContent(ctx context.Context, userID, resumeID int64, expected *string, improved string, now time.Time) (Resume, History, error) {
	var (
		resume Resume
		entry  History
	)
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		current, err := lockResume(ctx, tx, userID, resumeID)
		if err != nil {
			return err
		}
		if expected != nil && *expected != current.Content {
			return ErrContentChanged
		}
		entry, err = insertHistory(ctx, tx, resumeID, current.Content, improved, now)
		if err != nil {
			return err
		}
		const update = `
UPDATE resumes
SET content = $1, updated_at = $2
WHERE id = $3`
		if _, err := tx.ExecContext(ctx, update, improved, now, resumeID); err != nil {
			return err
		}
		resume = current
		resume.Content = improved
		resume.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return Resume{}, History{}, err
	}
	return resume, entry, nil
}

func (r *PGRepo) ListHistory(ctx context.Context, resumeID int64, offset, limit int) ([]History, error) {
	const query = `
SELECT id, resume_id, content, improved_content, created_at
FROM resume_history
WHERE resume_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, resumeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]History, 0)
	for rows.Next() {
		var entry History
		var improved sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ResumeID, &entry.Content, &improved, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if improved.Valid {
			s := improved.String
			entry.ImprovedContent = &s
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func lockResume(ctx context.Context, tx *sql.Tx, userID, resumeID int64) (Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE id = $1 AND owner_id = $2
FOR UPDATE`
	return scanResume(tx.QueryRowContext(ctx, query, resumeID, userID))
}

func insertHistory(ctx context.Context, tx *sql.Tx, resumeID int64, before, after string, now time.Time) (History, error) {
	const query = `
INSERT INTO resume_history (resume_id, content, improved_content, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	entry := History{
		ResumeID:        resumeID,
		Content:         before,
		ImprovedContent: &after,
		CreatedAt:       now,
	}
	if err := tx.QueryRowContext(ctx, query, resumeID, before, after, now).Scan(&entry.ID); err != nil {
		return History{}, err
	}
	return entry, nil
}

func scanResume(row rowScanner) (Resume, error) {
	var resume Resume
	var updatedAt sql.NullTime
	err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Title,
		&resume.Content,
		&resume.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		resume.UpdatedAt = &t
	}
	return resume, nil
}

var _ Repo = (*PGRepo)(nil)
