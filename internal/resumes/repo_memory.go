package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-process Repo for local development and tests.
type MemoryRepo struct {
	mu            sync.Mutex
	nextResumeID  int64
	nextHistoryID int64
	resumes       map[int64]Resume
	history       map[int64][]History
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		resumes: make(map[int64]Resume),
		history: make(map[int64][]History),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextResumeID++
	resume.ID = r.nextResumeID
	r.resumes[resume.ID] = resume
	r.appendLocked(resume.ID, resume.Content, nil, resume.CreatedAt)
	return resume, nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, resumeID int64) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ownedLocked(userID, resumeID)
}

func (r *MemoryRepo) List(ctx context.Context, userID int64, offset, limit int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	owned := make([]Resume, 0)
	for _, resume := range r.resumes {
		if resume.UserID == userID {
			owned = append(owned, resume)
		}
	}
	r.mu.Unlock()

	sort.Slice(owned, func(i, j int) bool {
		ti, tj := lastTouched(owned[i]), lastTouched(owned[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return owned[i].ID > owned[j].ID
	})
	return page(owned, offset, limit), nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID, resumeID int64, patch Patch, now time.Time) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.ownedLocked(userID, resumeID)
	if err != nil {
		return Resume{}, err
	}
	next, changed := applyPatch(current, patch)
	if !changed {
		return current, nil
	}
	if next.Content != current.Content {
		after := next.Content
		r.appendLocked(resumeID, current.Content, &after, now)
	}
	next.UpdatedAt = &now
	r.resumes[resumeID] = next
	return next, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, resumeID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.ownedLocked(userID, resumeID); err != nil {
		return err
	}
	delete(r.history, resumeID)
	delete(r.resumes, resumeID)
	return nil
}

func (r *MemoryRepo) AppendHistoryAndSetContent(ctx context.Context, userID, resumeID int64, expected *string, improved string, now time.Time) (Resume, History, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, History{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.ownedLocked(userID, resumeID)
	if err != nil {
		return Resume{}, History{}, err
	}
	if expected != nil && *expected != current.Content {
		return Resume{}, History{}, ErrContentChanged
	}
	entry := r.appendLocked(resumeID, current.Content, &improved, now)
	current.Content = improved
	current.UpdatedAt = &now
	r.resumes[resumeID] = current
	return current, entry, nil
}

func (r *MemoryRepo) ListHistory(ctx context.Context, resumeID int64, offset, limit int) ([]History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	entries := append([]History(nil), r.history[resumeID]...)
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
	return page(entries, offset, limit), nil
}

func (r *MemoryRepo) ownedLocked(userID, resumeID int64) (Resume, error) {
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

func (r *MemoryRepo) appendLocked(resumeID int64, before string, after *string, at time.Time) History {
	r.nextHistoryID++
	entry := History{
		ID:              r.nextHistoryID,
		ResumeID:        resumeID,
		Content:         before,
		ImprovedContent: after,
		CreatedAt:       at,
	}
	r.history[resumeID] = append(r.history[resumeID], entry)
	return entry
}

func lastTouched(r Resume) time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var _ Repo = (*MemoryRepo)(nil)
