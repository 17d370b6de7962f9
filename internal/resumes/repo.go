package resumes

import (
	"context"
	"time"
)

// Repo persists résumés and their history. Every method is one atomic unit.
type Repo interface {
	// Create inserts the résumé and its initial history entry.
	Create(ctx context.Context, resume Resume) (Resume, error)
	Get(ctx context.Context, userID, resumeID int64) (Resume, error)
	List(ctx context.Context, userID int64, offset, limit int) ([]Resume, error)
	// Update applies patch and records history when the content changes.
	Update(ctx context.Context, userID, resumeID int64, patch Patch, now time.Time) (Resume, error)
	// Delete removes the résumé and all of its history.
	Delete(ctx context.Context, userID, resumeID int64) error
	// AppendHistoryAndSetContent records {current, improved} and overwrites the content.
	// A non-nil expected must equal the stored content or ErrContentChanged is returned.
	AppendHistoryAndSetContent(ctx context.Context, userID, resumeID int64, expected *string, improved string, now time.Time) (Resume, History, error)
	ListHistory(ctx context.Context, resumeID int64, offset, limit int) ([]History, error)
}

// applyPatch returns the patched résumé and whether anything changed.
func applyPatch(current Resume, patch Patch) (Resume, bool) {
	next := current
	changed := false
	if patch.Title != nil && *patch.Title != current.Title {
		next.Title = *patch.Title
		changed = true
	}
	if patch.Content != nil && *patch.Content != current.Content {
		next.Content = *patch.Content
		changed = true
	}
	return next, changed
}
