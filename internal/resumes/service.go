package resumes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"resume-manager/internal/extract"
	"resume-manager/internal/shared/metrics"
	"resume-manager/internal/shared/telemetry"
	"resume-manager/internal/shared/util"
)

const (
	maxTitleLength   = 100
	minContentLength = 10

	DefaultLimit = 100
	MaxLimit     = 100
)

// Service implements résumé operations scoped to the calling user.
type Service struct {
	Repo     Repo
	Improver Improver
	now      func() time.Time
}

func NewService(repo Repo, improver Improver) *Service {
	if improver == nil {
		improver = PlaceholderImprover{}
	}
	return &Service{Repo: repo, Improver: improver, now: time.Now}
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (Resume, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return Resume{}, err
	}
	if err := validateContent(in.Content); err != nil {
		return Resume{}, err
	}
	resume, err := s.Repo.Create(ctx, Resume{
		UserID:    userID,
		Title:     title,
		Content:   in.Content,
		CreatedAt: s.clock(),
	})
	if err != nil {
		return Resume{}, err
	}
	metrics.IncResumeCreated()
	telemetry.Info("resume.created", map[string]any{"user_id": userID, "resume_id": resume.ID})
	return resume, nil
}

func (s *Service) Get(ctx context.Context, userID, resumeID int64) (Resume, error) {
	return s.Repo.Get(ctx, userID, resumeID)
}

// GetWithHistory returns the résumé and up to limit history entries, newest first.
func (s *Service) GetWithHistory(ctx context.Context, userID, resumeID int64, limit int) (ResumeWithHistory, error) {
	resume, err := s.Repo.Get(ctx, userID, resumeID)
	if err != nil {
		return ResumeWithHistory{}, err
	}
	_, limit = normalizePage(0, limit)
	history, err := s.Repo.ListHistory(ctx, resumeID, 0, limit)
	if err != nil {
		return ResumeWithHistory{}, err
	}
	return ResumeWithHistory{Resume: resume, History: history}, nil
}

// List returns the user's résumés, most recently touched first.
func (s *Service) List(ctx context.Context, userID int64, offset, limit int) ([]Resume, error) {
	offset, limit = normalizePage(offset, limit)
	return s.Repo.List(ctx, userID, offset, limit)
}

// Update applies the present fields. History is written only when the content changes.
func (s *Service) Update(ctx context.Context, userID, resumeID int64, patch Patch) (Resume, error) {
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return Resume{}, err
		}
		patch.Title = &title
	}
	if patch.Content != nil {
		if err := validateContent(*patch.Content); err != nil {
			return Resume{}, err
		}
	}
	if patch.Empty() {
		return s.Repo.Get(ctx, userID, resumeID)
	}
	resume, err := s.Repo.Update(ctx, userID, resumeID, patch, s.clock())
	if err != nil {
		return Resume{}, err
	}
	metrics.IncResumeUpdated()
	return resume, nil
}

func (s *Service) Delete(ctx context.Context, userID, resumeID int64) error {
	if err := s.Repo.Delete(ctx, userID, resumeID); err != nil {
		return err
	}
	metrics.IncResumeDeleted()
	telemetry.Info("resume.deleted", map[string]any{"user_id": userID, "resume_id": resumeID})
	return nil
}

// Improve replaces the content with proposed, or with the Improver's output when
// proposed is nil, and records the previous content in history. The Improver runs
// outside the store transaction; if the content changes meanwhile the call fails
// with ErrContentChanged.
func (s *Service) Improve(ctx context.Context, userID, resumeID int64, proposed *string) (ImproveResult, error) {
	var (
		expected *string
		improved string
	)
	if proposed != nil {
		if err := validateContent(*proposed); err != nil {
			return ImproveResult{}, err
		}
		improved = *proposed
	} else {
		current, err := s.Repo.Get(ctx, userID, resumeID)
		if err != nil {
			return ImproveResult{}, err
		}
		derived, err := s.Improver.Improve(ctx, current.Content)
		if err != nil {
			return ImproveResult{}, fmt.Errorf("improve content: %w", err)
		}
		expected = &current.Content
		improved = derived
	}
	resume, entry, err := s.Repo.AppendHistoryAndSetContent(ctx, userID, resumeID, expected, improved, s.clock())
	if err != nil {
		return ImproveResult{}, err
	}
	metrics.IncResumeImproved()
	telemetry.Info("resume.improved", map[string]any{
		"user_id":   userID,
		"resume_id": resumeID,
		"history":   entry.ID,
		"supplied":  proposed != nil,
	})
	return ImproveResult{Resume: resume, History: entry}, nil
}

// History lists the résumé's history, newest first.
func (s *Service) History(ctx context.Context, userID, resumeID int64, offset, limit int) ([]History, error) {
	if _, err := s.Repo.Get(ctx, userID, resumeID); err != nil {
		return nil, err
	}
	offset, limit = normalizePage(offset, limit)
	return s.Repo.ListHistory(ctx, resumeID, offset, limit)
}

// Import extracts text from an uploaded file and creates a résumé from it. An
// empty title falls back to the file name without its extension.
func (s *Service) Import(ctx context.Context, userID int64, title, fileName, mimeType string, data []byte) (Resume, error) {
	cleanName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	text, err := extract.ExtractTextFromBytes(ctx, data, mimeType, cleanName)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Resume{}, err
		}
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(cleanName, filepath.Ext(cleanName))
	}
	return s.Create(ctx, userID, CreateInput{Title: title, Content: text})
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	if n == 0 || n > maxTitleLength {
		return "", fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidInput, maxTitleLength)
	}
	return title, nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" || utf8.RuneCountInString(content) < minContentLength {
		return fmt.Errorf("%w: content must be at least %d characters", ErrInvalidInput, minContentLength)
	}
	return nil
}

func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return offset, limit
}
