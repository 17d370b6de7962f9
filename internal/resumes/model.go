package resumes

import "time"

// Resume is a titled body of text owned by one user.
type Resume struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// History records a content mutation: Content is the text before the change and
// ImprovedContent the text after it. The entry written on creation has no ImprovedContent.
type History struct {
	ID              int64
	ResumeID        int64
	Content         string
	ImprovedContent *string
	CreatedAt       time.Time
}

type CreateInput struct {
	Title   string
	Content string
}

// Patch carries the fields of a partial update; nil means "leave unchanged".
type Patch struct {
	Title   *string
	Content *string
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

type ResumeWithHistory struct {
	Resume  Resume
	History []History
}

type ImproveResult struct {
	Resume  Resume
	History History
}
