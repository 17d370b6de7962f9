package resumes

import "context"

// Improver derives improved résumé text. A model-backed implementation can be
// injected in place of PlaceholderImprover.
type Improver interface {
	Improve(ctx context.Context, content string) (string, error)
}

const defaultImproveSuffix = " [Improved]"

// PlaceholderImprover appends a fixed marker to the content.
type PlaceholderImprover struct {
	Suffix string
}

func (p PlaceholderImprover) Improve(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	suffix := p.Suffix
	if suffix == "" {
		suffix = defaultImproveSuffix
	}
	return content + suffix, nil
}
