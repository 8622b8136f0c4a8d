package cart

import (
	"context"
	"fmt"

	"github.com/threadline/storefront/internal/backend"
	"github.com/threadline/storefront/internal/domain"
)

// LineCreator is the slice of the backend client the submitter needs.
type LineCreator interface {
	AddCartLine(ctx context.Context, line domain.CartLine, file *backend.LogoFile) (domain.CartLine, error)
}

// Submitter pushes the lines of one multi-size add to the backend.
type Submitter struct {
	remote LineCreator
}

// NewSubmitter constructs a submitter over the backend client.
func NewSubmitter(remote LineCreator) *Submitter {
	return &Submitter{remote: remote}
}

// Submit POSTs the lines one at a time, in order. The requests must not be
// parallelized: the first response supplies the logo URL the later lines
// reuse, which is what keeps the setup fee charged exactly once per add.
// On failure the loop stops and the lines already created stay in the cart;
// the committed prefix is returned alongside the aggregate error.
func (s *Submitter) Submit(ctx context.Context, lines []domain.CartLine, file *backend.LogoFile) ([]domain.CartLine, error) {
	committed := make([]domain.CartLine, 0, len(lines))
	logoURL := ""

	for i, line := range lines {
		var attach *backend.LogoFile
		if i == 0 {
			attach = file
		} else if line.UsePreviousLogo && line.LogoURL == "" {
			line.LogoURL = logoURL
		}

		created, err := s.remote.AddCartLine(ctx, line, attach)
		if err != nil {
			return committed, fmt.Errorf("cart: submit stopped at line %d of %d (size %s): %w", i+1, len(lines), line.Size, err)
		}
		if i == 0 && created.LogoURL != "" {
			logoURL = created.LogoURL
		}
		committed = append(committed, created)
	}
	return committed, nil
}
