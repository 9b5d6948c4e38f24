package books

import (
	"context"
	"errors"
	"strings"

	"storefront/domain"
)

// ErrEmptyComment is the validation failure for a whitespace-only
// body. It is raised before any network call is made.
var ErrEmptyComment = errors.New("comment body must not be empty")

// API is the slice of the client the workflow depends on.
type API interface {
	ReadOne(ctx context.Context, bookID string) (BookDetail, error)
	ReadComments(ctx context.Context, bookID string) ([]BookComment, error)
	CreateComment(ctx context.Context, bookID, body string, rating int) error
}

// Workflow is the comment/rating submission flow for a book's detail
// view. Unlike the catalog it polls: after a successful submit it
// re-fetches the comment list rather than waiting for a push.
//
// Double submits are not deduplicated; two quick presses create two
// comments. That matches the backend's contract, which offers no
// idempotency handle.
type Workflow struct {
	api API
}

func NewWorkflow(api API) *Workflow {
	return &Workflow{api: api}
}

// Submit validates, appends the comment, and returns the refreshed
// comment list for the book. A whitespace-only body fails locally with
// ErrEmptyComment and never reaches the network. An unset rating
// defaults to 5; out-of-range values are clamped to [1,5].
func (w *Workflow) Submit(ctx context.Context, bookID, body string, rating int) ([]BookComment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyComment
	}

	rating = domain.ClampRating(rating)

	if err := w.api.CreateComment(ctx, bookID, body, rating); err != nil {
		return nil, err
	}

	return w.api.ReadComments(ctx, bookID)
}

// FetchDetail reads one book. On failure the caller keeps whatever it
// was already showing.
func (w *Workflow) FetchDetail(ctx context.Context, bookID string) (BookDetail, error) {
	return w.api.ReadOne(ctx, bookID)
}

// FetchComments reads the comment list for a book.
func (w *Workflow) FetchComments(ctx context.Context, bookID string) ([]BookComment, error) {
	return w.api.ReadComments(ctx, bookID)
}
