package platforms

import (
	"context"
	"errors"
	"iter"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

// Page is one page of a cursor-paginated listing.
type Page struct {
	Records    []driven.RawRecord
	NextCursor string
}

// FetchFunc fetches the page at cursor. The first call receives an empty cursor.
// On failure it may return the records gathered so far alongside the error.
type FetchFunc func(ctx context.Context, cursor string) (*Page, error)

// Paginate walks a cursor-paginated listing lazily.
//
// Iteration stops when a page has no next cursor, when a page is empty even if
// it carries a cursor, or when a cursor repeats. A failed fetch yields one
// error of kind KindUpstreamFetchFailed and ends the sequence, after any
// records the partial page carried; context errors are yielded unchanged.
func Paginate(ctx context.Context, fetch FetchFunc) iter.Seq2[driven.RawRecord, error] {
	return func(yield func(driven.RawRecord, error) bool) {
		seen := make(map[string]bool)
		cursor := ""

		for {
			if err := ctx.Err(); err != nil {
				yield(driven.RawRecord{}, err)
				return
			}

			page, err := fetch(ctx, cursor)
			if err != nil {
				if page != nil {
					for _, rec := range page.Records {
						if !yield(rec, nil) {
							return
						}
					}
				}
				yield(driven.RawRecord{}, fetchError(ctx, err))
				return
			}

			for _, rec := range page.Records {
				if !yield(rec, nil) {
					return
				}
			}

			next := page.NextCursor
			if next == "" || len(page.Records) == 0 || seen[next] {
				return
			}
			seen[next] = true
			cursor = next
		}
	}
}

// fetchError classifies a page fetch failure.
func fetchError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}
	if errors.Is(err, domain.ErrUpstreamFetchFailed) {
		return err
	}
	return &domain.IntegrationError{
		Kind:    domain.KindUpstreamFetchFailed,
		Message: "fetch page",
		Detail:  err.Error(),
	}
}
