package services

import (
	"context"

	"github.com/pkggallery/pkggallery/pkg/gallery"
)

const suggestionSize = 5

// SearchService answers search and autocomplete queries.
type SearchService struct {
	selector *gallery.Selector
	configs  *gallery.ConfigManager
}

// Search queries the configured source chain. When opts.SortBy is empty
// the first entry of the project's configured sort chain applies.
func (s *SearchService) Search(ctx context.Context, opts gallery.SearchOptions) (*gallery.SearchResult, error) {
	if opts.SortBy == "" {
		if sort := s.selector.Config().SortBy; len(sort) > 0 {
			opts.SortBy = sort[0]
		}
	}
	res, _, err := gallery.ExecuteWithFallback(ctx, s.selector, "search",
		func(ctx context.Context, a gallery.Adapter) (*gallery.SearchResult, error) {
			return a.Search(ctx, opts)
		})
	return res, err
}

// Suggest returns autocomplete candidates. Sources without a dedicated
// suggestions capability are served by a small search instead.
func (s *SearchService) Suggest(ctx context.Context, query string) ([]gallery.PackageSummary, error) {
	a, err := s.selector.Adapter("")
	if err != nil {
		return nil, err
	}
	if gallery.Supports(a, gallery.CapSuggestions) {
		hits, err := a.Suggestions(ctx, query, suggestionSize)
		if err == nil {
			return hits, nil
		}
		if !gallery.IsCapabilityNotSupported(err) {
			return nil, err
		}
	}
	res, err := a.Search(ctx, gallery.SearchOptions{Query: query, Size: suggestionSize})
	if err != nil {
		return nil, err
	}
	return res.Packages, nil
}
