package service

import (
	"context"
	"time"

	"github.com/emrgen/taxonomy/internal/highlight"
	"github.com/emrgen/taxonomy/internal/model"
	"github.com/emrgen/taxonomy/internal/pagination"
	"github.com/emrgen/taxonomy/internal/store"
)

// NewSearchService creates a new SearchService.
func NewSearchService(store store.Store) *SearchService {
	return &SearchService{
		store:  store,
		marker: highlight.New(),
	}
}

// SearchService runs entry searches and decorates the matched rows with
// highlight markers. Matching and ranking happen in the store, the service
// is a pure transform over the returned page.
type SearchService struct {
	store  store.Store
	marker *highlight.Marker
}

type SearchRequest struct {
	Query    string
	TaxonID  uint
	Page     int
	PageSize int
}

// SearchResult is one result row: the entry's fields plus *Marked siblings
// carrying the highlighted variants. Clients fall back to the plain field
// when a marked one is absent.
type SearchResult struct {
	ID               uint      `json:"id"`
	TaxonID          uint      `json:"taxonId"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	SortOrder        int       `json:"sortOrder"`
	ShortDescription string    `json:"shortDescription"`
	ContentHTML      string    `json:"contentHtml"`
	OfficialNameTh   string    `json:"officialNameTh"`
	ScientificName   string    `json:"scientificName"`
	Genus            string    `json:"genus"`
	Species          string    `json:"species"`
	Family           string    `json:"family"`
	Synonyms         string    `json:"synonyms"`
	OtherNames       string    `json:"otherNames"`
	AuthorName       string    `json:"authorName"`
	AuthorPeriod     string    `json:"authorPeriod"`
	Version          int64     `json:"version"`
	IsPublished      bool      `json:"isPublished"`
	UpdatedAt        time.Time `json:"updatedAt"`

	TitleMarked            string `json:"titleMarked"`
	OfficialNameThMarked   string `json:"officialNameThMarked"`
	ShortDescriptionMarked string `json:"shortDescriptionMarked"`
	ContentHTMLMarked      string `json:"contentHtmlMarked"`
	FamilyMarked           string `json:"familyMarked"`
	SynonymsMarked         string `json:"synonymsMarked"`
}

type SearchResultPage struct {
	Results    []*SearchResult `json:"results"`
	Pagination pagination.Meta `json:"pagination"`
}

// Search runs the query and highlights the allow-listed fields of every
// matched row. An empty query lists entries with marked fields identical to
// their source.
func (s *SearchService) Search(ctx context.Context, request *SearchRequest) (*SearchResultPage, error) {
	params := pagination.Normalize(request.Page, request.PageSize)
	q := highlight.NormalizeQuery(request.Query)

	entries, total, err := s.store.SearchEntries(ctx, q, request.TaxonID, params.Offset(), params.PageSize)
	if err != nil {
		return nil, err
	}

	results := make([]*SearchResult, 0, len(entries))
	for _, entry := range entries {
		decoded, err := decodeContent(entry)
		if err != nil {
			return nil, err
		}
		results = append(results, s.format(decoded, q))
	}

	return &SearchResultPage{
		Results:    results,
		Pagination: pagination.NewMeta(params, total),
	}, nil
}

func (s *SearchService) format(entry *model.TaxonEntry, q string) *SearchResult {
	return &SearchResult{
		ID:               entry.ID,
		TaxonID:          entry.TaxonID,
		Title:            entry.Title,
		Slug:             entry.Slug,
		SortOrder:        entry.SortOrder,
		ShortDescription: entry.ShortDescription,
		ContentHTML:      entry.ContentHTML,
		OfficialNameTh:   entry.OfficialNameTh,
		ScientificName:   entry.ScientificName,
		Genus:            entry.Genus,
		Species:          entry.Species,
		Family:           entry.Family,
		Synonyms:         entry.Synonyms,
		OtherNames:       entry.OtherNames,
		AuthorName:       entry.AuthorName,
		AuthorPeriod:     entry.AuthorPeriod,
		Version:          entry.Version,
		IsPublished:      entry.IsPublished,
		UpdatedAt:        entry.UpdatedAt,

		TitleMarked:            s.marker.MarkText(entry.Title, q),
		OfficialNameThMarked:   s.marker.MarkText(entry.OfficialNameTh, q),
		ShortDescriptionMarked: s.marker.MarkText(entry.ShortDescription, q),
		ContentHTMLMarked:      s.marker.MarkHTML(entry.ContentHTML, q),
		FamilyMarked:           s.marker.MarkText(entry.Family, q),
		SynonymsMarked:         s.marker.MarkText(entry.Synonyms, q),
	}
}
