package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/emrgen/taxonomy/internal/compress"
	"github.com/emrgen/taxonomy/internal/model"
	"github.com/emrgen/taxonomy/internal/store"
	"github.com/emrgen/taxonomy/internal/tester"
	"github.com/stretchr/testify/assert"
)

func setupSearchService(t *testing.T) (*SearchService, *EntryService, *model.Taxon) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	entries := NewEntryService(compress.NewNop(), st, nil, nil)
	search := NewSearchService(st)

	taxon := &model.Taxon{Name: "Musaceae", NameTh: "กล้วย"}
	assert.NoError(t, st.CreateTaxon(context.TODO(), taxon))

	return search, entries, taxon
}

func TestSearchService_Search(t *testing.T) {
	search, entries, taxon := setupSearchService(t)

	_, err := entries.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:        taxon.ID,
		Title:          "กล้วยน้ำไทย",
		OfficialNameTh: "กล้วยน้ำไทย",
		ContentHTML:    "<p>กล้วยน้ำไทยเป็นกล้วยพื้นเมืองของไทย</p>",
		Family:         "Musaceae",
	})
	assert.NoError(t, err)

	_, err = entries.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:        taxon.ID,
		Title:          "ทุเรียนหมอนทอง",
		OfficialNameTh: "ทุเรียน",
		ContentHTML:    "<p>ทุเรียนเป็นราชาแห่งผลไม้</p>",
	})
	assert.NoError(t, err)

	page, err := search.Search(context.TODO(), &SearchRequest{Query: "กล้วย"})
	assert.NoError(t, err)
	assert.Len(t, page.Results, 1)
	assert.EqualValues(t, 1, page.Pagination.TotalItems)

	result := page.Results[0]
	assert.Equal(t, "กล้วยน้ำไทย", result.Title)
	assert.Equal(t, "<mark>กล้วย</mark>น้ำไทย", result.TitleMarked)
	assert.Equal(t, "<mark>กล้วย</mark>น้ำไทย", result.OfficialNameThMarked)
	assert.Contains(t, result.ContentHTMLMarked, "<p><mark>กล้วย</mark>น้ำไทยเป็น<mark>กล้วย</mark>พื้นเมืองของไทย</p>")
	// unmatched fields come back escaped but unmarked
	assert.Equal(t, "Musaceae", result.FamilyMarked)
}

func TestSearchService_EmptyQueryListsUnmarked(t *testing.T) {
	search, entries, taxon := setupSearchService(t)

	_, err := entries.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:     taxon.ID,
		Title:       "กล้วยน้ำไทย",
		ContentHTML: "<p>เนื้อหา &amp; รายละเอียด</p>",
	})
	assert.NoError(t, err)

	page, err := search.Search(context.TODO(), &SearchRequest{Query: "   "})
	assert.NoError(t, err)
	assert.Len(t, page.Results, 1)

	// no query means no marking and no re-escaping, bytes stay identical
	result := page.Results[0]
	assert.Equal(t, result.Title, result.TitleMarked)
	assert.Equal(t, result.ContentHTML, result.ContentHTMLMarked)
}

func TestSearchService_CaseInsensitive(t *testing.T) {
	search, entries, taxon := setupSearchService(t)

	_, err := entries.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:        taxon.ID,
		Title:          "กล้วยน้ำไทย",
		ScientificName: "Musa sapientum",
		Family:         "Musaceae",
	})
	assert.NoError(t, err)

	page, err := search.Search(context.TODO(), &SearchRequest{Query: "musaceae"})
	assert.NoError(t, err)
	assert.Len(t, page.Results, 1)
	assert.Equal(t, "<mark>Musaceae</mark>", page.Results[0].FamilyMarked)
}

func TestSearchService_TaxonScope(t *testing.T) {
	search, entries, taxon := setupSearchService(t)

	st := store.NewGormStore(tester.TestDB())
	other := &model.Taxon{Name: "Durio"}
	assert.NoError(t, st.CreateTaxon(context.TODO(), other))

	_, err := entries.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID: taxon.ID,
		Title:   "กล้วยน้ำไทย",
	})
	assert.NoError(t, err)

	_, err = entries.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID: other.ID,
		Title:   "กล้วยไม้ป่า",
	})
	assert.NoError(t, err)

	page, err := search.Search(context.TODO(), &SearchRequest{Query: "กล้วย", TaxonID: taxon.ID})
	assert.NoError(t, err)
	assert.Len(t, page.Results, 1)
	assert.Equal(t, taxon.ID, page.Results[0].TaxonID)
}

func TestSearchService_Pagination(t *testing.T) {
	search, entries, taxon := setupSearchService(t)

	for i := 0; i < 25; i++ {
		_, err := entries.CreateEntry(context.TODO(), &CreateEntryRequest{
			TaxonID:   taxon.ID,
			Title:     fmt.Sprintf("กล้วยสายพันธุ์ %02d", i),
			SortOrder: i,
		})
		assert.NoError(t, err)
	}

	page, err := search.Search(context.TODO(), &SearchRequest{Query: "กล้วย", Page: 2, PageSize: 10})
	assert.NoError(t, err)
	assert.Len(t, page.Results, 10)
	assert.EqualValues(t, 25, page.Pagination.TotalItems)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasPrev)
	assert.True(t, page.Pagination.HasNext)
	assert.Equal(t, 1, page.Pagination.PrevPage)
	assert.Equal(t, 3, page.Pagination.NextPage)

	// out-of-range page size clamps to the default
	page, err = search.Search(context.TODO(), &SearchRequest{Query: "กล้วย", PageSize: 33})
	assert.NoError(t, err)
	assert.Len(t, page.Results, 20)
	assert.Equal(t, 20, page.Pagination.PageSize)
}

func TestSearchService_RankedByField(t *testing.T) {
	search, entries, taxon := setupSearchService(t)

	// matches only in the body
	_, err := entries.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:     taxon.ID,
		Title:       "ทุเรียนหมอนทอง",
		ContentHTML: "<p>มักปลูกคู่กับกล้วย</p>",
	})
	assert.NoError(t, err)

	// matches in the official name
	_, err = entries.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:        taxon.ID,
		Title:          "กล้วยน้ำไทย",
		OfficialNameTh: "กล้วยน้ำไทย",
	})
	assert.NoError(t, err)

	page, err := search.Search(context.TODO(), &SearchRequest{Query: "กล้วย"})
	assert.NoError(t, err)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, "กล้วยน้ำไทย", page.Results[0].Title)
	assert.Equal(t, "ทุเรียนหมอนทอง", page.Results[1].Title)
}
