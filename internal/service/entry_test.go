package service

import (
	"context"
	"testing"

	"github.com/emrgen/taxonomy/internal/compress"
	"github.com/emrgen/taxonomy/internal/model"
	"github.com/emrgen/taxonomy/internal/store"
	"github.com/emrgen/taxonomy/internal/tester"
	"github.com/stretchr/testify/assert"
)

func setupEntryService(t *testing.T) (*EntryService, store.Store, *model.Taxon) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	service := NewEntryService(compress.NewNop(), st, nil, nil)

	taxon := &model.Taxon{Name: "Musaceae", NameTh: "กล้วย"}
	assert.NoError(t, st.CreateTaxon(context.TODO(), taxon))

	return service, st, taxon
}

func TestEntryService_CreateEntry(t *testing.T) {
	service, _, taxon := setupEntryService(t)

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:        taxon.ID,
		Title:          "กล้วยน้ำไทย",
		OfficialNameTh: "กล้วยน้ำไทย",
		ContentHTML:    "<p>กล้วยน้ำไทยเป็นกล้วยพื้นเมือง</p><p>พบได้ทั่วไป</p>",
	})
	assert.NoError(t, err)
	assert.NotNil(t, entry)

	assert.EqualValues(t, 1, entry.Version)
	assert.Equal(t, "กล้วยน้ำไทย", entry.Slug)
	assert.Equal(t, "<p>กล้วยน้ำไทยเป็นกล้วยพื้นเมือง</p><p>พบได้ทั่วไป</p>", entry.ContentHTML)
	assert.Contains(t, entry.ContentText, "กล้วยน้ำไทยเป็นกล้วยพื้นเมือง")
	// short description falls back to the first paragraph
	assert.Equal(t, "กล้วยน้ำไทยเป็นกล้วยพื้นเมือง", entry.ShortDescription)

	// no history yet, the initial state is only the live row
	versions, err := service.ListEntryVersions(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.Len(t, versions, 1)
	assert.True(t, versions[0].Live)
}

func TestEntryService_CreateEntryValidation(t *testing.T) {
	service, _, taxon := setupEntryService(t)

	_, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{TaxonID: taxon.ID})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	_, err = service.CreateEntry(context.TODO(), &CreateEntryRequest{TaxonID: taxon.ID + 1000, Title: "x"})
	assert.ErrorIs(t, err, store.ErrTaxonNotFound)
}

func TestEntryService_UpdateEntry(t *testing.T) {
	service, st, taxon := setupEntryService(t)

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:     taxon.ID,
		Title:       "กล้วยน้ำไทย",
		ContentHTML: "<p>ฉบับแรก</p>",
	})
	assert.NoError(t, err)

	title := "กล้วยน้ำว้า"
	updated, err := service.UpdateEntry(context.TODO(), entry.ID, &UpdateEntryRequest{
		BaseVersion: 1,
		Title:       &title,
		ChangedBy:   "somsri",
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)
	assert.Equal(t, "กล้วยน้ำว้า", updated.Title)

	// the pre-update state is preserved as version 1
	snapshot, err := st.GetEntrySnapshot(context.TODO(), entry.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, "กล้วยน้ำไทย", snapshot.Title)
	assert.Equal(t, "somsri", snapshot.ChangedBy)

	count, err := st.CountEntrySnapshots(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestEntryService_UpdateEntryConflict(t *testing.T) {
	service, st, taxon := setupEntryService(t)

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID: taxon.ID,
		Title:   "กล้วยหอม",
	})
	assert.NoError(t, err)

	first := "edit by the first editor"
	_, err = service.UpdateEntry(context.TODO(), entry.ID, &UpdateEntryRequest{
		BaseVersion:      1,
		ShortDescription: &first,
	})
	assert.NoError(t, err)

	// second editor saves from the same stale base version
	second := "edit by the second editor"
	_, err = service.UpdateEntry(context.TODO(), entry.ID, &UpdateEntryRequest{
		BaseVersion:      1,
		ShortDescription: &second,
	})
	assert.ErrorIs(t, err, ErrVersionConflict)

	// the rejected save wrote nothing
	live, err := service.GetEntry(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, live.Version)
	assert.Equal(t, first, live.ShortDescription)

	count, err := st.CountEntrySnapshots(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestEntryService_GetEntryVersion(t *testing.T) {
	service, _, taxon := setupEntryService(t)

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:     taxon.ID,
		Title:       "กล้วยไข่",
		ContentHTML: "<p>ฉบับแรก</p>",
	})
	assert.NoError(t, err)

	content := "<p>ฉบับที่สอง</p>"
	_, err = service.UpdateEntry(context.TODO(), entry.ID, &UpdateEntryRequest{
		BaseVersion: 1,
		ContentHTML: &content,
	})
	assert.NoError(t, err)

	latest, err := service.GetEntryVersion(context.TODO(), entry.ID, "latest")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, latest.Version)
	assert.Equal(t, "<p>ฉบับที่สอง</p>", latest.ContentHTML)

	v1, err := service.GetEntryVersion(context.TODO(), entry.ID, "1")
	assert.NoError(t, err)
	assert.EqualValues(t, 1, v1.Version)
	assert.Equal(t, "<p>ฉบับแรก</p>", v1.ContentHTML)

	_, err = service.GetEntryVersion(context.TODO(), entry.ID, "9")
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)

	_, err = service.GetEntryVersion(context.TODO(), entry.ID, "abc")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEntryService_ListEntryVersions(t *testing.T) {
	service, _, taxon := setupEntryService(t)

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID: taxon.ID,
		Title:   "กล้วยเล็บมือนาง",
	})
	assert.NoError(t, err)

	for v := int64(1); v <= 3; v++ {
		order := int(v)
		_, err = service.UpdateEntry(context.TODO(), entry.ID, &UpdateEntryRequest{
			BaseVersion: v,
			SortOrder:   &order,
		})
		assert.NoError(t, err)
	}

	versions, err := service.ListEntryVersions(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.Len(t, versions, 4)

	// newest first, live at the top
	assert.True(t, versions[0].Live)
	for i, version := range versions {
		assert.EqualValues(t, 4-i, version.Version)
	}
}

func TestEntryService_RestoreEntryVersion(t *testing.T) {
	service, st, taxon := setupEntryService(t)

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:     taxon.ID,
		Title:       "กล้วยน้ำไทย",
		ContentHTML: "<p>ฉบับดั้งเดิม</p>",
	})
	assert.NoError(t, err)

	title := "กล้วยน้ำไทย (แก้ไข)"
	_, err = service.UpdateEntry(context.TODO(), entry.ID, &UpdateEntryRequest{
		BaseVersion: 1,
		Title:       &title,
	})
	assert.NoError(t, err)

	restored, err := service.RestoreEntryVersion(context.TODO(), entry.ID, 1, 2, "somchai")
	assert.NoError(t, err)

	// restore is a new version carrying the old fields
	assert.EqualValues(t, 3, restored.Version)
	assert.Equal(t, "กล้วยน้ำไทย", restored.Title)
	assert.Equal(t, "<p>ฉบับดั้งเดิม</p>", restored.ContentHTML)

	// history is untouched, the restore only appended
	count, err := st.CountEntrySnapshots(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, count)

	v2, err := service.GetEntryVersion(context.TODO(), entry.ID, "2")
	assert.NoError(t, err)
	assert.Equal(t, "กล้วยน้ำไทย (แก้ไข)", v2.Title)
}

func TestEntryService_RestoreConflict(t *testing.T) {
	service, _, taxon := setupEntryService(t)

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID: taxon.ID,
		Title:   "กล้วยหักมุก",
	})
	assert.NoError(t, err)

	name := "Musa"
	_, err = service.UpdateEntry(context.TODO(), entry.ID, &UpdateEntryRequest{
		BaseVersion: 1,
		Genus:       &name,
	})
	assert.NoError(t, err)

	_, err = service.RestoreEntryVersion(context.TODO(), entry.ID, 1, 1, "")
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestEntryService_DeleteEntry(t *testing.T) {
	service, _, taxon := setupEntryService(t)

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID: taxon.ID,
		Title:   "กล้วยตานี",
	})
	assert.NoError(t, err)

	assert.NoError(t, service.DeleteEntry(context.TODO(), entry.ID))

	_, err = service.GetEntry(context.TODO(), entry.ID)
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
}

func TestEntryService_CompressedContent(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	service := NewEntryService(compress.NewGZip(), st, nil, nil)

	taxon := &model.Taxon{Name: "Musaceae"}
	assert.NoError(t, st.CreateTaxon(context.TODO(), taxon))

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID:     taxon.ID,
		Title:       "กล้วยน้ำไทย",
		ContentHTML: "<p>เนื้อหาแบบบีบอัด</p>",
	})
	assert.NoError(t, err)

	// callers always see the decoded body
	assert.Equal(t, "<p>เนื้อหาแบบบีบอัด</p>", entry.ContentHTML)

	// the stored row carries the encoded body and the codec name
	raw, err := st.GetEntry(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.Equal(t, compress.NameGZip, raw.Compression)
	assert.NotEqual(t, entry.ContentHTML, raw.ContentHTML)

	got, err := service.GetEntry(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.Equal(t, "<p>เนื้อหาแบบบีบอัด</p>", got.ContentHTML)
}

func TestEntryService_UpdateEntrySnapshotCollision(t *testing.T) {
	service, st, taxon := setupEntryService(t)

	entry, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID: taxon.ID,
		Title:   "กล้วยหอมทอง",
	})
	assert.NoError(t, err)

	// a concurrent save passed the base-version check on the same live row
	// and committed its snapshot first
	raw, err := st.GetEntry(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.NoError(t, st.CreateEntrySnapshot(context.TODO(), raw.Snapshot("winner")))

	title := "กล้วยหอมทอง (แพ้)"
	_, err = service.UpdateEntry(context.TODO(), entry.ID, &UpdateEntryRequest{
		BaseVersion: 1,
		Title:       &title,
	})
	assert.ErrorIs(t, err, ErrVersionConflict)

	// the losing save rolled back completely
	live, err := st.GetEntry(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, live.Version)
	assert.Equal(t, "กล้วยหอมทอง", live.Title)
}

// memEntryCache is an in-process EntryCache with redis semantics: misses
// return (nil, nil) and a zero version.
type memEntryCache struct {
	entries  map[uint]*model.TaxonEntry
	versions map[uint]int64
}

func newMemEntryCache() *memEntryCache {
	return &memEntryCache{
		entries:  make(map[uint]*model.TaxonEntry),
		versions: make(map[uint]int64),
	}
}

func (m *memEntryCache) GetEntry(ctx context.Context, id uint) (*model.TaxonEntry, error) {
	return m.entries[id], nil
}

func (m *memEntryCache) GetEntryVersion(ctx context.Context, id uint) (int64, error) {
	return m.versions[id], nil
}

func (m *memEntryCache) SetEntry(ctx context.Context, entry *model.TaxonEntry) error {
	m.entries[entry.ID] = entry
	m.versions[entry.ID] = entry.Version
	return nil
}

func (m *memEntryCache) DeleteEntry(ctx context.Context, id uint) error {
	delete(m.entries, id)
	delete(m.versions, id)
	return nil
}

func TestEntryService_StaleReadNeverDowngradesCache(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	entryCache := newMemEntryCache()
	service := NewEntryService(compress.NewNop(), st, entryCache, nil)

	taxon := &model.Taxon{Name: "Musaceae"}
	assert.NoError(t, st.CreateTaxon(context.TODO(), taxon))

	stale, err := service.CreateEntry(context.TODO(), &CreateEntryRequest{
		TaxonID: taxon.ID,
		Title:   "กล้วยน้ำไทย",
	})
	assert.NoError(t, err)

	title := "กล้วยน้ำไทย (ปรับปรุง)"
	_, err = service.UpdateEntry(context.TODO(), stale.ID, &UpdateEntryRequest{
		BaseVersion: 1,
		Title:       &title,
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 2, entryCache.versions[stale.ID])

	// a reader that loaded version 1 before the save committed re-primes
	// after it, the newer cached version must survive
	service.primeCache(context.TODO(), stale)
	assert.EqualValues(t, 2, entryCache.versions[stale.ID])
	assert.EqualValues(t, 2, entryCache.entries[stale.ID].Version)

	// an empty cache still gets primed by the read path
	assert.NoError(t, entryCache.DeleteEntry(context.TODO(), stale.ID))
	got, err := service.GetEntry(context.TODO(), stale.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, got.Version)
	assert.EqualValues(t, 2, entryCache.versions[stale.ID])
}
