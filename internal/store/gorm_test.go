package store

import (
	"context"
	"testing"

	"github.com/emrgen/taxonomy/internal/model"
	"github.com/emrgen/taxonomy/internal/tester"
	"github.com/stretchr/testify/assert"
)

func setupStore(t *testing.T) (*GormStore, *model.TaxonEntry) {
	tester.RemoveDBFile()
	tester.Setup()

	st := NewGormStore(tester.TestDB())

	taxon := &model.Taxon{Name: "Musaceae"}
	assert.NoError(t, st.CreateTaxon(context.TODO(), taxon))

	entry := &model.TaxonEntry{TaxonID: taxon.ID, Title: "กล้วยน้ำไทย", Version: 1}
	assert.NoError(t, st.CreateEntry(context.TODO(), entry))

	return st, entry
}

func TestGormStore_CreateEntrySnapshotDuplicate(t *testing.T) {
	st, entry := setupStore(t)

	assert.NoError(t, st.CreateEntrySnapshot(context.TODO(), entry.Snapshot("first")))

	// same entry+version pair, the unique index rejects the second insert
	err := st.CreateEntrySnapshot(context.TODO(), entry.Snapshot("second"))
	assert.ErrorIs(t, err, ErrSnapshotExists)

	count, err := st.CountEntrySnapshots(context.TODO(), entry.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestGormStore_NotFoundSentinels(t *testing.T) {
	st, entry := setupStore(t)

	_, err := st.GetEntry(context.TODO(), entry.ID+100)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = st.GetEntrySnapshot(context.TODO(), entry.ID, 5)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = st.GetTaxon(context.TODO(), 999)
	assert.ErrorIs(t, err, ErrTaxonNotFound)
}
