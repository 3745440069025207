package store

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/taxonomy/internal/model"
)

var (
	// ErrEntryNotFound is returned when an entry id does not exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrSnapshotNotFound is returned when no snapshot exists for an
	// entry+version pair. Snapshots are never backfilled, the state before
	// an entry's first edit is unrecoverable.
	ErrSnapshotNotFound = errors.New("entry snapshot not found")
	// ErrSnapshotExists is returned when a snapshot insert collides with
	// an existing entry+version row. It means a concurrent save already
	// claimed that version.
	ErrSnapshotExists = errors.New("entry snapshot already exists")
	// ErrTaxonNotFound is returned when a taxon id does not exist.
	ErrTaxonNotFound = errors.New("taxon not found")
)

type Store interface {
	TaxonStore
	EntryStore
	SnapshotStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type TaxonStore interface {
	// CreateTaxon creates a new taxonomy group.
	CreateTaxon(ctx context.Context, taxon *model.Taxon) error
	// GetTaxon retrieves a taxon by ID.
	GetTaxon(ctx context.Context, id uint) (*model.Taxon, error)
	// ListTaxa retrieves all taxa ordered by name.
	ListTaxa(ctx context.Context) ([]*model.Taxon, error)
}

type EntryStore interface {
	// CreateEntry creates a new taxon entry.
	CreateEntry(ctx context.Context, entry *model.TaxonEntry) error
	// GetEntry retrieves the live row of an entry by ID.
	GetEntry(ctx context.Context, id uint) (*model.TaxonEntry, error)
	// SearchEntries matches q against the allow-listed columns, scoped to
	// taxonID when non-zero, ranked by field weight then sort order.
	SearchEntries(ctx context.Context, q string, taxonID uint, offset, limit int) ([]*model.TaxonEntry, int64, error)
	// ListEntriesUpdatedSince retrieves entries whose live row changed
	// after the given time.
	ListEntriesUpdatedSince(ctx context.Context, since time.Time) ([]*model.TaxonEntry, error)
	// UpdateEntry overwrites the live row of an entry.
	UpdateEntry(ctx context.Context, entry *model.TaxonEntry) error
	// DeleteEntry soft deletes an entry by ID.
	DeleteEntry(ctx context.Context, id uint) error
	// EraseEntry hard deletes an entry by ID.
	EraseEntry(ctx context.Context, id uint) error
}

type SnapshotStore interface {
	// CreateEntrySnapshot appends a new snapshot row.
	CreateEntrySnapshot(ctx context.Context, snapshot *model.EntrySnapshot) error
	// GetEntrySnapshot retrieves the snapshot for an entry+version pair.
	GetEntrySnapshot(ctx context.Context, entryID uint, version int64) (*model.EntrySnapshot, error)
	// ListEntrySnapshots retrieves all snapshots of an entry, newest
	// version first.
	ListEntrySnapshots(ctx context.Context, entryID uint) ([]*model.EntrySnapshot, error)
	// CountEntrySnapshots counts the snapshots of an entry.
	CountEntrySnapshots(ctx context.Context, entryID uint) (int64, error)
}
