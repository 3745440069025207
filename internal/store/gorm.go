package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/emrgen/taxonomy/internal/model"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateTaxon(ctx context.Context, taxon *model.Taxon) error {
	return g.db.WithContext(ctx).Create(taxon).Error
}

func (g *GormStore) GetTaxon(ctx context.Context, id uint) (*model.Taxon, error) {
	var taxon model.Taxon
	err := g.db.WithContext(ctx).First(&taxon, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaxonNotFound
	}
	if err != nil {
		return nil, err
	}
	return &taxon, nil
}

func (g *GormStore) ListTaxa(ctx context.Context) ([]*model.Taxon, error) {
	var taxa []*model.Taxon
	err := g.db.WithContext(ctx).Order("name").Find(&taxa).Error
	return taxa, err
}

func (g *GormStore) CreateEntry(ctx context.Context, entry *model.TaxonEntry) error {
	return g.db.WithContext(ctx).Create(entry).Error
}

func (g *GormStore) GetEntry(ctx context.Context, id uint) (*model.TaxonEntry, error) {
	var entry model.TaxonEntry
	err := g.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SearchEntries delegates matching to the database: a case-insensitive
// substring match over the allow-listed columns. Rows are ranked by which
// field matched (official name before title before description before body)
// and then by the curator's manual sort order.
func (g *GormStore) SearchEntries(ctx context.Context, q string, taxonID uint, offset, limit int) ([]*model.TaxonEntry, int64, error) {
	tx := g.db.WithContext(ctx).Model(&model.TaxonEntry{})

	if taxonID != 0 {
		tx = tx.Where("taxon_id = ?", taxonID)
	}

	q = strings.TrimSpace(q)
	if q != "" {
		needle := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			`LOWER(official_name_th) LIKE ?
				OR LOWER(title) LIKE ?
				OR LOWER(short_description) LIKE ?
				OR LOWER(content_text) LIKE ?
				OR LOWER(family) LIKE ?
				OR LOWER(synonyms) LIKE ?`,
			needle, needle, needle, needle, needle, needle,
		)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*model.TaxonEntry
	if q != "" {
		needle := "%" + strings.ToLower(q) + "%"
		tx = tx.Select(
			`taxon_entries.*,
				CASE
					WHEN LOWER(official_name_th) LIKE ? THEN 0
					WHEN LOWER(title) LIKE ? THEN 1
					WHEN LOWER(short_description) LIKE ? THEN 2
					ELSE 3
				END AS search_rank`,
			needle, needle, needle,
		).Order("search_rank, sort_order, title")
	} else {
		tx = tx.Order("sort_order, title")
	}

	err := tx.Offset(offset).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (g *GormStore) ListEntriesUpdatedSince(ctx context.Context, since time.Time) ([]*model.TaxonEntry, error) {
	var entries []*model.TaxonEntry
	err := g.db.WithContext(ctx).Where("updated_at > ?", since).Find(&entries).Error
	return entries, err
}

func (g *GormStore) UpdateEntry(ctx context.Context, entry *model.TaxonEntry) error {
	return g.db.WithContext(ctx).Save(entry).Error
}

func (g *GormStore) DeleteEntry(ctx context.Context, id uint) error {
	return g.db.WithContext(ctx).Delete(&model.TaxonEntry{}, id).Error
}

func (g *GormStore) EraseEntry(ctx context.Context, id uint) error {
	return g.db.WithContext(ctx).Unscoped().Delete(&model.TaxonEntry{}, id).Error
}

// CreateEntrySnapshot appends a snapshot row. Two transactions racing on
// the same entry can both pass the base-version check before either
// commits; the (entry_id, version) unique index then fails the loser here,
// reported as ErrSnapshotExists. Relies on gorm's TranslateError.
func (g *GormStore) CreateEntrySnapshot(ctx context.Context, snapshot *model.EntrySnapshot) error {
	err := g.db.WithContext(ctx).Create(snapshot).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSnapshotExists
	}
	return err
}

func (g *GormStore) GetEntrySnapshot(ctx context.Context, entryID uint, version int64) (*model.EntrySnapshot, error) {
	var snapshot model.EntrySnapshot
	err := g.db.WithContext(ctx).Where("entry_id = ? AND version = ?", entryID, version).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (g *GormStore) ListEntrySnapshots(ctx context.Context, entryID uint) ([]*model.EntrySnapshot, error) {
	var snapshots []*model.EntrySnapshot
	err := g.db.WithContext(ctx).Where("entry_id = ?", entryID).Order("version desc").Find(&snapshots).Error
	return snapshots, err
}

func (g *GormStore) CountEntrySnapshots(ctx context.Context, entryID uint) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.EntrySnapshot{}).Where("entry_id = ?", entryID).Count(&count).Error
	return count, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
