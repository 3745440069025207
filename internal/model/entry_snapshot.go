package model

import "gorm.io/gorm"

// EntrySnapshot is an immutable copy of a taxon entry taken right before an
// update overwrites the live row. Snapshots form an append-only history,
// one row per superseded version, and are never mutated or deleted.
type EntrySnapshot struct {
	gorm.Model
	EntryID uint        `gorm:"not null;uniqueIndex:idx_entry_snapshots_entry_version"`
	Version int64       `gorm:"not null;uniqueIndex:idx_entry_snapshots_entry_version"`
	Entry   *TaxonEntry `gorm:"foreignKey:EntryID"`

	Title            string
	Slug             string
	SortOrder        int
	ContentHTML      string
	ContentText      string
	ShortDescription string

	OfficialNameTh string
	ScientificName string
	Genus          string
	Species        string
	Family         string
	Synonyms       string
	OtherNames     string
	AuthorName     string
	AuthorPeriod   string

	IsPublished bool
	Compression string
	ChangedBy   string
}

func (EntrySnapshot) TableName() string {
	return "entry_snapshots"
}

// IntoEntry rebuilds a read-only entry view from the snapshot. The returned
// value carries the snapshot's version, not the live one.
func (s *EntrySnapshot) IntoEntry() *TaxonEntry {
	entry := &TaxonEntry{
		Title:            s.Title,
		Slug:             s.Slug,
		SortOrder:        s.SortOrder,
		ContentHTML:      s.ContentHTML,
		ContentText:      s.ContentText,
		ShortDescription: s.ShortDescription,
		OfficialNameTh:   s.OfficialNameTh,
		ScientificName:   s.ScientificName,
		Genus:            s.Genus,
		Species:          s.Species,
		Family:           s.Family,
		Synonyms:         s.Synonyms,
		OtherNames:       s.OtherNames,
		AuthorName:       s.AuthorName,
		AuthorPeriod:     s.AuthorPeriod,
		Version:          s.Version,
		IsPublished:      s.IsPublished,
		Compression:      s.Compression,
	}
	entry.ID = s.EntryID
	entry.CreatedAt = s.CreatedAt
	entry.UpdatedAt = s.CreatedAt
	return entry
}
