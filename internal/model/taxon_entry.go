package model

import (
	"encoding/json"

	"gorm.io/gorm"
)

type TaxonEntry struct {
	gorm.Model
	TaxonID   uint   `gorm:"not null;index:idx_taxon_entries_taxon_id"`
	Taxon     *Taxon `gorm:"foreignKey:TaxonID"`
	Title     string `gorm:"not null"`
	Slug      string `gorm:"index:idx_taxon_entries_slug"`
	SortOrder int    `gorm:"not null;default:0"`

	// ContentHTML is stored encoded with the codec named in Compression.
	// ContentText is the derived plain text and is always stored as-is,
	// it is the column the search query matches against.
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

	// Version is monotonic per entry and never reused. The row itself is
	// the live state; prior versions live in entry_snapshots.
	Version     int64 `gorm:"not null;default:1"`
	IsPublished bool  `gorm:"not null;default:false"`
	Compression string
}

func (TaxonEntry) TableName() string {
	return "taxon_entries"
}

func (e *TaxonEntry) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *TaxonEntry) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// Snapshot copies the entry's current field values into an immutable
// snapshot tagged with the entry's current version.
func (e *TaxonEntry) Snapshot(changedBy string) *EntrySnapshot {
	return &EntrySnapshot{
		EntryID:          e.ID,
		Version:          e.Version,
		Title:            e.Title,
		Slug:             e.Slug,
		SortOrder:        e.SortOrder,
		ContentHTML:      e.ContentHTML,
		ContentText:      e.ContentText,
		ShortDescription: e.ShortDescription,
		OfficialNameTh:   e.OfficialNameTh,
		ScientificName:   e.ScientificName,
		Genus:            e.Genus,
		Species:          e.Species,
		Family:           e.Family,
		Synonyms:         e.Synonyms,
		OtherNames:       e.OtherNames,
		AuthorName:       e.AuthorName,
		AuthorPeriod:     e.AuthorPeriod,
		IsPublished:      e.IsPublished,
		Compression:      e.Compression,
		ChangedBy:        changedBy,
	}
}
