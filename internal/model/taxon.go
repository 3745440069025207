package model

import "gorm.io/gorm"

// Taxon represents a taxonomy group (family, genus cluster, or a curated
// browsing category). Entries are scoped to exactly one taxon.
type Taxon struct {
	gorm.Model
	Name        string `gorm:"not null"`
	NameTh      string
	Slug        string `gorm:"index:idx_taxa_slug"`
	Description string
	ParentID    *uint `gorm:"index:idx_taxa_parent_id"`
}

func (Taxon) TableName() string {
	return "taxa"
}
