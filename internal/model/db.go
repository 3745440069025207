package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Taxon{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&TaxonEntry{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&EntrySnapshot{}); err != nil {
		return err
	}

	return nil
}
