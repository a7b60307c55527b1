package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&HydroTable{},
		&PublishRun{},
	}
}

// TableNames returns the tables of AllModels.
func TableNames() []string {
	return []string{
		HydroTable{}.TableName(),
		PublishRun{}.TableName(),
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
