package models

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

/*
Migrate creates or updates the posts, tags and post_tags tables.

Column Mismatch Report Usage:

Set GENERATE_COLUMN_REPORT=true to log, per table, the database columns that
no field of the corresponding model accounts for. Useful after hand-edited
migrations drift from the structs.
*/

// tableModels maps table names to the models stored in them
var tableModels = map[string]any{
	"posts":     &Post{},
	"tags":      &Tag{},
	"post_tags": &PostTag{},
}

// Migrate registers the post_tags join model and auto-migrates every model.
func Migrate(db *gorm.DB) error {
	if err := SetupJoinTables(db); err != nil {
		return err
	}

	if err := db.AutoMigrate(&Post{}, &Tag{}, &PostTag{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	log.Info().Msg("Database migration completed successfully")
	return nil
}

// SetupJoinTables tells gorm to use PostTag for the Post.Tags association.
// It must run on every connection before Preload("Tags") is used.
func SetupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Post{}, "Tags", &PostTag{}); err != nil {
		return fmt.Errorf("setup post_tags join table: %w", err)
	}
	return nil
}

// ColumnMismatchReport returns, per table, the database columns that the
// corresponding model does not declare. Tables that do not exist yet are skipped.
func ColumnMismatchReport(db *gorm.DB) (map[string][]string, error) {
	report := make(map[string][]string)

	for tableName, model := range tableModels {
		if !db.Migrator().HasTable(tableName) {
			log.Warn().Str("table", tableName).Msg("Table does not exist yet (will be created during migration)")
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(tableName)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("error parsing model for table %s: %w", tableName, err)
		}

		modelFields := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, name := range stmt.Schema.DBNames {
			modelFields[name] = true
		}

		var mismatches []string
		for _, col := range columnTypes {
			if !modelFields[col.Name()] {
				mismatches = append(mismatches, col.Name())
			}
		}
		sort.Strings(mismatches)
		report[tableName] = mismatches
	}

	return report, nil
}

// LogColumnMismatchReport logs the output of ColumnMismatchReport.
func LogColumnMismatchReport(db *gorm.DB) error {
	report, err := ColumnMismatchReport(db)
	if err != nil {
		return err
	}

	total := 0
	for tableName, mismatches := range report {
		if len(mismatches) == 0 {
			log.Info().Str("table", tableName).Msg("All columns are accounted for in the model")
			continue
		}
		total += len(mismatches)
		log.Warn().Str("table", tableName).Strs("columns", mismatches).Msg("Columns not accounted for in model")
	}

	log.Info().Int("total", total).Msg("Column mismatch report complete")
	return nil
}
