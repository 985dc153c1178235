package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpupo63/blog-admin-backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T, path string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite %s: %v", path, err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// newReplicatedTestDB returns a primary with a registered replica that never
// receives the primary's writes, so every replica read is maximally stale.
func newReplicatedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dir := t.TempDir()
	replicaPath := filepath.Join(dir, "replica.db")

	if err := Prepare(openSQLite(t, replicaPath), true); err != nil {
		t.Fatalf("prepare replica: %v", err)
	}

	db := openSQLite(t, filepath.Join(dir, "primary.db"))
	if err := setup(db, Options{AutoMigrate: true}, []gorm.Dialector{sqlite.Open(replicaPath)}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return db
}

func TestPostRepo_WritePathReadsUsePrimary(t *testing.T) {
	db := newReplicatedTestDB(t)
	ctx := context.Background()
	posts := NewPostRepo(db)
	tags := NewTagRepo(db)
	tx := NewTransactor(db)

	tagIDs := seedTags(t, tags, "go")

	found, err := tags.FindByIDs(ctx, tagIDs)
	if err != nil || len(found) != 1 {
		t.Fatalf("FindByIDs = %v, %v; want the committed tag", found, err)
	}

	post := &models.Post{
		Title:     "Replication lag",
		Content:   "Reads after a commit must see the commit",
		Slug:      "replication-lag",
		UserID:    "user-1",
		CreatedAt: time.Now(),
	}
	err = tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := posts.Insert(ctx, post); err != nil {
			return err
		}
		return posts.AttachTags(ctx, post, tagIDs)
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	reloaded, err := posts.FindBySlug(ctx, "replication-lag")
	if err != nil {
		t.Fatalf("reload after commit: %v", err)
	}
	if reloaded.ID != post.ID || len(reloaded.Tags) != 1 || reloaded.Tags[0].ID != tagIDs[0] {
		t.Errorf("reloaded = %+v, want the inserted post with its tag", reloaded)
	}

	exists, err := posts.SlugExists(ctx, "replication-lag")
	if err != nil || !exists {
		t.Errorf("SlugExists after commit = %v, %v; want true", exists, err)
	}

	// the listing is the one read left on the replica
	listed, err := posts.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("FindAll returned %d posts, want the stale replica's 0", len(listed))
	}
}

func TestSetup_MigratesPrimaryBeforeRegisteringReplicas(t *testing.T) {
	dir := t.TempDir()
	primaryPath := filepath.Join(dir, "primary.db")
	replicaPath := filepath.Join(dir, "replica.db")

	// the replica has no schema at all
	db := openSQLite(t, primaryPath)
	if err := setup(db, Options{AutoMigrate: true, ColumnReport: true}, []gorm.Dialector{sqlite.Open(replicaPath)}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	fresh := openSQLite(t, primaryPath)
	for _, table := range []string{"posts", "tags", "post_tags"} {
		if !fresh.Migrator().HasTable(table) {
			t.Errorf("primary is missing table %s", table)
		}
	}

	post := &models.Post{
		Title:   "Fresh schema",
		Content: "Inserted right after the migration",
		Slug:    "fresh-schema",
		UserID:  "user-1",
	}
	if err := NewPostRepo(db).Insert(context.Background(), post); err != nil {
		t.Errorf("insert into migrated primary: %v", err)
	}
}
