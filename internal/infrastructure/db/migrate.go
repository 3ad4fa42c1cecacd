package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cta-backend/internal/domain/inspection"
	"cta-backend/internal/domain/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migration is one step of the declared schema. Steps run once, in version
// order, and are recorded in schema_migrations.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// Table: schema_migrations
type schemaMigration struct {
	Version   int       `gorm:"column:version;primaryKey;autoIncrement:false"`
	Name      string    `gorm:"column:name;size:100;not null"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

func createTable(model any) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error { return tx.Migrator().CreateTable(model) }
}

// Schema is the versioned schema of the service.
var Schema = []Migration{
	{Version: 1, Name: "create users", Up: createTable(&user.User{})},
	{Version: 2, Name: "create inspection_records", Up: createTable(&inspection.Record{})},
	{Version: 3, Name: "create inspection_validation_events", Up: createTable(&inspection.ValidationEvent{})},
}

// appliedVersions is read-only: a database without schema_migrations has
// nothing applied.
func appliedVersions(ctx context.Context, db *gorm.DB) (map[int]bool, error) {
	if !db.WithContext(ctx).Migrator().HasTable(&schemaMigration{}) {
		return map[int]bool{}, nil
	}
	var versions []int
	if err := db.WithContext(ctx).Model(&schemaMigration{}).Pluck("version", &versions).Error; err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(versions))
	for _, v := range versions {
		out[v] = true
	}
	return out, nil
}

func sorted(ms []Migration) []Migration {
	out := append([]Migration(nil), ms...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// Pending lists the migrations of ms not yet recorded as applied.
func Pending(ctx context.Context, db *gorm.DB, ms []Migration) ([]Migration, error) {
	done, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, m := range sorted(ms) {
		if !done[m.Version] {
			out = append(out, m)
		}
	}
	return out, nil
}

// Migrate applies pending migrations and returns the versions it applied.
func Migrate(ctx context.Context, db *gorm.DB, ms []Migration, log *zap.Logger) ([]int, error) {
	if err := db.WithContext(ctx).AutoMigrate(&schemaMigration{}); err != nil {
		return nil, fmt.Errorf("schema_migrations: %w", err)
	}
	todo, err := Pending(ctx, db, ms)
	if err != nil {
		return nil, err
	}
	var applied []int
	for _, m := range todo {
		m := m
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Version: m.Version, Name: m.Name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		log.Info("migration applied", zap.Int("version", m.Version), zap.String("name", m.Name))
		applied = append(applied, m.Version)
	}
	return applied, nil
}
