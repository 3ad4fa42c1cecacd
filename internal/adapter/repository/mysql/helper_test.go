package mysql

import (
	"testing"
	"time"

	"cta-backend/internal/domain/inspection"
	"cta-backend/internal/domain/user"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns an in-memory sqlite with the full schema. One connection
// keeps every query on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&user.User{}, &inspection.Record{}, &inspection.ValidationEvent{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func makeRecord(t *testing.T, plate string, cat inspection.VehicleCategory, visit string) *inspection.Record {
	t.Helper()
	d, err := inspection.ParseDate(visit)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	rec, err := inspection.Submit(inspection.NewRecord{
		RegistrationPlate: plate,
		VisitDate:         d,
		VehicleCategory:   string(cat),
		Center:            "CTA Dakar",
		TechnicianName:    "Awa Diop",
		PhotoBase64:       strPtr("aGVsbG8="),
		CertificatePDF:    strPtr("JVBERi0xLjQ="),
		SubmittedBy:       7,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return rec
}

func strPtr(s string) *string { return &s }

func transitionTo(to inspection.ValidationState, comment *string, at time.Time) inspection.Transition {
	return inspection.Transition{
		From:         inspection.StatePending,
		To:           to,
		SupervisorID: 42,
		Comment:      comment,
		At:           at.UTC(),
	}
}
