// Package store implements C13, the RunStore: optional persistence of one
// row per run plus one row per class/method stereotype, behind
// gorm.io/gorm + gorm.io/driver/sqlite, the way the teacher's db package
// wires gorm against a SQLite dialector and auto-migrates on connect.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/stereoscope/internal/apperr"
)

// RunRecord is one analysis run: when it happened, what input/output paths
// and thresholds it used, and summary counts.
type RunRecord struct {
	ID             uint      `gorm:"primaryKey"`
	StartedAt      time.Time `gorm:"index"`
	InputPath      string    `gorm:"type:text;not null"`
	OutputPath     string    `gorm:"type:text;not null"`
	LargeClassSize int       `gorm:"not null"`
	ClassCount     int
	MethodCount    int

	ClassRows  []ClassStereotypeRow  `gorm:"foreignKey:RunID"`
	MethodRows []MethodStereotypeRow `gorm:"foreignKey:RunID"`
}

// ClassStereotypeRow is one class's recorded stereotype list for a run.
type ClassStereotypeRow struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       uint   `gorm:"index;not null"`
	ClassName   string `gorm:"type:text;not null"`
	Stereotypes string `gorm:"type:text;not null"`
}

// MethodStereotypeRow is one method's recorded stereotype list for a run.
type MethodStereotypeRow struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       uint   `gorm:"index;not null"`
	ClassName   string `gorm:"type:text;not null"`
	MethodName  string `gorm:"type:text;not null"`
	Stereotypes string `gorm:"type:text;not null"`
}

// Store wraps a gorm connection scoped to run history.
type Store struct {
	db *gorm.DB
}

// Open connects to a SQLite database at path (created if absent) and runs
// AutoMigrate against the three run-history tables.
func Open(path string, debug bool) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperr.New(apperr.CodeDB, fmt.Errorf("create db directory: %w", err))
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, apperr.New(apperr.CodeDB, fmt.Errorf("open %s: %w", path, err))
	}

	if err := db.AutoMigrate(&RunRecord{}, &ClassStereotypeRow{}, &MethodStereotypeRow{}); err != nil {
		return nil, apperr.New(apperr.CodeDB, fmt.Errorf("migrate: %w", err))
	}

	return &Store{db: db}, nil
}

// RecordRun writes one run and its class/method rows. A run is written
// once, after the full pipeline completes, never updated.
func (s *Store) RecordRun(run *RunRecord) error {
	return s.db.Create(run).Error
}

// History returns the most recent runs, newest first, up to limit.
func (s *Store) History(limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := s.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// RunDetail loads one run with its class and method rows preloaded.
func (s *Store) RunDetail(id uint) (*RunRecord, error) {
	var run RunRecord
	err := s.db.Preload("ClassRows").Preload("MethodRows").First(&run, id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
