// Package migration tracks and applies schema migrations in batches.
//
// Migration files live in database/migrations and self-register:
//
//	func init() {
//	    migration.Register("20260301000000_create_accounts_table", &CreateAccountsTable{})
//	}
//
// The CLI drives the runner: vyapar migrate / migrate:rollback / migrate:status.
package migration

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"gorm.io/gorm"
)

// Migration applies and reverses one schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// record is one applied migration in the tracking table.
type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "vyapar_migrations" }

var registry = map[string]Migration{}

// Register adds a migration under a timestamp-prefixed name, so names sort
// chronologically. Call from init() in each migration file.
func Register(name string, m Migration) {
	registry[name] = m
}

// registeredNames returns every registered name in chronological order.
func registeredNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Runner executes migrations against one database.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// applied returns the tracking rows keyed by migration name.
func (r *Runner) applied() (map[string]record, error) {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migration: ensure tracking table: %w", err)
	}

	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}

	byName := make(map[string]record, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}
	return byName, nil
}

func (r *Runner) lastBatch() int {
	var out struct{ Max int }
	r.db.Model(&record{}).Select("MAX(batch) as max").Scan(&out)
	return out.Max
}

// Run applies every pending migration as one batch.
func (r *Runner) Run() error {
	done, err := r.applied()
	if err != nil {
		return err
	}

	var pending []string
	for _, name := range registeredNames() {
		if _, ok := done[name]; !ok {
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		fmt.Println("Nothing to migrate.")
		return nil
	}

	batch := r.lastBatch() + 1
	for _, name := range pending {
		fmt.Printf("  migrating %s ... ", name)
		if err := registry[name].Up(r.db); err != nil {
			fmt.Println("FAILED")
			return fmt.Errorf("migration: %s up: %w", name, err)
		}
		if err := r.db.Create(&record{Name: name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", name, err)
		}
		fmt.Println("done")
	}

	logger.Info("migrations applied", "count", len(pending), "batch", batch)
	return nil
}

// Rollback reverses the most recent batch, newest migration first.
func (r *Runner) Rollback() error {
	if _, err := r.applied(); err != nil {
		return err
	}

	batch := r.lastBatch()
	if batch == 0 {
		fmt.Println("Nothing to roll back.")
		return nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&rows).Error; err != nil {
		return fmt.Errorf("migration: load batch %d: %w", batch, err)
	}

	for _, row := range rows {
		m, ok := registry[row.Name]
		if !ok {
			return fmt.Errorf("migration: %s is recorded but not registered", row.Name)
		}

		fmt.Printf("  rolling back %s ... ", row.Name)
		if err := m.Down(r.db); err != nil {
			fmt.Println("FAILED")
			return fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		if err := r.db.Delete(&row).Error; err != nil {
			return fmt.Errorf("migration: unrecord %s: %w", row.Name, err)
		}
		fmt.Println("done")
	}

	logger.Info("migrations rolled back", "count", len(rows), "batch", batch)
	return nil
}

// Status prints every registered migration with its applied batch.
func (r *Runner) Status() error {
	done, err := r.applied()
	if err != nil {
		return err
	}

	fmt.Printf("%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Println(strings.Repeat("-", 80))
	for _, name := range registeredNames() {
		if row, ok := done[name]; ok {
			fmt.Printf("%-60s  %-8s  %d\n", name, "ran", row.Batch)
		} else {
			fmt.Printf("%-60s  %-8s  -\n", name, "pending")
		}
	}
	return nil
}
