// Package seeders registers database seed functions, run via `vyapar seed`.
// Each seeder file registers itself from init() and must be idempotent.
package seeders

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// SeederFunc inserts seed rows. It is re-run on every `vyapar seed`, so it
// must detect and skip work it has already done.
type SeederFunc func(db *gorm.DB) error

var (
	mu    sync.Mutex
	names []string
	funcs = map[string]SeederFunc{}
)

// Register adds a seeder under a unique name. Registration order is
// execution order.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()

	if _, dup := funcs[name]; dup {
		panic("seeders: duplicate name " + name)
	}
	names = append(names, name)
	funcs[name] = fn
}

// RunAll executes every registered seeder, stopping at the first failure.
func RunAll(db *gorm.DB) error {
	mu.Lock()
	ordered := append([]string(nil), names...)
	mu.Unlock()

	if len(ordered) == 0 {
		fmt.Println("No seeders registered.")
		return nil
	}

	for _, name := range ordered {
		fmt.Printf("  seeding %s ... ", name)
		if err := funcs[name](db); err != nil {
			fmt.Println("FAILED")
			return fmt.Errorf("seeder %q: %w", name, err)
		}
		fmt.Println("done")
	}
	return nil
}
