// Package migrations holds the schema migration files. Each file registers
// itself with pkg/migration from init(); cmd/vyapar and cmd/server blank-
// import this package so every migration is known at startup.
package migrations
