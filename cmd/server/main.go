package main

import (
	"log"

	"github.com/shashiranjanraj/vyapar/internal/server"

	// Imported so their init() funcs register migrations and seeders.
	_ "github.com/shashiranjanraj/vyapar/database/migrations"
	_ "github.com/shashiranjanraj/vyapar/database/seeders"
)

func main() {
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
