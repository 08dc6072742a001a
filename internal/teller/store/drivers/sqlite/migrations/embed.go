package migrations

import "embed"

// Migrations holds the golang-migrate files applied by sqlite.Store.ApplyMigrations.
//
//go:embed *.sql
var Migrations embed.FS
