// Package migrations embeds the goose SQL migrations for the active
// treaty tables. The same files run on PostgreSQL and SQLite.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
