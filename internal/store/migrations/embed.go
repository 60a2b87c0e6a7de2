// Package migrations embeds the SQLite schema migrations for the unit
// ledger database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
