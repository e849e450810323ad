package migrations

import "embed"

// FS contains embedded SQLite migrations for wallet record storage.
//
//go:embed *.sql
var FS embed.FS
