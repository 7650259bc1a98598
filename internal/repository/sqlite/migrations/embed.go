// Package migrations embeds the versioned SQL schema files for the SQLite
// store. Files are applied in lexical order by the migration runner.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
