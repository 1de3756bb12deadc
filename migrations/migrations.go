// Package migrations embeds the SQL schema migrations so the migrate CLI and the
// integration tests can apply them without a migrations directory on disk.
package migrations

import "embed"

// FS holds every *.sql migration, named NNNNNN_name.{up,down}.sql
//
//go:embed *.sql
var FS embed.FS
