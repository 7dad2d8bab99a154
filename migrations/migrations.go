// Package migrations embeds the SQL migration files so the binary can
// bootstrap its own schema without shipping loose .sql files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
