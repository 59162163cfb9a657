// Package migrations embeds the SQL schema applied by "medflow-server migrate".
package migrations

import "embed"

// FS holds the numbered migration files.
//
//go:embed *.sql
var FS embed.FS
