// Package migrations embeds the SQL migrations of the sqlite store.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
