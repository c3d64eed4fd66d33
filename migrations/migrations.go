// Package migrations embeds the SQL migrations of the self-hosted record store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
