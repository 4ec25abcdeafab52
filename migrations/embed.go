// Package migrations embeds SQL migration files applied at startup and in integration tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
