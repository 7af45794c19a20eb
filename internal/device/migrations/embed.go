// Package migrations embeds the device service's goose SQL migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
