// Package migrations embeds the versioned SQL migrations of the local store.
// Migrations are additive; a released file is never edited, a new one is added.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
