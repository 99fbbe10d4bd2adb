// Package migrations embeds the journal schema into the binary so the
// daemon can migrate without SQL files on disk.
package migrations

import "embed"

// FS holds every *.sql file of this directory at its root.
//
//go:embed *.sql
var FS embed.FS
