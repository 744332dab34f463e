// Package all registers every built-in storage backend. Import it for side
// effects from the wiring layer:
//
//	import _ "flowback/internal/storage/all"
//
// which makes the "csv", "sqlite" and "postgres" kinds available to
// storage.New.
package all

import (
	_ "flowback/internal/storage/csvfile"
	_ "flowback/internal/storage/postgres"
	_ "flowback/internal/storage/sqlite"
)
