// Package data holds embedded assets (the default model catalog) at repo
// root data/ for clarity.
package data

import _ "embed"

//go:embed models.json
var SeedCatalogJSON []byte
