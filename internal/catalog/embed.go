package catalog

import _ "embed"

//go:embed schema.json
var catalogSchema []byte

//go:embed default.json
var defaultCatalog []byte
