package program

import (
	_ "embed"
)

// DefaultLibPath is the virtual path of the embedded DOM declarations.
const DefaultLibPath = "/$wcspec/lib.dom.d.ts"

//go:embed lib/lib.dom.d.ts
var defaultLibSource []byte
