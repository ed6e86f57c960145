package parser

import (
	"github.com/gnana997/wcspec/pkg/util"
)

// getDefaultPoolSize returns the parser pool size. It matches the scanner's
// worker count so workers never block waiting for a parser.
func getDefaultPoolSize() int {
	return util.GetOptimalPoolSize()
}
