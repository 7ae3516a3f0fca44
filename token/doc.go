// Package token provides the byte cursor shared by the XML and JSON
// parsers, the character class tables they skip with, and source
// positions for error reporting.
//
// A Reader never reads past the end of its input: peeks beyond the end
// yield 0, which no table accepts, so every skip loop terminates there.
//
// # Related Packages
//
//   - github.com/signadot/metagraph/parse - XML and JSON parsers
package token
