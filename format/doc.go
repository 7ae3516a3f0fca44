// Package format names the document formats metagraph reads and writes.
//
// # Usage
//
//	f, err := format.ParseFormat("json")
//	if f.IsText() {
//	    doc, err := parse.Parse(data, parse.ParseFormat(f))
//	}
//
// # Related Packages
//
//   - github.com/signadot/metagraph/parse - Parse text to a document tree
//   - github.com/signadot/metagraph/encode - Encode a document tree to text
package format
