// Package parse parses XML and JSON text into a text.Doc.
//
// # Usage
//
//	doc, err := parse.Parse(data, parse.ParseXML())
//	doc, err := parse.ParseFile("scene.json")
//
// Errors wrap the sentinels of package text; use errors.Is to classify
// them and errors.As with *text.ParseErr to locate them.
//
// # Related Packages
//
//   - github.com/signadot/metagraph/text - Document model
//   - github.com/signadot/metagraph/encode - Encode a Doc into text
package parse
