// Package encode writes a text.Doc as XML, JSON or YAML.
//
// # Usage
//
//	err := encode.Encode(doc, os.Stdout, encode.EncodeFormat(format.JSONFormat))
//
//	// Encode with colors
//	err := encode.Encode(doc, os.Stdout, encode.EncodeColors(encode.NewColors()))
//
// # Related Packages
//
//   - github.com/signadot/metagraph/text - Document model
//   - github.com/signadot/metagraph/parse - Parse text into a Doc
package encode
