// Package text defines the document model shared by the XML and JSON
// engines: a Doc is an ordered list of Tree values whose payload is a
// Node.
//
// # Usage
//
//	doc := text.NewDoc()
//	root := doc.Add(text.Node{Name: "scene"})
//	root.AddData(text.Node{Name: "version", Value: text.Ptr("2"), IsAttribute: true})
//
// # Related Packages
//
//   - github.com/signadot/metagraph/parse - Parse text into a Doc
//   - github.com/signadot/metagraph/encode - Encode a Doc into text
package text
