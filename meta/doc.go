// Package meta serializes object graphs described by reflection.
//
// A type takes part by implementing Reflective and registering its fields
// as parameters:
//
//	func (n *Node) Reflect(s *meta.Snapshot) error {
//		s.Add("name", meta.String(&n.Name))
//		s.Add("next", meta.Ref(&n.Next))
//		return nil
//	}
//
// Capture builds a Snapshot of the fields reachable through owning
// parameters. A snapshot is saved to and loaded from a binary stream
// (Save, Load) or a text document (SaveDoc, LoadDoc, SaveText, LoadText).
// References between parameters are written as ids and patched or bound
// by a linkage.Linker once the whole graph has been visited.
package meta
