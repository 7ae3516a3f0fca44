// Package linkage resolves references between serialized objects.
//
// Every parameter visited while saving or loading registers a Link that
// binds its address to a session unique id. References whose target is
// not known yet queue a task; Execute runs the queued tasks once the
// whole graph has been visited:
//
//   - a write task looks up the id of the referenced address and patches
//     the placeholder written earlier through a saved Controller state;
//   - a read task looks up the parameter registered under the read id and
//     binds the reference to it.
//
// Shared objects, owned by several parameters at once, are collected in
// caches so that each one is written and read exactly once.
package linkage
