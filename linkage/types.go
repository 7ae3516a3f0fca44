package linkage

// Parameter is a serializable value with a stable address.
type Parameter interface {
	Address() uintptr
}

// Linkable is a reference parameter that can be bound to its target.
type Linkable interface {
	Parameter
	Link(target Parameter) error
}

// Controller is the stream boundary a write task patches through. A
// Controller used as a saved state has its logical position set to the
// placeholder to be patched.
type Controller interface {
	// GetStreamCursor returns the current position of the underlying
	// stream.
	GetStreamCursor() (int64, error)
	// Sync moves the underlying stream to the logical position.
	Sync() error
	WriteValue(v any) error
	// SetCursor sets the logical position and, if sync is set, moves the
	// stream there.
	SetCursor(pos int64, sync bool) error
	LogMessage(msg string)
}

// Link binds a parameter to its id.
type Link struct {
	Parameter Parameter
	ID        uint32
}

// SharedOutput is a shared object waiting to be written.
type SharedOutput struct {
	Holder  Parameter
	Address uintptr
}

// SharedInput is a shared object read, or to be read, under an id.
type SharedInput struct {
	Holder Parameter
	ID     uint32
}

type writeTask struct {
	state   Controller
	address uintptr
}

type readTask struct {
	parameter Linkable
	id        uint32
	shared    bool
}
