package meta

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/signadot/metagraph/debug"
	"github.com/signadot/metagraph/linkage"
	"github.com/signadot/metagraph/text"
)

// Mode is the direction and medium of a Controller.
type Mode int

const (
	BinaryOutput Mode = iota
	BinaryInput
	TextOutput
	TextInput
)

func (m Mode) String() string {
	switch m {
	case BinaryOutput:
		return "binary output"
	case BinaryInput:
		return "binary input"
	case TextOutput:
		return "text output"
	case TextInput:
		return "text input"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) IsBinary() bool { return m == BinaryOutput || m == BinaryInput }
func (m Mode) IsOutput() bool { return m == BinaryOutput || m == TextOutput }

// Controller drives one save or load of a snapshot. Parameters call it
// to write and read their values. A copy of a Controller taken before a
// link placeholder is written serves as the state the linker patches
// through.
type Controller struct {
	mode    Mode
	info    *Info
	flags   Flags
	version uint32
	order   binary.ByteOrder
	linker  *linkage.Linker
	loaded  []func() error

	w      io.WriteSeeker
	r      io.ReadSeeker
	cursor int64

	node     *text.Tree
	nodeType string
}

var _ linkage.Controller = (*Controller)(nil)

func newController(mode Mode, info *Info, flags Flags) *Controller {
	c := &Controller{
		mode:    mode,
		info:    info,
		version: info.Version,
		linker:  linkage.New(),
	}
	c.setFlags(flags)
	return c
}

func (c *Controller) setFlags(f Flags) {
	c.flags = f
	c.order = binary.BigEndian
	if f.Has(LittleEndian) {
		c.order = binary.LittleEndian
	}
}

func (c *Controller) Mode() Mode { return c.mode }

// Flags returns the flags of the stream, which on input are the ones it
// was written with.
func (c *Controller) Flags() Flags { return c.flags }

// Version returns the version of the stream.
func (c *Controller) Version() uint32 { return c.version }

func (c *Controller) Info() *Info             { return c.info }
func (c *Controller) Linker() *linkage.Linker { return c.linker }

// NodeType returns the type name read for the parameter being loaded, or
// "" if the stream has no type info.
func (c *Controller) NodeType() string { return c.nodeType }

func (c *Controller) seeker() io.Seeker {
	if c.mode == BinaryOutput {
		return c.w
	}
	return c.r
}

// GetStreamCursor returns the position of the underlying stream. Text
// controllers have no stream and report their logical position.
func (c *Controller) GetStreamCursor() (int64, error) {
	if !c.mode.IsBinary() {
		return c.cursor, nil
	}
	return c.seeker().Seek(0, io.SeekCurrent)
}

// Sync moves the underlying stream to the logical position.
func (c *Controller) Sync() error {
	if !c.mode.IsBinary() {
		return nil
	}
	_, err := c.seeker().Seek(c.cursor, io.SeekStart)
	return err
}

// SyncWithStream sets the logical position to the stream position.
func (c *Controller) SyncWithStream() error {
	pos, err := c.GetStreamCursor()
	if err != nil {
		return err
	}
	c.cursor = pos
	return nil
}

func (c *Controller) SetCursor(pos int64, sync bool) error {
	c.cursor = pos
	if sync {
		return c.Sync()
	}
	return nil
}

func (c *Controller) LogMessage(msg string) {
	if debug.Meta() {
		debug.Logf("meta: %s\n", msg)
	}
	c.info.LogMessage(msg)
}

// saveState returns a copy of c positioned at the current stream
// position.
func (c *Controller) saveState() (*Controller, error) {
	st := *c
	if err := st.SyncWithStream(); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Controller) requireLinkage() error {
	if !c.flags.Has(Linkage) {
		return fmt.Errorf("%w: links need the linkage flag", text.ErrFail)
	}
	return nil
}

// WriteLink writes a placeholder for the id of the parameter at addr and
// queues its patch. A zero addr writes NullID.
func (c *Controller) WriteLink(p linkage.Parameter, addr uintptr) error {
	if err := c.requireLinkage(); err != nil {
		return err
	}
	if addr == 0 {
		return c.WriteValue(NullID)
	}
	st, err := c.saveState()
	if err != nil {
		return err
	}
	if err := c.WriteValue(uint32(0)); err != nil {
		return err
	}
	return c.linker.CreateWriteTask(p, st, addr)
}

// WriteSharedLink writes a link to the object managed by holder and
// caches holder for the shared objects section.
func (c *Controller) WriteSharedLink(p linkage.Parameter, holder Parameter) error {
	addr := holder.Address()
	if err := c.WriteLink(p, addr); err != nil {
		return err
	}
	c.linker.CacheOutputShared(holder, addr)
	return nil
}

// ReadLink reads a link id and queues the binding of p to its target.
func (c *Controller) ReadLink(p linkage.Linkable) error {
	if err := c.requireLinkage(); err != nil {
		return err
	}
	var id uint32
	if err := c.ReadValue(&id); err != nil {
		return err
	}
	if id == NullID {
		return nil
	}
	return c.linker.CreateReadTask(p, id)
}

// ReadWeakLink reads the id of a shared object and queues the binding of
// p to it. Unlike ReadSharedLink it registers no holder, so the object
// must be owned by some shared link of the same graph.
func (c *Controller) ReadWeakLink(p linkage.Linkable) error {
	if err := c.requireLinkage(); err != nil {
		return err
	}
	var id uint32
	if err := c.ReadValue(&id); err != nil {
		return err
	}
	if id == NullID {
		return nil
	}
	return c.linker.CreateReadSharedTask(p, id)
}

// OnLoaded queues fn to run once the whole graph is loaded and linked.
// Queued functions run in order and the first error stops the load.
func (c *Controller) OnLoaded(fn func() error) {
	c.loaded = append(c.loaded, fn)
}

// finish executes the link tasks and then the OnLoaded queue.
func (c *Controller) finish() error {
	if err := c.linker.Execute(); err != nil {
		return err
	}
	fns := c.loaded
	c.loaded = nil
	for _, fn := range fns {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// ReadSharedLink reads the id of a shared object, registers a holder
// made by newHolder unless the id is already known, and queues the
// binding of p to the holder that is finally read.
func (c *Controller) ReadSharedLink(p linkage.Linkable, newHolder func() Parameter) error {
	if err := c.requireLinkage(); err != nil {
		return err
	}
	var id uint32
	if err := c.ReadValue(&id); err != nil {
		return err
	}
	if id == NullID {
		return nil
	}
	c.linker.RegisterInputShared(newHolder(), id)
	return c.linker.CreateReadSharedTask(p, id)
}
