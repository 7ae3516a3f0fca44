package meta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signadot/metagraph/debug"
	"github.com/signadot/metagraph/text"
)

// Save writes s to w as a binary stream: a header with the magic, the
// version and the flags, the root node, the shared objects section, then
// the patched link ids.
func (s *Snapshot) Save(w io.WriteSeeker) error {
	c := newController(BinaryOutput, s.info, s.info.Flags)
	c.w = w
	var hdr [12]byte
	copy(hdr[:4], magic[:])
	binary.LittleEndian.PutUint32(hdr[4:], s.info.Version)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(s.info.Flags))
	if err := c.write(hdr[:]); err != nil {
		return err
	}
	if err := c.writeNode(s, false); err != nil {
		return err
	}
	if c.flags.Has(Linkage) {
		if err := c.writeShared(); err != nil {
			return err
		}
	}
	return c.linker.Execute()
}

// Load reads s from a binary stream written by Save. The stream flags
// replace those of the snapshot info for the duration of the load.
func (s *Snapshot) Load(r io.ReadSeeker) error {
	version, flags, err := ReadHeader(r)
	if err != nil {
		return err
	}
	c := newController(BinaryInput, s.info, flags)
	c.r = r
	c.version = version
	h, err := c.readHeader(false)
	if err != nil {
		return err
	}
	if c.flags.Has(BinaryNames) && h.name != s.Name() {
		return nodeErr(s.Path(), text.ErrNotFound, "stream root is %q", h.name)
	}
	if err := c.readNode(s, h); err != nil {
		return err
	}
	if c.flags.Has(Linkage) {
		if err := c.readShared(); err != nil {
			return err
		}
	}
	return c.finish()
}

// ReadHeader reads the version and flags at the start of a binary
// stream.
func ReadHeader(r io.Reader) (uint32, Flags, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, 0, fmt.Errorf("%w: stream has no header", text.ErrFail)
		}
		return 0, 0, err
	}
	if [4]byte(hdr[:4]) != magic {
		return 0, 0, fmt.Errorf("%w: not a metagraph stream", text.ErrNotSupported)
	}
	return binary.LittleEndian.Uint32(hdr[4:]), Flags(binary.LittleEndian.Uint32(hdr[8:])), nil
}

func (c *Controller) writeNode(s *Snapshot, sized bool) error {
	p := s.Param()
	if c.flags.Has(BinaryNames) {
		if err := c.writeString(s.Name()); err != nil {
			return err
		}
	}
	if c.flags.Has(TypeInfo) {
		if err := c.writeString(p.TypeName()); err != nil {
			return err
		}
	}
	if c.flags.Has(Linkage) {
		id := c.linker.GenerateID()
		if err := c.linker.AddLink(p, id); err != nil {
			return err
		}
		if err := c.writeU32(id); err != nil {
			return err
		}
	}
	sizePos := int64(-1)
	if sized || c.flags.Has(SizeInfo) {
		pos, err := c.GetStreamCursor()
		if err != nil {
			return err
		}
		sizePos = pos
		if err := c.writeU32(0); err != nil {
			return err
		}
	}
	if debug.Meta() {
		debug.Logf("meta: write %s (%s)\n", s.Path(), p.TypeName())
	}
	if err := p.Save(c); err != nil {
		return &Error{Path: s.Path(), Msg: "save failed", Err: err}
	}
	if err := s.refresh(); err != nil {
		return err
	}
	children := s.Children()
	if err := c.writeU32(uint32(len(children))); err != nil {
		return err
	}
	for _, ch := range children {
		if err := c.writeNode(ch, false); err != nil {
			return err
		}
	}
	if sizePos < 0 {
		return nil
	}
	end, err := c.GetStreamCursor()
	if err != nil {
		return err
	}
	if _, err := c.w.Seek(sizePos, io.SeekStart); err != nil {
		return err
	}
	if err := c.writeU32(uint32(end - sizePos - 4)); err != nil {
		return err
	}
	_, err = c.w.Seek(end, io.SeekStart)
	return err
}

func (c *Controller) writeShared() error {
	countPos, err := c.GetStreamCursor()
	if err != nil {
		return err
	}
	if err := c.writeU32(0); err != nil {
		return err
	}
	n := 0
	for {
		objs := c.linker.MoveOutputShared()
		if len(objs) == 0 {
			break
		}
		for _, o := range objs {
			holder, ok := o.Holder.(Parameter)
			if !ok {
				return fmt.Errorf("%w: shared holder %T", text.ErrNotSupported, o.Holder)
			}
			if err := c.writeNode(newSnapshot(holder, sharedName(n), c.info), true); err != nil {
				return err
			}
			n++
		}
	}
	end, err := c.GetStreamCursor()
	if err != nil {
		return err
	}
	if _, err := c.w.Seek(countPos, io.SeekStart); err != nil {
		return err
	}
	if err := c.writeU32(uint32(n)); err != nil {
		return err
	}
	_, err = c.w.Seek(end, io.SeekStart)
	return err
}

type header struct {
	name string
	typ  string
	id   uint32
	// size is the body size, or -1 if the stream has none.
	size  int64
	start int64
}

func (c *Controller) readHeader(sized bool) (*header, error) {
	h := &header{size: -1}
	var err error
	if c.flags.Has(BinaryNames) {
		if h.name, err = c.readString(); err != nil {
			return nil, err
		}
	}
	if c.flags.Has(TypeInfo) {
		if h.typ, err = c.readString(); err != nil {
			return nil, err
		}
	}
	if c.flags.Has(Linkage) {
		if h.id, err = c.readU32(); err != nil {
			return nil, err
		}
	}
	if sized || c.flags.Has(SizeInfo) {
		n, err := c.readU32()
		if err != nil {
			return nil, err
		}
		h.size = int64(n)
	}
	if h.start, err = c.GetStreamCursor(); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *Controller) skip(h *header, path string) error {
	if h.size < 0 {
		return nodeErr(path, text.ErrNotSupported, "cannot skip %q without size info", h.name)
	}
	_, err := c.r.Seek(h.start+h.size, io.SeekStart)
	return err
}

func (c *Controller) checkType(s *Snapshot, typ string) error {
	want := s.Param().TypeName()
	if strings.EqualFold(typ, want) {
		return nil
	}
	msg := fmt.Sprintf("type mismatch for %q: expected %q, found %q", s.Path(), want, typ)
	c.LogMessage(msg)
	return nodeErr(s.Path(), ErrTypeMismatch, "expected %q, found %q", want, typ)
}

func (c *Controller) readNode(s *Snapshot, h *header) error {
	p := s.Param()
	if c.flags.Has(TypeInfo) {
		if err := c.checkType(s, h.typ); err != nil {
			return err
		}
	}
	c.nodeType = h.typ
	if c.flags.Has(Linkage) {
		if err := c.linker.AddLink(p, h.id); err != nil {
			return err
		}
	}
	if debug.Meta() {
		debug.Logf("meta: read %s (%s)\n", s.Path(), p.TypeName())
	}
	if err := p.Load(c); err != nil {
		return &Error{Path: s.Path(), Msg: "load failed", Err: err}
	}
	if err := s.refresh(); err != nil {
		return err
	}
	n, err := c.readU32()
	if err != nil {
		return err
	}
	fields := s.Children()
	found := make([]bool, len(fields))
	for i := 0; i < int(n); i++ {
		ch, err := c.readHeader(false)
		if err != nil {
			return err
		}
		j := -1
		if c.flags.Has(BinaryNames) {
			for k, f := range fields {
				if !found[k] && f.Name() == ch.name {
					j = k
					break
				}
			}
		} else if i < len(fields) {
			j = i
		}
		if j < 0 {
			name := ch.name
			if name == "" {
				name = "#" + strconv.Itoa(i)
			}
			c.LogMessage(fmt.Sprintf("serialized parameter %q of %q has no match and was skipped", name, s.Path()))
			if err := c.skip(ch, s.Path()); err != nil {
				return err
			}
			continue
		}
		found[j] = true
		if err := c.readNode(fields[j], ch); err != nil {
			return err
		}
	}
	for k, f := range fields {
		if !found[k] {
			c.LogMessage(fmt.Sprintf("parameter %q wasn't found and was skipped", f.Path()))
		}
	}
	if h.size < 0 {
		return nil
	}
	_, err = c.r.Seek(h.start+h.size, io.SeekStart)
	return err
}

func (c *Controller) readShared() error {
	n, err := c.readU32()
	if err != nil {
		return err
	}
	reg := c.linker.MovePreliminaryShared()
	for i := 0; i < int(n); i++ {
		h, err := c.readHeader(true)
		if err != nil {
			return err
		}
		j := -1
		for k := len(reg) - 1; k >= 0; k-- {
			if reg[k].ID == h.id {
				j = k
				break
			}
		}
		if j < 0 {
			c.LogMessage(fmt.Sprintf("shared object %d is not referenced and was skipped", h.id))
			if err := c.skip(h, "/"+sharedObjectsNode); err != nil {
				return err
			}
			continue
		}
		holder, ok := reg[j].Holder.(Parameter)
		if !ok {
			return fmt.Errorf("%w: shared holder %T", text.ErrNotSupported, reg[j].Holder)
		}
		if err := c.readNode(newSnapshot(holder, sharedName(i), c.info), h); err != nil {
			return err
		}
		c.linker.CacheInputShared(holder, h.id)
		reg = append(reg[:j], reg[j+1:]...)
		reg = append(reg, c.linker.MovePreliminaryShared()...)
	}
	return nil
}
