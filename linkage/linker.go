package linkage

import (
	"fmt"
	"reflect"

	"github.com/signadot/metagraph/debug"
	"github.com/signadot/metagraph/text"
)

// Linker tracks the links of one serialization session. It is not safe
// for concurrent use.
type Linker struct {
	nextID uint32

	links   []*Link
	byParam map[Parameter]*Link
	byAddr  map[uintptr]*Link
	byID    map[uint32]*Link

	writes []writeTask
	reads  []readTask

	outShared   []SharedOutput
	outIndex    map[uintptr]struct{}
	inShared    []SharedInput
	inIndex     map[uint32]int
	prelim      []SharedInput
	prelimIndex map[uint32]struct{}
}

func New() *Linker {
	l := &Linker{}
	l.Reset()
	return l
}

// Reset drops all links, tasks and caches and restarts id generation.
func (l *Linker) Reset() {
	l.nextID = 0
	l.links = nil
	l.byParam = map[Parameter]*Link{}
	l.byAddr = map[uintptr]*Link{}
	l.byID = map[uint32]*Link{}
	l.writes = nil
	l.reads = nil
	l.outShared = nil
	l.outIndex = map[uintptr]struct{}{}
	l.inShared = nil
	l.inIndex = map[uint32]int{}
	l.prelim = nil
	l.prelimIndex = map[uint32]struct{}{}
}

// GenerateID returns the next id of the session, starting at 0.
func (l *Linker) GenerateID() uint32 {
	id := l.nextID
	l.nextID++
	return id
}

// AddLink registers p under id. p must be comparable, which pointer
// receivers always are.
func (l *Linker) AddLink(p Parameter, id uint32) error {
	if p == nil || !reflect.TypeOf(p).Comparable() {
		return fmt.Errorf("%w: parameter %T cannot be linked", text.ErrFail, p)
	}
	link := &Link{Parameter: p, ID: id}
	l.links = append(l.links, link)
	if _, ok := l.byParam[p]; !ok {
		l.byParam[p] = link
	}
	if addr := p.Address(); addr != 0 {
		if _, ok := l.byAddr[addr]; !ok {
			l.byAddr[addr] = link
		}
	}
	if _, ok := l.byID[id]; !ok {
		l.byID[id] = link
	}
	if debug.Link() {
		debug.Logf("link %d -> %T@%#x\n", id, p, p.Address())
	}
	return nil
}

// Links returns the registered links in registration order.
func (l *Linker) Links() []*Link { return l.links }

func (l *Linker) FindLinkByParameter(p Parameter) *Link {
	if p == nil || !reflect.TypeOf(p).Comparable() {
		return nil
	}
	return l.byParam[p]
}

func (l *Linker) FindLinkByAddress(addr uintptr) *Link {
	return l.byAddr[addr]
}

func (l *Linker) FindLinkByID(id uint32) *Link {
	return l.byID[id]
}

func (l *Linker) notRegistered(p Parameter) error {
	return fmt.Errorf("%w: there is no associated link for parameter %T@%#x", text.ErrNotFound, p, p.Address())
}

// CreateWriteTask queues patching the placeholder saved in state with the
// id of the parameter at addr.
func (l *Linker) CreateWriteTask(p Parameter, state Controller, addr uintptr) error {
	if l.FindLinkByParameter(p) == nil {
		return l.notRegistered(p)
	}
	l.writes = append(l.writes, writeTask{state: state, address: addr})
	return nil
}

// CreateReadTask queues binding p to the parameter registered under id.
func (l *Linker) CreateReadTask(p Linkable, id uint32) error {
	if l.FindLinkByParameter(p) == nil {
		return l.notRegistered(p)
	}
	l.reads = append(l.reads, readTask{parameter: p, id: id})
	return nil
}

// CreateReadSharedTask queues binding p to the shared object read under
// id.
func (l *Linker) CreateReadSharedTask(p Linkable, id uint32) error {
	if l.FindLinkByParameter(p) == nil {
		return l.notRegistered(p)
	}
	l.reads = append(l.reads, readTask{parameter: p, id: id, shared: true})
	return nil
}

// Pending returns the number of queued write and read tasks.
func (l *Linker) Pending() (int, int) {
	return len(l.writes), len(l.reads)
}

// Execute runs all write tasks then all read tasks in the order they were
// queued. The queues are emptied whether or not a task fails.
func (l *Linker) Execute() error {
	defer func() {
		l.writes = nil
		l.reads = nil
	}()
	for _, t := range l.writes {
		if err := l.execWrite(t); err != nil {
			return err
		}
	}
	for _, t := range l.reads {
		if err := l.execRead(t); err != nil {
			return err
		}
	}
	return nil
}

func (l *Linker) execWrite(t writeTask) error {
	dst := l.FindLinkByAddress(t.address)
	if dst == nil {
		msg := fmt.Sprintf("there is no associated link for address %#x", t.address)
		t.state.LogMessage(msg)
		return fmt.Errorf("%w: %s", text.ErrNotFound, msg)
	}
	return WriteLinkID(t.state, dst.ID)
}

func (l *Linker) execRead(t readTask) error {
	src := l.FindLinkByParameter(t.parameter)
	if src == nil {
		return l.notRegistered(t.parameter)
	}
	var target Parameter
	if t.shared {
		in := l.FindSharedByID(t.id)
		if in == nil {
			return fmt.Errorf("%w: couldn't find shared object of link %d by id %d", text.ErrNotFound, src.ID, t.id)
		}
		target = in.Holder
	} else {
		dst := l.FindLinkByID(t.id)
		if dst == nil {
			return fmt.Errorf("%w: couldn't find parameter linked from %d by id %d", text.ErrNotFound, src.ID, t.id)
		}
		target = dst.Parameter
	}
	if debug.Link() {
		debug.Logf("bind link %d to id %d (shared=%t)\n", src.ID, t.id, t.shared)
	}
	return t.parameter.Link(target)
}

// WriteLinkID overwrites the placeholder saved in state with id and
// leaves the stream where it was.
func WriteLinkID(state Controller, id uint32) error {
	pos, err := state.GetStreamCursor()
	if err != nil {
		return err
	}
	if err := state.Sync(); err != nil {
		return err
	}
	if err := state.WriteValue(id); err != nil {
		return err
	}
	return state.SetCursor(pos, true)
}

// CacheOutputShared records a shared object to be written. Only the first
// holder of an address is kept.
func (l *Linker) CacheOutputShared(holder Parameter, addr uintptr) {
	if _, ok := l.outIndex[addr]; ok {
		return
	}
	l.outIndex[addr] = struct{}{}
	l.outShared = append(l.outShared, SharedOutput{Holder: holder, Address: addr})
}

// MoveOutputShared returns the shared objects cached since the last call
// and clears the cache. Addresses already returned stay deduplicated.
func (l *Linker) MoveOutputShared() []SharedOutput {
	res := l.outShared
	l.outShared = nil
	return res
}

// CacheInputShared records a shared object that has been read. Only the
// first holder of an id is kept.
func (l *Linker) CacheInputShared(holder Parameter, id uint32) {
	if _, ok := l.inIndex[id]; ok {
		return
	}
	l.inIndex[id] = len(l.inShared)
	l.inShared = append(l.inShared, SharedInput{Holder: holder, ID: id})
}

// RegisterInputShared records a shared object known by id but not read
// yet. It reports whether holder was kept: ids already registered or read
// keep their first holder.
func (l *Linker) RegisterInputShared(holder Parameter, id uint32) bool {
	if _, ok := l.prelimIndex[id]; ok {
		return false
	}
	if _, ok := l.inIndex[id]; ok {
		return false
	}
	l.prelimIndex[id] = struct{}{}
	l.prelim = append(l.prelim, SharedInput{Holder: holder, ID: id})
	return true
}

// MovePreliminaryShared returns the shared objects registered since the
// last call and clears the preliminary cache.
func (l *Linker) MovePreliminaryShared() []SharedInput {
	res := l.prelim
	l.prelim = nil
	return res
}

func (l *Linker) FindSharedByID(id uint32) *SharedInput {
	i, ok := l.inIndex[id]
	if !ok {
		return nil
	}
	return &l.inShared[i]
}
