package meta

import (
	"fmt"
	"io"

	"github.com/signadot/metagraph/debug"
	"github.com/signadot/metagraph/encode"
	"github.com/signadot/metagraph/parse"
	"github.com/signadot/metagraph/text"
)

// SaveDoc renders s as a document with an "info" node carrying the
// version and flags, the root node, and a "shared_objects" node when
// linkage is enabled.
func (s *Snapshot) SaveDoc() (*text.Doc, error) {
	doc := text.NewDoc()
	c := newController(TextOutput, s.info, s.info.Flags)
	c.node = doc.Add(text.Node{Name: infoNode})
	if err := c.WriteAttribute(versionNode, s.info.Version); err != nil {
		return nil, err
	}
	if err := c.WriteAttribute(flagsNode, uint32(s.info.Flags)); err != nil {
		return nil, err
	}
	root, err := c.writeTextNode(s)
	if err != nil {
		return nil, err
	}
	doc.Nodes = append(doc.Nodes, root)
	if c.flags.Has(Linkage) {
		sh, err := c.writeTextShared()
		if err != nil {
			return nil, err
		}
		doc.Nodes = append(doc.Nodes, sh)
	}
	if err := c.linker.Execute(); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadDoc reads s from a document made by SaveDoc. Without an "info"
// node the flags of the snapshot info are used.
func (s *Snapshot) LoadDoc(doc *text.Doc) error {
	c := newController(TextInput, s.info, s.info.Flags)
	if in := doc.Find(infoNode); in != nil {
		c.node = in
		var flags uint32
		if err := c.ReadAttribute(versionNode, &c.version); err != nil {
			return err
		}
		if err := c.ReadAttribute(flagsNode, &flags); err != nil {
			return err
		}
		c.setFlags(Flags(flags))
	}
	root := doc.Find(s.Name())
	if root == nil {
		return nodeErr(s.Path(), text.ErrNotFound, "document has no root node")
	}
	if err := c.readTextNode(root, s); err != nil {
		return err
	}
	if c.flags.Has(Linkage) {
		if err := c.readTextShared(doc.Find(sharedObjectsNode)); err != nil {
			return err
		}
	}
	return c.finish()
}

// SaveText writes s as a text document, XML unless opts select another
// format.
func (s *Snapshot) SaveText(w io.Writer, opts ...encode.EncodeOption) error {
	doc, err := s.SaveDoc()
	if err != nil {
		return err
	}
	return encode.Encode(doc, w, opts...)
}

// LoadText reads s from a text document, detecting XML or JSON unless
// opts select a format.
func (s *Snapshot) LoadText(r io.Reader, opts ...parse.ParseOption) error {
	doc, err := parse.ParseReader(r, opts...)
	if err != nil {
		return err
	}
	return s.LoadDoc(doc)
}

func (c *Controller) writeTextNode(s *Snapshot) (*text.Tree, error) {
	t := text.NewTree(text.Node{Name: s.Name()})
	c.node = t
	p := s.Param()
	if c.flags.Has(TypeInfo) {
		if err := c.WriteAttribute(typeNode, p.TypeName()); err != nil {
			return nil, err
		}
	}
	if c.flags.Has(Linkage) {
		id := c.linker.GenerateID()
		if err := c.linker.AddLink(p, id); err != nil {
			return nil, err
		}
		if err := c.WriteAttribute(idNode, id); err != nil {
			return nil, err
		}
	}
	if debug.Meta() {
		debug.Logf("meta: write %s (%s)\n", s.Path(), p.TypeName())
	}
	if err := p.Save(c); err != nil {
		return nil, &Error{Path: s.Path(), Msg: "save failed", Err: err}
	}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	for _, ch := range s.Children() {
		ct, err := c.writeTextNode(ch)
		if err != nil {
			return nil, err
		}
		if err := t.Add(ct); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (c *Controller) writeTextShared() (*text.Tree, error) {
	sh := text.NewTree(text.Node{Name: sharedObjectsNode})
	n := 0
	for {
		objs := c.linker.MoveOutputShared()
		if len(objs) == 0 {
			break
		}
		for _, o := range objs {
			holder, ok := o.Holder.(Parameter)
			if !ok {
				return nil, fmt.Errorf("%w: shared holder %T", text.ErrNotSupported, o.Holder)
			}
			t, err := c.writeTextNode(newSnapshot(holder, sharedName(n), c.info))
			if err != nil {
				return nil, err
			}
			if err := sh.Add(t); err != nil {
				return nil, err
			}
			n++
		}
	}
	c.node = sh
	if err := c.WriteAttribute(countNode, uint32(n)); err != nil {
		return nil, err
	}
	return sh, nil
}

func (c *Controller) readTextNode(t *text.Tree, s *Snapshot) error {
	c.node = t
	p := s.Param()
	c.nodeType = ""
	if c.flags.Has(TypeInfo) {
		typ, ok := attrValue(t, typeNode)
		if ok {
			if err := c.checkType(s, typ); err != nil {
				return err
			}
			c.nodeType = typ
		}
	}
	if c.flags.Has(Linkage) {
		var id uint32
		if err := c.ReadAttribute(idNode, &id); err != nil {
			return err
		}
		if err := c.linker.AddLink(p, id); err != nil {
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
	for _, ch := range s.Children() {
		ct := text.FindChild(t, ch.Name())
		if ct == nil {
			c.LogMessage(fmt.Sprintf("parameter %q wasn't found and was skipped", ch.Path()))
			continue
		}
		if err := c.readTextNode(ct, ch); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) readTextShared(sh *text.Tree) error {
	reg := c.linker.MovePreliminaryShared()
	if sh == nil {
		if len(reg) != 0 {
			return fmt.Errorf("%w: document has no %s node", text.ErrNotFound, sharedObjectsNode)
		}
		return nil
	}
	c.node = sh
	var n uint32
	if err := c.ReadAttribute(countNode, &n); err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		name := sharedName(i)
		t := text.FindChild(sh, name)
		if t == nil {
			return nodeErr("/"+sharedObjectsNode, text.ErrNotFound, "no node %q", name)
		}
		c.node = t
		var id uint32
		if err := c.ReadAttribute(idNode, &id); err != nil {
			return err
		}
		j := -1
		for k := len(reg) - 1; k >= 0; k-- {
			if reg[k].ID == id {
				j = k
				break
			}
		}
		if j < 0 {
			c.LogMessage(fmt.Sprintf("shared object %d is not referenced and was skipped", id))
			continue
		}
		holder, ok := reg[j].Holder.(Parameter)
		if !ok {
			return fmt.Errorf("%w: shared holder %T", text.ErrNotSupported, reg[j].Holder)
		}
		if err := c.readTextNode(t, newSnapshot(holder, name, c.info)); err != nil {
			return err
		}
		c.linker.CacheInputShared(holder, id)
		reg = append(reg[:j], reg[j+1:]...)
		reg = append(reg, c.linker.MovePreliminaryShared()...)
	}
	return nil
}
