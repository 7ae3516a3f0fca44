package meta

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/signadot/metagraph/text"
)

// maxLength bounds the length of strings and byte slices read from a
// binary stream.
const maxLength = 1 << 28

// WriteValue writes v, which must be a primitive. Binary values are fixed
// width in the stream byte order; strings and byte slices are prefixed by
// their length. Text values are set on the current node, replacing any
// previous value.
func (c *Controller) WriteValue(v any) error {
	switch c.mode {
	case BinaryOutput:
		return c.writeBinary(reflect.ValueOf(v))
	case TextOutput:
		s, vt, err := formatText(reflect.ValueOf(v))
		if err != nil {
			return err
		}
		return c.setValue(s, vt)
	}
	return fmt.Errorf("%w: cannot write in %s mode", text.ErrFail, c.mode)
}

// ReadValue reads a primitive into the value ptr points to.
func (c *Controller) ReadValue(ptr any) error {
	e, err := elemOf(ptr)
	if err != nil {
		return err
	}
	switch c.mode {
	case BinaryInput:
		return c.readBinary(e)
	case TextInput:
		s, ok := c.getValue()
		if !ok && !isStringKind(e) {
			return nodeErr(text.Path(c.node), text.ErrNotFound, "node has no value")
		}
		return c.parseText(s, e)
	}
	return fmt.Errorf("%w: cannot read in %s mode", text.ErrFail, c.mode)
}

// WriteAttribute writes v as the attribute name of the current node. In
// binary streams attributes are plain values.
func (c *Controller) WriteAttribute(name string, v any) error {
	if c.mode != TextOutput {
		return c.WriteValue(v)
	}
	s, vt, err := formatText(reflect.ValueOf(v))
	if err != nil {
		return err
	}
	for _, a := range c.node.Children() {
		if a.Data.IsAttribute && a.Data.Name == name {
			a.Data.Value, a.Data.ValueType = &s, vt
			return nil
		}
	}
	c.node.AddData(text.Node{Name: name, Value: &s, ValueType: vt, IsAttribute: true})
	return nil
}

func (c *Controller) ReadAttribute(name string, ptr any) error {
	if c.mode != TextInput {
		return c.ReadValue(ptr)
	}
	e, err := elemOf(ptr)
	if err != nil {
		return err
	}
	s, ok := attrValue(c.node, name)
	if !ok {
		return nodeErr(text.Path(c.node), text.ErrNotFound, "no attribute %q", name)
	}
	return c.parseText(s, e)
}

// attrValue finds the attribute name of t. Documents that went through
// JSON have their attributes as leaf elements.
func attrValue(t *text.Tree, name string) (string, bool) {
	if v, ok := text.Attr(t, name); ok {
		return v, true
	}
	if ch := text.FindChild(t, name); ch != nil && ch.Count() == 0 {
		return ch.Data.Str(), true
	}
	return "", false
}

func elemOf(ptr any) (reflect.Value, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: cannot read into %T", text.ErrFail, ptr)
	}
	return v.Elem(), nil
}

func isBytes(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

func isStringKind(v reflect.Value) bool {
	return v.Kind() == reflect.String || isBytes(v)
}

func (c *Controller) setValue(s string, vt *string) error {
	if c.node == nil {
		return fmt.Errorf("%w: no current node", text.ErrFail)
	}
	t := c.node
	if c.flags.Has(ValueEncapsulation) {
		t = text.FindChild(c.node, valueNode)
		if t == nil {
			t = c.node.AddData(text.Node{Name: valueNode})
		}
	}
	t.Data.Value, t.Data.ValueType = &s, vt
	return nil
}

func (c *Controller) getValue() (string, bool) {
	t := c.node
	vc := text.FindChild(t, valueNode)
	if c.flags.Has(ValueEncapsulation) && vc != nil && vc.Data.Value != nil {
		return *vc.Data.Value, true
	}
	if t.Data.Value != nil {
		return *t.Data.Value, true
	}
	if vc != nil && vc.Data.Value != nil && vc.Count() == 0 {
		return *vc.Data.Value, true
	}
	return "", false
}

func formatText(v reflect.Value) (string, *string, error) {
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), text.Ptr(text.BoolType), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), text.Ptr(text.IntType), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), text.Ptr(text.UintType), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), text.Ptr(text.FloatType), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), text.Ptr(text.DoubleType), nil
	case reflect.String:
		return v.String(), nil, nil
	case reflect.Slice:
		if isBytes(v) {
			return base64.StdEncoding.EncodeToString(v.Bytes()), nil, nil
		}
	}
	return "", nil, fmt.Errorf("%w: value of kind %s", text.ErrNotSupported, v.Kind())
}

func (c *Controller) parseText(s string, e reflect.Value) error {
	bad := func(err error) error {
		return nodeErr(text.Path(c.node), text.ErrFail, "invalid %s value %q: %v", e.Kind(), s, err)
	}
	switch e.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return bad(err)
		}
		e.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, e.Type().Bits())
		if err != nil {
			return bad(err)
		}
		e.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, e.Type().Bits())
		if err != nil {
			return bad(err)
		}
		e.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, e.Type().Bits())
		if err != nil {
			return bad(err)
		}
		e.SetFloat(f)
	case reflect.String:
		e.SetString(s)
	case reflect.Slice:
		if !isBytes(e) {
			return fmt.Errorf("%w: value of kind %s", text.ErrNotSupported, e.Kind())
		}
		d, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return bad(err)
		}
		e.SetBytes(d)
	default:
		return fmt.Errorf("%w: value of kind %s", text.ErrNotSupported, e.Kind())
	}
	return nil
}

func (c *Controller) write(p []byte) error {
	_, err := c.w.Write(p)
	return err
}

func (c *Controller) read(p []byte) error {
	_, err := io.ReadFull(c.r, p)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: unexpected end of stream", text.ErrFail)
	}
	return err
}

func (c *Controller) writeU32(n uint32) error {
	var b [4]byte
	c.order.PutUint32(b[:], n)
	return c.write(b[:])
}

func (c *Controller) readU32() (uint32, error) {
	var b [4]byte
	if err := c.read(b[:]); err != nil {
		return 0, err
	}
	return c.order.Uint32(b[:]), nil
}

func (c *Controller) writeString(s string) error {
	if err := c.writeU32(uint32(len(s))); err != nil {
		return err
	}
	return c.write([]byte(s))
}

func (c *Controller) readBytes() ([]byte, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, err
	}
	if n > maxLength {
		return nil, fmt.Errorf("%w: %d bytes", text.ErrOutOfMemory, n)
	}
	d := make([]byte, n)
	if err := c.read(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *Controller) readString() (string, error) {
	d, err := c.readBytes()
	return string(d), err
}

func (c *Controller) writeBinary(v reflect.Value) error {
	var b [8]byte
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			b[0] = 1
		}
		return c.write(b[:1])
	case reflect.Int8:
		b[0] = byte(v.Int())
		return c.write(b[:1])
	case reflect.Uint8:
		b[0] = byte(v.Uint())
		return c.write(b[:1])
	case reflect.Int16:
		c.order.PutUint16(b[:], uint16(v.Int()))
		return c.write(b[:2])
	case reflect.Uint16:
		c.order.PutUint16(b[:], uint16(v.Uint()))
		return c.write(b[:2])
	case reflect.Int32:
		c.order.PutUint32(b[:], uint32(v.Int()))
		return c.write(b[:4])
	case reflect.Uint32:
		c.order.PutUint32(b[:], uint32(v.Uint()))
		return c.write(b[:4])
	case reflect.Int, reflect.Int64:
		c.order.PutUint64(b[:], uint64(v.Int()))
		return c.write(b[:])
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		c.order.PutUint64(b[:], v.Uint())
		return c.write(b[:])
	case reflect.Float32:
		c.order.PutUint32(b[:], math.Float32bits(float32(v.Float())))
		return c.write(b[:4])
	case reflect.Float64:
		c.order.PutUint64(b[:], math.Float64bits(v.Float()))
		return c.write(b[:])
	case reflect.String:
		return c.writeString(v.String())
	case reflect.Slice:
		if isBytes(v) {
			d := v.Bytes()
			if err := c.writeU32(uint32(len(d))); err != nil {
				return err
			}
			return c.write(d)
		}
	}
	return fmt.Errorf("%w: value of kind %s", text.ErrNotSupported, v.Kind())
}

func (c *Controller) readBinary(e reflect.Value) error {
	var b [8]byte
	switch e.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		if err := c.read(b[:1]); err != nil {
			return err
		}
		switch e.Kind() {
		case reflect.Bool:
			e.SetBool(b[0] != 0)
		case reflect.Int8:
			e.SetInt(int64(int8(b[0])))
		default:
			e.SetUint(uint64(b[0]))
		}
	case reflect.Int16, reflect.Uint16:
		if err := c.read(b[:2]); err != nil {
			return err
		}
		n := c.order.Uint16(b[:])
		if e.Kind() == reflect.Int16 {
			e.SetInt(int64(int16(n)))
		} else {
			e.SetUint(uint64(n))
		}
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		if err := c.read(b[:4]); err != nil {
			return err
		}
		n := c.order.Uint32(b[:])
		switch e.Kind() {
		case reflect.Int32:
			e.SetInt(int64(int32(n)))
		case reflect.Uint32:
			e.SetUint(uint64(n))
		default:
			e.SetFloat(float64(math.Float32frombits(n)))
		}
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Uintptr, reflect.Float64:
		if err := c.read(b[:]); err != nil {
			return err
		}
		n := c.order.Uint64(b[:])
		switch e.Kind() {
		case reflect.Int, reflect.Int64:
			e.SetInt(int64(n))
		case reflect.Float64:
			e.SetFloat(math.Float64frombits(n))
		default:
			e.SetUint(n)
		}
	case reflect.String:
		s, err := c.readString()
		if err != nil {
			return err
		}
		e.SetString(s)
	case reflect.Slice:
		if !isBytes(e) {
			return fmt.Errorf("%w: value of kind %s", text.ErrNotSupported, e.Kind())
		}
		d, err := c.readBytes()
		if err != nil {
			return err
		}
		e.SetBytes(d)
	default:
		return fmt.Errorf("%w: value of kind %s", text.ErrNotSupported, e.Kind())
	}
	return nil
}
