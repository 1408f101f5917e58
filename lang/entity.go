package lang

import (
	"log/slog"
	"strings"

	"github.com/ardnew/munge/magic"
)

// Position represents a location in source text.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// LogValue implements slog.LogValuer.
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
	)
}

// Entity is a top-level statement of a document: a generic [Instance] or one
// of the specialised keyword entities.
type Entity interface {
	// Ident returns the statement name: the instance name or the keyword.
	Ident() string
	// Location returns where the statement begins in source.
	Location() Position

	isEntity()
}

// Instance is a generic property or scoped instance.
//
// A property is written `Name(args);` and has no body. A scoped instance is
// written `Name(args) { ... }` and has a possibly empty body.
type Instance struct {
	Name   string
	Args   []Literal
	Body   []*Instance
	Scoped bool
	Pos    Position
}

func (i *Instance) Ident() string      { return i.Name }
func (i *Instance) Location() Position { return i.Pos }
func (*Instance) isEntity()            {}

// Arg returns the n'th argument, if present.
func (i *Instance) Arg(n int) (Literal, bool) {
	if n < 0 || n >= len(i.Args) {
		return Literal{}, false
	}

	return i.Args[n], true
}

// Numbers returns the first n arguments as floats.
// It reports false if there are fewer than n numeric arguments.
func (i *Instance) Numbers(n int) ([]float64, bool) {
	if len(i.Args) < n {
		return nil, false
	}

	out := make([]float64, n)

	for k := range n {
		f, ok := i.Args[k].Number()
		if !ok {
			return nil, false
		}

		out[k] = f
	}

	return out, true
}

// Vec3 returns the first three arguments as a vector.
func (i *Instance) Vec3() (Vec3, bool) {
	f, ok := i.Numbers(3)
	if !ok {
		return Vec3{}, false
	}

	return Vec3{f[0], f[1], f[2]}, true
}

// Quat returns the first four arguments as a quaternion.
func (i *Instance) Quat() (Quat, bool) {
	f, ok := i.Numbers(4)
	if !ok {
		return Quat{}, false
	}

	return Quat{f[0], f[1], f[2], f[3]}, true
}

// Is reports whether the instance name hashes equal to name, i.e. matches it
// case-insensitively.
func (i *Instance) Is(name string) bool { return magic.Same(i.Name, name) }

// Find returns the last body child matching name.
func (i *Instance) Find(name string) (*Instance, bool) {
	return findLast(i.Body, name)
}

func findLast(body []*Instance, name string) (*Instance, bool) {
	var found *Instance

	for _, c := range body {
		if c.Is(name) {
			found = c
		}
	}

	return found, found != nil
}

// without returns body with every instance matching one of names removed.
func without(body []*Instance, names ...string) []*Instance {
	out := make([]*Instance, 0, len(body))

next:
	for _, c := range body {
		for _, name := range names {
			if c.Is(name) {
				continue next
			}
		}

		out = append(out, c)
	}

	return out
}

// fields records required fields that were not supplied.
type fields []string

func (f *fields) missing(name string) { *f = append(*f, name) }

// err returns [ErrMissingField] naming every missing field, or nil.
func (f fields) err(entity, name string) error {
	if len(f) == 0 {
		return nil
	}

	return ErrMissingField.With(
		slog.String("entity", entity),
		slog.String("name", name),
		slog.String("fields", strings.Join(f, ",")),
	)
}

// Object is a placed world object.
//
//	Object("label", "class", ...) { ChildRotation(q0,q1,q2,q3); ChildPosition(x,y,z); ... }
type Object struct {
	Raw      *Instance
	Label    string
	Class    string
	Rotation Quat
	Position Vec3
	// Body holds the remaining properties, excluding placement and
	// bookkeeping fields.
	Body []*Instance

	missing fields
}

func (o *Object) Ident() string      { return o.Raw.Name }
func (o *Object) Location() Position { return o.Raw.Pos }
func (*Object) isEntity()            {}

// Validate returns [ErrMissingField] if a required field was not supplied.
func (o *Object) Validate() error { return o.missing.err(o.Raw.Name, o.Label) }

// Transform returns the XFRM floats of the object.
func (o *Object) Transform() [12]float64 { return Transform(o.Rotation, o.Position) }

// ObjectFiltered lists body properties that are consumed or discarded when
// building an [Object].
var ObjectFiltered = []string{"SeqNo", "NetworkId", "ChildPosition", "ChildRotation"}

func buildObject(raw *Instance) *Object {
	o := &Object{Raw: raw}

	if a, ok := raw.Arg(0); ok {
		o.Label = a.Text()
	} else {
		o.missing.missing("label")
	}

	if a, ok := raw.Arg(1); ok {
		o.Class = a.Text()
	} else {
		o.missing.missing("class")
	}

	if c, ok := raw.Find("ChildRotation"); ok {
		o.Rotation, _ = c.Quat()
	}

	if c, ok := raw.Find("ChildPosition"); ok {
		o.Position, _ = c.Vec3()
	}

	o.Body = without(raw.Body, ObjectFiltered...)

	return o
}

// Shape is the volume type of a [Region].
type Shape string

// Region shapes, indexed by their source type code.
const (
	ShapeBox      Shape = "box"
	ShapeSphere   Shape = "sphere"
	ShapeCylinder Shape = "cylinder"
)

// Shapes maps a region type code to its shape.
var Shapes = []Shape{ShapeBox, ShapeSphere, ShapeCylinder}

// Region is a trigger volume.
//
//	Region("class", type) { Rotation(q0,q1,q2,q3); Position(x,y,z); Size(x,y,z); ... }
type Region struct {
	Raw      *Instance
	Class    string
	Shape    Shape
	Rotation Quat
	Position Vec3
	Size     Vec3
	Body     []*Instance

	missing fields
}

func (r *Region) Ident() string      { return r.Raw.Name }
func (r *Region) Location() Position { return r.Raw.Pos }
func (*Region) isEntity()            {}

// Validate returns [ErrMissingField] if a required field was not supplied.
func (r *Region) Validate() error { return r.missing.err(r.Raw.Name, r.Class) }

// Transform returns the XFRM floats of the region.
func (r *Region) Transform() [12]float64 { return Transform(r.Rotation, r.Position) }

// RegionFiltered lists body properties consumed when building a [Region].
var RegionFiltered = []string{"Rotation", "Position", "Size"}

func buildRegion(raw *Instance) *Region {
	r := &Region{Raw: raw}

	if a, ok := raw.Arg(0); ok {
		r.Class = a.Text()
	} else {
		r.missing.missing("class")
	}

	r.Shape = ShapeBox

	if a, ok := raw.Arg(1); ok {
		n, ok := a.Number()
		if ok && n >= 0 && int(n) < len(Shapes) {
			r.Shape = Shapes[int(n)]
		} else {
			r.missing.missing("type")
		}
	} else {
		r.missing.missing("type")
	}

	r.Rotation, r.Position, r.Size = placement(raw)
	r.Body = without(raw.Body, RegionFiltered...)

	return r
}

// placement reads the Rotation, Position, and Size properties of raw.
// Absent or short properties leave the zero value.
func placement(raw *Instance) (rot Quat, pos, size Vec3) {
	if c, ok := raw.Find("Rotation"); ok {
		rot, _ = c.Quat()
	}

	if c, ok := raw.Find("Position"); ok {
		pos, _ = c.Vec3()
	}

	if c, ok := raw.Find("Size"); ok {
		size, _ = c.Vec3()
	}

	return rot, pos, size
}

// Hint is an AI hint marker.
//
//	Hint("name", "type") { Rotation(...); Position(...); Size(...); ... }
//
// Size is read but remains in Body.
type Hint struct {
	Raw      *Instance
	Name     string
	Type     string
	Rotation Quat
	Position Vec3
	Size     Vec3
	Body     []*Instance

	missing fields
}

func (h *Hint) Ident() string      { return h.Raw.Name }
func (h *Hint) Location() Position { return h.Raw.Pos }
func (*Hint) isEntity()            {}

// Validate returns [ErrMissingField] if a required field was not supplied.
func (h *Hint) Validate() error { return h.missing.err(h.Raw.Name, h.Name) }

// Transform returns the XFRM floats of the hint.
func (h *Hint) Transform() [12]float64 { return Transform(h.Rotation, h.Position) }

// HintFiltered lists body properties consumed when building a [Hint].
var HintFiltered = []string{"Rotation", "Position"}

func buildHint(raw *Instance) *Hint {
	h := &Hint{Raw: raw}

	if a, ok := raw.Arg(0); ok {
		h.Name = a.Text()
	} else {
		h.missing.missing("name")
	}

	if a, ok := raw.Arg(1); ok {
		h.Type = a.Text()
	} else {
		h.missing.missing("type")
	}

	h.Rotation, h.Position, h.Size = placement(raw)

	h.Body = without(raw.Body, HintFiltered...)

	return h
}

// BarrierCorners is the number of corner points a barrier requires.
const BarrierCorners = 4

// Barrier is a movement barrier: a flat rectangle on the ground plane.
//
//	Barrier("name") { Corner(x,y,z); Corner(...); Corner(...); Corner(...); Flag(n); }
//
// Corner heights are discarded. Size, Position, and Basis are derived from
// the corners when four are present.
type Barrier struct {
	Raw     *Instance
	Name    string
	Corners []Vec3
	Flag    uint32

	// Size holds the half-extents along the barrier's local X and Z axes.
	Size     Vec3
	Position Vec3
	// Basis holds the rows of the rotation matrix.
	Basis [3]Vec3

	missing fields
}

func (b *Barrier) Ident() string      { return b.Raw.Name }
func (b *Barrier) Location() Position { return b.Raw.Pos }
func (*Barrier) isEntity()            {}

// Validate returns [ErrMissingField] if a required field was not supplied.
func (b *Barrier) Validate() error { return b.missing.err(b.Raw.Name, b.Name) }

// Transform returns the XFRM floats of the barrier: the basis rows followed
// by the position, which is written as is.
func (b *Barrier) Transform() [12]float64 {
	return [12]float64{
		b.Basis[0].X, b.Basis[0].Y, b.Basis[0].Z,
		b.Basis[1].X, b.Basis[1].Y, b.Basis[1].Z,
		b.Basis[2].X, b.Basis[2].Y, b.Basis[2].Z,
		b.Position.X, b.Position.Y, b.Position.Z,
	}
}

func buildBarrier(raw *Instance) *Barrier {
	b := &Barrier{Raw: raw}

	if a, ok := raw.Arg(0); ok {
		b.Name = strings.ToLower(a.Text())
	} else {
		b.missing.missing("name")
	}

	hasFlag := false

	for _, c := range raw.Body {
		switch {
		case c.Is("Corner"):
			if v, ok := c.Vec3(); ok {
				v.Y = 0
				b.Corners = append(b.Corners, v)
			}
		case c.Is("Flag"):
			if a, ok := c.Arg(0); ok {
				if n, ok := a.Number(); ok {
					b.Flag = uint32(int64(n))
					hasFlag = true
				}
			}
		}
	}

	if !hasFlag {
		b.missing.missing("Flag")
	}

	if len(b.Corners) < BarrierCorners {
		b.missing.missing("Corner")

		return b
	}

	b.derive()

	return b
}

// derive computes the size, position, and basis from the first four corners.
//
// The winding is made consistent by reversing corners 1..3 when the cross
// product of the two sides points up. The side vectors used for the basis
// are those of the original winding.
func (b *Barrier) derive() {
	c := [BarrierCorners]Vec3(b.Corners[:BarrierCorners])

	side0 := c[0].Sub(c[1])
	side1 := c[1].Sub(c[2])

	if side0.Cross(side1).Y > 0 {
		c = [BarrierCorners]Vec3{c[0], c[3], c[2], c[1]}
	}

	b.Size = Vec3{
		X: c[0].Sub(c[1]).Len(),
		Z: c[1].Sub(c[2]).Len(),
	}.Scale(0.5)

	b.Position = c[0].Add(c[2]).Scale(0.5)

	b.Basis = [3]Vec3{
		side1.Normalize().FlipZ(),
		{0, 1, 0},
		side0.Normalize().FlipZ(),
	}
}

// Hub is a navigation graph node.
//
//	Hub("name") { Pos(x,y,z); Radius(r); }
//
// Position is stored with Z negated.
type Hub struct {
	Raw      *Instance
	Name     string
	Position Vec3
	Radius   float64

	missing fields
}

func (h *Hub) Ident() string      { return h.Raw.Name }
func (h *Hub) Location() Position { return h.Raw.Pos }
func (*Hub) isEntity()            {}

// Validate returns [ErrMissingField] if a required field was not supplied.
func (h *Hub) Validate() error { return h.missing.err(h.Raw.Name, h.Name) }

func buildHub(raw *Instance) *Hub {
	h := &Hub{Raw: raw}

	if a, ok := raw.Arg(0); ok {
		h.Name = a.Text()
	} else {
		h.missing.missing("name")
	}

	if c, ok := raw.Find("Pos"); ok {
		if v, ok := c.Vec3(); ok {
			h.Position = v.FlipZ()
		}
	}

	if c, ok := raw.Find("Radius"); ok {
		if f, ok := c.Numbers(1); ok {
			h.Radius = f[0]
		}
	}

	return h
}

// NumTypes is the number of navigation unit types encoded in a
// connection's flag bits.
const NumTypes = 5

// Connection is a navigation graph edge between two hubs.
//
//	Connection("name") { Start("hub"); End("hub"); Flag(n); OneWay(); Jump(); JetJump(); Dynamic(n); }
type Connection struct {
	Raw        *Instance
	Name       string
	Start      string
	End        string
	Flag       uint32
	OneWay     bool
	Jump       bool
	JetJump    bool
	Dynamic    int
	HasDynamic bool

	missing fields
}

func (c *Connection) Ident() string      { return c.Raw.Name }
func (c *Connection) Location() Position { return c.Raw.Pos }
func (*Connection) isEntity()            {}

// Validate returns [ErrMissingField] if a required field was not supplied.
func (c *Connection) Validate() error { return c.missing.err(c.Raw.Name, c.Name) }

// HasType reports whether bit t of the flag is set.
func (c *Connection) HasType(t int) bool {
	return t >= 0 && t < 32 && c.Flag&(1<<t) != 0
}

// HasTypeOrLower reports whether any of bits 0..t is set.
func (c *Connection) HasTypeOrLower(t int) bool {
	for i := t; i >= 0; i-- {
		if c.HasType(i) {
			return true
		}
	}

	return false
}

// HasTypeOrHigher reports whether any of bits t..NumTypes-1 is set.
func (c *Connection) HasTypeOrHigher(t int) bool {
	for i := t; i < NumTypes; i++ {
		if c.HasType(i) {
			return true
		}
	}

	return false
}

// Opposite returns the endpoint across from hub, reporting false if hub is
// not an endpoint.
func (c *Connection) Opposite(hub string) (string, bool) {
	switch hub {
	case c.Start:
		return c.End, true
	case c.End:
		return c.Start, true
	default:
		return "", false
	}
}

// Attributes returns the packed attribute word: bit 0 one-way, bit 1 jump,
// bit 2 jet jump.
func (c *Connection) Attributes() uint32 {
	var v uint32

	if c.OneWay {
		v |= 1
	}

	if c.Jump {
		v |= 1 << 1
	}

	if c.JetJump {
		v |= 1 << 2
	}

	return v
}

func buildConnection(raw *Instance) *Connection {
	c := &Connection{Raw: raw}

	if a, ok := raw.Arg(0); ok {
		c.Name = a.Text()
	} else {
		c.missing.missing("name")
	}

	for _, p := range raw.Body {
		switch {
		case p.Is("Start"):
			if a, ok := p.Arg(0); ok {
				c.Start = a.Text()
			}
		case p.Is("End"):
			if a, ok := p.Arg(0); ok {
				c.End = a.Text()
			}
		case p.Is("Flag"):
			if a, ok := p.Arg(0); ok {
				if n, ok := a.Number(); ok {
					c.Flag = uint32(int64(n))
				}
			}
		case p.Is("OneWay"):
			c.OneWay = true
		case p.Is("Jump"):
			c.Jump = true
		case p.Is("JetJump"):
			c.JetJump = true
		case p.Is("Dynamic"):
			if a, ok := p.Arg(0); ok {
				if n, ok := a.Number(); ok {
					c.Dynamic = int(n)
					c.HasDynamic = true
				}
			}
		}
	}

	if c.Start == "" {
		c.missing.missing("Start")
	}

	if c.End == "" {
		c.missing.missing("End")
	}

	return c
}

// keywords maps each keyword to the constructor of its entity.
var keywords = map[string]func(*Instance) Entity{
	"Object":     func(i *Instance) Entity { return buildObject(i) },
	"Region":     func(i *Instance) Entity { return buildRegion(i) },
	"Hint":       func(i *Instance) Entity { return buildHint(i) },
	"Barrier":    func(i *Instance) Entity { return buildBarrier(i) },
	"Hub":        func(i *Instance) Entity { return buildHub(i) },
	"Connection": func(i *Instance) Entity { return buildConnection(i) },
}

// reserved lists names that may never be used for a generic instance.
var reserved = map[string]bool{
	"Animation": true,
	"Barrier":   true,
	"Hint":      true,
	"Object":    true,
	"Region":    true,
}

// IsReserved reports whether name may not be used for a generic instance.
func IsReserved(name string) bool { return reserved[name] }

// IsKeyword reports whether name introduces a specialised entity at document
// level.
func IsKeyword(name string) bool {
	_, ok := keywords[name]

	return ok
}

// Keywords returns the entity keywords in a stable order.
func Keywords() []string {
	return []string{"Object", "Region", "Hint", "Barrier", "Hub", "Connection"}
}
