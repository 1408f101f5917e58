package lang

import (
	"errors"
	"iter"
	"slices"
)

// Document is the parsed form of one source file.
type Document struct {
	Kind     Kind
	Platform Platform
	Entities []Entity
}

// Clone returns a copy of d with its own entity list. The entities are
// shared.
func (d *Document) Clone() *Document {
	c := *d
	c.Entities = slices.Clone(d.Entities)

	return &c
}

// All returns an iterator over all entities in source order.
func (d *Document) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, e := range d.Entities {
			if !yield(e) {
				return
			}
		}
	}
}

// Instances returns an iterator over the generic instances of d.
func (d *Document) Instances() iter.Seq[*Instance] { return entitiesOf[*Instance](d) }

// Objects returns an iterator over the objects of d.
func (d *Document) Objects() iter.Seq[*Object] { return entitiesOf[*Object](d) }

// Regions returns an iterator over the regions of d.
func (d *Document) Regions() iter.Seq[*Region] { return entitiesOf[*Region](d) }

// Hints returns an iterator over the hints of d.
func (d *Document) Hints() iter.Seq[*Hint] { return entitiesOf[*Hint](d) }

// Barriers returns an iterator over the barriers of d.
func (d *Document) Barriers() iter.Seq[*Barrier] { return entitiesOf[*Barrier](d) }

// Hubs returns an iterator over the hubs of d.
func (d *Document) Hubs() iter.Seq[*Hub] { return entitiesOf[*Hub](d) }

// Connections returns an iterator over the connections of d.
func (d *Document) Connections() iter.Seq[*Connection] { return entitiesOf[*Connection](d) }

func entitiesOf[T Entity](d *Document) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range d.Entities {
			if t, ok := e.(T); ok {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Validate returns the joined errors of every keyword entity whose required
// fields were not supplied.
func (d *Document) Validate() error {
	var errs []error

	for _, e := range d.Entities {
		if v, ok := e.(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}
