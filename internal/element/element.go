package element

import "github.com/nerrad567/gray-logic-audio/internal/audio"

// Element is implemented by the six element types of this package only.
type Element interface {
	Kind() Kind
	Name() string
	ID() audio.ID

	// assign records the ID the element database handed out.
	assign(id audio.ID)
}

// Database is the routing side's persistent element table. Enter registers
// an element and returns the ID it is known by from then on; an element that
// already carries a static ID keeps it. Remove unregisters it again.
type Database interface {
	Enter(e Element) (audio.ID, error)
	Remove(kind Kind, id audio.ID) error
}

// base carries the identity every element shares.
type base struct {
	id   audio.ID
	name string
}

func (b *base) Name() string { return b.name }

func (b *base) ID() audio.ID { return b.id }

func (b *base) assign(id audio.ID) { b.id = id }
