package core

import "github.com/google/uuid"

// ID is a stable external name for a Visual, Panel, Dat, or Tex,
// distinct from its arena index (which is free to be reused once the
// slot is destroyed and its generation bumped).
type ID uuid.UUID

func NewID() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}
