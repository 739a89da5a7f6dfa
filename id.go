package fanout

import "github.com/xraph/fanout/id"

// ID is the primary identifier type for all fanout entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
