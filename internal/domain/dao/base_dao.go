// Package dao defines the data access contract for the user collection.
// Implementations live in sub-packages (mongo); decorators for caching and
// instrumentation wrap any implementation.
package dao

// IDField is the storage identifier assigned by the store.
const IDField = "_id"

// Projection selects which fields are returned: true includes a field,
// false excludes it.
type Projection map[string]bool

// DefaultProjection strips the storage identifier from results.
var DefaultProjection = Projection{IDField: false}

// OrDefault returns p, or DefaultProjection when p is nil.
func (p Projection) OrDefault() Projection {
	if p == nil {
		return DefaultProjection
	}
	return p
}
