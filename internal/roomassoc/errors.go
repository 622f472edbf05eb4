package roomassoc

import "errors"

var (
	// ErrMissingAssociations indicates a non-empty document without a
	// top-level associations key.
	ErrMissingAssociations = errors.New("config must contain top-level key 'associations'")

	// ErrInvalidAssociation indicates an entry missing sensor_id or
	// room_id.
	ErrInvalidAssociation = errors.New("association missing sensor_id or room_id")
)
