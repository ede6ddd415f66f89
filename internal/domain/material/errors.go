package material

import "errors"

var (
	// ErrMaterialNotFound is returned when a material does not exist
	ErrMaterialNotFound = errors.New("material not found")

	// ErrStorage is returned when the object store rejects the upload.
	// No material record exists when this is returned.
	ErrStorage = errors.New("failed to store material file")

	// ErrRecord is returned when the material row cannot be inserted
	// after the file was already stored. The stored object is orphaned.
	ErrRecord = errors.New("failed to record material")

	// ErrNoContent is returned when an upload carries neither a file
	// nor inline text content
	ErrNoContent = errors.New("material has no content")

	// ErrForbidden is returned when a caller acts on a material they
	// do not own
	ErrForbidden = errors.New("not the material owner")
)
