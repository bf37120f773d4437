package dashboard

import "errors"

var (
	ErrEntryNotFound   = errors.New("no entry with that id in the list")
	ErrReorderMismatch = errors.New("reorder sequence must contain every entry exactly once")
)
