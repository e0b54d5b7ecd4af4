package records

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrNotObject      = errors.New("record is not a JSON object")
	ErrUnknownTagForm = errors.New("unrecognized tag layout")
)
