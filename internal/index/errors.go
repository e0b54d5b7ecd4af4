package index

import "errors"

var ErrEmptyID = errors.New("record has no identifier")
