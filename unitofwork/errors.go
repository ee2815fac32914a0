package unitofwork

import "errors"

// ErrAlreadyOpen is returned when Begin is called on a unit of work whose scope has not ended yet.
var ErrAlreadyOpen = errors.New("unit of work is already open")

// ErrNotOpen is returned when an operation needs an open session but the unit of work has none.
var ErrNotOpen = errors.New("unit of work is not open")
