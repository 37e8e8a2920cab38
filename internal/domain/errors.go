package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidType       = errors.New("invalid experiment type")
	ErrInvalidRapidType  = errors.New("invalid rapid type")
	ErrNotEditable       = errors.New("experiment is not editable")
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrNoControl         = errors.New("experiment has no control variant")
	ErrMultipleControls  = errors.New("experiment has more than one control variant")
)
