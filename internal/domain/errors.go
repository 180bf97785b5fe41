package domain

import "errors"

// Startup failures. Nodes wrap the underlying driver error with one of these
// and return it before any task is started.
var (
	ErrRadioInit        = errors.New("radio initialization failed")
	ErrPeerRegistration = errors.New("peer registration failed")
	ErrDisplayInit      = errors.New("display initialization failed")
)
