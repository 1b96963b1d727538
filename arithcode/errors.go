package arithcode

import "errors"

var (
	// ErrConfiguration is returned for unusable frequency tables and options,
	// such as coding a zero-frequency symbol.
	ErrConfiguration = errors.New("arithcode: configuration error")

	// ErrProtocol is returned when coders are used in the wrong order or the
	// stream does not match the models, such as coding an unseen symbol or
	// reading past the end of the data.
	ErrProtocol = errors.New("arithcode: protocol error")
)
