package blesec

import "github.com/pkg/errors"

var (
	// ErrInvalidHandle is returned when an operation is given a nil device
	// or one without a live connection handle.
	ErrInvalidHandle = errors.New("invalid connection handle")

	// ErrNotBonded is returned when no device DB entry exists for a handle.
	ErrNotBonded = errors.New("device not bonded")

	// ErrInvalidAddressType is returned when a device DB slot does not hold
	// a recognized LE address type.
	ErrInvalidAddressType = errors.New("invalid address type")

	// ErrPasskeyRange is returned for passkey values above PasskeyMax.
	ErrPasskeyRange = errors.New("passkey out of range")
)
