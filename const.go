package blesec

import "fmt"

// SecurityLevel selects the authentication strength requested from the
// security manager when pairing.
type SecurityLevel int

const (
	// SecurityLow requests neither encryption nor authentication.
	SecurityLow SecurityLevel = iota
	// SecurityMedium requests encryption without MITM protection (Just Works).
	SecurityMedium
	// SecurityHigh requests encryption with MITM protection.
	SecurityHigh
	// SecurityHighSC requests MITM protection plus LE Secure Connections.
	SecurityHighSC
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityLow:
		return "low"
	case SecurityMedium:
		return "medium"
	case SecurityHigh:
		return "high"
	case SecurityHighSC:
		return "high sc"
	}
	return fmt.Sprintf("security level %d", int(l))
}

// PairingStatus tracks the progress of the active pairing session.
type PairingStatus int

const (
	PairingIdle PairingStatus = iota
	PairingStarted
	PairingComplete
	PairingFailed
)

func (s PairingStatus) String() string {
	switch s {
	case PairingIdle:
		return "idle"
	case PairingStarted:
		return "started"
	case PairingComplete:
		return "complete"
	case PairingFailed:
		return "failed"
	}
	return fmt.Sprintf("pairing status %d", int(s))
}

// IOCapability describes the local input/output capability advertised to
// the peer during pairing. Values follow the SM IO Capability encoding
// [Vol 3, Part H, 3.5.1].
type IOCapability uint8

const (
	IOCapDisplayOnly     IOCapability = 0x00
	IOCapDisplayYesNo    IOCapability = 0x01
	IOCapKeyboardOnly    IOCapability = 0x02
	IOCapNoInputNoOutput IOCapability = 0x03
	IOCapKeyboardDisplay IOCapability = 0x04
)

// ConnStatus is the result reported with a connected notification.
type ConnStatus uint8

const (
	ConnStatusOK    ConnStatus = 0x00
	ConnStatusError ConnStatus = 0x01
)

// PasskeyMax is the largest value a 6 digit passkey can take.
const PasskeyMax uint32 = 999999
