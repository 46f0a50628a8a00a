package sm

// EventCode identifies a security manager lifecycle event.
type EventCode byte

const (
	EvtJustWorksRequest EventCode = iota + 1
	EvtPasskeyDisplayNumber
	EvtPasskeyInputNumber
	EvtNumericComparisonRequest
	EvtPairingStarted
	EvtPairingComplete
	EvtReencryptionStarted
	EvtReencryptionComplete
)

func (c EventCode) String() string {
	switch c {
	case EvtJustWorksRequest:
		return "just works request"
	case EvtPasskeyDisplayNumber:
		return "passkey display number"
	case EvtPasskeyInputNumber:
		return "passkey input number"
	case EvtNumericComparisonRequest:
		return "numeric comparison request"
	case EvtPairingStarted:
		return "pairing started"
	case EvtPairingComplete:
		return "pairing complete"
	case EvtReencryptionStarted:
		return "reencryption started"
	case EvtReencryptionComplete:
		return "reencryption complete"
	}
	return "unknown"
}

// StatusSuccess is the status value reported with a successful
// PairingComplete or ReencryptionComplete event.
const StatusSuccess uint8 = 0x00

// Event is one security manager notification, delivered synchronously by
// the host's poll loop. Passkey carries the display or comparison value for
// the events that have one; Status and Reason are only meaningful on the
// completion events.
type Event struct {
	Code    EventCode
	Handle  uint16
	Passkey uint32
	Status  uint8
	Reason  uint8
}
