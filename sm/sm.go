// Package sm defines the boundary to the security manager engine: the
// action and query primitives the orchestration layer drives, and the
// event stream the engine delivers back. The engine itself performs the
// pairing handshake and key management; nothing in this module does.
package sm

import (
	"github.com/bletools/blesec"
)

// AuthReq is the SM authentication requirements bitmask
// [Vol 3, Part H, 3.5.1].
type AuthReq byte

const (
	AuthReqBonding           AuthReq = 0x01
	AuthReqMITM              AuthReq = 0x04
	AuthReqSecureConnections AuthReq = 0x08
)

// SlotInfo is the content of one device DB slot. An empty slot carries
// AddrTypeUnknown.
type SlotInfo struct {
	AddrType blesec.AddrType
	Addr     blesec.Addr
	IRK      []byte
}

// Engine is the security manager / GAP / device DB surface consumed by the
// orchestration layer. Implementations wrap a real controller stack; tests
// and examples use smtest.
type Engine interface {
	// Configuration, applied before or between pairings.
	SetIOCapability(cap blesec.IOCapability)
	SetAuthRequirements(req AuthReq)
	UseFixedPasskey(passkey uint32)
	UseRandomPasskey()
	AllowLTKReconstruction(allow bool)

	// Pairing actions for a live connection.
	RequestPairing(handle uint16) error
	ConfirmJustWorks(handle uint16) error
	ConfirmNumericComparison(handle uint16) error
	InputPasskey(handle uint16, passkey uint32) error

	// Device DB queries. DeviceIndex resolves a connection handle to its
	// slot, reporting false when the peer has no entry. SlotInfo reads a
	// physical slot by index; SlotCount is the fixed capacity; BondCount
	// is the engine's advisory total, not authoritative for enumeration.
	DeviceIndex(handle uint16) (int, bool)
	SlotInfo(slot int) SlotInfo
	SlotCount() int
	BondCount() int

	// DeleteBonding removes the persisted keys for an identity. The
	// primitive reports nothing back; outcomes are only observable through
	// BondCount differentials.
	DeleteBonding(t blesec.AddrType, addr blesec.Addr)

	// Link control.
	Disconnect(handle uint16) error
	EncryptionKeySize(handle uint16) int
}

// BondStore is the persistence collaborator behind an engine's device DB:
// a fixed array of slots it alone allocates and frees. The orchestration
// layer only ever reads slots and requests deletion.
type BondStore interface {
	Capacity() int
	Count() int
	Info(slot int) SlotInfo
	IndexOf(t blesec.AddrType, addr blesec.Addr) (int, bool)
	Put(info SlotInfo) (int, error)
	Delete(t blesec.AddrType, addr blesec.Addr)
}
