// Package smtest provides a scripted security manager engine for tests and
// example programs. It records every primitive call and lets the caller
// deliver lifecycle events by hand.
package smtest

import (
	"github.com/bletools/blesec"
	"github.com/bletools/blesec/sm"
)

// Call records one primitive invocation on the fake engine.
type Call struct {
	Name     string
	Handle   uint16
	Passkey  uint32
	AddrType blesec.AddrType
	Addr     blesec.Addr
}

// Engine is a fake sm.Engine backed by a BondStore. Zero value is not
// usable; construct with NewEngine.
type Engine struct {
	Store sm.BondStore

	// Calls is the primitive call log, in order.
	Calls []Call

	// IndexByHandle scripts the handle to slot resolution.
	IndexByHandle map[uint16]int

	// KeySize scripts per-handle encryption key sizes.
	KeySize map[uint16]int

	// RequestPairingErr makes RequestPairing fail.
	RequestPairingErr error

	// DeferDeletes keeps DeleteBonding from reaching the store, simulating
	// a persistence backend that cannot complete deletion synchronously.
	DeferDeletes bool

	IOCap      blesec.IOCapability
	AuthReq    sm.AuthReq
	Passkey    uint32
	FixedKey   bool
	AllowRecon bool
}

func NewEngine(store sm.BondStore) *Engine {
	return &Engine{
		Store:         store,
		IndexByHandle: make(map[uint16]int),
		KeySize:       make(map[uint16]int),
	}
}

func (e *Engine) record(c Call) { e.Calls = append(e.Calls, c) }

// CallNames returns the names of all recorded calls, in order.
func (e *Engine) CallNames() []string {
	nn := make([]string, 0, len(e.Calls))
	for _, c := range e.Calls {
		nn = append(nn, c.Name)
	}
	return nn
}

// CountCalls returns how many recorded calls carry the given name.
func (e *Engine) CountCalls(name string) int {
	n := 0
	for _, c := range e.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

func (e *Engine) SetIOCapability(cap blesec.IOCapability) {
	e.IOCap = cap
	e.record(Call{Name: "set-io-capability"})
}

func (e *Engine) SetAuthRequirements(req sm.AuthReq) {
	e.AuthReq = req
	e.record(Call{Name: "set-auth-requirements"})
}

func (e *Engine) UseFixedPasskey(passkey uint32) {
	e.Passkey = passkey
	e.FixedKey = true
	e.record(Call{Name: "use-fixed-passkey", Passkey: passkey})
}

func (e *Engine) UseRandomPasskey() {
	e.FixedKey = false
	e.record(Call{Name: "use-random-passkey"})
}

func (e *Engine) AllowLTKReconstruction(allow bool) {
	e.AllowRecon = allow
	e.record(Call{Name: "allow-ltk-reconstruction"})
}

func (e *Engine) RequestPairing(handle uint16) error {
	e.record(Call{Name: "request-pairing", Handle: handle})
	return e.RequestPairingErr
}

func (e *Engine) ConfirmJustWorks(handle uint16) error {
	e.record(Call{Name: "confirm-just-works", Handle: handle})
	return nil
}

func (e *Engine) ConfirmNumericComparison(handle uint16) error {
	e.record(Call{Name: "confirm-numeric-comparison", Handle: handle})
	return nil
}

func (e *Engine) InputPasskey(handle uint16, passkey uint32) error {
	e.record(Call{Name: "input-passkey", Handle: handle, Passkey: passkey})
	return nil
}

func (e *Engine) DeviceIndex(handle uint16) (int, bool) {
	i, ok := e.IndexByHandle[handle]
	return i, ok
}

func (e *Engine) SlotInfo(slot int) sm.SlotInfo {
	return e.Store.Info(slot)
}

func (e *Engine) SlotCount() int { return e.Store.Capacity() }

func (e *Engine) BondCount() int { return e.Store.Count() }

func (e *Engine) DeleteBonding(t blesec.AddrType, addr blesec.Addr) {
	e.record(Call{Name: "delete-bonding", AddrType: t, Addr: addr})
	if e.DeferDeletes {
		return
	}
	e.Store.Delete(t, addr)
}

func (e *Engine) Disconnect(handle uint16) error {
	e.record(Call{Name: "disconnect", Handle: handle})
	return nil
}

func (e *Engine) EncryptionKeySize(handle uint16) int {
	return e.KeySize[handle]
}
