package pairing

import (
	"sync"
	"time"

	"github.com/bletools/blesec"
	"github.com/bletools/blesec/sm"
)

// ReasonTimeout is reported with a FAILED status when the local pairing
// deadline elapses before the engine resolves the session.
const ReasonTimeout uint8 = 0xff

// StatusHandler receives every pairing status transition. The reason is
// zero except on failures.
type StatusHandler func(status blesec.PairingStatus, dev *blesec.Device, reason uint8)

// Orchestrator is the per connection pairing state machine. It tracks at
// most one active session; the handle identifies it. Protocol timing lives
// in the engine, but an optional local deadline can force a session that
// the engine silently abandoned into FAILED.
type Orchestrator struct {
	mu     *sync.Mutex
	engine sm.Engine
	policy *Policy
	log    blesec.Logger

	status  blesec.PairingStatus
	handle  uint16
	started time.Time
	timeout time.Duration
	now     func() time.Time

	statusFn StatusHandler
	passkey  PasskeyCoordinator
	numeric  NumericComparisonCoordinator
}

func NewOrchestrator(engine sm.Engine, policy *Policy, lock *sync.Mutex, log blesec.Logger) *Orchestrator {
	return &Orchestrator{
		mu:     lock,
		engine: engine,
		policy: policy,
		log:    log,
		status: blesec.PairingIdle,
		handle: blesec.InvalidHandle,
		now:    time.Now,
	}
}

func (o *Orchestrator) SetStatusHandler(f StatusHandler) { o.statusFn = f }

func (o *Orchestrator) Passkey() *PasskeyCoordinator { return &o.passkey }

func (o *Orchestrator) Numeric() *NumericComparisonCoordinator { return &o.numeric }

// SetTimeout arms the local pairing deadline. Zero disarms it and leaves
// timing entirely to the engine's protocol timers.
func (o *Orchestrator) SetTimeout(d time.Duration) { o.timeout = d }

func (o *Orchestrator) Status() blesec.PairingStatus { return o.status }

func (o *Orchestrator) ActiveHandle() uint16 { return o.handle }

func (o *Orchestrator) notifyStatus(dev *blesec.Device, reason uint8) {
	if o.statusFn != nil {
		o.statusFn(o.status, dev, reason)
	}
}

// RequestPairing starts a pairing session for a connected device. The
// STARTED status is observable before this returns; the outcome arrives
// later through the status handler, never as a return value.
func (o *Orchestrator) RequestPairing(dev *blesec.Device) bool {
	if !dev.Connected() {
		return false
	}

	o.status = blesec.PairingStarted
	o.handle = dev.Handle()
	o.started = o.now()

	o.notifyStatus(dev, 0)

	o.mu.Lock()
	err := o.engine.RequestPairing(dev.Handle())
	o.mu.Unlock()

	if err != nil {
		// The engine refused the request; the session stays STARTED until
		// a completion event, a disconnect, or the local deadline ends it.
		o.log.Errorf("request pairing failed for handle %d: %v", dev.Handle(), err)
	}

	return true
}

// BondWith is RequestPairing with bonding forced on for the duration of the
// call. Not a separate protocol path; the override is applied through the
// policy and restored before returning.
func (o *Orchestrator) BondWith(dev *blesec.Device) bool {
	if !dev.Connected() {
		return false
	}

	restore := false
	if !o.policy.Bonding() {
		o.policy.SetSecurityLevel(o.policy.Level(), true)
		restore = true
	}

	ok := o.RequestPairing(dev)

	if restore {
		o.policy.SetSecurityLevel(o.policy.Level(), false)
	}

	return ok
}

// SetEnteredPasskey forwards the application's passkey to the engine. Out
// of range values are ignored, as is any call outside an active session.
func (o *Orchestrator) SetEnteredPasskey(passkey uint32) {
	if passkey > blesec.PasskeyMax {
		o.log.Warnf("entered passkey %d out of range, ignored", passkey)
		return
	}

	if o.status != blesec.PairingStarted || o.handle == blesec.InvalidHandle {
		return
	}

	o.mu.Lock()
	err := o.engine.InputPasskey(o.handle, passkey)
	o.mu.Unlock()

	if err != nil {
		o.log.Errorf("passkey input failed: %v", err)
	}
}

// AcceptNumericComparison resolves a pending numeric comparison. Rejection
// really rejects: the engine offers no reject primitive, so the link is
// dropped, which aborts the handshake and resets the session on disconnect.
func (o *Orchestrator) AcceptNumericComparison(accept bool) {
	if o.status != blesec.PairingStarted || o.handle == blesec.InvalidHandle {
		return
	}

	if !accept {
		o.log.Warn("numeric comparison rejected, dropping link")

		o.mu.Lock()
		err := o.engine.Disconnect(o.handle)
		o.mu.Unlock()

		if err != nil {
			o.log.Errorf("disconnect after rejected comparison failed: %v", err)
		}
		return
	}

	o.mu.Lock()
	err := o.engine.ConfirmNumericComparison(o.handle)
	o.mu.Unlock()

	if err != nil {
		o.log.Errorf("numeric comparison confirm failed: %v", err)
	}
}

// HandleDisconnect resets the state machine when the active link goes away.
// A disconnect of any other handle is not ours to care about.
func (o *Orchestrator) HandleDisconnect(handle uint16) {
	if o.handle != handle || handle == blesec.InvalidHandle {
		return
	}

	o.status = blesec.PairingIdle
	o.handle = blesec.InvalidHandle
}

// Tick checks the local pairing deadline. The host's poll loop calls this;
// it is also checked on every delivered event.
func (o *Orchestrator) Tick(now time.Time) {
	o.expire(now)
}

func (o *Orchestrator) expire(now time.Time) {
	if o.timeout <= 0 || o.status != blesec.PairingStarted {
		return
	}
	if now.Sub(o.started) <= o.timeout {
		return
	}

	handle := o.handle
	o.log.Warnf("pairing timed out after %v on handle %d", o.timeout, handle)

	o.status = blesec.PairingFailed
	o.handle = blesec.InvalidHandle
	o.notifyStatus(blesec.NewDevice(handle), ReasonTimeout)

	o.mu.Lock()
	_ = o.engine.Disconnect(handle)
	o.mu.Unlock()
}
