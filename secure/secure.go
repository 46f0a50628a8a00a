// Package secure ties the pairing orchestration pieces into one context
// object: security policy, the per connection pairing state machine, the
// bonding store manager, and the connect/disconnect bridge that drives
// auto pairing and state reset. Multiple independent instances are fine;
// nothing here is process global.
package secure

import (
	"sync"
	"time"

	"github.com/bletools/blesec"
	"github.com/bletools/blesec/bond"
	"github.com/bletools/blesec/pairing"
	"github.com/bletools/blesec/sm"
)

type ConnectedHandler func(status blesec.ConnStatus, dev *blesec.Device)

type DisconnectedHandler func(dev *blesec.Device)

// Secure owns the orchestration state for one engine instance. All calls
// into the engine go through a shared non-reentrant advisory lock, taken
// only around the primitive itself, after argument validation.
type Secure struct {
	mu     sync.Mutex
	engine sm.Engine
	log    blesec.Logger

	policy *pairing.Policy
	orch   *pairing.Orchestrator
	bonds  *bond.Manager

	autoPair       bool
	connectedFn    ConnectedHandler
	disconnectedFn DisconnectedHandler
}

func New(engine sm.Engine, opts ...Option) *Secure {
	cfg := config{log: blesec.GetLogger()}
	for _, o := range opts {
		o(&cfg)
	}

	s := &Secure{
		engine: engine,
		log:    cfg.log,
	}
	s.policy = pairing.NewPolicy(engine, &s.mu, s.log)
	s.orch = pairing.NewOrchestrator(engine, s.policy, &s.mu, s.log)
	s.bonds = bond.NewManager(engine, &s.mu, s.log)

	if cfg.pairingTimeout > 0 {
		s.orch.SetTimeout(cfg.pairingTimeout)
	}

	return s
}

// Begin applies the io capability and its derived default authentication
// requirements to the engine. Call once before any pairing activity.
func (s *Secure) Begin(ioCap blesec.IOCapability) {
	s.policy.Begin(ioCap)
}

func (s *Secure) SetSecurityLevel(level blesec.SecurityLevel, bonding bool) {
	s.policy.SetSecurityLevel(level, bonding)
}

func (s *Secure) AllowReconnectionWithoutDatabaseEntry(allow bool) {
	s.policy.AllowReconnectionWithoutDatabaseEntry(allow)
}

func (s *Secure) SetFixedPasskey(passkey uint32) {
	s.policy.SetFixedPasskey(passkey)
}

// RequestPairingOnConnect makes every successful connection start pairing
// before the application's connected handler runs.
func (s *Secure) RequestPairingOnConnect(enable bool) {
	s.autoPair = enable
}

func (s *Secure) RequestPairing(dev *blesec.Device) bool {
	return s.orch.RequestPairing(dev)
}

func (s *Secure) BondWithDevice(dev *blesec.Device) bool {
	return s.orch.BondWith(dev)
}

func (s *Secure) RemoveBonding(dev *blesec.Device) bool {
	if err := s.bonds.RemoveBonding(dev); err != nil {
		s.log.Errorf("remove bonding: %v", err)
		return false
	}
	return true
}

func (s *Secure) ClearAllBondings() bond.ClearReport {
	return s.bonds.ClearAll()
}

func (s *Secure) SetEnteredPasskey(passkey uint32) {
	s.orch.SetEnteredPasskey(passkey)
}

func (s *Secure) AcceptNumericComparison(accept bool) {
	s.orch.AcceptNumericComparison(accept)
}

func (s *Secure) PairingStatus() blesec.PairingStatus {
	return s.orch.Status()
}

// IsEncrypted reports whether the link carries an encryption key.
func (s *Secure) IsEncrypted(dev *blesec.Device) bool {
	if !dev.Connected() {
		return false
	}

	s.mu.Lock()
	size := s.engine.EncryptionKeySize(dev.Handle())
	s.mu.Unlock()

	return size > 0
}

// Handler registration. Last registration wins, one subscriber per kind.

func (s *Secure) SetPasskeyDisplayHandler(f pairing.PasskeyDisplayHandler) {
	s.orch.Passkey().SetDisplayHandler(f)
}

func (s *Secure) SetPasskeyEntryHandler(f pairing.PasskeyEntryHandler) {
	s.orch.Passkey().SetEntryHandler(f)
}

func (s *Secure) SetNumericComparisonHandler(f pairing.NumericComparisonHandler) {
	s.orch.Numeric().SetHandler(f)
}

func (s *Secure) SetPairingStatusHandler(f pairing.StatusHandler) {
	s.orch.SetStatusHandler(f)
}

func (s *Secure) SetConnectedHandler(f ConnectedHandler) {
	s.connectedFn = f
}

func (s *Secure) SetDisconnectedHandler(f DisconnectedHandler) {
	s.disconnectedFn = f
}

// HandleSMEvent delivers one engine event. The host poll loop calls this
// synchronously; handlers run before it returns.
func (s *Secure) HandleSMEvent(e sm.Event) {
	s.orch.HandleEvent(e)
}

// Tick gives the orchestrator a chance to expire a stale pairing session.
func (s *Secure) Tick(now time.Time) {
	s.orch.Tick(now)
}

// HandleConnected is the connection bridge: auto pairing runs first, so the
// STARTED status is observable before the application's handler sees the
// connection.
func (s *Secure) HandleConnected(status blesec.ConnStatus, dev *blesec.Device) {
	if status == blesec.ConnStatusOK && s.autoPair {
		s.log.Debug("auto-requesting pairing on connect")
		s.orch.RequestPairing(dev)
	}

	if s.connectedFn != nil {
		s.connectedFn(status, dev)
	}
}

// HandleDisconnected resets the pairing state machine before forwarding, so
// the application observes IDLE if it queries status from its own handler.
func (s *Secure) HandleDisconnected(dev *blesec.Device) {
	s.orch.HandleDisconnect(dev.Handle())

	if s.disconnectedFn != nil {
		s.disconnectedFn(dev)
	}
}
