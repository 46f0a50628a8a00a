package pairing

import (
	"sync"

	"github.com/bletools/blesec"
	"github.com/bletools/blesec/sm"
)

// Policy holds the process-wide security configuration and pushes it to the
// engine as authentication requirement flags. All mutation goes through its
// methods; pairing requests read the current state.
type Policy struct {
	mu     *sync.Mutex
	engine sm.Engine
	log    blesec.Logger

	level    blesec.SecurityLevel
	bonding  bool
	ioCap    blesec.IOCapability
	fixedKey uint32
	useFixed bool
}

func NewPolicy(engine sm.Engine, lock *sync.Mutex, log blesec.Logger) *Policy {
	return &Policy{
		mu:      lock,
		engine:  engine,
		log:     log,
		level:   blesec.SecurityMedium,
		bonding: true,
		ioCap:   blesec.IOCapDisplayYesNo,
	}
}

// AuthRequirements maps a security level and bonding choice to the SM
// authentication requirements bitmask.
func AuthRequirements(level blesec.SecurityLevel, bonding bool) sm.AuthReq {
	var req sm.AuthReq
	switch level {
	case blesec.SecurityLow:
	case blesec.SecurityMedium:
		if bonding {
			req = sm.AuthReqBonding
		}
	case blesec.SecurityHigh:
		req = sm.AuthReqMITM
		if bonding {
			req |= sm.AuthReqBonding
		}
	case blesec.SecurityHighSC:
		req = sm.AuthReqMITM | sm.AuthReqSecureConnections
		if bonding {
			req |= sm.AuthReqBonding
		}
	}
	return req
}

// Begin applies the io capability and a default MITM requirement derived
// from it: anything that can interact with a user gets MITM protection.
func (p *Policy) Begin(ioCap blesec.IOCapability) {
	p.ioCap = ioCap

	var req sm.AuthReq
	if ioCap != blesec.IOCapNoInputNoOutput {
		req = sm.AuthReqMITM
	}

	p.mu.Lock()
	p.engine.SetIOCapability(ioCap)
	p.engine.SetAuthRequirements(req)
	p.mu.Unlock()
}

// SetSecurityLevel records the level and bonding choice and applies the
// resulting bitmask immediately. Idempotent; levels are a closed enum so
// there is no error path.
func (p *Policy) SetSecurityLevel(level blesec.SecurityLevel, bonding bool) {
	p.level = level
	p.bonding = bonding

	req := AuthRequirements(level, bonding)

	p.mu.Lock()
	p.engine.SetAuthRequirements(req)
	p.mu.Unlock()

	p.log.Debugf("security level %v, bonding %v, auth req 0x%02x", level, bonding, byte(req))
}

// SetFixedPasskey switches the display role to a fixed passkey when the
// value is in range; out of range values revert to random passkeys.
func (p *Policy) SetFixedPasskey(passkey uint32) {
	if passkey > blesec.PasskeyMax {
		p.useFixed = false

		p.mu.Lock()
		p.engine.UseRandomPasskey()
		p.mu.Unlock()
		return
	}

	p.fixedKey = passkey
	p.useFixed = true

	p.mu.Lock()
	p.engine.UseFixedPasskey(passkey)
	p.mu.Unlock()
}

// AllowReconnectionWithoutDatabaseEntry lets the engine reconstruct an LTK
// for a peer missing from the device DB. Peripheral role convenience; it
// weakens the provenance guarantee of the bond.
func (p *Policy) AllowReconnectionWithoutDatabaseEntry(allow bool) {
	p.mu.Lock()
	p.engine.AllowLTKReconstruction(allow)
	p.mu.Unlock()
}

func (p *Policy) Level() blesec.SecurityLevel { return p.level }

func (p *Policy) Bonding() bool { return p.bonding }

func (p *Policy) IOCapability() blesec.IOCapability { return p.ioCap }
