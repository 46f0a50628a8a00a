package pairing

import (
	"github.com/bletools/blesec"
	"github.com/bletools/blesec/sm"
)

type evtDispatcher struct {
	desc    string
	handler func(o *Orchestrator, e sm.Event)
}

var dispatcher = map[sm.EventCode]evtDispatcher{
	sm.EvtJustWorksRequest:         {"just works request", onJustWorksRequest},
	sm.EvtPasskeyDisplayNumber:     {"passkey display", onPasskeyDisplay},
	sm.EvtPasskeyInputNumber:       {"passkey input", onPasskeyInput},
	sm.EvtNumericComparisonRequest: {"numeric comparison", onNumericComparison},
	sm.EvtPairingStarted:           {"pairing started", onPairingStarted},
	sm.EvtPairingComplete:          {"pairing complete", onPairingComplete},
	sm.EvtReencryptionStarted:      {"reencryption started", onPairingStarted},
	sm.EvtReencryptionComplete:     {"reencryption complete", onPairingComplete},
}

// HandleEvent processes one engine event. Delivery is synchronous from the
// host poll loop; handlers must not re-enter it.
func (o *Orchestrator) HandleEvent(e sm.Event) {
	o.expire(o.now())

	v, ok := dispatcher[e.Code]
	if !ok {
		o.log.Warnf("unhandled sm event code %v", e.Code)
		return
	}

	o.log.Debugf("sm rx: %s, handle %d", v.desc, e.Handle)
	v.handler(o, e)
}

// Just Works is always accepted at this layer.
func onJustWorksRequest(o *Orchestrator, e sm.Event) {
	o.mu.Lock()
	err := o.engine.ConfirmJustWorks(e.Handle)
	o.mu.Unlock()

	if err != nil {
		o.log.Errorf("just works confirm failed: %v", err)
	}
}

func onPasskeyDisplay(o *Orchestrator, e sm.Event) {
	o.passkey.notifyDisplay(e.Passkey)
}

func onPasskeyInput(o *Orchestrator, e sm.Event) {
	if !o.passkey.notifyEntry() {
		o.log.Warn("passkey entry requested but no handler registered")
	}
}

func onNumericComparison(o *Orchestrator, e sm.Event) {
	if o.numeric.notify(e.Passkey, blesec.NewDevice(e.Handle)) {
		return
	}

	// Nobody to ask; accept, matching the Just Works policy.
	o.mu.Lock()
	err := o.engine.ConfirmNumericComparison(e.Handle)
	o.mu.Unlock()

	if err != nil {
		o.log.Errorf("numeric comparison confirm failed: %v", err)
	}
}

func onPairingStarted(o *Orchestrator, e sm.Event) {
	o.status = blesec.PairingStarted
	o.handle = e.Handle
	o.started = o.now()

	o.notifyStatus(blesec.NewDevice(e.Handle), 0)
}

func onPairingComplete(o *Orchestrator, e sm.Event) {
	// A completion without a live STARTED session is a duplicate or a
	// stray; it must not re-fire the terminal callback.
	if o.status != blesec.PairingStarted || o.handle != e.Handle {
		o.log.Debugf("stale completion for handle %d ignored", e.Handle)
		return
	}

	if e.Status == sm.StatusSuccess {
		o.status = blesec.PairingComplete
	} else {
		o.status = blesec.PairingFailed
		o.log.Warnf("pairing failed, status 0x%02x reason 0x%02x", e.Status, e.Reason)
	}

	o.handle = blesec.InvalidHandle
	o.notifyStatus(blesec.NewDevice(e.Handle), e.Reason)
}
