package pairing

import (
	"sync"
	"testing"

	"github.com/bletools/blesec"
	"github.com/bletools/blesec/sm"
	"github.com/bletools/blesec/sm/smtest"
)

func newTestPolicy() (*Policy, *smtest.Engine) {
	eng := smtest.NewEngine(smtest.NewMemStore(16))
	var mu sync.Mutex
	p := NewPolicy(eng, &mu, blesec.GetLogger())
	return p, eng
}

func TestAuthRequirements(t *testing.T) {
	tests := []struct {
		level   blesec.SecurityLevel
		bonding bool
		want    sm.AuthReq
	}{
		{blesec.SecurityLow, false, 0},
		{blesec.SecurityLow, true, 0},
		{blesec.SecurityMedium, false, 0},
		{blesec.SecurityMedium, true, sm.AuthReqBonding},
		{blesec.SecurityHigh, false, sm.AuthReqMITM},
		{blesec.SecurityHigh, true, sm.AuthReqMITM | sm.AuthReqBonding},
		{blesec.SecurityHighSC, false, sm.AuthReqMITM | sm.AuthReqSecureConnections},
		{blesec.SecurityHighSC, true, sm.AuthReqMITM | sm.AuthReqSecureConnections | sm.AuthReqBonding},
	}

	for _, tc := range tests {
		got := AuthRequirements(tc.level, tc.bonding)
		if got != tc.want {
			t.Fatalf("level %v bonding %v: got 0x%02x want 0x%02x",
				tc.level, tc.bonding, byte(got), byte(tc.want))
		}
	}
}

func TestSetSecurityLevelAppliesToEngine(t *testing.T) {
	p, eng := newTestPolicy()

	p.SetSecurityLevel(blesec.SecurityHighSC, true)

	want := sm.AuthReqMITM | sm.AuthReqSecureConnections | sm.AuthReqBonding
	if eng.AuthReq != want {
		t.Fatalf("engine auth req 0x%02x, want 0x%02x", byte(eng.AuthReq), byte(want))
	}

	// Idempotent: applying the same level again just re-pushes the mask.
	p.SetSecurityLevel(blesec.SecurityHighSC, true)
	if eng.AuthReq != want {
		t.Fatalf("engine auth req changed on reapply: 0x%02x", byte(eng.AuthReq))
	}
}

func TestBeginDerivesMITMFromIOCapability(t *testing.T) {
	p, eng := newTestPolicy()

	p.Begin(blesec.IOCapDisplayYesNo)
	if eng.IOCap != blesec.IOCapDisplayYesNo {
		t.Fatalf("io capability not applied: %v", eng.IOCap)
	}
	if eng.AuthReq != sm.AuthReqMITM {
		t.Fatalf("expected MITM default for interactive io cap, got 0x%02x", byte(eng.AuthReq))
	}

	p.Begin(blesec.IOCapNoInputNoOutput)
	if eng.AuthReq != 0 {
		t.Fatalf("expected no MITM for no-input-no-output, got 0x%02x", byte(eng.AuthReq))
	}
}

func TestSetFixedPasskey(t *testing.T) {
	p, eng := newTestPolicy()

	p.SetFixedPasskey(123456)
	if !eng.FixedKey || eng.Passkey != 123456 {
		t.Fatalf("fixed passkey not applied: fixed=%v key=%d", eng.FixedKey, eng.Passkey)
	}

	// Out of range reverts to random passkey mode.
	p.SetFixedPasskey(1000000)
	if eng.FixedKey {
		t.Fatal("out of range passkey did not revert to random mode")
	}
	if eng.CountCalls("use-random-passkey") != 1 {
		t.Fatal("engine was not switched back to random passkeys")
	}
}

func TestAllowReconnectionWithoutDatabaseEntry(t *testing.T) {
	p, eng := newTestPolicy()

	p.AllowReconnectionWithoutDatabaseEntry(true)
	if !eng.AllowRecon {
		t.Fatal("ltk reconstruction not enabled")
	}

	p.AllowReconnectionWithoutDatabaseEntry(false)
	if eng.AllowRecon {
		t.Fatal("ltk reconstruction not disabled")
	}
}
