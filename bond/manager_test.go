package bond

import (
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"

	"github.com/bletools/blesec"
	"github.com/bletools/blesec/sm"
	"github.com/bletools/blesec/sm/smtest"
)

func newTestManager() (*Manager, *smtest.Engine, *smtest.MemStore) {
	store := smtest.NewMemStore(16)
	eng := smtest.NewEngine(store)
	var mu sync.Mutex
	return NewManager(eng, &mu, blesec.GetLogger()), eng, store
}

func seedBonds(t *testing.T, store *smtest.MemStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		at := blesec.AddrTypeLEPublic
		if i%2 == 1 {
			at = blesec.AddrTypeLERandom
		}
		a := blesec.NewAddr(fmt.Sprintf("aa:bb:cc:dd:ee:%02x", i))
		if _, err := store.Put(sm.SlotInfo{AddrType: at, Addr: a}); err != nil {
			t.Fatalf("seeding bond %d: %v", i, err)
		}
	}
}

func TestRemoveBondingInvalidDevice(t *testing.T) {
	m, _, _ := newTestManager()

	if err := m.RemoveBonding(nil); errors.Cause(err) != blesec.ErrInvalidHandle {
		t.Fatalf("nil device: %v", err)
	}

	dev := blesec.NewDevice(blesec.InvalidHandle)
	if err := m.RemoveBonding(dev); errors.Cause(err) != blesec.ErrInvalidHandle {
		t.Fatalf("invalid handle: %v", err)
	}
}

func TestRemoveBondingNotBonded(t *testing.T) {
	m, _, _ := newTestManager()

	err := m.RemoveBonding(blesec.NewDevice(1))
	if errors.Cause(err) != blesec.ErrNotBonded {
		t.Fatalf("expected not bonded, got %v", err)
	}
}

func TestRemoveBondingInvalidAddressType(t *testing.T) {
	m, eng, _ := newTestManager()

	// Handle resolves to an empty slot: the sentinel address type is not a
	// recognized LE kind.
	eng.IndexByHandle[1] = 4

	err := m.RemoveBonding(blesec.NewDevice(1))
	if errors.Cause(err) != blesec.ErrInvalidAddressType {
		t.Fatalf("expected invalid address type, got %v", err)
	}
	if eng.CountCalls("delete-bonding") != 0 {
		t.Fatal("delete issued for an empty slot")
	}
}

func TestRemoveBondingDeletesAndDisconnects(t *testing.T) {
	m, eng, store := newTestManager()

	seedBonds(t, store, 3)
	eng.IndexByHandle[7] = 1

	if err := m.RemoveBonding(blesec.NewDevice(7)); err != nil {
		t.Fatal(err)
	}

	if eng.CountCalls("delete-bonding") != 1 {
		t.Fatal("delete not issued")
	}
	if eng.CountCalls("disconnect") != 1 {
		t.Fatal("handle not disconnected after bond removal")
	}
	if store.Count() != 2 {
		t.Fatalf("store count %d after removal", store.Count())
	}
}

func TestClearAllEmpty(t *testing.T) {
	m, eng, _ := newTestManager()

	rep := m.ClearAll()

	if rep.Advisory != 0 || rep.Deleted != 0 || rep.Residual != 0 {
		t.Fatalf("report %+v", rep)
	}
	if eng.CountCalls("delete-bonding") != 0 {
		t.Fatal("delete issued against empty store")
	}
}

func TestClearAllIssuesOneDeletePerOccupiedSlot(t *testing.T) {
	for _, k := range []int{1, 5, 16} {
		m, eng, store := newTestManager()
		seedBonds(t, store, k)

		rep := m.ClearAll()

		if eng.CountCalls("delete-bonding") != k {
			t.Fatalf("k=%d: %d delete calls", k, eng.CountCalls("delete-bonding"))
		}
		if rep.Advisory != k || rep.Deleted != k {
			t.Fatalf("k=%d: report %+v", k, rep)
		}
		if rep.Residual != 0 {
			t.Fatalf("k=%d: residual %d with synchronous backend", k, rep.Residual)
		}
	}
}

func TestClearAllReportsResidualOnLaggingBackend(t *testing.T) {
	m, eng, store := newTestManager()

	seedBonds(t, store, 4)
	eng.DeferDeletes = true

	rep := m.ClearAll()

	if rep.Deleted != 4 {
		t.Fatalf("deleted %d", rep.Deleted)
	}
	// The lag is surfaced, never rounded down to zero, and never retried.
	if rep.Residual != 4 {
		t.Fatalf("residual %d, want 4", rep.Residual)
	}
	if eng.CountCalls("delete-bonding") != 4 {
		t.Fatalf("%d delete calls, retry suspected", eng.CountCalls("delete-bonding"))
	}
}

func TestOccupiedPredicate(t *testing.T) {
	tests := []struct {
		t    blesec.AddrType
		want bool
	}{
		{blesec.AddrTypeLEPublic, true},
		{blesec.AddrTypeLERandom, true},
		{blesec.AddrTypeUnknown, false},
		{blesec.AddrType(0x02), false},
	}

	for _, tc := range tests {
		if occupied(tc.t) != tc.want {
			t.Fatalf("occupied(%v) != %v", tc.t, tc.want)
		}
	}
}
