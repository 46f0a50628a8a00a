package smtest

import (
	"github.com/pkg/errors"

	"github.com/bletools/blesec"
	"github.com/bletools/blesec/sm"
)

// MemStore is an in-memory sm.BondStore with a fixed slot array.
type MemStore struct {
	slots []sm.SlotInfo
}

func NewMemStore(capacity int) *MemStore {
	ms := &MemStore{slots: make([]sm.SlotInfo, capacity)}
	for i := range ms.slots {
		ms.slots[i].AddrType = blesec.AddrTypeUnknown
	}
	return ms
}

func (ms *MemStore) Capacity() int { return len(ms.slots) }

func (ms *MemStore) Count() int {
	n := 0
	for _, s := range ms.slots {
		if s.AddrType != blesec.AddrTypeUnknown {
			n++
		}
	}
	return n
}

func (ms *MemStore) Info(slot int) sm.SlotInfo {
	if slot < 0 || slot >= len(ms.slots) {
		return sm.SlotInfo{AddrType: blesec.AddrTypeUnknown}
	}
	return ms.slots[slot]
}

func (ms *MemStore) IndexOf(t blesec.AddrType, addr blesec.Addr) (int, bool) {
	for i, s := range ms.slots {
		if s.AddrType == t && s.Addr != nil && s.Addr.String() == addr.String() {
			return i, true
		}
	}
	return 0, false
}

func (ms *MemStore) Put(info sm.SlotInfo) (int, error) {
	for i, s := range ms.slots {
		if s.AddrType == blesec.AddrTypeUnknown {
			ms.slots[i] = info
			return i, nil
		}
	}
	return 0, errors.New("bond store full")
}

func (ms *MemStore) Delete(t blesec.AddrType, addr blesec.Addr) {
	if i, ok := ms.IndexOf(t, addr); ok {
		ms.slots[i] = sm.SlotInfo{AddrType: blesec.AddrTypeUnknown}
	}
}
