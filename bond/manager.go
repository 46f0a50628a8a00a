// Package bond manages the engine's fixed capacity persisted bonding
// database: single bond removal keyed by connection, and bulk clear by
// scanning every physical slot, since the engine exposes no enumeration
// primitive.
package bond

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/bletools/blesec"
	"github.com/bletools/blesec/sm"
)

type Manager struct {
	mu     *sync.Mutex
	engine sm.Engine
	log    blesec.Logger
}

func NewManager(engine sm.Engine, lock *sync.Mutex, log blesec.Logger) *Manager {
	return &Manager{mu: lock, engine: engine, log: log}
}

// occupied is the slot occupancy predicate: a slot holds a bond iff its
// address type is a recognized LE kind. Anything else, including the
// unknown sentinel, is empty.
func occupied(t blesec.AddrType) bool {
	return t == blesec.AddrTypeLEPublic || t == blesec.AddrTypeLERandom
}

// RemoveBonding deletes the persisted bond for a connected device and then
// drops the link; a deleted bond with live encryption state would leave the
// two inconsistent.
func (m *Manager) RemoveBonding(dev *blesec.Device) error {
	if !dev.Connected() {
		return blesec.ErrInvalidHandle
	}

	handle := dev.Handle()

	m.mu.Lock()
	slot, ok := m.engine.DeviceIndex(handle)
	m.mu.Unlock()

	if !ok {
		return errors.Wrapf(blesec.ErrNotBonded, "handle %d", handle)
	}

	m.mu.Lock()
	info := m.engine.SlotInfo(slot)
	m.mu.Unlock()

	if !occupied(info.AddrType) {
		return errors.Wrapf(blesec.ErrInvalidAddressType, "slot %d has %v", slot, info.AddrType)
	}

	m.log.Infof("removing bond for %v (%v), slot %d", info.Addr, info.AddrType, slot)

	m.mu.Lock()
	m.engine.DeleteBonding(info.AddrType, info.Addr)
	err := m.engine.Disconnect(handle)
	m.mu.Unlock()

	if err != nil {
		return errors.Wrap(err, "disconnect after bond removal")
	}

	return nil
}

// ClearReport summarizes a ClearAll pass. Advisory is the engine's bond
// count before the scan (diagnostic only). Deleted counts the delete
// requests issued. Residual is the bond count after the pass; nonzero means
// the persistence backend has not finished, not that the scan missed slots.
type ClearReport struct {
	Advisory int
	Deleted  int
	Residual int
}

// ClearAll deletes every occupied slot in one linear pass over the fixed
// slot array. The pass always covers all slots: slot contents may shift as
// deletions land, so the loop bound is never derived from the advisory
// count or re-checked mid scan. Deletion is fire and forget, so this never
// fails, it only reports.
func (m *Manager) ClearAll() ClearReport {
	var rep ClearReport

	m.mu.Lock()
	rep.Advisory = m.engine.BondCount()
	slots := m.engine.SlotCount()
	m.mu.Unlock()

	m.log.Infof("clearing bonds, advisory count %d over %d slots", rep.Advisory, slots)

	for slot := 0; slot < slots; slot++ {
		m.mu.Lock()
		info := m.engine.SlotInfo(slot)
		m.mu.Unlock()

		if !occupied(info.AddrType) {
			continue
		}

		m.log.Debugf("slot %d: deleting bond for %v (%v)", slot, info.Addr, info.AddrType)

		m.mu.Lock()
		m.engine.DeleteBonding(info.AddrType, info.Addr)
		m.mu.Unlock()

		rep.Deleted++
	}

	m.mu.Lock()
	rep.Residual = m.engine.BondCount()
	m.mu.Unlock()

	if rep.Residual != 0 {
		// Not retried here: a backend that cannot delete synchronously
		// would turn a retry into an unbounded loop.
		m.log.Warnf("%d bond(s) still reported after clearing %d", rep.Residual, rep.Deleted)
	}

	return rep
}
