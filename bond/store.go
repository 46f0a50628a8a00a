package bond

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/bletools/blesec"
	"github.com/bletools/blesec/sm"
)

// FileStore is a file backed sm.BondStore: a fixed array of slots persisted
// as JSON. The slot layout is owned here, not by the orchestration layer,
// which only reads slots and requests deletion.
type FileStore struct {
	filename string
	capacity int
	lock     sync.RWMutex
}

type storedSlot struct {
	Address     string `json:"address"`
	AddressType uint8  `json:"addressType"`
	IRK         string `json:"irk,omitempty"`
	LongTermKey string `json:"longTermKey,omitempty"`
}

// DefaultCapacity matches the reference device DB size of the persistence
// backends this store stands in for.
const DefaultCapacity = 16

func NewFileStore(filename string, capacity int) *FileStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FileStore{filename: filename, capacity: capacity}
}

func (fs *FileStore) Capacity() int { return fs.capacity }

func (fs *FileStore) Count() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	slots, err := fs.load()
	if err != nil {
		blesec.GetLogger().Errorf("bond store: %v", err)
		return 0
	}

	n := 0
	for _, s := range slots {
		if occupied(blesec.AddrType(s.AddressType)) {
			n++
		}
	}
	return n
}

func (fs *FileStore) Info(slot int) sm.SlotInfo {
	empty := sm.SlotInfo{AddrType: blesec.AddrTypeUnknown}

	if slot < 0 || slot >= fs.capacity {
		return empty
	}

	fs.lock.RLock()
	defer fs.lock.RUnlock()

	slots, err := fs.load()
	if err != nil {
		blesec.GetLogger().Errorf("bond store: %v", err)
		return empty
	}

	s := slots[slot]
	if !occupied(blesec.AddrType(s.AddressType)) {
		return empty
	}

	info := sm.SlotInfo{
		AddrType: blesec.AddrType(s.AddressType),
		Addr:     blesec.NewAddr(s.Address),
	}
	if s.IRK != "" {
		irk, err := hex.DecodeString(s.IRK)
		if err == nil {
			info.IRK = irk
		}
	}
	return info
}

func (fs *FileStore) IndexOf(t blesec.AddrType, addr blesec.Addr) (int, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	slots, err := fs.load()
	if err != nil {
		return 0, false
	}

	for i, s := range slots {
		if blesec.AddrType(s.AddressType) == t && s.Address == addr.String() {
			return i, true
		}
	}
	return 0, false
}

// Put stores a bond in the first empty slot.
func (fs *FileStore) Put(info sm.SlotInfo) (int, error) {
	if !occupied(info.AddrType) {
		return 0, errors.Wrapf(blesec.ErrInvalidAddressType, "%v", info.AddrType)
	}
	if info.Addr == nil {
		return 0, errors.New("missing address")
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()

	slots, err := fs.load()
	if err != nil {
		return 0, err
	}

	for i := range slots {
		if occupied(blesec.AddrType(slots[i].AddressType)) {
			continue
		}
		slots[i] = storedSlot{
			Address:     info.Addr.String(),
			AddressType: uint8(info.AddrType),
			IRK:         hex.EncodeToString(info.IRK),
		}
		return i, fs.store(slots)
	}

	return 0, errors.New("bond store full")
}

func (fs *FileStore) Delete(t blesec.AddrType, addr blesec.Addr) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	slots, err := fs.load()
	if err != nil {
		blesec.GetLogger().Errorf("bond store: %v", err)
		return
	}

	changed := false
	for i, s := range slots {
		if blesec.AddrType(s.AddressType) == t && s.Address == addr.String() {
			slots[i] = emptySlot()
			changed = true
		}
	}

	if !changed {
		return
	}

	if err := fs.store(slots); err != nil {
		blesec.GetLogger().Errorf("bond store: %v", err)
	}
}

func emptySlot() storedSlot {
	return storedSlot{AddressType: uint8(blesec.AddrTypeUnknown)}
}

func (fs *FileStore) load() ([]storedSlot, error) {
	slots := make([]storedSlot, fs.capacity)
	for i := range slots {
		slots[i] = emptySlot()
	}

	_, err := os.Stat(fs.filename)
	if os.IsNotExist(err) {
		return slots, nil
	}

	in, err := ioutil.ReadFile(fs.filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read bond file")
	}

	if len(in) == 0 {
		return slots, nil
	}

	var stored []storedSlot
	if err := jsoniter.Unmarshal(in, &stored); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal bond file")
	}

	// A file written with a different capacity still maps slot for slot;
	// extra entries are dropped, missing ones stay empty.
	for i := 0; i < len(stored) && i < fs.capacity; i++ {
		slots[i] = stored[i]
	}

	return slots, nil
}

func (fs *FileStore) store(slots []storedSlot) error {
	out, err := jsoniter.Marshal(slots)
	if err != nil {
		return errors.Wrap(err, "failed to marshal bond slots")
	}

	if err := ioutil.WriteFile(fs.filename, out, 0644); err != nil {
		return errors.Wrap(err, "failed to write bond file")
	}
	return nil
}
