package pairing

import "github.com/bletools/blesec"

type PasskeyDisplayHandler func(passkey uint32)

type PasskeyEntryHandler func()

type NumericComparisonHandler func(passkey uint32, dev *blesec.Device)

// PasskeyCoordinator relays engine driven passkey interaction to the
// application. One handler per event kind, last registration wins; a repeat
// request from the engine simply re-invokes the same handler.
type PasskeyCoordinator struct {
	displayFn PasskeyDisplayHandler
	entryFn   PasskeyEntryHandler
}

func (c *PasskeyCoordinator) SetDisplayHandler(f PasskeyDisplayHandler) {
	c.displayFn = f
}

func (c *PasskeyCoordinator) SetEntryHandler(f PasskeyEntryHandler) {
	c.entryFn = f
}

func (c *PasskeyCoordinator) notifyDisplay(passkey uint32) {
	if c.displayFn != nil {
		c.displayFn(passkey)
	}
}

func (c *PasskeyCoordinator) notifyEntry() bool {
	if c.entryFn == nil {
		return false
	}
	c.entryFn()
	return true
}

// NumericComparisonCoordinator surfaces the comparison value to the
// application and reports whether anyone is listening.
type NumericComparisonCoordinator struct {
	fn NumericComparisonHandler
}

func (c *NumericComparisonCoordinator) SetHandler(f NumericComparisonHandler) {
	c.fn = f
}

func (c *NumericComparisonCoordinator) notify(passkey uint32, dev *blesec.Device) bool {
	if c.fn == nil {
		return false
	}
	c.fn(passkey, dev)
	return true
}
