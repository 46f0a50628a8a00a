package blesec

// InvalidHandle marks the absence of a live connection handle.
const InvalidHandle uint16 = 0xffff

// Device references a connection owned by the lower transport layer.
// The handle is the connection identity; address information is optional
// and only present when the transport reported it.
type Device struct {
	handle   uint16
	addr     Addr
	addrType AddrType
}

// NewDevice creates a Device from a bare connection handle.
func NewDevice(handle uint16) *Device {
	return &Device{handle: handle, addrType: AddrTypeUnknown}
}

// NewDeviceAddr creates a Device with its link address attached.
func NewDeviceAddr(handle uint16, a Addr, t AddrType) *Device {
	return &Device{handle: handle, addr: a, addrType: t}
}

func (d *Device) Handle() uint16 {
	if d == nil {
		return InvalidHandle
	}
	return d.handle
}

func (d *Device) Addr() Addr { return d.addr }

func (d *Device) AddrType() AddrType { return d.addrType }

// Connected reports whether the device carries a usable handle.
func (d *Device) Connected() bool {
	return d != nil && d.handle != InvalidHandle
}
