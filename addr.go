package blesec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Addr represents a Bluetooth device address.
type Addr interface {
	String() string
	Bytes() []byte
}

// NewAddr creates an Addr from string
func NewAddr(s string) Addr {
	return addr(strings.ToLower(s))
}

type addr string

func (a addr) String() string {
	return string(a)
}

func (a addr) Bytes() []byte {
	hexStr := strings.Replace(a.String(), ":", "", -1)

	out, err := hex.DecodeString(hexStr)
	if err != nil {
		fmt.Println("error decoding address:", err, a.String())
	}

	return out
}

// AddrType is the LE address type recorded with a device DB slot.
// The persistence layer marks an empty slot with AddrTypeUnknown.
type AddrType uint8

const (
	AddrTypeLEPublic AddrType = 0x00
	AddrTypeLERandom AddrType = 0x01
	AddrTypeUnknown  AddrType = 0xff
)

func (t AddrType) String() string {
	switch t {
	case AddrTypeLEPublic:
		return "le public"
	case AddrTypeLERandom:
		return "le random"
	case AddrTypeUnknown:
		return "unknown"
	}
	return fmt.Sprintf("addr type 0x%02x", uint8(t))
}
