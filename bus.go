// Package ltc2473 declares the bus contract shared by the LTC2473 driver and
// the transports it can run on.
package ltc2473

import (
	"context"
)

// AddressableReader requests len(buffer) bytes from the device at address and
// returns how many bytes actually arrived. Receiving fewer bytes than
// requested is not an error on its own; callers decide what a short count
// means for them.
//
// When stop is false the transaction ends with a repeated start and the bus
// stays held until the next transaction or Release. Transports that cannot
// hold the bus always send a stop condition.
type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte, stop bool) (int, error)
}

// AddressableWriter writes buffer to the device at address and ends the
// transaction with a stop condition. An empty buffer is an address-only
// transaction, used to probe for a device.
type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}
