package ltc2473

import (
	"errors"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

// Status is the transport level result of a bus transaction. The first six
// values follow the usual two-wire endTransmission codes.
type Status byte

const (
	StatusOK Status = iota
	StatusDataTooLong
	StatusAddressNack
	StatusDataNack
	StatusOther
	StatusTimeout
	StatusArbitrationLost
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDataTooLong:
		return "data too long"
	case StatusAddressNack:
		return "address not acknowledged"
	case StatusDataNack:
		return "data not acknowledged"
	case StatusTimeout:
		return "timeout"
	case StatusArbitrationLost:
		return "arbitration lost"
	default:
		return "bus error"
	}
}

var (
	ErrBusFailure      = errors.New("bus failure")
	ErrDataTooLong     = errors.New(StatusDataTooLong.String())
	ErrAddressNack     = errors.New(StatusAddressNack.String())
	ErrDataNack        = errors.New(StatusDataNack.String())
	ErrTimeout         = errors.New(StatusTimeout.String())
	ErrArbitrationLost = errors.New(StatusArbitrationLost.String())
	ErrShortRead       = errors.New("short read")
)

// BusError is returned by transports when a transaction fails. Status carries
// the transport's own classification of the failure and Err, when set, the
// underlying cause.
type BusError struct {
	Status  Status
	Address byte
	Err     error
}

func NewBusError(status Status, address byte, err error) *BusError {
	return &BusError{Status: status, Address: address, Err: err}
}

func (e *BusError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("i2c %#x: %s", e.Address, e.Status)
	}
	return fmt.Sprintf("i2c %#x: %s: %v", e.Address, e.Status, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// Is matches ErrBusFailure for any status and the status specific sentinel
// errors for their status.
func (e *BusError) Is(target error) bool {
	switch target {
	case ErrBusFailure:
		return true
	case ErrDataTooLong:
		return e.Status == StatusDataTooLong
	case ErrAddressNack:
		return e.Status == StatusAddressNack
	case ErrDataNack:
		return e.Status == StatusDataNack
	case ErrTimeout:
		return e.Status == StatusTimeout
	case ErrArbitrationLost:
		return e.Status == StatusArbitrationLost
	}
	return false
}

// ShortReadError reports a read that completed with fewer bytes than
// requested.
type ShortReadError struct {
	Expected int
	Received int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read: expected %d bytes, got %d", e.Expected, e.Received)
}

// Remaining is the number of bytes still expected when the read ended.
func (e *ShortReadError) Remaining() int {
	return e.Expected - e.Received
}

func (e *ShortReadError) Is(target error) bool {
	return target == ErrShortRead
}

// StatusOf returns the transport status carried by err. It returns StatusOK
// for a nil error and StatusOther for errors that did not come from a
// transport.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var busErr *BusError
	if errors.As(err, &busErr) {
		return busErr.Status
	}
	return StatusOther
}
