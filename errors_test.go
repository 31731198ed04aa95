package ltc2473

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusError_Is(t *testing.T) {
	tests := []struct {
		status   Status
		sentinel error
	}{
		{StatusDataTooLong, ErrDataTooLong},
		{StatusAddressNack, ErrAddressNack},
		{StatusDataNack, ErrDataNack},
		{StatusTimeout, ErrTimeout},
		{StatusArbitrationLost, ErrArbitrationLost},
	}
	for _, test := range tests {
		t.Run(test.status.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewBusError(test.status, 0x14, nil))
			assert.ErrorIs(t, err, test.sentinel)
			assert.ErrorIs(t, err, ErrBusFailure)
			assert.Equal(t, test.status, StatusOf(err))
		})
	}
	err := NewBusError(StatusAddressNack, 0x14, nil)
	assert.NotErrorIs(t, err, ErrDataNack)
	assert.NotErrorIs(t, err, ErrShortRead)
}

func TestBusError_Unwrap(t *testing.T) {
	cause := errors.New("remote I/O error")
	err := NewBusError(StatusAddressNack, 0x54, cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "i2c 0x54: address not acknowledged: remote I/O error", err.Error())
	assert.Equal(t, "i2c 0x14: timeout", NewBusError(StatusTimeout, 0x14, nil).Error())
}

func TestShortReadError(t *testing.T) {
	err := fmt.Errorf("read: %w", &ShortReadError{Expected: 2, Received: 1})
	assert.ErrorIs(t, err, ErrShortRead)
	assert.NotErrorIs(t, err, ErrBusFailure)
	var short *ShortReadError
	if assert.ErrorAs(t, err, &short) {
		assert.Equal(t, 1, short.Remaining())
	}
	assert.Equal(t, StatusOther, StatusOf(err))
}

func TestStatusOf_Nil(t *testing.T) {
	assert.Equal(t, StatusOK, StatusOf(nil))
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "bus error", StatusOther.String())
}
