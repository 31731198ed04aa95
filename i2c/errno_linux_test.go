package i2c

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/mklimuk/ltc2473"
)

func TestStatusFromErr(t *testing.T) {
	tests := []struct {
		name     string
		given    error
		expected ltc2473.Status
	}{
		{"wrapped ENXIO", fmt.Errorf("tx: %w", unix.ENXIO), ltc2473.StatusAddressNack},
		{"wrapped EREMOTEIO", fmt.Errorf("tx: %w", unix.EREMOTEIO), ltc2473.StatusAddressNack},
		{"wrapped ETIMEDOUT", fmt.Errorf("tx: %w", unix.ETIMEDOUT), ltc2473.StatusTimeout},
		{"wrapped EAGAIN", fmt.Errorf("tx: %w", unix.EAGAIN), ltc2473.StatusArbitrationLost},
		{"wrapped EIO", fmt.Errorf("tx: %w", unix.EIO), ltc2473.StatusOther},
		{"formatted EREMOTEIO", fmt.Errorf("sysfs-i2c: %v", unix.EREMOTEIO), ltc2473.StatusAddressNack},
		{"formatted ETIMEDOUT", fmt.Errorf("sysfs-i2c: %v", unix.ETIMEDOUT), ltc2473.StatusTimeout},
		{"unrelated", errors.New("bus closed"), ltc2473.StatusOther},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, statusFromErr(test.given))
		})
	}
}
