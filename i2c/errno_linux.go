package i2c

import (
	"errors"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/mklimuk/ltc2473"
)

var errnoStatus = []struct {
	errno  unix.Errno
	status ltc2473.Status
}{
	{unix.ENXIO, ltc2473.StatusAddressNack},
	{unix.EREMOTEIO, ltc2473.StatusAddressNack},
	{unix.ETIMEDOUT, ltc2473.StatusTimeout},
	{unix.EAGAIN, ltc2473.StatusArbitrationLost},
	{unix.EMSGSIZE, ltc2473.StatusDataTooLong},
}

// statusFromErr classifies the errno returned by the i2c-dev driver.
// See Documentation/i2c/fault-codes.rst in the kernel tree.
func statusFromErr(err error) ltc2473.Status {
	var errno unix.Errno
	if errors.As(err, &errno) {
		for _, e := range errnoStatus {
			if e.errno == errno {
				return e.status
			}
		}
		return ltc2473.StatusOther
	}
	// periph and gobot format the ioctl error with %v, so only the message
	// survives.
	msg := err.Error()
	for _, e := range errnoStatus {
		if strings.HasSuffix(msg, e.errno.Error()) {
			return e.status
		}
	}
	return ltc2473.StatusOther
}
