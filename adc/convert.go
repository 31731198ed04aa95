package adc

// assembleCode builds the conversion result from the two bytes received on
// the wire, most significant byte first.
func assembleCode(msb, lsb byte) uint16 {
	return uint16(msb)<<8 | uint16(lsb)
}

// ConvertCodeToVoltage converts a conversion result to volts.
//
//	>= +Vref : 65535
//	      0V : 32768
//	<= -Vref :     0
//
// The divisor is 32767 for both halves of the range as in the datasheet
// transfer function, so code 0 lands slightly below -Vref.
func ConvertCodeToVoltage(code uint16) float64 {
	voltage := float64(code)
	voltage -= 32768.0
	voltage /= 32767.0
	return voltage * ReferenceVoltage
}
