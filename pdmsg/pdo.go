package pdmsg

// PDO is a generic Power Data Object. Based on its type, it should be
// converted to specific PDO type to allow extracting various fields.
type PDO uint32

// Type returns the type of the power data object.
func (o PDO) Type() PDOType {
	return PDOType((o >> 30) & 0b11)
}

// PDOType represents the type of a power data object.
type PDOType uint8

// Power data object types.
const (
	PDOTypeFixedSupply    PDOType = 0b00
	PDOTypeBattery        PDOType = 0b01
	PDOTypeVariableSupply PDOType = 0b10
	PDOTypeAugmented      PDOType = 0b11 // revision 3.0 and later, not decoded
)

// FixedSupplyPDO represents a Fixed Supply Power Data Object
type FixedSupplyPDO uint32

// NewFixedSupplyPDO returns a new blank FixedSupplyPDO.
func NewFixedSupplyPDO() FixedSupplyPDO {
	return FixedSupplyPDO(0)
}

// Voltage returns voltage in millivolts.
func (o FixedSupplyPDO) Voltage() uint16 {
	return uint16(((o >> 10) & (1<<10 - 1)) * 50)
}

// SetVoltage will round the given voltage to the nearest 50mV.
func (o *FixedSupplyPDO) SetVoltage(v uint16) {
	*o = (*o & ^((FixedSupplyPDO(1)<<10 - 1) << 10)) | ((FixedSupplyPDO(v)/50)&(1<<10-1))<<10
}

// MaxCurrent returns maximum current in milliamps
func (o FixedSupplyPDO) MaxCurrent() uint16 {
	return uint16((o & (1<<10 - 1)) * 10)
}

// SetMaxCurrent will round the given current to the nearest 10mA.
func (o *FixedSupplyPDO) SetMaxCurrent(v uint16) {
	*o = (*o & ^(FixedSupplyPDO(1)<<10 - 1)) | (FixedSupplyPDO(v)/10)&(1<<10-1)
}

// DualRolePower returns true if the dual role power flag is set. The flag is
// only meaningful on the first PDO of a capability message.
func (o FixedSupplyPDO) DualRolePower() bool {
	return o&(1<<29) != 0
}

// SetDualRolePower sets the dual role power flag.
func (o *FixedSupplyPDO) SetDualRolePower(b bool) {
	o.setFlag(29, b)
}

// USBSuspend returns true if the USB suspend supported flag is set. On a sink
// capability PDO the same bit carries the higher capability flag.
func (o FixedSupplyPDO) USBSuspend() bool {
	return o&(1<<28) != 0
}

// SetUSBSuspend sets the USB suspend supported flag.
func (o *FixedSupplyPDO) SetUSBSuspend(b bool) {
	o.setFlag(28, b)
}

// ExternalPower returns true if the unconstrained/externally powered flag is
// set.
func (o FixedSupplyPDO) ExternalPower() bool {
	return o&(1<<27) != 0
}

// SetExternalPower sets the unconstrained/externally powered flag.
func (o *FixedSupplyPDO) SetExternalPower(b bool) {
	o.setFlag(27, b)
}

// USBComm returns true if the USB communications capable flag is set.
func (o FixedSupplyPDO) USBComm() bool {
	return o&(1<<26) != 0
}

// SetUSBComm sets the USB communications capable flag.
func (o *FixedSupplyPDO) SetUSBComm(b bool) {
	o.setFlag(26, b)
}

// DataRoleSwap returns true if the data role swap supported flag is set.
func (o FixedSupplyPDO) DataRoleSwap() bool {
	return o&(1<<25) != 0
}

// SetDataRoleSwap sets the data role swap supported flag.
func (o *FixedSupplyPDO) SetDataRoleSwap(b bool) {
	o.setFlag(25, b)
}

// PeakCurrent returns the peak current overload capability code (0-3).
func (o FixedSupplyPDO) PeakCurrent() uint8 {
	return uint8((o >> 20) & 0b11)
}

func (o *FixedSupplyPDO) setFlag(bit uint, b bool) {
	if b {
		*o |= FixedSupplyPDO(1) << bit
	} else {
		*o &= ^(FixedSupplyPDO(1) << bit)
	}
}

// VariableSupplyPDO represents a Variable Supply (non-battery) Power Data
// Object.
type VariableSupplyPDO uint32

// NewVariableSupplyPDO returns a new blank VariableSupplyPDO.
func NewVariableSupplyPDO() VariableSupplyPDO {
	return VariableSupplyPDO(0b10) << 30
}

// MaxVoltage returns maximum voltage in millivolts.
func (o VariableSupplyPDO) MaxVoltage() uint16 {
	return uint16(((o >> 20) & (1<<10 - 1)) * 50)
}

// SetMaxVoltage will round the given voltage to the nearest 50mV.
func (o *VariableSupplyPDO) SetMaxVoltage(v uint16) {
	*o = (*o & ^((VariableSupplyPDO(1)<<10 - 1) << 20)) | ((VariableSupplyPDO(v)/50)&(1<<10-1))<<20
}

// MinVoltage returns minimum voltage in millivolts.
func (o VariableSupplyPDO) MinVoltage() uint16 {
	return uint16(((o >> 10) & (1<<10 - 1)) * 50)
}

// SetMinVoltage will round the given voltage to the nearest 50mV.
func (o *VariableSupplyPDO) SetMinVoltage(v uint16) {
	*o = (*o & ^((VariableSupplyPDO(1)<<10 - 1) << 10)) | ((VariableSupplyPDO(v)/50)&(1<<10-1))<<10
}

// MaxCurrent returns maximum current in milliamps.
func (o VariableSupplyPDO) MaxCurrent() uint16 {
	return uint16((o & (1<<10 - 1)) * 10)
}

// SetMaxCurrent will round the given current to the nearest 10mA.
func (o *VariableSupplyPDO) SetMaxCurrent(v uint16) {
	*o = (*o & ^(VariableSupplyPDO(1)<<10 - 1)) | (VariableSupplyPDO(v)/10)&(1<<10-1)
}

// BatteryPDO represents a Battery Supply Power Data Object.
type BatteryPDO uint32

// NewBatteryPDO returns a new blank BatteryPDO.
func NewBatteryPDO() BatteryPDO {
	return BatteryPDO(0b01) << 30
}

// MaxVoltage returns maximum voltage in millivolts.
func (o BatteryPDO) MaxVoltage() uint16 {
	return uint16(((o >> 20) & (1<<10 - 1)) * 50)
}

// MinVoltage returns minimum voltage in millivolts.
func (o BatteryPDO) MinVoltage() uint16 {
	return uint16(((o >> 10) & (1<<10 - 1)) * 50)
}

// MaxPower returns maximum allowable power in milliwatts.
func (o BatteryPDO) MaxPower() uint32 {
	return uint32(o&(1<<10-1)) * 250
}

// RequestDO represents a Request Data Object.
type RequestDO uint32

// EmptyRequestDO indicates that no power profile has been selected.
const EmptyRequestDO RequestDO = 0

// SelectedObjectPosition returns the position number of the PDO in the source
// capability message, starting at 1.
func (o RequestDO) SelectedObjectPosition() uint8 {
	return uint8(o >> 28)
}

// SetSelectedObjectPosition sets the position number of the PDO the source
// capability message, starting at 1.
func (o *RequestDO) SetSelectedObjectPosition(p uint8) {
	*o = (*o & ^(RequestDO(0b1111) << 28)) | RequestDO(p)<<28
}

// GiveBack returns true if the give back flag of the RDO is set.
func (o RequestDO) GiveBack() bool {
	return o&(1<<27) != 0
}

// SetGiveBack sets the give back flag of the RDO.
func (o *RequestDO) SetGiveBack(b bool) {
	o.setFlag(27, b)
}

// CapabilityMismatch returns true if capability mismatch flag of the RDO is
// set.
func (o RequestDO) CapabilityMismatch() bool {
	return o&(1<<26) != 0
}

// SetCapabilityMismatch sets the capability mismatch flag of the RDO.
func (o *RequestDO) SetCapabilityMismatch(b bool) {
	o.setFlag(26, b)
}

// USBComm returns true if the USB communications capable flag of the RDO is
// set.
func (o RequestDO) USBComm() bool {
	return o&(1<<25) != 0
}

// SetUSBComm sets the USB communications capable flag of the RDO.
func (o *RequestDO) SetUSBComm(b bool) {
	o.setFlag(25, b)
}

// NoUSBSuspend returns true if the no USB suspend flag of the RDO is set.
func (o RequestDO) NoUSBSuspend() bool {
	return o&(1<<24) != 0
}

// SetNoUSBSuspend sets the no USB suspend flag of the RDO.
func (o *RequestDO) SetNoUSBSuspend(b bool) {
	o.setFlag(24, b)
}

// FixedOperatingCurrent returns current in milliamps for fixed request
// objects.
func (o RequestDO) FixedOperatingCurrent() uint16 {
	return uint16(((o >> 10) & (1<<10 - 1)) * 10)
}

// SetFixedOperatingCurrent sets current in milliamps rounded to nearest 10mA
// for fixed request objects.
func (o *RequestDO) SetFixedOperatingCurrent(c uint16) {
	*o = (*o & ^((RequestDO(1)<<10 - 1) << 10)) | ((RequestDO(c)/10)&(1<<10-1))<<10
}

// FixedMaxOperatingCurrent returns current in milliamps for fixed request
// objects without GiveBack support.
func (o RequestDO) FixedMaxOperatingCurrent() uint16 {
	return uint16((o & (1<<10 - 1)) * 10)
}

// SetFixedMaxOperatingCurrent sets current in milliamps rounded to nearest
// 10mA for fixed request objects without GiveBack support.
func (o *RequestDO) SetFixedMaxOperatingCurrent(c uint16) {
	*o = (*o & ^(RequestDO(1)<<10 - 1)) | ((RequestDO(c) / 10) & (1<<10 - 1))
}

// BatteryOperatingPower returns power in milliwatts for battery request
// objects.
func (o RequestDO) BatteryOperatingPower() uint32 {
	return uint32((o>>10)&(1<<10-1)) * 250
}

// BatteryMaxOperatingPower returns power in milliwatts for battery request
// objects without GiveBack support.
func (o RequestDO) BatteryMaxOperatingPower() uint32 {
	return uint32(o&(1<<10-1)) * 250
}

func (o *RequestDO) setFlag(bit uint, b bool) {
	if b {
		*o |= RequestDO(1) << bit
	} else {
		*o &= ^(RequestDO(1) << bit)
	}
}
