package pdmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncoding(t *testing.T) {
	var m Message
	m.SetType(TypeSourceCap)
	m.SetRevision(Revision20)
	m.SetPowerRole(PowerRoleSource)
	m.SetDataRole(DataRoleDFP)
	m.SetID(3)
	m.SetDataObjectCount(1)

	require.Equal(t, uint16(0x1761), m.Header)
	assert.True(t, m.IsData())
	assert.Equal(t, TypeSourceCap, m.Type())
	assert.Equal(t, Revision20, m.Revision())
	assert.Equal(t, PowerRoleSource, m.PowerRole())
	assert.Equal(t, DataRoleDFP, m.DataRole())
	assert.Equal(t, uint8(3), m.ID())
	assert.Equal(t, uint8(1), m.DataObjectCount())
}

func TestHeaderIDWraps(t *testing.T) {
	var m Message
	m.SetID(MaxMessageID + 1)
	assert.Equal(t, uint8(0), m.ID())
}

func TestControlHeaderHasNoObjects(t *testing.T) {
	var m Message
	m.SetType(TypeAccept)
	m.SetRevision(Revision20)
	assert.False(t, m.IsData())
	assert.Equal(t, TypeAccept, m.Type())
}

func TestFixedSupplyPDOEncoding(t *testing.T) {
	pdo := NewFixedSupplyPDO()
	pdo.SetVoltage(5000)
	pdo.SetMaxCurrent(1500)
	pdo.SetDualRolePower(true)
	pdo.SetUSBComm(true)
	pdo.SetDataRoleSwap(true)

	require.Equal(t, FixedSupplyPDO(0x26019096), pdo)
	assert.Equal(t, PDOTypeFixedSupply, PDO(pdo).Type())
	assert.Equal(t, uint16(5000), pdo.Voltage())
	assert.Equal(t, uint16(1500), pdo.MaxCurrent())
	assert.True(t, pdo.DualRolePower())
	assert.False(t, pdo.ExternalPower())
	assert.Equal(t, uint8(0), pdo.PeakCurrent())
}

func TestVariableSupplyPDOEncoding(t *testing.T) {
	pdo := NewVariableSupplyPDO()
	pdo.SetMaxVoltage(12000)
	pdo.SetMinVoltage(5000)
	pdo.SetMaxCurrent(3000)

	assert.Equal(t, PDOTypeVariableSupply, PDO(pdo).Type())
	assert.Equal(t, uint16(12000), pdo.MaxVoltage())
	assert.Equal(t, uint16(5000), pdo.MinVoltage())
	assert.Equal(t, uint16(3000), pdo.MaxCurrent())
}

func TestRequestDOEncoding(t *testing.T) {
	var rdo RequestDO
	rdo.SetSelectedObjectPosition(1)
	rdo.SetFixedOperatingCurrent(1500)
	rdo.SetFixedMaxOperatingCurrent(1500)
	rdo.SetUSBComm(true)

	require.Equal(t, RequestDO(0x12025896), rdo)
	assert.Equal(t, uint8(1), rdo.SelectedObjectPosition())
	assert.Equal(t, uint16(1500), rdo.FixedOperatingCurrent())
	assert.Equal(t, uint16(1500), rdo.FixedMaxOperatingCurrent())
	assert.True(t, rdo.USBComm())
	assert.False(t, rdo.GiveBack())
}

func TestVDMHeaderEncoding(t *testing.T) {
	var h VDMHeader
	h.SetSVID(SIDDisplayPort)
	h.SetStructured(true)
	h.SetCommandType(VDMCmdTypeACK)
	h.SetCommand(VDMCmdDiscoverModes)

	require.Equal(t, VDMHeader(0xff018043), h)
	assert.Equal(t, SIDDisplayPort, h.SVID())
	assert.True(t, h.IsStructured())
	assert.Equal(t, VDMCmdTypeACK, h.CommandType())
	assert.Equal(t, VDMCmdDiscoverModes, h.Command())
}

func TestIDHeaderVDOEncoding(t *testing.T) {
	var o IDHeaderVDO
	o.SetUSBDevice(true)
	o.SetProductType(IDHProductTypeAMA)
	o.SetModalSupport(true)
	o.SetVID(0x2109)

	assert.False(t, o.USBHost())
	assert.True(t, o.USBDevice())
	assert.Equal(t, IDHProductTypeAMA, o.ProductType())
	assert.True(t, o.ModalSupport())
	assert.Equal(t, uint16(0x2109), o.VID())
}

func TestAMAVDOEncoding(t *testing.T) {
	var o AMAVDO
	o.SetVconnPower(AMAVconnPower1W5)
	o.SetVconnRequired(true)
	o.SetVbusRequired(true)
	o.SetSuperspeed(AMAUSBSSBillboardOnly)

	assert.Equal(t, AMAVconnPower1W5, o.VconnPower())
	assert.Equal(t, uint16(1500), o.VconnPower().Milliwatts())
	assert.True(t, o.VconnRequired())
	assert.True(t, o.VbusRequired())
	assert.Equal(t, AMAUSBSSBillboardOnly, o.Superspeed())
}

func TestDPModeVDOEncoding(t *testing.T) {
	var o DPModeVDO
	o.SetDFPDPins(DPPinC | DPPinD)
	o.SetReceptacle(true)
	o.SetSignaling(DPSignalingDP13)
	o.SetPortCap(DPPortCapUFPD)

	assert.Equal(t, DPPinC|DPPinD, o.DFPDPins())
	assert.Equal(t, uint8(0), o.UFPDPins())
	assert.True(t, o.Receptacle())
	assert.Equal(t, DPSignalingDP13, o.Signaling())
	assert.Equal(t, DPPortCapUFPD, o.PortCap())
}

func TestSVIDResponseVDO(t *testing.T) {
	o := NewSVIDResponseVDO(SIDDisplayPort, 0)
	assert.Equal(t, SIDDisplayPort, o.SVID0())
	assert.Equal(t, uint16(0), o.SVID1())
}
