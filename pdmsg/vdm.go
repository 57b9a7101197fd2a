package pdmsg

// Standard IDs used in vendor defined messages.
const (
	SIDPowerDelivery uint16 = 0xff00
	SIDDisplayPort   uint16 = 0xff01
)

// VDMHeader is the first data object of a vendor defined message.
type VDMHeader uint32

// SVID returns the standard or vendor ID of the VDM.
func (h VDMHeader) SVID() uint16 {
	return uint16(h >> 16)
}

// SetSVID sets the standard or vendor ID of the VDM.
func (h *VDMHeader) SetSVID(svid uint16) {
	*h = (*h & (1<<16 - 1)) | VDMHeader(svid)<<16
}

// IsStructured returns true if the structured VDM bit is set.
func (h VDMHeader) IsStructured() bool {
	return h&(1<<15) != 0
}

// SetStructured sets the structured VDM bit.
func (h *VDMHeader) SetStructured(b bool) {
	if b {
		*h |= 1 << 15
	} else {
		*h &= ^VDMHeader(1 << 15)
	}
}

// Version returns the structured VDM version field.
func (h VDMHeader) Version() uint8 {
	return uint8((h >> 13) & 0b11)
}

// SetVersion sets the structured VDM version field.
func (h *VDMHeader) SetVersion(v uint8) {
	*h = (*h & ^(VDMHeader(0b11) << 13)) | VDMHeader(v&0b11)<<13
}

// ObjectPosition returns the object position field of a structured VDM.
func (h VDMHeader) ObjectPosition() uint8 {
	return uint8((h >> 8) & 0b111)
}

// SetObjectPosition sets the object position field of a structured VDM.
func (h *VDMHeader) SetObjectPosition(p uint8) {
	*h = (*h & ^(VDMHeader(0b111) << 8)) | VDMHeader(p&0b111)<<8
}

// CommandType returns the command type of a structured VDM.
func (h VDMHeader) CommandType() VDMCommandType {
	return VDMCommandType((h >> 6) & 0b11)
}

// SetCommandType sets the command type of a structured VDM.
func (h *VDMHeader) SetCommandType(t VDMCommandType) {
	*h = (*h & ^(VDMHeader(0b11) << 6)) | VDMHeader(t)<<6
}

// Command returns the command of a structured VDM.
func (h VDMHeader) Command() VDMCommand {
	return VDMCommand(h & 0b11111)
}

// SetCommand sets the command of a structured VDM.
func (h *VDMHeader) SetCommand(c VDMCommand) {
	*h = (*h & ^VDMHeader(0b11111)) | VDMHeader(c)
}

// VDMCommandType distinguishes an initiation VDM from the three possible
// responses to it.
type VDMCommandType uint8

// Structured VDM command types.
const (
	VDMCmdTypeInit VDMCommandType = 0b00
	VDMCmdTypeACK  VDMCommandType = 0b01
	VDMCmdTypeNAK  VDMCommandType = 0b10
	VDMCmdTypeBusy VDMCommandType = 0b11
)

func (t VDMCommandType) String() string {
	switch t {
	case VDMCmdTypeInit:
		return "INIT"
	case VDMCmdTypeACK:
		return "ACK"
	case VDMCmdTypeNAK:
		return "NAK"
	default:
		return "BUSY"
	}
}

// VDMCommand is the command field of a structured VDM.
type VDMCommand uint8

// Structured VDM commands.
const (
	VDMCmdDiscoverIdentity VDMCommand = 1
	VDMCmdDiscoverSVIDs    VDMCommand = 2
	VDMCmdDiscoverModes    VDMCommand = 3
	VDMCmdEnterMode        VDMCommand = 4
	VDMCmdExitMode         VDMCommand = 5
	VDMCmdAttention        VDMCommand = 6
	VDMCmdDPStatus         VDMCommand = 16
	VDMCmdDPConfig         VDMCommand = 17
)

func (c VDMCommand) String() string {
	switch c {
	case VDMCmdDiscoverIdentity:
		return "Disc.Ident"
	case VDMCmdDiscoverSVIDs:
		return "Disc.SVIDs"
	case VDMCmdDiscoverModes:
		return "Disc.Modes"
	case VDMCmdEnterMode:
		return "Enter.Mode"
	case VDMCmdExitMode:
		return "Exit.Mode"
	case VDMCmdAttention:
		return "Attention"
	case VDMCmdDPStatus:
		return "DP.Status"
	case VDMCmdDPConfig:
		return "DP.Config"
	default:
		return "<undefined>"
	}
}

// IDHeaderVDO is the second data object of a discover identity response.
type IDHeaderVDO uint32

// USBHost returns true if the responder is USB host capable.
func (o IDHeaderVDO) USBHost() bool {
	return o&(1<<31) != 0
}

// SetUSBHost sets the USB host capable flag.
func (o *IDHeaderVDO) SetUSBHost(b bool) {
	o.setFlag(31, b)
}

// USBDevice returns true if the responder is USB device capable.
func (o IDHeaderVDO) USBDevice() bool {
	return o&(1<<30) != 0
}

// SetUSBDevice sets the USB device capable flag.
func (o *IDHeaderVDO) SetUSBDevice(b bool) {
	o.setFlag(30, b)
}

// ProductType returns the product type code of the responder.
func (o IDHeaderVDO) ProductType() IDHProductType {
	return IDHProductType((o >> 27) & 0b111)
}

// SetProductType sets the product type code of the responder.
func (o *IDHeaderVDO) SetProductType(t IDHProductType) {
	*o = (*o & ^(IDHeaderVDO(0b111) << 27)) | IDHeaderVDO(t)<<27
}

// ModalSupport returns true if the responder supports alternate modes.
func (o IDHeaderVDO) ModalSupport() bool {
	return o&(1<<26) != 0
}

// SetModalSupport sets the modal operation supported flag.
func (o *IDHeaderVDO) SetModalSupport(b bool) {
	o.setFlag(26, b)
}

// VID returns the USB vendor ID of the responder.
func (o IDHeaderVDO) VID() uint16 {
	return uint16(o)
}

// SetVID sets the USB vendor ID of the responder.
func (o *IDHeaderVDO) SetVID(vid uint16) {
	*o = (*o & ^IDHeaderVDO(1<<16-1)) | IDHeaderVDO(vid)
}

func (o *IDHeaderVDO) setFlag(bit uint, b bool) {
	if b {
		*o |= IDHeaderVDO(1) << bit
	} else {
		*o &= ^(IDHeaderVDO(1) << bit)
	}
}

// IDHProductType is the product type code carried in an ID header VDO.
type IDHProductType uint8

// Product types.
const (
	IDHProductTypeUndefined    IDHProductType = 0
	IDHProductTypeHub          IDHProductType = 1
	IDHProductTypePeripheral   IDHProductType = 2
	IDHProductTypePassiveCable IDHProductType = 3
	IDHProductTypeActiveCable  IDHProductType = 4
	IDHProductTypeAMA          IDHProductType = 5
)

func (t IDHProductType) String() string {
	switch t {
	case IDHProductTypeHub:
		return "PDUSB.Hub"
	case IDHProductTypePeripheral:
		return "PDUSB.Periph"
	case IDHProductTypePassiveCable:
		return "Pass.Cable"
	case IDHProductTypeActiveCable:
		return "Act.Cable"
	case IDHProductTypeAMA:
		return "Alt.Md.Adapt"
	default:
		return "<undefined>"
	}
}

// ProductVDO is the fourth data object of a discover identity response.
type ProductVDO uint32

// NewProductVDO returns a product VDO with the given USB product ID and
// device release number.
func NewProductVDO(pid, bcdDevice uint16) ProductVDO {
	return ProductVDO(pid)<<16 | ProductVDO(bcdDevice)
}

// PID returns the USB product ID.
func (o ProductVDO) PID() uint16 {
	return uint16(o >> 16)
}

// BCDDevice returns the device release number in binary coded decimal.
func (o ProductVDO) BCDDevice() uint16 {
	return uint16(o)
}

// AMAVDO is the alternate mode adapter data object of a discover identity
// response from an AMA product.
type AMAVDO uint32

// HWVersion returns the hardware version of the adapter.
func (o AMAVDO) HWVersion() uint8 {
	return uint8(o >> 28)
}

// SetHWVersion sets the hardware version of the adapter.
func (o *AMAVDO) SetHWVersion(v uint8) {
	*o = (*o & ^(AMAVDO(0b1111) << 28)) | AMAVDO(v&0b1111)<<28
}

// FWVersion returns the firmware version of the adapter.
func (o AMAVDO) FWVersion() uint8 {
	return uint8((o >> 24) & 0b1111)
}

// SetFWVersion sets the firmware version of the adapter.
func (o *AMAVDO) SetFWVersion(v uint8) {
	*o = (*o & ^(AMAVDO(0b1111) << 24)) | AMAVDO(v&0b1111)<<24
}

// VconnPower returns the Vconn power requirement code of the adapter.
func (o AMAVDO) VconnPower() AMAVconnPower {
	return AMAVconnPower((o >> 5) & 0b111)
}

// SetVconnPower sets the Vconn power requirement code of the adapter.
func (o *AMAVDO) SetVconnPower(p AMAVconnPower) {
	*o = (*o & ^(AMAVDO(0b111) << 5)) | AMAVDO(p)<<5
}

// VconnRequired returns true if the adapter requires Vconn.
func (o AMAVDO) VconnRequired() bool {
	return o&(1<<4) != 0
}

// SetVconnRequired sets the Vconn required flag.
func (o *AMAVDO) SetVconnRequired(b bool) {
	o.setFlag(4, b)
}

// VbusRequired returns true if the adapter requires VBUS.
func (o AMAVDO) VbusRequired() bool {
	return o&(1<<3) != 0
}

// SetVbusRequired sets the VBUS required flag.
func (o *AMAVDO) SetVbusRequired(b bool) {
	o.setFlag(3, b)
}

// Superspeed returns the USB superspeed signaling support code.
func (o AMAVDO) Superspeed() AMASuperspeed {
	return AMASuperspeed(o & 0b111)
}

// SetSuperspeed sets the USB superspeed signaling support code.
func (o *AMAVDO) SetSuperspeed(s AMASuperspeed) {
	*o = (*o & ^AMAVDO(0b111)) | AMAVDO(s)
}

func (o *AMAVDO) setFlag(bit uint, b bool) {
	if b {
		*o |= AMAVDO(1) << bit
	} else {
		*o &= ^(AMAVDO(1) << bit)
	}
}

// AMAVconnPower is the Vconn power requirement code of an AMA VDO.
type AMAVconnPower uint8

// Vconn power requirements.
const (
	AMAVconnPower1W  AMAVconnPower = 0
	AMAVconnPower1W5 AMAVconnPower = 1
	AMAVconnPower2W  AMAVconnPower = 2
	AMAVconnPower3W  AMAVconnPower = 3
	AMAVconnPower4W  AMAVconnPower = 4
	AMAVconnPower5W  AMAVconnPower = 5
	AMAVconnPower6W  AMAVconnPower = 6
)

// Milliwatts returns the Vconn power requirement in milliwatts.
func (p AMAVconnPower) Milliwatts() uint16 {
	switch p {
	case AMAVconnPower1W:
		return 1000
	case AMAVconnPower1W5:
		return 1500
	case AMAVconnPower2W:
		return 2000
	case AMAVconnPower3W:
		return 3000
	case AMAVconnPower4W:
		return 4000
	case AMAVconnPower5W:
		return 5000
	case AMAVconnPower6W:
		return 6000
	default:
		return 0
	}
}

// AMASuperspeed is the USB superspeed signaling support code of an AMA VDO.
type AMASuperspeed uint8

// USB superspeed signaling support.
const (
	AMAUSBSSUSB20Only     AMASuperspeed = 0
	AMAUSBSSUSB31Gen1     AMASuperspeed = 1
	AMAUSBSSUSB31Gen2     AMASuperspeed = 2
	AMAUSBSSBillboardOnly AMASuperspeed = 3
)

func (s AMASuperspeed) String() string {
	switch s {
	case AMAUSBSSUSB20Only:
		return "USB2.0"
	case AMAUSBSSUSB31Gen1:
		return "USB3.1gen1"
	case AMAUSBSSUSB31Gen2:
		return "USB3.1gen2"
	case AMAUSBSSBillboardOnly:
		return "USB2.0BB"
	default:
		return "<resvd>"
	}
}

// SVIDResponseVDO packs two SVIDs into one data object of a discover SVIDs
// response. An SVID of zero marks the end of the list.
type SVIDResponseVDO uint32

// NewSVIDResponseVDO returns a data object carrying the two given SVIDs.
func NewSVIDResponseVDO(svid0, svid1 uint16) SVIDResponseVDO {
	return SVIDResponseVDO(svid0)<<16 | SVIDResponseVDO(svid1)
}

// SVID0 returns the first SVID of the pair.
func (o SVIDResponseVDO) SVID0() uint16 {
	return uint16(o >> 16)
}

// SVID1 returns the second SVID of the pair.
func (o SVIDResponseVDO) SVID1() uint16 {
	return uint16(o)
}

// DPModeVDO describes one DisplayPort alternate mode in a discover modes
// response for the DisplayPort SVID.
type DPModeVDO uint32

// UFPDPins returns the UFP_D pin assignments supported.
func (o DPModeVDO) UFPDPins() uint8 {
	return uint8(o >> 16)
}

// SetUFPDPins sets the UFP_D pin assignments supported.
func (o *DPModeVDO) SetUFPDPins(pins uint8) {
	*o = (*o & ^(DPModeVDO(0xff) << 16)) | DPModeVDO(pins)<<16
}

// DFPDPins returns the DFP_D pin assignments supported.
func (o DPModeVDO) DFPDPins() uint8 {
	return uint8(o >> 8)
}

// SetDFPDPins sets the DFP_D pin assignments supported.
func (o *DPModeVDO) SetDFPDPins(pins uint8) {
	*o = (*o & ^(DPModeVDO(0xff) << 8)) | DPModeVDO(pins)<<8
}

// USB20NotUsed returns true if USB 2.0 signaling is not used in the mode.
func (o DPModeVDO) USB20NotUsed() bool {
	return o&(1<<7) != 0
}

// SetUSB20NotUsed sets the USB 2.0 signaling not used flag.
func (o *DPModeVDO) SetUSB20NotUsed(b bool) {
	if b {
		*o |= 1 << 7
	} else {
		*o &= ^DPModeVDO(1 << 7)
	}
}

// Receptacle returns true if the port is a receptacle rather than a plug.
func (o DPModeVDO) Receptacle() bool {
	return o&(1<<6) != 0
}

// SetReceptacle sets the receptacle flag.
func (o *DPModeVDO) SetReceptacle(b bool) {
	if b {
		*o |= 1 << 6
	} else {
		*o &= ^DPModeVDO(1 << 6)
	}
}

// Signaling returns the signaling support bits of the mode.
func (o DPModeVDO) Signaling() uint8 {
	return uint8((o >> 2) & 0b1111)
}

// SetSignaling sets the signaling support bits of the mode.
func (o *DPModeVDO) SetSignaling(s uint8) {
	*o = (*o & ^(DPModeVDO(0b1111) << 2)) | DPModeVDO(s&0b1111)<<2
}

// PortCap returns the port capability of the mode.
func (o DPModeVDO) PortCap() DPPortCap {
	return DPPortCap(o & 0b11)
}

// SetPortCap sets the port capability of the mode.
func (o *DPModeVDO) SetPortCap(c DPPortCap) {
	*o = (*o & ^DPModeVDO(0b11)) | DPModeVDO(c)
}

// DisplayPort pin assignments.
const (
	DPPinA uint8 = 0x01
	DPPinB uint8 = 0x02
	DPPinC uint8 = 0x04
	DPPinD uint8 = 0x08
	DPPinE uint8 = 0x10
	DPPinF uint8 = 0x20
)

// DisplayPort signaling support bits.
const (
	DPSignalingDP13 uint8 = 0x1
	DPSignalingGen2 uint8 = 0x2
)

// DPPortCap is the port capability field of a DisplayPort mode VDO.
type DPPortCap uint8

// DisplayPort port capabilities.
const (
	DPPortCapUFPD DPPortCap = 1
	DPPortCapDFPD DPPortCap = 2
	DPPortCapBoth DPPortCap = 3
)

func (c DPPortCap) String() string {
	switch c {
	case DPPortCapUFPD:
		return "UFP_D"
	case DPPortCapDFPD:
		return "DFP_D"
	case DPPortCapBoth:
		return "DFP+UFP_D"
	default:
		return "<resvd>"
	}
}
