// Package pdtext renders USB PD messages as compact text for protocol
// traces. Each message becomes a header line followed by one line per data
// object. Request data objects reference capability positions, so callers
// pass the PDO types of the last seen capability message to resolve them.
package pdtext

import (
	"fmt"
	"io"

	pdsim "github.com/oxplot/go-pdsim"
	"github.com/oxplot/go-pdsim/pdmsg"
)

// Fprint writes a text rendering of m to w. t selects the framing: for
// non-SOP* types only the type name is written as the message content is
// irrelevant. capTypes holds the PDO type of each object in the most recent
// capability message, used to decode request objects; it may be nil.
func Fprint(w io.Writer, t pdsim.TxType, m pdmsg.Message, capTypes []pdmsg.PDOType) {
	if !t.IsSOPStar() {
		fmt.Fprintf(w, "%s\n", t)
		return
	}
	if m.Revision() != pdmsg.Revision20 {
		fmt.Fprintf(w, "%s:UNSUPPORTED_REV[0x%04x]\n", t, m.Header)
		return
	}
	fmt.Fprintf(w, "%s:%s[%d]:%s:%s\n", t, typeName(m), m.ID(), m.PowerRole(), m.DataRole())
	if !m.IsData() {
		return
	}
	switch m.Type() {
	case pdmsg.TypeSourceCap, pdmsg.TypeSinkCap:
		fprintCaps(w, m)
	case pdmsg.TypeRequest:
		fprintRequest(w, m, capTypes)
	case pdmsg.TypeVendorDefined:
		fprintVDM(w, m)
	default:
		fprintRaw(w, m.Data[:m.DataObjectCount()])
	}
}

// typeName returns the wire name of the message type, resolving the control
// and data namespaces through the object count.
func typeName(m pdmsg.Message) string {
	if m.IsData() {
		switch m.Type() {
		case pdmsg.TypeSourceCap:
			return "SOURCE_CAP"
		case pdmsg.TypeRequest:
			return "REQUEST"
		case pdmsg.TypeBIST:
			return "BIST"
		case pdmsg.TypeSinkCap:
			return "SINK_CAP"
		case pdmsg.TypeVendorDefined:
			return "VDM"
		}
		return fmt.Sprintf("DATA<0x%02x>", uint8(m.Type()))
	}
	switch m.Type() {
	case pdmsg.TypeGoodCRC:
		return "GOOD_CRC"
	case pdmsg.TypeGotoMin:
		return "GOTO_MIN"
	case pdmsg.TypeAccept:
		return "ACCEPT"
	case pdmsg.TypeReject:
		return "REJECT"
	case pdmsg.TypePing:
		return "PING"
	case pdmsg.TypePSReady:
		return "PS_RDY"
	case pdmsg.TypeGetSourceCap:
		return "GET_SOURCE_CAP"
	case pdmsg.TypeGetSinkCap:
		return "GET_SINK_CAP"
	case pdmsg.TypeDRSwap:
		return "DR_SWAP"
	case pdmsg.TypePRSwap:
		return "PR_SWAP"
	case pdmsg.TypeVconnSwap:
		return "VCONN_SWAP"
	case pdmsg.TypeWait:
		return "WAIT"
	case pdmsg.TypeSoftReset:
		return "SOFT_RESET"
	}
	return fmt.Sprintf("CTRL<0x%02x>", uint8(m.Type()))
}

func fprintCaps(w io.Writer, m pdmsg.Message) {
	for i, d := range m.Data[:m.DataObjectCount()] {
		switch pdmsg.PDO(d).Type() {
		case pdmsg.PDOTypeFixedSupply:
			f := pdmsg.FixedSupplyPDO(d)
			if i == 0 {
				fmt.Fprintf(w, "- FIX:DRP=%d:US=%d:EP=%d:CC=%d:DRD=%d:PC=%d:%dmV:%dmA\n",
					b2i(f.DualRolePower()), b2i(f.USBSuspend()),
					b2i(f.ExternalPower()), b2i(f.USBComm()),
					b2i(f.DataRoleSwap()), f.PeakCurrent(),
					f.Voltage(), f.MaxCurrent())
			} else {
				fmt.Fprintf(w, "- FIX:PC=%d:%dmV:%dmA\n",
					f.PeakCurrent(), f.Voltage(), f.MaxCurrent())
			}
		case pdmsg.PDOTypeBattery:
			b := pdmsg.BatteryPDO(d)
			fmt.Fprintf(w, "- BAT:%dmV:%dmV:%dmW\n",
				b.MaxVoltage(), b.MinVoltage(), b.MaxPower())
		case pdmsg.PDOTypeVariableSupply:
			v := pdmsg.VariableSupplyPDO(d)
			fmt.Fprintf(w, "- VAR:%dmV:%dmV:%dmA\n",
				v.MaxVoltage(), v.MinVoltage(), v.MaxCurrent())
		default:
			fmt.Fprintf(w, "- 0x%08x\n", d)
		}
	}
}

func fprintRequest(w io.Writer, m pdmsg.Message, capTypes []pdmsg.PDOType) {
	for _, d := range m.Data[:m.DataObjectCount()] {
		r := pdmsg.RequestDO(d)
		pos := r.SelectedObjectPosition()
		// Position is 1-based into the referenced capability message.
		pt := pdmsg.PDOTypeAugmented
		if pos >= 1 && int(pos) <= len(capTypes) {
			pt = capTypes[pos-1]
		}
		switch pt {
		case pdmsg.PDOTypeFixedSupply, pdmsg.PDOTypeVariableSupply:
			fmt.Fprintf(w, "- REQ<%d>:GB=%d:CM=%d:CC=%d:NS=%d:%dmA:%dmA\n",
				pos, b2i(r.GiveBack()), b2i(r.CapabilityMismatch()),
				b2i(r.USBComm()), b2i(r.NoUSBSuspend()),
				r.FixedOperatingCurrent(), r.FixedMaxOperatingCurrent())
		case pdmsg.PDOTypeBattery:
			fmt.Fprintf(w, "- REQ<%d>:GB=%d:CM=%d:CC=%d:NS=%d:%dmW:%dmW\n",
				pos, b2i(r.GiveBack()), b2i(r.CapabilityMismatch()),
				b2i(r.USBComm()), b2i(r.NoUSBSuspend()),
				r.BatteryOperatingPower(), r.BatteryMaxOperatingPower())
		default:
			fmt.Fprintf(w, "- 0x%08x\n", d)
		}
	}
}

func fprintVDM(w io.Writer, m pdmsg.Message) {
	n := m.DataObjectCount()
	if n == 0 {
		return
	}
	h := pdmsg.VDMHeader(m.Data[0])
	if !h.IsStructured() {
		fmt.Fprintf(w, "- SVID=0x%04x:S=0:CMD=0x%04x\n", h.SVID(), uint32(h)&0x7fff)
		fprintRaw(w, m.Data[1:n])
		return
	}
	fmt.Fprintf(w, "- SVID=0x%04x:S=1:V=%d:OP=%d:CT=%s:C=%s\n",
		h.SVID(), h.Version(), h.ObjectPosition(), h.CommandType(), h.Command())
	for i, d := range m.Data[1:n] {
		if !fprintVDO(w, h, i+1, d) {
			fmt.Fprintf(w, "- 0x%08x\n", d)
		}
	}
}

// fprintVDO renders the idx'th payload object of a structured VDM, where idx
// counts from 1 past the VDM header. Returns false when the object has no
// decoding for the command.
func fprintVDO(w io.Writer, h pdmsg.VDMHeader, idx int, d uint32) bool {
	switch h.Command() {
	case pdmsg.VDMCmdDiscoverIdentity:
		switch idx {
		case 1:
			o := pdmsg.IDHeaderVDO(d)
			fmt.Fprintf(w, "- UH=%d:UD=%d:PT=%s:MO=%d:VID=0x%04x\n",
				b2i(o.USBHost()), b2i(o.USBDevice()), o.ProductType(),
				b2i(o.ModalSupport()), o.VID())
			return true
		case 2:
			fmt.Fprintf(w, "- XID=0x%08x\n", d)
			return true
		case 3:
			o := pdmsg.ProductVDO(d)
			fmt.Fprintf(w, "- PID=0x%04x:bcdDev=0x%04x\n", o.PID(), o.BCDDevice())
			return true
		case 4:
			o := pdmsg.AMAVDO(d)
			fmt.Fprintf(w, "- HW=%d:FW=%d:VCP=%dmW:VCR=%d:VBR=%d:SSS=%s\n",
				o.HWVersion(), o.FWVersion(), o.VconnPower().Milliwatts(),
				b2i(o.VconnRequired()), b2i(o.VbusRequired()), o.Superspeed())
			return true
		}
	case pdmsg.VDMCmdDiscoverSVIDs:
		o := pdmsg.SVIDResponseVDO(d)
		fmt.Fprintf(w, "- SVID0=0x%04x:SVID1=0x%04x\n", o.SVID0(), o.SVID1())
		return true
	case pdmsg.VDMCmdDiscoverModes:
		if h.SVID() != pdmsg.SIDDisplayPort {
			return false
		}
		o := pdmsg.DPModeVDO(d)
		fmt.Fprintf(w, "- UFP_D=0x%02x:DFP_D=0x%02x:U2=%d:R=%d:S=0x%x:CAP=%s\n",
			o.UFPDPins(), o.DFPDPins(), b2i(o.USB20NotUsed()),
			b2i(o.Receptacle()), o.Signaling(), o.PortCap())
		return true
	}
	return false
}

func fprintRaw(w io.Writer, data []uint32) {
	for _, d := range data {
		fmt.Fprintf(w, "- 0x%08x\n", d)
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
