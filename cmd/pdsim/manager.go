package main

import (
	"github.com/sirupsen/logrus"

	pdsim "github.com/oxplot/go-pdsim"
	"github.com/oxplot/go-pdsim/pdmsg"
)

// demoManager is a minimal port manager wired to the simulator for
// demonstration. It attaches in the role opposite the simulated partner,
// negotiates a power contract and, as a DFP, walks the alternate mode
// discovery sequence. It is not a conforming policy engine; it exists so the
// simulator has somebody to talk to.
//
// All callbacks arrive serialized on the simulator's dispatcher goroutine,
// so no locking is needed.
type demoManager struct {
	pc pdsim.PortController

	txID     uint8
	sourcing bool
	attached bool
}

func (d *demoManager) transmit(m pdmsg.Message) {
	m.SetRevision(pdmsg.Revision20)
	if d.sourcing {
		m.SetPowerRole(pdmsg.PowerRoleSource)
		m.SetDataRole(pdmsg.DataRoleDFP)
	} else {
		m.SetPowerRole(pdmsg.PowerRoleSink)
		m.SetDataRole(pdmsg.DataRoleUFP)
	}
	m.SetID(d.txID)
	d.txID = (d.txID + 1) % (pdmsg.MaxMessageID + 1)
	d.pc.Transmit(pdsim.TxSOP, &m)
}

func (d *demoManager) CCChanged() {
	cc1, cc2 := d.pc.GetCC()
	logrus.Infof("pm: cc changed (%s, %s)", cc1, cc2)

	switch {
	case cc1 == pdsim.CCRd || cc2 == pdsim.CCRd:
		// Partner presents Rd: it sinks, we source.
		d.attach(true, cc2 == pdsim.CCRd)
		d.pc.SetVbus(true, false)
		var m pdmsg.Message
		m.SetType(pdmsg.TypeSourceCap)
		m.SetDataObjectCount(1)
		pdo := pdmsg.NewFixedSupplyPDO()
		pdo.SetVoltage(5000)
		pdo.SetMaxCurrent(3000)
		pdo.SetUSBComm(true)
		m.Data[0] = uint32(pdo)
		d.transmit(m)
	case cc1 >= pdsim.CCRpDefault || cc2 >= pdsim.CCRpDefault:
		// Partner presents Rp: it sources, we sink and wait for its
		// capability advertisement.
		d.attach(false, cc2 >= pdsim.CCRpDefault)
	default:
		d.detach()
	}
}

func (d *demoManager) attach(sourcing, cc2Active bool) {
	d.sourcing = sourcing
	d.attached = true
	d.txID = 0
	pol := pdsim.PolarityCC1
	if cc2Active {
		pol = pdsim.PolarityCC2
	}
	d.pc.SetPolarity(pol)
	if sourcing {
		d.pc.SetRoles(true, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP)
		d.pc.SetVconn(true)
	} else {
		d.pc.SetRoles(true, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP)
	}
	d.pc.SetPDRx(true)
	logrus.Infof("pm: attached, sourcing=%t polarity=%s", sourcing, pol)
}

func (d *demoManager) detach() {
	if !d.attached {
		return
	}
	d.attached = false
	d.pc.SetPDRx(false)
	d.pc.SetVconn(false)
	d.pc.SetVbus(false, false)
	d.pc.SetRoles(false, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP)
	logrus.Infof("pm: detached")
}

func (d *demoManager) VbusChanged() {
	logrus.Infof("pm: vbus changed, present=%t", d.pc.GetVbus())
}

func (d *demoManager) MessageReceived(m pdmsg.Message) {
	if m.IsData() {
		switch m.Type() {
		case pdmsg.TypeSourceCap:
			d.requestPower(m)
		case pdmsg.TypeRequest:
			d.acceptRequest()
		case pdmsg.TypeVendorDefined:
			d.continueDiscovery(m)
		}
		return
	}
	switch m.Type() {
	case pdmsg.TypeAccept:
		logrus.Infof("pm: contract accepted")
	case pdmsg.TypePSReady:
		logrus.Infof("pm: power ready")
	}
}

// requestPower answers a capability advertisement with a request for the
// first profile.
func (d *demoManager) requestPower(cap pdmsg.Message) {
	pdo := pdmsg.FixedSupplyPDO(cap.Data[0])
	logrus.Infof("pm: source offers %dmV %dmA, requesting", pdo.Voltage(), pdo.MaxCurrent())
	var m pdmsg.Message
	m.SetType(pdmsg.TypeRequest)
	m.SetDataObjectCount(1)
	var rdo pdmsg.RequestDO
	rdo.SetSelectedObjectPosition(1)
	rdo.SetFixedOperatingCurrent(pdo.MaxCurrent())
	rdo.SetFixedMaxOperatingCurrent(pdo.MaxCurrent())
	m.Data[0] = uint32(rdo)
	d.transmit(m)
}

// acceptRequest grants whatever the partner asked for, announces power ready
// and then starts alternate mode discovery as the DFP.
func (d *demoManager) acceptRequest() {
	logrus.Infof("pm: partner requested power, accepting")
	var m pdmsg.Message
	m.SetType(pdmsg.TypeAccept)
	d.transmit(m)
	m = pdmsg.Message{}
	m.SetType(pdmsg.TypePSReady)
	d.transmit(m)
	d.discover(pdmsg.SIDPowerDelivery, pdmsg.VDMCmdDiscoverIdentity)
}

func (d *demoManager) discover(svid uint16, cmd pdmsg.VDMCommand) {
	var m pdmsg.Message
	m.SetType(pdmsg.TypeVendorDefined)
	m.SetDataObjectCount(1)
	var h pdmsg.VDMHeader
	h.SetSVID(svid)
	h.SetStructured(true)
	h.SetCommandType(pdmsg.VDMCmdTypeInit)
	h.SetCommand(cmd)
	m.Data[0] = uint32(h)
	d.transmit(m)
}

// continueDiscovery chains the next discovery step off each ACK.
func (d *demoManager) continueDiscovery(m pdmsg.Message) {
	h := pdmsg.VDMHeader(m.Data[0])
	if !h.IsStructured() || h.CommandType() != pdmsg.VDMCmdTypeACK {
		return
	}
	switch h.Command() {
	case pdmsg.VDMCmdDiscoverIdentity:
		idh := pdmsg.IDHeaderVDO(m.Data[1])
		logrus.Infof("pm: partner identity VID=0x%04x type=%s", idh.VID(), idh.ProductType())
		if idh.ModalSupport() {
			d.discover(pdmsg.SIDPowerDelivery, pdmsg.VDMCmdDiscoverSVIDs)
		}
	case pdmsg.VDMCmdDiscoverSVIDs:
		svids := pdmsg.SVIDResponseVDO(m.Data[1])
		logrus.Infof("pm: partner SVIDs 0x%04x 0x%04x", svids.SVID0(), svids.SVID1())
		if svids.SVID0() != 0 {
			d.discover(svids.SVID0(), pdmsg.VDMCmdDiscoverModes)
		}
	case pdmsg.VDMCmdDiscoverModes:
		mode := pdmsg.DPModeVDO(m.Data[1])
		logrus.Infof("pm: partner mode SVID=0x%04x cap=%s", h.SVID(), mode.PortCap())
	}
}

func (d *demoManager) TransmitComplete(status pdsim.TxStatus) {
	if status != pdsim.TxSuccess {
		logrus.Warnf("pm: transmit failed: %s", status)
	}
}

func (d *demoManager) HardResetReceived() {
	logrus.Warnf("pm: hard reset from partner")
	d.txID = 0
}

func (d *demoManager) ControllerReset() {
	logrus.Warnf("pm: controller reset")
	d.detach()
}
