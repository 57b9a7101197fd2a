package tcsim

import (
	"github.com/oxplot/go-pdsim/pdmsg"
)

// The message synthesizer builds the outbound messages of the simulated
// peer. Field values are fixed and deterministic; they describe a DP capable
// alternate mode adapter when sinking and a single 5V supply when sourcing,
// which is enough to satisfy a generic port manager's negotiation and
// discovery sequences.

// nextPeerID consumes one value of the simulated peer's 3-bit message ID
// counter.
func (s *Simulator) nextPeerID() uint8 {
	id := s.rxID
	s.rxID = (s.rxID + 1) % (pdmsg.MaxMessageID + 1)
	return id
}

// newPeerMessage builds a message header for the simulated peer in the given
// role pair.
func (s *Simulator) newPeerMessage(t pdmsg.Type, pr pdmsg.PowerRole, dr pdmsg.DataRole, count uint8) pdmsg.Message {
	var m pdmsg.Message
	m.SetType(t)
	m.SetRevision(pdmsg.Revision20)
	m.SetPowerRole(pr)
	m.SetDataRole(dr)
	m.SetID(s.nextPeerID())
	m.SetDataObjectCount(count)
	return m
}

// stage places m in the outbound slot and latches it for delayed delivery.
func (s *Simulator) stage(m pdmsg.Message) {
	s.rxMsg = m
	s.req.Add(reqRxMessage)
}

// stageSinkRequest stages the sink's reaction to source capabilities: a
// fixed supply request for object position 1 at 1.5A.
func (s *Simulator) stageSinkRequest() {
	m := s.newPeerMessage(pdmsg.TypeRequest, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP, 1)
	var rdo pdmsg.RequestDO
	rdo.SetSelectedObjectPosition(1)
	rdo.SetFixedOperatingCurrent(1500)
	rdo.SetFixedMaxOperatingCurrent(1500)
	rdo.SetUSBComm(true)
	m.Data[0] = uint32(rdo)
	s.stage(m)
}

// stageSinkCap stages the sink's capability report: a single 5V 2A profile.
func (s *Simulator) stageSinkCap() {
	m := s.newPeerMessage(pdmsg.TypeSinkCap, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP, 1)
	pdo := pdmsg.NewFixedSupplyPDO()
	pdo.SetVoltage(5000)
	pdo.SetMaxCurrent(2000)
	pdo.SetUSBComm(true)
	m.Data[0] = uint32(pdo)
	s.stage(m)
}

// stageSourceCap stages the source's capability advertisement: one fixed 5V
// 3A supply with the dual role, external power, USB comm and data swap flags
// set.
func (s *Simulator) stageSourceCap() {
	m := s.newPeerMessage(pdmsg.TypeSourceCap, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 1)
	pdo := pdmsg.NewFixedSupplyPDO()
	pdo.SetVoltage(5000)
	pdo.SetMaxCurrent(3000)
	pdo.SetDualRolePower(true)
	pdo.SetExternalPower(true)
	pdo.SetUSBComm(true)
	pdo.SetDataRoleSwap(true)
	m.Data[0] = uint32(pdo)
	s.recordCapPDOTypes(m)
	s.stage(m)
}

// stageAccept stages the source's accept control message.
func (s *Simulator) stageAccept() {
	s.stage(s.newPeerMessage(pdmsg.TypeAccept, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 0))
}

// stagePSReady stages the source's power supply ready control message.
func (s *Simulator) stagePSReady() {
	s.stage(s.newPeerMessage(pdmsg.TypePSReady, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 0))
}

// newSVDMHeader builds a structured VDM header data object.
func newSVDMHeader(svid uint16, ct pdmsg.VDMCommandType, cmd pdmsg.VDMCommand) pdmsg.VDMHeader {
	var h pdmsg.VDMHeader
	h.SetSVID(svid)
	h.SetStructured(true)
	h.SetCommandType(ct)
	h.SetCommand(cmd)
	return h
}

// stageIdentityAck stages the discover identity response: an alternate mode
// adapter with modal support, requiring Vconn and VBUS, billboard only
// superspeed.
func (s *Simulator) stageIdentityAck() {
	m := s.newPeerMessage(pdmsg.TypeVendorDefined, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP, 5)
	m.Data[0] = uint32(newSVDMHeader(pdmsg.SIDPowerDelivery, pdmsg.VDMCmdTypeACK, pdmsg.VDMCmdDiscoverIdentity))
	var idh pdmsg.IDHeaderVDO
	idh.SetUSBDevice(true)
	idh.SetProductType(pdmsg.IDHProductTypeAMA)
	idh.SetModalSupport(true)
	idh.SetVID(0x2109)
	m.Data[1] = uint32(idh)
	m.Data[2] = 0 // cert stat XID
	m.Data[3] = uint32(pdmsg.NewProductVDO(0x0101, 0x0001))
	var ama pdmsg.AMAVDO
	ama.SetVconnPower(pdmsg.AMAVconnPower1W5)
	ama.SetVconnRequired(true)
	ama.SetVbusRequired(true)
	ama.SetSuperspeed(pdmsg.AMAUSBSSBillboardOnly)
	m.Data[4] = uint32(ama)
	s.stage(m)
}

// stageSVIDsAck stages the discover SVIDs response advertising the
// DisplayPort alternate mode.
func (s *Simulator) stageSVIDsAck() {
	m := s.newPeerMessage(pdmsg.TypeVendorDefined, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP, 2)
	m.Data[0] = uint32(newSVDMHeader(pdmsg.SIDPowerDelivery, pdmsg.VDMCmdTypeACK, pdmsg.VDMCmdDiscoverSVIDs))
	m.Data[1] = uint32(pdmsg.NewSVIDResponseVDO(pdmsg.SIDDisplayPort, 0))
	s.stage(m)
}

// stageModesAck stages the discover modes response for the DisplayPort SVID:
// one UFP_D capable mode with pin assignment C on a receptacle. Discovery
// for any other SVID is left unanswered.
func (s *Simulator) stageModesAck(svid uint16) {
	if svid != pdmsg.SIDDisplayPort {
		return
	}
	m := s.newPeerMessage(pdmsg.TypeVendorDefined, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP, 2)
	m.Data[0] = uint32(newSVDMHeader(pdmsg.SIDDisplayPort, pdmsg.VDMCmdTypeACK, pdmsg.VDMCmdDiscoverModes))
	var dp pdmsg.DPModeVDO
	dp.SetDFPDPins(pdmsg.DPPinC)
	dp.SetReceptacle(true)
	dp.SetSignaling(pdmsg.DPSignalingDP13)
	dp.SetPortCap(pdmsg.DPPortCapUFPD)
	m.Data[1] = uint32(dp)
	s.stage(m)
}
