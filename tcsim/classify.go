package tcsim

import (
	pdsim "github.com/oxplot/go-pdsim"
	"github.com/oxplot/go-pdsim/pdmsg"
)

// The inbound classifier inspects the message the port manager just
// transmitted and decides the simulated peer's reaction: absorb it, stage a
// reply, advance the state machine, or escalate to a hard reset. Protocol
// violations are never surfaced as errors; a real peer answers them with a
// hard reset, so this one does too. Unsupported combinations are silently
// ignored, mirroring a tolerant peer.

// processTxMessage consumes the latched transmit and returns the completion
// status to report to the port manager.
//
// Must be called with the lock held.
func (s *Simulator) processTxMessage() pdsim.TxStatus {
	switch s.mode {
	case ModeSink:
		s.processTxForSink()
		return pdsim.TxSuccess
	case ModeSource:
		s.processTxForSource()
		return pdsim.TxSuccess
	default:
		return pdsim.TxFailed
	}
}

func (s *Simulator) processTxForSink() {
	if s.txType == pdsim.TxHardReset {
		// The transmit is the reset itself, not something to react to.
		s.hardReset(false)
		return
	}
	if s.txType != pdsim.TxSOP {
		return
	}

	m := s.txMsg
	if !m.IsData() {
		switch m.Type() {
		case pdmsg.TypeGoodCRC, pdmsg.TypeGotoMin, pdmsg.TypeAccept,
			pdmsg.TypePing, pdmsg.TypePSReady, pdmsg.TypeWait:
			// Absorbed without reaction.
		case pdmsg.TypeReject, pdmsg.TypeGetSourceCap,
			pdmsg.TypeDRSwap, pdmsg.TypePRSwap, pdmsg.TypeVconnSwap:
			s.hardReset(true)
		case pdmsg.TypeGetSinkCap:
			s.stageSinkCap()
		case pdmsg.TypeSoftReset:
			s.rxID = 0
		}
		return
	}

	switch m.Type() {
	case pdmsg.TypeSourceCap:
		s.recordCapPDOTypes(m)
		s.stageSinkRequest()
	case pdmsg.TypeRequest, pdmsg.TypeSinkCap:
		// A sink never receives these.
		s.hardReset(true)
	case pdmsg.TypeBIST:
	case pdmsg.TypeVendorDefined:
		s.processTxVDMForSink(m)
	}
}

func (s *Simulator) processTxForSource() {
	if s.txType == pdsim.TxHardReset {
		s.hardReset(false)
		return
	}
	if s.txType != pdsim.TxSOP {
		return
	}

	m := s.txMsg
	if !m.IsData() {
		switch m.Type() {
		case pdmsg.TypeGoodCRC, pdmsg.TypeGotoMin,
			pdmsg.TypePing, pdmsg.TypePSReady, pdmsg.TypeWait:
		case pdmsg.TypeAccept, pdmsg.TypeReject, pdmsg.TypeGetSinkCap,
			pdmsg.TypeDRSwap, pdmsg.TypePRSwap, pdmsg.TypeVconnSwap:
			s.hardReset(true)
		case pdmsg.TypeGetSourceCap:
			s.stageSourceCap()
		case pdmsg.TypeSoftReset:
			s.rxID = 0
		}
		return
	}

	switch m.Type() {
	case pdmsg.TypeSourceCap, pdmsg.TypeSinkCap:
		// Capabilities from the wrong role.
		s.recordCapPDOTypes(m)
		s.hardReset(true)
	case pdmsg.TypeRequest:
		// The request's validity is not checked; a minimal source accepts
		// whatever a generic port manager asks for.
		if s.state == StateSourceAwaitRequest {
			s.setState(StateSourceSendAccept)
		}
	case pdmsg.TypeBIST:
	case pdmsg.TypeVendorDefined:
		// The source role answers no VDMs.
	}
}

// processTxVDMForSink answers the alternate mode discovery sequence.
// Only structured VDMs of the initiation command type get a response;
// ACK/NAK/BUSY echoes and unstructured VDMs are ignored.
func (s *Simulator) processTxVDMForSink(m pdmsg.Message) {
	h := pdmsg.VDMHeader(m.Data[0])
	if !h.IsStructured() || h.CommandType() != pdmsg.VDMCmdTypeInit {
		return
	}
	switch h.Command() {
	case pdmsg.VDMCmdDiscoverIdentity:
		s.stageIdentityAck()
	case pdmsg.VDMCmdDiscoverSVIDs:
		s.stageSVIDsAck()
	case pdmsg.VDMCmdDiscoverModes:
		s.stageModesAck(h.SVID())
	}
}
