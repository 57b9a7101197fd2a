package tcsim

import (
	"github.com/sirupsen/logrus"

	pdsim "github.com/oxplot/go-pdsim"
)

// advanceState performs one state machine step. timerExpired is true when
// the pass was triggered by the delay timer. Transitions flip the CC/VBUS
// snapshot, stage outbound messages through the synthesizer and queue
// notifications to the port manager; follow-up work is latched rather than
// executed inline so each pass stays a single step.
//
// Must be called with the lock held.
func (s *Simulator) advanceState(timerExpired bool) {
	switch s.state {

	case StateIdle:
		// Nothing to do without a session.

	case StateSinkAttachStart:
		// A sink presents Rd on its CC line and no VBUS of its own. From
		// here on the sink only reacts to what the port manager transmits.
		s.vbusPresent = false
		s.cc1, s.cc2 = pdsim.CCRd, pdsim.CCRa
		s.notify(s.pm.CCChanged)
		s.setState(StateSinkRunning)

	case StateSinkRunning:

	case StateSourceAttachStart:
		// A source advertises 3A on its pull-up, then VBUS follows after
		// the ramp delay.
		s.cc1, s.cc2 = pdsim.CCOpen, pdsim.CCRp3A0
		s.notify(s.pm.CCChanged)
		s.setState(StateSourceVbusWait)
		s.armTimer(s.cfg.VbusRampDelay)

	case StateSourceVbusWait:
		if timerExpired {
			s.vbusPresent = true
			s.req.Add(reqVbusChange)
			s.setState(StateSourceAwaitCapSend)
			s.wake()
		}

	case StateSourceAwaitCapSend:
		// Capabilities can only be heard once the port manager turns PD
		// reception on.
		if s.pdRxEnabled {
			s.stageSourceCap()
			s.setState(StateSourceAwaitRequest)
		}

	case StateSourceAwaitRequest:
		// Stalls here until the classifier observes a request message.

	case StateSourceSendAccept:
		s.stageAccept()
		s.setState(StateSourceSendPSReady)

	case StateSourceSendPSReady:
		// The power ready announcement must not overtake the accept still
		// sitting in the delivery slot.
		if !s.req.Has(reqRxMessage) {
			s.stagePSReady()
			s.setState(StateSourceRunning)
		}

	case StateSourceRunning:

	case StateTransitionToIdle:
		s.vbusPresent = false
		s.cc1, s.cc2 = pdsim.CCOpen, pdsim.CCOpen
		s.hardReset(false)
		if s.modeReq == ModeReset {
			s.notify(s.pm.ControllerReset)
		} else {
			s.notify(s.pm.CCChanged)
		}
		logrus.Infof("sim: session ended, mode %s", ModeNone)
		s.mode = ModeNone
		s.setState(StateIdle)

	default:
		panic("tcsim: invalid simulator state")
	}
}
