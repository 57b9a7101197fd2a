package tcsim

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	pdsim "github.com/oxplot/go-pdsim"
	"github.com/oxplot/go-pdsim/internal/syncutil"
	"github.com/oxplot/go-pdsim/pdmsg"
	"github.com/oxplot/go-pdsim/pdtext"
)

// Simulator simulates a single USB PD port partner behind the
// pdsim.PortController facade. One Simulator owns one simulated port; create
// a new one per port manager under test.
//
// None of the facade methods block and none execute simulator logic
// directly: they record intent under the lock, latch a request and wake the
// dispatcher. All observable effects arrive through the PortManager
// callbacks, in deterministic order.
type Simulator struct {
	pm  pdsim.PortManager
	cfg Config

	// kick wakes the dispatcher; buffered so producers never block and
	// bursts coalesce into one pass.
	kick chan struct{}

	// mu guards every field below. It is the only lock in the simulator and
	// is held for the duration of each facade call and each dispatcher pass.
	mu syncutil.Mutex

	mode    Mode // active mode, returns to ModeNone when idle is reached
	modeReq Mode // last mode requested by the operator
	state   SimState
	req     latch

	cc1, cc2    pdsim.CCStatus
	vbusPresent bool
	polarity    pdsim.Polarity
	vconn       bool
	attached    bool
	powerRole   pdmsg.PowerRole
	dataRole    pdmsg.DataRole
	pdRxEnabled bool
	ccPull      pdsim.CCStatus

	txType pdsim.TxType  // framing of the last message the port manager transmitted
	txMsg  pdmsg.Message // the message itself, awaiting classification
	rxMsg  pdmsg.Message // next message to deliver as if received from the peer
	rxID   uint8         // message ID counter of the simulated peer

	// Power data object kinds by object position, recorded whenever a
	// capability message passes through in either direction. A request data
	// object only carries an index, so decoding one requires this cache.
	srcCapPDOTypes [pdmsg.MaxDataObjects]pdmsg.PDOType

	timer      *time.Timer
	timerGen   uint64 // invalidates callbacks of replaced timers
	timerFired bool

	// Callbacks staged during a pass; delivered in order after the lock is
	// released so the port manager may call back into the facade.
	notifs []func()
}

var _ pdsim.PortController = (*Simulator)(nil)

// New creates a simulator that reports to the given port manager. The
// simulator is inert until Run is called and a mode is selected.
func New(pm pdsim.PortManager, cfg Config) *Simulator {
	return &Simulator{
		pm:   pm,
		cfg:  cfg.withDefaults(),
		kick: make(chan struct{}, 1),
	}
}

// Run executes the event dispatcher until ctx is done. All simulator logic
// runs on the calling goroutine; only one call to Run must be in progress at
// any given time.
func (s *Simulator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.timer != nil {
				s.timer.Stop()
			}
			s.timerGen++
			s.mu.Unlock()
			return
		case <-s.kick:
			s.dispatch()
		}
	}
}

// wake requests a dispatcher pass. Safe to call with or without the lock.
func (s *Simulator) wake() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// dispatch is a single pass of the event dispatcher. Latched requests are
// processed in fixed order: mode change, VBUS change, inbound message,
// delivery of an expired staged message, then one state machine step.
func (s *Simulator) dispatch() {
	s.mu.Lock()

	fired := s.timerFired
	s.timerFired = false

	if s.req.Has(reqModeChange) {
		s.req.Clear(reqModeChange)
		s.applyModeChange()
	}

	if s.req.Has(reqVbusChange) {
		s.req.Clear(reqVbusChange)
		s.notify(s.pm.VbusChanged)
	}

	if s.req.Has(reqTxMessage) {
		s.req.Clear(reqTxMessage)
		status := s.processTxMessage()
		s.notify(func() { s.pm.TransmitComplete(status) })
	}

	if fired && s.req.Has(reqRxMessage) {
		s.req.Clear(reqRxMessage)
		m := s.rxMsg
		s.logMessage("deliver", pdsim.TxSOP, m)
		s.notify(func() { s.pm.MessageReceived(m) })
	}

	s.advanceState(fired)

	if s.req.Has(reqRxMessage) {
		s.armTimer(s.cfg.ResponseDelay)
	}

	notifs := s.notifs
	s.notifs = nil
	s.mu.Unlock()

	for _, fn := range notifs {
		fn()
	}
}

// notify stages a port manager callback for delivery after the current pass
// releases the lock. Must be called with the lock held.
func (s *Simulator) notify(fn func()) {
	s.notifs = append(s.notifs, fn)
}

// armTimer schedules a dispatcher pass with the timer-expired flag set after
// d. A pending timer is replaced, never stacked. Must be called with the
// lock held.
func (s *Simulator) armTimer(d time.Duration) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	s.timerFired = false
	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		if gen == s.timerGen {
			s.timerFired = true
		}
		s.mu.Unlock()
		s.wake()
	})
}

// applyModeChange arms a new session or tears down the current one. A new
// role is accepted only from idle; a session must pass through
// StateTransitionToIdle before another can start, so sessions never overlap.
func (s *Simulator) applyModeChange() {
	switch s.modeReq {
	case ModeNone, ModeReset:
		if s.mode != ModeNone {
			s.setState(StateTransitionToIdle)
		}
	case ModeSink:
		if s.mode == ModeNone {
			s.mode = ModeSink
			logrus.Infof("sim: mode %s", s.mode)
			s.setState(StateSinkAttachStart)
		}
	case ModeSource:
		if s.mode == ModeNone {
			s.mode = ModeSource
			logrus.Infof("sim: mode %s", s.mode)
			s.setState(StateSourceAttachStart)
		}
	default:
		panic("tcsim: invalid mode request")
	}
}

// hardReset clears all pending requests and the peer message ID counter. If
// the reset originates from the simulated peer, the port manager is told;
// a reset caused by the port manager's own hard reset transmit is silent.
// Must be called with the lock held.
func (s *Simulator) hardReset(fromPeer bool) {
	s.req = 0
	s.rxID = 0
	if fromPeer {
		logrus.Infof("sim: hard reset from simulated peer")
		s.notify(s.pm.HardResetReceived)
	}
}

func (s *Simulator) setState(next SimState) {
	if next == s.state {
		return
	}
	logrus.Debugf("sim: state %s -> %s", s.state, next)
	s.state = next
}

// logMessage renders a message through pdtext at debug level. Must be called
// with the lock held as it reads the PDO type cache.
func (s *Simulator) logMessage(dir string, t pdsim.TxType, m pdmsg.Message) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	var b strings.Builder
	pdtext.Fprint(&b, t, m, s.srcCapPDOTypes[:])
	for _, line := range strings.Split(strings.TrimRight(b.String(), "\n"), "\n") {
		logrus.Debugf("sim: %s %s", dir, line)
	}
}

// recordCapPDOTypes refreshes the PDO type cache from a capability message.
func (s *Simulator) recordCapPDOTypes(m pdmsg.Message) {
	for i, d := range m.Data[:m.DataObjectCount()] {
		s.srcCapPDOTypes[i] = pdmsg.PDO(d).Type()
	}
}

// SetMode requests a simulator mode change on behalf of the operator. The
// request is applied asynchronously by the dispatcher.
func (s *Simulator) SetMode(m Mode) {
	logrus.Infof("sim: mode request %s", m)
	s.mu.Lock()
	s.modeReq = m
	s.req.Add(reqModeChange)
	s.mu.Unlock()
	s.wake()
}

// SetModeString parses and applies an operator mode word. It returns
// ErrUnknownMode without side effects for an unrecognized word.
func (s *Simulator) SetModeString(v string) error {
	m, err := ParseMode(v)
	if err != nil {
		return err
	}
	s.SetMode(m)
	return nil
}

// Mode returns the currently active mode.
func (s *Simulator) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// State returns the current simulation state.
func (s *Simulator) State() SimState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Init implements pdsim.PortController.
func (s *Simulator) Init() error {
	logrus.Debugf("sim: init")
	return nil
}

// GetVbus implements pdsim.PortController.
func (s *Simulator) GetVbus() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	logrus.Debugf("sim: get_vbus = %t", s.vbusPresent)
	return s.vbusPresent
}

// SetVbus implements pdsim.PortController. VBUS is considered present when
// either enable is set; a change is latched only if presence actually
// differs from the prior value.
func (s *Simulator) SetVbus(source, sink bool) {
	logrus.Debugf("sim: set_vbus(source=%t, sink=%t)", source, sink)
	s.mu.Lock()
	present := source || sink
	if present != s.vbusPresent {
		s.vbusPresent = present
		s.req.Add(reqVbusChange)
		s.wake()
	}
	s.mu.Unlock()
}

// SetCC implements pdsim.PortController. The simulated partner dictates the
// CC line states, so the requested pull is only recorded.
func (s *Simulator) SetCC(pull pdsim.CCStatus) {
	logrus.Debugf("sim: set_cc(%s)", pull)
	s.mu.Lock()
	s.ccPull = pull
	s.mu.Unlock()
}

// GetCC implements pdsim.PortController.
func (s *Simulator) GetCC() (cc1, cc2 pdsim.CCStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logrus.Debugf("sim: get_cc = (%s, %s)", s.cc1, s.cc2)
	return s.cc1, s.cc2
}

// SetPolarity implements pdsim.PortController.
func (s *Simulator) SetPolarity(p pdsim.Polarity) {
	logrus.Debugf("sim: set_polarity(%s)", p)
	s.mu.Lock()
	s.polarity = p
	s.mu.Unlock()
}

// SetVconn implements pdsim.PortController.
func (s *Simulator) SetVconn(enable bool) {
	logrus.Debugf("sim: set_vconn(%t)", enable)
	s.mu.Lock()
	s.vconn = enable
	s.mu.Unlock()
}

// SetRoles implements pdsim.PortController.
func (s *Simulator) SetRoles(attached bool, power pdmsg.PowerRole, data pdmsg.DataRole) {
	logrus.Debugf("sim: set_roles(attached=%t, %s, %s)", attached, power, data)
	s.mu.Lock()
	s.attached = attached
	s.powerRole = power
	s.dataRole = data
	s.mu.Unlock()
}

// SetPDRx implements pdsim.PortController. A dispatch is latched only on an
// actual state change; the source role stalls before sending capabilities
// until reception is enabled.
func (s *Simulator) SetPDRx(enable bool) {
	logrus.Debugf("sim: set_pd_rx(%t)", enable)
	s.mu.Lock()
	if s.pdRxEnabled != enable {
		s.pdRxEnabled = enable
		s.wake()
	}
	s.mu.Unlock()
}

// Transmit implements pdsim.PortController. The message is queued for the
// simulated peer; for reset and BIST transmit types m may be nil.
func (s *Simulator) Transmit(t pdsim.TxType, m *pdmsg.Message) {
	s.mu.Lock()
	s.txType = t
	if m != nil {
		s.txMsg = *m
		s.logMessage("transmit", t, *m)
	} else {
		s.txMsg = pdmsg.Message{}
		logrus.Debugf("sim: transmit %s", t)
	}
	s.req.Add(reqTxMessage)
	s.wake()
	s.mu.Unlock()
}
