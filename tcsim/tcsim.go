// Package tcsim implements a software simulation of a USB power delivery
// port partner. The simulator presents the pdsim.PortController contract to
// a port manager under test and plays the part of a minimal but plausible
// sink or source device on the other end of the cable: it asserts CC pulls,
// ramps VBUS, exchanges capability and request messages and answers
// alternate mode discovery, all with realistic response latency.
//
// All state-affecting logic runs serialized on the goroutine that calls Run;
// the facade entry points only latch work and return immediately.
package tcsim

import (
	"errors"
	"time"
)

// Mode selects which role the simulated port partner plays. It is chosen by
// the operator; the zero value means no device is attached.
type Mode uint8

// Simulator modes.
const (
	ModeNone Mode = iota
	ModeReset
	ModeSink
	ModeSource
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeReset:
		return "reset"
	case ModeSink:
		return "snk"
	case ModeSource:
		return "src"
	default:
		return "INVALID"
	}
}

// ErrUnknownMode is returned by ParseMode for an unrecognized mode word.
var ErrUnknownMode = errors.New("tcsim: unknown simulator mode")

// ParseMode parses the operator facing mode words "none", "reset", "snk" and
// "src".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "none":
		return ModeNone, nil
	case "reset":
		return ModeReset, nil
	case "snk":
		return ModeSink, nil
	case "src":
		return ModeSource, nil
	default:
		return ModeNone, ErrUnknownMode
	}
}

// SimState is the state of the simulated attach session. Exactly one state
// is active at a time; StateIdle is both the initial state and the terminal
// state of a completed session.
type SimState uint8

// Simulation states.
const (
	StateIdle SimState = iota
	StateSinkAttachStart
	StateSinkRunning
	StateSourceAttachStart
	StateSourceVbusWait
	StateSourceAwaitCapSend
	StateSourceAwaitRequest
	StateSourceSendAccept
	StateSourceSendPSReady
	StateSourceRunning
	StateTransitionToIdle
)

func (s SimState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSinkAttachStart:
		return "sink-attach-start"
	case StateSinkRunning:
		return "sink-running"
	case StateSourceAttachStart:
		return "source-attach-start"
	case StateSourceVbusWait:
		return "source-vbus-wait"
	case StateSourceAwaitCapSend:
		return "source-await-cap-send"
	case StateSourceAwaitRequest:
		return "source-await-request"
	case StateSourceSendAccept:
		return "source-send-accept"
	case StateSourceSendPSReady:
		return "source-send-ps-ready"
	case StateSourceRunning:
		return "source-running"
	case StateTransitionToIdle:
		return "transition-to-idle"
	default:
		return "INVALID"
	}
}

// latch is the set of pending asynchronous requests. Producers add flags
// under the simulator lock; the dispatcher clears each flag exactly once
// when it acts on it. Multiple flags coalesce into a single wake-up.
type latch uint8

const (
	reqModeChange latch = 1 << iota // operator requested a mode change
	reqVbusChange                   // VBUS presence changed
	reqTxMessage                    // port manager transmitted a message to process
	reqRxMessage                    // message staged for delivery to the port manager
)

// Add adds the flags v to the set.
func (l *latch) Add(v latch) {
	*l |= v
}

// Has returns true if any of the flags v are set.
func (l latch) Has(v latch) bool {
	return l&v != 0
}

// Clear removes the flags v from the set.
func (l *latch) Clear(v latch) {
	*l &= ^v
}

// Default simulation delays, matching the behavior of a snappy but not
// instantaneous port partner.
const (
	DefaultVbusRampDelay = 5 * time.Millisecond
	DefaultResponseDelay = 2 * time.Millisecond
)

// Config holds the timing parameters of a simulator. The zero value selects
// the defaults.
type Config struct {

	// VbusRampDelay is the time between the source role asserting its CC
	// pull-up and VBUS becoming present.
	VbusRampDelay time.Duration

	// ResponseDelay is the simulated peer processing time between a message
	// being staged and its delivery to the port manager.
	ResponseDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.VbusRampDelay == 0 {
		c.VbusRampDelay = DefaultVbusRampDelay
	}
	if c.ResponseDelay == 0 {
		c.ResponseDelay = DefaultResponseDelay
	}
	return c
}
