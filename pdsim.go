// Package pdsim defines high level types and contracts for simulating a USB
// Type-C power delivery port partner in software, so that a port manager's
// protocol engine can be exercised without real hardware.
package pdsim

import (
	"github.com/oxplot/go-pdsim/pdmsg"
)

// CCStatus represents the state of a single CC line as seen by the port
// manager: open, one of the sink pull-downs, or a source pull-up advertising
// a current capability.
type CCStatus uint8

// CC line states.
const (
	CCOpen CCStatus = iota
	CCRa
	CCRd
	CCRpDefault
	CCRp1A5
	CCRp3A0
)

func (c CCStatus) String() string {
	switch c {
	case CCOpen:
		return "OPEN"
	case CCRa:
		return "RA"
	case CCRd:
		return "RD"
	case CCRpDefault:
		return "RP_DEF"
	case CCRp1A5:
		return "RP_1_5"
	case CCRp3A0:
		return "RP_3_0"
	default:
		return "INVALID"
	}
}

// Polarity represents the plug orientation, i.e. which CC line carries the
// configuration channel.
type Polarity uint8

// Plug orientations.
const (
	PolarityCC1 Polarity = iota
	PolarityCC2
)

func (p Polarity) String() string {
	if p == PolarityCC2 {
		return "CC2"
	}
	return "CC1"
}

// TxType represents the SOP* framing of a transmitted message, or one of the
// reset signals which carry no message at all.
type TxType uint8

// Transmit types.
const (
	TxSOP TxType = iota
	TxSOPPrime
	TxSOPPrimePrime
	TxSOPDebugPrime
	TxSOPDebugPrimePrime
	TxHardReset
	TxCableReset
	TxBISTMode2
)

func (t TxType) String() string {
	switch t {
	case TxSOP:
		return "SOP"
	case TxSOPPrime:
		return "SOP'"
	case TxSOPPrimePrime:
		return "SOP''"
	case TxSOPDebugPrime:
		return "DEBUG'"
	case TxSOPDebugPrimePrime:
		return "DEBUG''"
	case TxHardReset:
		return "HARD_RESET"
	case TxCableReset:
		return "CABLE_RESET"
	case TxBISTMode2:
		return "BIST_MODE_2"
	default:
		return "INVALID"
	}
}

// IsSOPStar returns true if the transmit type carries a message, as opposed
// to the reset and BIST signals.
func (t TxType) IsSOPStar() bool {
	return t <= TxSOPDebugPrimePrime
}

// TxStatus is the completion status reported back to the port manager for
// each message it asked the port controller to transmit.
type TxStatus uint8

// Transmit completion statuses.
const (
	TxSuccess TxStatus = iota
	TxDiscarded
	TxFailed
)

func (s TxStatus) String() string {
	switch s {
	case TxSuccess:
		return "SUCCESS"
	case TxDiscarded:
		return "DISCARDED"
	case TxFailed:
		return "FAILED"
	default:
		return "INVALID"
	}
}

// PortController is the contract a port controller, real or simulated,
// exposes to the port manager. None of the methods block: setters record
// intent and return immediately, getters return the current snapshot.
// Outcomes are reported asynchronously through the PortManager callbacks.
type PortController interface {

	// Init (re-)initializes the controller. It must be called at least once
	// before any other method of this interface.
	Init() error

	// GetVbus reports whether VBUS is currently present on the port.
	GetVbus() bool

	// SetVbus enables or disables sourcing and sinking of VBUS. The port
	// manager calls this to control the supply; VBUS is considered present
	// when either enable is set.
	SetVbus(source, sink bool)

	// SetCC selects the pull resistors to apply to the CC lines.
	SetCC(pull CCStatus)

	// GetCC returns the current status of both CC lines.
	GetCC() (cc1, cc2 CCStatus)

	// SetPolarity informs the controller of the detected plug orientation.
	SetPolarity(p Polarity)

	// SetVconn enables or disables Vconn sourcing.
	SetVconn(enable bool)

	// SetRoles informs the controller of the attachment state and the
	// current power and data roles of the port.
	SetRoles(attached bool, power pdmsg.PowerRole, data pdmsg.DataRole)

	// SetPDRx enables or disables reception of PD messages.
	SetPDRx(enable bool)

	// Transmit sends a message to the port partner. For TxHardReset,
	// TxCableReset and TxBISTMode2 the message may be nil. Completion is
	// reported via PortManager.TransmitComplete.
	Transmit(t TxType, m *pdmsg.Message)
}

// PortManager receives the notifications a port controller issues while
// operating the port. Implementations must not assume which goroutine the
// callbacks are delivered on, but delivery order within one port is
// deterministic. Callbacks may call back into the PortController.
type PortManager interface {

	// CCChanged signals that the CC line status changed; the port manager
	// should query GetCC.
	CCChanged()

	// VbusChanged signals that VBUS presence changed; the port manager
	// should query GetVbus.
	VbusChanged()

	// MessageReceived delivers a message received from the port partner.
	MessageReceived(m pdmsg.Message)

	// TransmitComplete reports the outcome of an earlier Transmit call.
	TransmitComplete(status TxStatus)

	// HardResetReceived signals a hard reset initiated by the port partner.
	HardResetReceived()

	// ControllerReset signals that the controller itself was reset and the
	// port must be re-initialized.
	ControllerReset()
}
