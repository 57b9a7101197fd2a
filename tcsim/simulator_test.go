package tcsim

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdsim "github.com/oxplot/go-pdsim"
	"github.com/oxplot/go-pdsim/pdmsg"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.PanicLevel)
	os.Exit(m.Run())
}

type pmEvent struct {
	kind   string
	msg    pdmsg.Message
	status pdsim.TxStatus
}

// fakeManager records port manager callbacks as an ordered event stream.
type fakeManager struct {
	events chan pmEvent
}

func newFakeManager() *fakeManager {
	return &fakeManager{events: make(chan pmEvent, 64)}
}

func (f *fakeManager) CCChanged()   { f.events <- pmEvent{kind: "cc"} }
func (f *fakeManager) VbusChanged() { f.events <- pmEvent{kind: "vbus"} }
func (f *fakeManager) MessageReceived(m pdmsg.Message) {
	f.events <- pmEvent{kind: "rx", msg: m}
}
func (f *fakeManager) TransmitComplete(status pdsim.TxStatus) {
	f.events <- pmEvent{kind: "txdone", status: status}
}
func (f *fakeManager) HardResetReceived() { f.events <- pmEvent{kind: "hardreset"} }
func (f *fakeManager) ControllerReset()   { f.events <- pmEvent{kind: "reset"} }

// next returns the next callback, failing the test if none arrives in time.
func (f *fakeManager) next(t *testing.T) pmEvent {
	t.Helper()
	select {
	case e := <-f.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for port manager callback")
		return pmEvent{}
	}
}

// expect asserts that the next callback is of the given kind and returns it.
func (f *fakeManager) expect(t *testing.T, kind string) pmEvent {
	t.Helper()
	e := f.next(t)
	require.Equal(t, kind, e.kind)
	return e
}

// expectNone asserts that no callback arrives for a while.
func (f *fakeManager) expectNone(t *testing.T) {
	t.Helper()
	select {
	case e := <-f.events:
		t.Fatalf("unexpected %q callback", e.kind)
	case <-time.After(30 * time.Millisecond):
	}
}

func newTestSim(t *testing.T) (*Simulator, *fakeManager) {
	t.Helper()
	pm := newFakeManager()
	s := New(pm, Config{
		VbusRampDelay: time.Millisecond,
		ResponseDelay: time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, pm
}

func newTxMessage(t pdmsg.Type, pr pdmsg.PowerRole, dr pdmsg.DataRole, count uint8) pdmsg.Message {
	var m pdmsg.Message
	m.SetType(t)
	m.SetRevision(pdmsg.Revision20)
	m.SetPowerRole(pr)
	m.SetDataRole(dr)
	m.SetDataObjectCount(count)
	return m
}

func newVDMInit(svid uint16, cmd pdmsg.VDMCommand) pdmsg.Message {
	m := newTxMessage(pdmsg.TypeVendorDefined, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 1)
	var h pdmsg.VDMHeader
	h.SetSVID(svid)
	h.SetStructured(true)
	h.SetCommandType(pdmsg.VDMCmdTypeInit)
	h.SetCommand(cmd)
	m.Data[0] = uint32(h)
	return m
}

func attachSink(t *testing.T, s *Simulator, pm *fakeManager) {
	t.Helper()
	s.SetMode(ModeSink)
	pm.expect(t, "cc")
	require.Equal(t, StateSinkRunning, s.State())
}

func TestSinkAttach(t *testing.T) {
	s, pm := newTestSim(t)
	require.Equal(t, ModeNone, s.Mode())
	require.Equal(t, StateIdle, s.State())

	attachSink(t, s, pm)

	cc1, cc2 := s.GetCC()
	assert.Equal(t, pdsim.CCRd, cc1)
	assert.Equal(t, pdsim.CCRa, cc2)
	assert.False(t, s.GetVbus())
	assert.Equal(t, ModeSink, s.Mode())
}

func TestSinkRequestsPowerOnSourceCap(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	cap := newTxMessage(pdmsg.TypeSourceCap, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 1)
	cap.Data[0] = 0x2e01912c
	s.Transmit(pdsim.TxSOP, &cap)

	e := pm.expect(t, "txdone")
	assert.Equal(t, pdsim.TxSuccess, e.status)

	e = pm.expect(t, "rx")
	require.True(t, e.msg.IsData())
	require.Equal(t, pdmsg.TypeRequest, e.msg.Type())
	assert.Equal(t, pdmsg.PowerRoleSink, e.msg.PowerRole())
	assert.Equal(t, pdmsg.DataRoleUFP, e.msg.DataRole())
	assert.Equal(t, uint8(0), e.msg.ID())
	assert.Equal(t, uint32(0x12025896), e.msg.Data[0])
}

func TestSinkAnswersGetSinkCap(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	m := newTxMessage(pdmsg.TypeGetSinkCap, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 0)
	s.Transmit(pdsim.TxSOP, &m)
	pm.expect(t, "txdone")

	e := pm.expect(t, "rx")
	require.Equal(t, pdmsg.TypeSinkCap, e.msg.Type())
	require.Equal(t, uint8(1), e.msg.DataObjectCount())
	pdo := pdmsg.FixedSupplyPDO(e.msg.Data[0])
	assert.Equal(t, uint16(5000), pdo.Voltage())
	assert.Equal(t, uint16(2000), pdo.MaxCurrent())
	assert.True(t, pdo.USBComm())
}

func TestSinkHardResetsOnRoleViolation(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	// A sink receiving a request message is a protocol violation.
	m := newTxMessage(pdmsg.TypeRequest, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 1)
	s.Transmit(pdsim.TxSOP, &m)

	pm.expect(t, "hardreset")
	e := pm.expect(t, "txdone")
	assert.Equal(t, pdsim.TxSuccess, e.status)
}

func TestSinkSwapRequestsHardReset(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	for _, typ := range []pdmsg.Type{pdmsg.TypeDRSwap, pdmsg.TypePRSwap, pdmsg.TypeVconnSwap} {
		m := newTxMessage(typ, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 0)
		s.Transmit(pdsim.TxSOP, &m)
		pm.expect(t, "hardreset")
		pm.expect(t, "txdone")
	}
}

func TestMessageIDWrapsAndResets(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	get := newTxMessage(pdmsg.TypeGetSinkCap, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 0)
	for want := uint8(0); want <= pdmsg.MaxMessageID; want++ {
		s.Transmit(pdsim.TxSOP, &get)
		pm.expect(t, "txdone")
		e := pm.expect(t, "rx")
		assert.Equal(t, want, e.msg.ID())
	}

	// The 3-bit counter wraps back to zero.
	s.Transmit(pdsim.TxSOP, &get)
	pm.expect(t, "txdone")
	assert.Equal(t, uint8(0), pm.expect(t, "rx").msg.ID())

	// Soft reset restarts the counter.
	s.Transmit(pdsim.TxSOP, &get)
	pm.expect(t, "txdone")
	assert.Equal(t, uint8(1), pm.expect(t, "rx").msg.ID())
	soft := newTxMessage(pdmsg.TypeSoftReset, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 0)
	s.Transmit(pdsim.TxSOP, &soft)
	pm.expect(t, "txdone")
	s.Transmit(pdsim.TxSOP, &get)
	pm.expect(t, "txdone")
	assert.Equal(t, uint8(0), pm.expect(t, "rx").msg.ID())
}

func TestHardResetTransmitIsSilent(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	s.Transmit(pdsim.TxHardReset, nil)
	e := pm.expect(t, "txdone")
	assert.Equal(t, pdsim.TxSuccess, e.status)
	pm.expectNone(t)

	// The peer's message ID counter restarted with the reset.
	get := newTxMessage(pdmsg.TypeGetSinkCap, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 0)
	s.Transmit(pdsim.TxSOP, &get)
	pm.expect(t, "txdone")
	assert.Equal(t, uint8(0), pm.expect(t, "rx").msg.ID())
}

func TestTransmitFailsWithoutSession(t *testing.T) {
	s, pm := newTestSim(t)

	m := newTxMessage(pdmsg.TypePing, pdmsg.PowerRoleSource, pdmsg.DataRoleDFP, 0)
	s.Transmit(pdsim.TxSOP, &m)
	e := pm.expect(t, "txdone")
	assert.Equal(t, pdsim.TxFailed, e.status)
}

func TestSourceSession(t *testing.T) {
	s, pm := newTestSim(t)
	s.SetPDRx(true)
	s.SetMode(ModeSource)

	pm.expect(t, "cc")
	cc1, cc2 := s.GetCC()
	assert.Equal(t, pdsim.CCOpen, cc1)
	assert.Equal(t, pdsim.CCRp3A0, cc2)

	pm.expect(t, "vbus")
	assert.True(t, s.GetVbus())

	e := pm.expect(t, "rx")
	require.Equal(t, pdmsg.TypeSourceCap, e.msg.Type())
	require.True(t, e.msg.IsData())
	assert.Equal(t, pdmsg.PowerRoleSource, e.msg.PowerRole())
	assert.Equal(t, uint32(0x2e01912c), e.msg.Data[0])
	require.Equal(t, StateSourceAwaitRequest, s.State())

	req := newTxMessage(pdmsg.TypeRequest, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP, 1)
	req.Data[0] = 0x12025896
	s.Transmit(pdsim.TxSOP, &req)
	pm.expect(t, "txdone")

	// Accept first, power ready strictly after.
	e = pm.expect(t, "rx")
	assert.Equal(t, pdmsg.TypeAccept, e.msg.Type())
	assert.False(t, e.msg.IsData())
	e = pm.expect(t, "rx")
	assert.Equal(t, pdmsg.TypePSReady, e.msg.Type())
	assert.False(t, e.msg.IsData())
	assert.Equal(t, StateSourceRunning, s.State())
}

func TestSourceWaitsForPDRx(t *testing.T) {
	s, pm := newTestSim(t)
	s.SetMode(ModeSource)
	pm.expect(t, "cc")
	pm.expect(t, "vbus")

	// No capabilities until reception is enabled.
	pm.expectNone(t)
	require.Equal(t, StateSourceAwaitCapSend, s.State())

	s.SetPDRx(true)
	e := pm.expect(t, "rx")
	assert.Equal(t, pdmsg.TypeSourceCap, e.msg.Type())
}

func TestSourceAnswersGetSourceCap(t *testing.T) {
	s, pm := newTestSim(t)
	s.SetPDRx(true)
	s.SetMode(ModeSource)
	pm.expect(t, "cc")
	pm.expect(t, "vbus")
	pm.expect(t, "rx") // initial capability advertisement

	m := newTxMessage(pdmsg.TypeGetSourceCap, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP, 0)
	s.Transmit(pdsim.TxSOP, &m)
	pm.expect(t, "txdone")
	e := pm.expect(t, "rx")
	assert.Equal(t, pdmsg.TypeSourceCap, e.msg.Type())
	assert.Equal(t, uint32(0x2e01912c), e.msg.Data[0])
}

func TestSourceHardResetsOnUnsolicitedSinkCap(t *testing.T) {
	s, pm := newTestSim(t)
	s.SetPDRx(true)
	s.SetMode(ModeSource)
	pm.expect(t, "cc")
	pm.expect(t, "vbus")
	pm.expect(t, "rx")

	m := newTxMessage(pdmsg.TypeSinkCap, pdmsg.PowerRoleSink, pdmsg.DataRoleUFP, 1)
	pdo := pdmsg.NewFixedSupplyPDO()
	pdo.SetVoltage(5000)
	pdo.SetMaxCurrent(500)
	m.Data[0] = uint32(pdo)
	s.Transmit(pdsim.TxSOP, &m)

	pm.expect(t, "hardreset")
	pm.expect(t, "txdone")
}

func TestModeOverlapRejected(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	s.SetMode(ModeSource)
	pm.expectNone(t)
	assert.Equal(t, ModeSink, s.Mode())
	assert.Equal(t, StateSinkRunning, s.State())
}

func TestModeNoneDetaches(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	s.SetMode(ModeNone)
	pm.expect(t, "cc")
	assert.Equal(t, ModeNone, s.Mode())
	assert.Equal(t, StateIdle, s.State())
	cc1, cc2 := s.GetCC()
	assert.Equal(t, pdsim.CCOpen, cc1)
	assert.Equal(t, pdsim.CCOpen, cc2)

	// A fresh session can start after the teardown.
	s.SetMode(ModeSource)
	pm.expect(t, "cc")
	assert.Equal(t, ModeSource, s.Mode())
}

func TestModeResetReportsControllerReset(t *testing.T) {
	s, pm := newTestSim(t)
	s.SetPDRx(true)
	s.SetMode(ModeSource)
	pm.expect(t, "cc")
	pm.expect(t, "vbus")
	pm.expect(t, "rx")

	s.SetMode(ModeReset)
	pm.expect(t, "reset")
	assert.Equal(t, ModeNone, s.Mode())
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.GetVbus())
}

func TestVbusChangeLatchedOnce(t *testing.T) {
	s, pm := newTestSim(t)

	s.SetVbus(false, false)
	pm.expectNone(t)

	s.SetVbus(true, false)
	pm.expect(t, "vbus")
	assert.True(t, s.GetVbus())

	// Presence is unchanged, so no further notification.
	s.SetVbus(false, true)
	pm.expectNone(t)
}

func TestDiscoveryVDMSequence(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	s.Transmit(pdsim.TxSOP, ptr(newVDMInit(pdmsg.SIDPowerDelivery, pdmsg.VDMCmdDiscoverIdentity)))
	pm.expect(t, "txdone")
	e := pm.expect(t, "rx")
	require.Equal(t, pdmsg.TypeVendorDefined, e.msg.Type())
	require.Equal(t, uint8(5), e.msg.DataObjectCount())
	h := pdmsg.VDMHeader(e.msg.Data[0])
	assert.Equal(t, pdmsg.VDMCmdTypeACK, h.CommandType())
	assert.Equal(t, pdmsg.VDMCmdDiscoverIdentity, h.Command())
	idh := pdmsg.IDHeaderVDO(e.msg.Data[1])
	assert.Equal(t, pdmsg.IDHProductTypeAMA, idh.ProductType())
	assert.True(t, idh.ModalSupport())
	assert.Equal(t, uint16(0x2109), idh.VID())

	s.Transmit(pdsim.TxSOP, ptr(newVDMInit(pdmsg.SIDPowerDelivery, pdmsg.VDMCmdDiscoverSVIDs)))
	pm.expect(t, "txdone")
	e = pm.expect(t, "rx")
	h = pdmsg.VDMHeader(e.msg.Data[0])
	require.Equal(t, pdmsg.VDMCmdDiscoverSVIDs, h.Command())
	svids := pdmsg.SVIDResponseVDO(e.msg.Data[1])
	assert.Equal(t, pdmsg.SIDDisplayPort, svids.SVID0())
	assert.Equal(t, uint16(0), svids.SVID1())

	s.Transmit(pdsim.TxSOP, ptr(newVDMInit(pdmsg.SIDDisplayPort, pdmsg.VDMCmdDiscoverModes)))
	pm.expect(t, "txdone")
	e = pm.expect(t, "rx")
	h = pdmsg.VDMHeader(e.msg.Data[0])
	require.Equal(t, pdmsg.VDMCmdDiscoverModes, h.Command())
	assert.Equal(t, pdmsg.SIDDisplayPort, h.SVID())
	mode := pdmsg.DPModeVDO(e.msg.Data[1])
	assert.Equal(t, pdmsg.DPPinC, mode.DFPDPins())
	assert.True(t, mode.Receptacle())
	assert.Equal(t, pdmsg.DPPortCapUFPD, mode.PortCap())
}

func TestVDMEchoesIgnored(t *testing.T) {
	s, pm := newTestSim(t)
	attachSink(t, s, pm)

	// An ACK from the port manager must not trigger another response.
	m := newVDMInit(pdmsg.SIDPowerDelivery, pdmsg.VDMCmdDiscoverIdentity)
	h := pdmsg.VDMHeader(m.Data[0])
	h.SetCommandType(pdmsg.VDMCmdTypeACK)
	m.Data[0] = uint32(h)
	s.Transmit(pdsim.TxSOP, &m)
	pm.expect(t, "txdone")
	pm.expectNone(t)

	// Mode discovery for an unknown SVID goes unanswered.
	s.Transmit(pdsim.TxSOP, ptr(newVDMInit(0x1234, pdmsg.VDMCmdDiscoverModes)))
	pm.expect(t, "txdone")
	pm.expectNone(t)
}

func ptr(m pdmsg.Message) *pdmsg.Message {
	return &m
}
