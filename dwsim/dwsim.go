// dwsim/dwsim.go

// Package dwsim is a behavioural model of the DW_apb_uart register block.
// It implements dwuart.Bus, so the real driver runs against it unchanged
// on any host: unit tests and selftests exercise the exact register
// sequences the driver would issue on silicon.
//
// The model covers the DLAB-switched register file, 16-deep FIFOs (or
// character mode when FIFOE is clear), the ranked interrupt
// identification encoder, read-to-clear line status and modem delta bits,
// loopback, and the DesignWare status/level/reset/fractional registers.
// Transmitted bytes drain to an io.Writer; received bytes and line error
// conditions are injected by the test harness.
package dwsim

import (
	"fmt"
	"io"
	"sync"

	"github.com/jangala-dev/tinygo-dwuart/dwuart"
)

// Device is one simulated DW_apb_uart instance. All methods are safe for
// concurrent use; a mutex stands in for the bus serialising accesses on
// real hardware.
type Device struct {
	mu  sync.Mutex
	out io.Writer // TX drain; nil discards

	rx fifo
	tx fifo // only fills while txHold is set

	dll, dlh, dlf uint32
	ier           uint32
	lcr           uint32
	mcr           uint32
	scr           uint32

	lsrErr uint32 // latched OE/PE/FE/BI, cleared by an LSR read
	msr    uint32 // line state in 7:4, deltas in 3:0

	fifoe          bool
	rxTrig, txTrig uint32

	timeout    bool // character-timeout condition (test hook)
	threSeen   bool // TxEmpty cause already reported since the FIFO emptied
	busy       bool // USR.BUSY (test hook)
	busyDetect bool // discarded LCR write latched until a USR read
	txHold     bool // TX bytes queue instead of draining (test hook)
}

// New returns a device in its reset state. Transmitted bytes are written
// to out; pass nil to discard them.
func New(out io.Writer) *Device {
	d := &Device{out: out}
	d.reset()
	return d
}

var _ dwuart.Bus = (*Device)(nil)

func (d *Device) reset() {
	d.rx.reset()
	d.tx.reset()
	d.dll, d.dlh, d.dlf = 0, 0, 0
	d.ier, d.lcr, d.mcr, d.scr = 0, 0, 0, 0
	d.lsrErr = 0
	d.fifoe = false
	d.rxTrig, d.txTrig = 0, 0
	d.timeout = false
	d.threSeen = false
	d.busyDetect = false
	// Idle line: peer asserts CTS/DSR/DCD.
	d.msr = dwuart.MSRCTS | dwuart.MSRDSR | dwuart.MSRDCD
}

func (d *Device) dlab() bool { return d.lcr&dwuart.LCRDLAB != 0 }

// effDepth is the usable FIFO depth: one in character mode.
func (d *Device) effDepth() int {
	if d.fifoe {
		return FIFODepth
	}
	return 1
}

func (d *Device) rxTriggerLevel() int {
	if !d.fifoe {
		return 1
	}
	switch d.rxTrig {
	case 1:
		return FIFODepth / 4
	case 2:
		return FIFODepth / 2
	case 3:
		return FIFODepth - 2
	default:
		return 1
	}
}

// Read implements dwuart.Bus. Reading an unmapped or write-only register
// is a driver bug and panics.
func (d *Device) Read(r dwuart.Reg) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch r {
	case dwuart.RBR: // DLL under DLAB
		if d.dlab() {
			return d.dll
		}
		b, _ := d.rx.get()
		if d.rx.used() == 0 {
			d.timeout = false
		}
		return uint32(b)
	case dwuart.IER: // DLH under DLAB
		if d.dlab() {
			return d.dlh
		}
		return d.ier
	case dwuart.IIR:
		return d.readIIR()
	case dwuart.LCR:
		return d.lcr
	case dwuart.MCR:
		return d.mcr
	case dwuart.LSR:
		return d.readLSR()
	case dwuart.MSR:
		return d.readMSR()
	case dwuart.SCR:
		return d.scr
	case dwuart.USR:
		return d.readUSR()
	case dwuart.TFL:
		return uint32(d.tx.used())
	case dwuart.RFL:
		return uint32(d.rx.used())
	case dwuart.DLF:
		return d.dlf
	case dwuart.CPR:
		// 32-bit APB data bus, FIFO mode with FIFODepth bytes.
		return 0x0001_0002
	case dwuart.UCV:
		return 0x3331_342A // "31.4*"
	case dwuart.CTR:
		return 0x4457_0110 // DesignWare APB UART peripheral ID
	default:
		panic(fmt.Sprintf("dwsim: read of unmapped register %d", r))
	}
}

// Write implements dwuart.Bus. Writing a read-only register panics.
func (d *Device) Write(r dwuart.Reg, v uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch r {
	case dwuart.THR: // DLL under DLAB
		if d.dlab() {
			d.dll = v & 0xFF
			return
		}
		d.threSeen = false
		d.transmit(byte(v))
	case dwuart.DLH: // IER otherwise
		if d.dlab() {
			d.dlh = v & 0xFF
			return
		}
		if v&dwuart.IERETBEI != 0 && d.ier&dwuart.IERETBEI == 0 {
			d.threSeen = false // freshly enabled source re-arms the edge
		}
		d.ier = v & 0x0F
	case dwuart.FCR:
		enable := v&dwuart.FCRFIFOE != 0
		if enable != d.fifoe {
			// Changing FIFO mode flushes both sides.
			d.rx.reset()
			d.tx.reset()
			d.timeout = false
		}
		d.fifoe = enable
		if v&dwuart.FCRRFIFOR != 0 {
			d.rx.reset()
			d.timeout = false
		}
		if v&dwuart.FCRXFIFOR != 0 {
			d.tx.reset()
		}
		d.rxTrig = v >> dwuart.FCRRTPos & 0x3
		d.txTrig = v >> dwuart.FCRTETPos & 0x3
	case dwuart.LCR:
		if d.busy {
			// The hardware discards LCR writes while busy and latches the
			// busy-detect interrupt instead.
			d.busyDetect = true
			return
		}
		d.lcr = v & 0xFF
	case dwuart.MCR:
		d.mcr = v & 0x7F
	case dwuart.SCR:
		d.scr = v & 0xFF
	case dwuart.SRR:
		if v&dwuart.SRRUR != 0 {
			d.reset()
			return
		}
		if v&dwuart.SRRRFR != 0 {
			d.rx.reset()
			d.timeout = false
		}
		if v&dwuart.SRRXFR != 0 {
			d.tx.reset()
		}
	case dwuart.DLF:
		d.dlf = v & 0x0F
	default:
		panic(fmt.Sprintf("dwsim: write of unmapped register %d", r))
	}
}

// readIIR encodes the single highest-priority pending cause, mirroring the
// hardware's ranking. Reporting TxEmpty latches threSeen, modelling the
// identification read as the clear condition for that cause.
func (d *Device) readIIR() uint32 {
	var code uint32
	switch {
	case d.ier&dwuart.IERELSI != 0 && d.lsrErr != 0:
		code = dwuart.IIRLineStatus
	case d.ier&dwuart.IERERBFI != 0 && d.rx.used() >= d.rxTriggerLevel():
		code = dwuart.IIRRxAvailable
	case d.ier&dwuart.IERERBFI != 0 && d.timeout && d.rx.used() > 0:
		code = dwuart.IIRCharTimeout
	case d.ier&dwuart.IERETBEI != 0 && d.tx.used() == 0 && !d.threSeen:
		d.threSeen = true
		code = dwuart.IIRTxEmpty
	case d.ier&dwuart.IEREDSSI != 0 && d.msr&0x0F != 0:
		code = dwuart.IIRModemStatus
	case d.busyDetect:
		code = dwuart.IIRBusy
	default:
		code = dwuart.IIRNone
	}
	if d.fifoe {
		code |= 0xC0 // FIFOs-enabled marker bits
	}
	return code
}

func (d *Device) readLSR() uint32 {
	v := d.lsrErr
	if d.rx.used() > 0 {
		v |= dwuart.LSRDR
	}
	if d.tx.used() == 0 {
		v |= dwuart.LSRTHRE | dwuart.LSRTEMT
	}
	if d.fifoe && d.lsrErr&(dwuart.LSRPE|dwuart.LSRFE|dwuart.LSRBI) != 0 {
		v |= dwuart.LSRRFE
	}
	d.lsrErr = 0 // read-to-clear
	return v
}

func (d *Device) readMSR() uint32 {
	v := d.msr
	d.msr &= 0xF0 // the read consumes the delta bits
	return v
}

func (d *Device) readUSR() uint32 {
	var v uint32
	if d.busy {
		v |= dwuart.USRBusy
	}
	if d.tx.used() < d.effDepth() {
		v |= dwuart.USRTFNF
	}
	if d.tx.used() == 0 {
		v |= dwuart.USRTFE
	}
	if d.rx.used() > 0 {
		v |= dwuart.USRRFNE
	}
	if d.rx.used() >= d.effDepth() {
		v |= dwuart.USRRFF
	}
	d.busyDetect = false // a USR read clears busy detect
	return v
}

// transmit handles a THR write: loop back, queue while held, or drain to
// the output writer. A write to a full FIFO is lost, as on silicon.
func (d *Device) transmit(b byte) {
	if d.txHold {
		if d.tx.used() < d.effDepth() {
			d.tx.put(b)
		}
		return
	}
	d.emit(b)
}

func (d *Device) emit(b byte) {
	if d.mcr&dwuart.MCRLoop != 0 {
		d.deliver(b)
		return
	}
	if d.out != nil {
		_, _ = d.out.Write([]byte{b})
	}
}

// deliver places a byte in the receive FIFO, latching an overrun when the
// FIFO is already at its effective depth.
func (d *Device) deliver(b byte) {
	if d.rx.used() >= d.effDepth() {
		d.lsrErr |= dwuart.LSROE
		return
	}
	d.rx.put(b)
}

// ---------------- test harness hooks ----------------

// Inject queues bytes as if they arrived on the wire.
func (d *Device) Inject(p ...byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range p {
		d.deliver(b)
	}
}

// InjectError latches receiver error conditions into the line status
// register, as the receiver would on a corrupted character.
func (d *Device) InjectError(e dwuart.LineError) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e.Overrun() {
		d.lsrErr |= dwuart.LSROE
	}
	if e.Parity() {
		d.lsrErr |= dwuart.LSRPE
	}
	if e.Framing() {
		d.lsrErr |= dwuart.LSRFE
	}
	if e.Break() {
		d.lsrErr |= dwuart.LSRBI
	}
}

// SetCharTimeout raises or clears the character-timeout condition, as if
// received data had been sitting below the trigger level for more than a
// character time. It clears itself when the receive FIFO drains.
func (d *Device) SetCharTimeout(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeout = on
}

// SetModemLines drives the peer's modem outputs. Changes latch the
// corresponding delta bits until the next MSR read.
func (d *Device) SetModemLines(cts, dsr, ri, dcd bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	old := d.msr
	var v uint32
	if cts {
		v |= dwuart.MSRCTS
	}
	if dsr {
		v |= dwuart.MSRDSR
	}
	if ri {
		v |= dwuart.MSRRI
	}
	if dcd {
		v |= dwuart.MSRDCD
	}
	delta := old & 0x0F
	if old&dwuart.MSRCTS != v&dwuart.MSRCTS {
		delta |= dwuart.MSRDCTS
	}
	if old&dwuart.MSRDSR != v&dwuart.MSRDSR {
		delta |= dwuart.MSRDDSR
	}
	if old&dwuart.MSRRI != 0 && v&dwuart.MSRRI == 0 {
		delta |= dwuart.MSRTERI
	}
	if old&dwuart.MSRDCD != v&dwuart.MSRDCD {
		delta |= dwuart.MSRDDCD
	}
	d.msr = v | delta
}

// SetBusy drives the USR.BUSY flag, simulating a transfer in flight.
func (d *Device) SetBusy(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busy = on
}

// HoldTx stops transmitted bytes from draining, so the transmit FIFO
// fills like a real one behind a slow line. Releasing the hold drains
// everything queued.
func (d *Device) HoldTx(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.txHold = on
	if !on {
		for {
			b, ok := d.tx.get()
			if !ok {
				break
			}
			d.emit(b)
		}
	}
}
