// dwuart/dwuart.go

// Package dwuart is a register-level driver for the Synopsys DesignWare
// DW_apb_uart, the memory-mapped 16550-compatible UART found in many SoCs.
// It configures the line (baud divisor, word length, parity, stop bits,
// FIFO triggers), moves bytes through the hardware FIFOs, and decodes
// interrupt causes and line errors.
//
// The driver is synchronous and non-blocking at its primitive layer:
// TryTransmit, TryReceive and PollInterrupt never wait. Blocking helpers
// are thin spin-wait wrappers that take a context.Context so the caller
// bounds worst-case latency. The driver keeps no software buffers and
// allocates nothing after New; hardware state is re-read on every call.
//
// A *UART owns its register block exclusively. Register accesses issued
// through one instance are strictly ordered, but nothing synchronises two
// goroutines racing the same instance; PollInterrupt and ReadErrors are
// the only calls intended to run concurrently with the transfer path
// (from an interrupt-dispatch goroutine or handler), and both consume
// their hardware events in a single read.
package dwuart

import (
	"errors"
	"time"
)

// Bus performs single, in-order accesses against the mapped register
// block. Each call is one indivisible 32-bit bus access: no caching, no
// merging, no reordering relative to other calls on the same Bus. An
// out-of-range Reg is a programming error, not a runtime condition.
//
// On hardware, NewMMIO returns a Bus over the peripheral's base address.
// The dwsim package provides a behavioural model for host-side use.
type Bus interface {
	Read(r Reg) uint32
	Write(r Reg, v uint32)
}

// Configuration errors. All are detected before any register write, so a
// failed Configure leaves the device untouched.
var (
	ErrInvalidBaudRate = errors.New("dwuart: baud divisor out of range")
	ErrInvalidDataBits = errors.New("dwuart: data bits must be 5 to 8")
	ErrInvalidStopBits = errors.New("dwuart: stop bits must be 1 or 2")
)

// Parity selects the parity mode for the line.
type Parity uint8

const (
	// ParityNone disables parity generation and checking.
	ParityNone Parity = iota
	// ParityOdd sets odd parity.
	ParityOdd
	// ParityEven sets even parity.
	ParityEven
)

// RXTrigger selects the receive FIFO fill level at which the data-available
// condition asserts.
type RXTrigger uint8

const (
	RXTrigger1Char   RXTrigger = iota // one character (default)
	RXTriggerQuarter                  // FIFO 1/4 full
	RXTriggerHalf                     // FIFO 1/2 full
	RXTrigger2Less                    // two less than full
)

// TXTrigger selects the transmit FIFO level at which the transmit-empty
// condition asserts.
type TXTrigger uint8

const (
	TXTriggerEmpty   TXTrigger = iota // FIFO empty (default)
	TXTrigger2Chars                   // two characters in FIFO
	TXTriggerQuarter                  // FIFO 1/4 full
	TXTriggerHalf                     // FIFO 1/2 full
)

// Config describes a line configuration. The zero value (plus a clock
// frequency) means 115200 8N1 with FIFOs enabled and single-character
// triggers.
type Config struct {
	// ClockHz is the reference clock feeding the baud-rate generator.
	// The environment supplies it; the driver never queries a clock tree.
	ClockHz uint32

	BaudRate uint32 // defaults to 115200
	DataBits uint8  // 5 to 8, defaults to 8
	StopBits uint8  // 1 or 2, defaults to 1; 2 programs 1.5 with 5 data bits
	Parity   Parity

	RXTrigger RXTrigger
	TXTrigger TXTrigger

	// Flow enables automatic RTS/CTS flow control and asserts RTS/DTR.
	Flow bool
	// Loopback routes the transmitter into the receiver (diagnostic mode).
	Loopback bool
}

// UART drives one DW_apb_uart instance. Create it with New; exactly one
// logical owner may issue operations on it at a time.
type UART struct {
	bus Bus

	baud uint32 // last configured baud, for diagnostics only
}

// New binds a controller to an already-mapped register block. The Bus is
// never copied or shared; the returned UART is its sole user.
func New(bus Bus) *UART {
	return &UART{bus: bus}
}

// Configure validates cfg and then programs the device in the order the
// divisor latch requires: open DLAB by read-modify-write, write the divisor
// low byte then high byte (then the fractional part), close DLAB with one
// combined line-format write, and finally program the FIFO and modem
// control registers so FIFO behaviour reflects the final line format.
//
// Validation happens before the first register write, so on error the
// device is untouched. On return LCR.DLAB is always clear, success or not.
// Configure may be called again to reconfigure.
func (u *UART) Configure(cfg Config) error {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 115200
	}
	if cfg.DataBits == 0 {
		cfg.DataBits = 8
	}
	if cfg.StopBits == 0 {
		cfg.StopBits = 1
	}

	if cfg.DataBits < 5 || cfg.DataBits > 8 {
		return ErrInvalidDataBits
	}
	if cfg.StopBits != 1 && cfg.StopBits != 2 {
		return ErrInvalidStopBits
	}

	// 16*baud exceeds 32 bits once baud reaches 1<<28, so widen before
	// multiplying; such requests must reject, not wrap.
	denom := 16 * uint64(cfg.BaudRate)
	div64 := uint64(cfg.ClockHz) / denom
	if div64 == 0 || div64 > 0xFFFF {
		return ErrInvalidBaudRate
	}
	div := uint32(div64)
	// DesignWare fractional divisor, in sixteenths of the divisor.
	frac := uint32(uint64(cfg.ClockHz) % denom / uint64(cfg.BaudRate))

	// LCR writes are ignored while a transfer is in flight, so wait for
	// the shifter to go idle before touching the latch.
	for u.bus.Read(USR)&USRBusy != 0 {
		time.Sleep(0) // polite yield while the line drains
	}

	// Open the divisor latch. Read-modify-write keeps the break bit and
	// previous format intact until the combined write below replaces them.
	u.bus.Write(LCR, u.bus.Read(LCR)|LCRDLAB)

	// Low byte first, then high: the divisor latches once both halves are
	// written, and low-then-high is the defined sequence.
	u.writeDivisorLow(div & 0xFF)
	u.writeDivisorHigh(div >> 8)
	u.bus.Write(DLF, frac)

	// One combined write closes the latch and sets word length, stop bits
	// and parity, restoring normal addressing of the shared offset.
	u.bus.Write(LCR, lcrFormat(cfg))

	// Enable the FIFOs with the requested triggers and flush both sides;
	// the reset bits self-clear.
	fcr := FCRFIFOE | FCRRFIFOR | FCRXFIFOR |
		uint32(cfg.RXTrigger)<<FCRRTPos |
		uint32(cfg.TXTrigger)<<FCRTETPos
	u.bus.Write(FCR, fcr)

	var mcr uint32
	if cfg.Flow {
		mcr |= MCRAFCE | MCRRTS | MCRDTR
	}
	if cfg.Loopback {
		mcr |= MCRLoop
	}
	u.bus.Write(MCR, mcr)

	u.baud = cfg.BaudRate
	return nil
}

// lcrFormat encodes word length, stop bits and parity, with DLAB clear.
func lcrFormat(cfg Config) uint32 {
	v := uint32(cfg.DataBits-5) & LCRDLSMask
	if cfg.StopBits == 2 {
		v |= LCRStop
	}
	if cfg.Parity != ParityNone {
		v |= LCRPEN
		if cfg.Parity == ParityEven {
			v |= LCREPS
		}
	}
	return v
}

// writeDivisorLow stores the divisor low byte. Precondition: DLAB is set,
// so the shared offset addresses the latch, not the transmit holding
// register.
func (u *UART) writeDivisorLow(v uint32) { u.bus.Write(DLL, v) }

// writeDivisorHigh stores the divisor high byte. Precondition: DLAB is set.
func (u *UART) writeDivisorHigh(v uint32) { u.bus.Write(DLH, v) }

// Divisor reads back the programmed baud divisor by briefly reopening the
// divisor latch. It restores LCR before returning. Like Configure, it must
// not be interleaved with other register activity on the same instance.
func (u *UART) Divisor() uint16 {
	// Opening the latch while a transfer is in flight would be silently
	// discarded, leaving the reads landing on RBR/IER instead of DLL/DLH.
	for u.bus.Read(USR)&USRBusy != 0 {
		time.Sleep(0) // polite yield while the line drains
	}
	lcr := u.bus.Read(LCR)
	u.bus.Write(LCR, lcr|LCRDLAB)
	lo := u.bus.Read(DLL) & 0xFF
	hi := u.bus.Read(DLH) & 0xFF
	u.bus.Write(LCR, lcr&^LCRDLAB)
	return uint16(hi<<8 | lo)
}

// Baud returns the baud rate from the most recent successful Configure.
// The hardware does not use it; it exists for diagnostics.
func (u *UART) Baud() uint32 { return u.baud }
