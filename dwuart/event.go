// dwuart/event.go

package dwuart

// LineError is a snapshot of the receiver error bits from one line status
// read. The bits are independent; more than one may be set.
type LineError uint8

const (
	LineOverrun LineError = 1 << iota // receive FIFO overflowed, data lost
	LineParity                        // parity mismatch on a received byte
	LineFraming                       // missing stop bit
	LineBreak                         // break condition detected
)

// Any reports whether the snapshot holds at least one error.
func (e LineError) Any() bool { return e != 0 }

func (e LineError) Overrun() bool { return e&LineOverrun != 0 }
func (e LineError) Parity() bool  { return e&LineParity != 0 }
func (e LineError) Framing() bool { return e&LineFraming != 0 }
func (e LineError) Break() bool   { return e&LineBreak != 0 }

func (e LineError) String() string {
	if e == 0 {
		return "none"
	}
	var s string
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if e.Overrun() {
		add("overrun")
	}
	if e.Parity() {
		add("parity")
	}
	if e.Framing() {
		add("framing")
	}
	if e.Break() {
		add("break")
	}
	return s
}

// ReadErrors reads the line status register once and returns the error
// bits as a snapshot. The read clears them in hardware, so the returned
// value is the only record of those conditions; the caller decides the
// recovery policy (drop data, resynchronise, retransmit upstream). It also
// deasserts a pending receiver-line-status interrupt.
//
// No other operation in this package reads LSR, so errors can never be
// consumed behind the caller's back.
func (u *UART) ReadErrors() LineError {
	return lineErrors(u.bus.Read(LSR))
}

func lineErrors(lsr uint32) LineError {
	var e LineError
	if lsr&LSROE != 0 {
		e |= LineOverrun
	}
	if lsr&LSRPE != 0 {
		e |= LineParity
	}
	if lsr&LSRFE != 0 {
		e |= LineFraming
	}
	if lsr&LSRBI != 0 {
		e |= LineBreak
	}
	return e
}

// InterruptCause identifies the single pending cause reported by one
// interrupt identification read. Values are ordered by the hardware's
// fixed priority, highest last.
type InterruptCause uint8

const (
	// CauseNone means no interrupt is pending.
	CauseNone InterruptCause = iota
	// CauseBusy is the DesignWare busy-detect condition: a line control
	// write was attempted while the UART was busy and got discarded.
	// Reading USR clears it.
	CauseBusy
	// CauseModemStatus means a modem line changed; ReadModemStatus clears it.
	CauseModemStatus
	// CauseTxEmpty means the transmit FIFO reached its trigger. A write to
	// the transmit holding register, or the identification read itself,
	// clears it.
	CauseTxEmpty
	// CauseCharTimeout means data has been sitting in the receive FIFO,
	// below the trigger level, for longer than a character time. Draining
	// the FIFO clears it.
	CauseCharTimeout
	// CauseRxAvailable means the receive FIFO reached its trigger level.
	// Draining below the trigger clears it.
	CauseRxAvailable
	// CauseLineStatus means a receiver error is latched; the caller must
	// follow up with ReadErrors to identify and clear it.
	CauseLineStatus
)

func (c InterruptCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseBusy:
		return "busy detect"
	case CauseModemStatus:
		return "modem status"
	case CauseTxEmpty:
		return "transmit empty"
	case CauseCharTimeout:
		return "character timeout"
	case CauseRxAvailable:
		return "data available"
	case CauseLineStatus:
		return "line status"
	default:
		return "unknown"
	}
}

// PollInterrupt reads the interrupt identification register once and
// returns the pending cause. The hardware encodes exactly one cause per
// read, ranked line status > data available and character timeout >
// transmit empty > modem status > busy detect; lower-priority causes stay
// pending until the reported one is serviced, so the environment should
// call PollInterrupt again after servicing.
//
// The read itself deasserts a pending transmit-empty cause, per the
// hardware's defined clear condition.
func (u *UART) PollInterrupt() InterruptCause {
	switch u.bus.Read(IIR) & IIRMask {
	case IIRLineStatus:
		return CauseLineStatus
	case IIRCharTimeout:
		return CauseCharTimeout
	case IIRRxAvailable:
		return CauseRxAvailable
	case IIRTxEmpty:
		return CauseTxEmpty
	case IIRModemStatus:
		return CauseModemStatus
	case IIRBusy:
		return CauseBusy
	default:
		return CauseNone
	}
}

// InterruptMask selects interrupt sources for EnableInterrupts and
// DisableInterrupts. Bit positions match the interrupt enable register.
type InterruptMask uint8

const (
	IntRxAvailable InterruptMask = 1 << iota // data available / timeout
	IntTxEmpty                               // transmit FIFO at trigger
	IntLineStatus                            // receiver errors
	IntModemStatus                           // modem line changes
)

// IntAll enables every maskable source.
const IntAll = IntRxAvailable | IntTxEmpty | IntLineStatus | IntModemStatus

// EnableInterrupts unmasks the given sources, read-modify-write on the
// interrupt enable register. Other sources are untouched.
func (u *UART) EnableInterrupts(m InterruptMask) {
	u.bus.Write(IER, u.bus.Read(IER)|uint32(m)&0x0F)
}

// DisableInterrupts masks the given sources, leaving the rest untouched.
func (u *UART) DisableInterrupts(m InterruptMask) {
	u.bus.Write(IER, u.bus.Read(IER)&^(uint32(m)&0x0F))
}
