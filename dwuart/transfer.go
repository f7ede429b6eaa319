// dwuart/transfer.go

package dwuart

// The transfer path polls USR, not LSR: USR reads are side-effect free on
// this IP, so checking FIFO state here can never silently consume the
// read-to-clear error bits that ReadErrors owns.

// TryTransmit writes one byte to the transmit holding register if the
// transmit FIFO has room. It returns false, without writing, when the FIFO
// is full. It never blocks.
func (u *UART) TryTransmit(b byte) bool {
	if u.bus.Read(USR)&USRTFNF == 0 {
		return false
	}
	u.writeTxByte(b)
	return true
}

// TryReceive pops one byte from the receive FIFO. It returns false when no
// data is waiting. Reading the byte consumes it; there is no peek. It
// never blocks.
func (u *UART) TryReceive() (byte, bool) {
	if u.bus.Read(USR)&USRRFNE == 0 {
		return 0, false
	}
	return u.readRxByte(), true
}

// writeTxByte stores a byte at the shared offset. Precondition: DLAB is
// clear, so the write lands in the transmit holding register.
func (u *UART) writeTxByte(b byte) { u.bus.Write(THR, uint32(b)) }

// readRxByte loads a byte from the shared offset. Precondition: DLAB is
// clear. The read pops the receive FIFO.
func (u *UART) readRxByte() byte { return byte(u.bus.Read(RBR)) }

// Busy reports whether a transfer is in flight on the line.
func (u *UART) Busy() bool { return u.bus.Read(USR)&USRBusy != 0 }

// TxFull reports whether the transmit FIFO has no room; TryTransmit will
// refuse while it holds.
func (u *UART) TxFull() bool { return u.bus.Read(USR)&USRTFNF == 0 }

// TxEmpty reports whether the transmit FIFO has fully drained into the
// shifter. See Flush for "all bits on the wire".
func (u *UART) TxEmpty() bool { return u.bus.Read(USR)&USRTFE != 0 }

// RxEmpty reports whether the receive FIFO is empty; TryReceive will
// return false while it holds.
func (u *UART) RxEmpty() bool { return u.bus.Read(USR)&USRRFNE == 0 }

// TxLevel returns the current transmit FIFO occupancy in bytes.
func (u *UART) TxLevel() int { return int(u.bus.Read(TFL)) }

// RxLevel returns the current receive FIFO occupancy in bytes.
func (u *UART) RxLevel() int { return int(u.bus.Read(RFL)) }

// SetBreak asserts or releases the break condition on the line.
func (u *UART) SetBreak(on bool) {
	lcr := u.bus.Read(LCR)
	if on {
		lcr |= LCRBC
	} else {
		lcr &^= LCRBC
	}
	u.bus.Write(LCR, lcr)
}

// SoftReset resets the UART and flushes both FIFOs through the shadow
// reset register. The line configuration must be programmed again
// afterwards.
func (u *UART) SoftReset() {
	u.bus.Write(SRR, SRRUR|SRRRFR|SRRXFR)
}

// Scratch returns the scratchpad register, which the hardware never
// touches.
func (u *UART) Scratch() byte { return byte(u.bus.Read(SCR)) }

// SetScratch stores a byte in the scratchpad register.
func (u *UART) SetScratch(b byte) { u.bus.Write(SCR, uint32(b)) }

// Version returns the component version register (ASCII-coded DesignWare
// release, e.g. 0x3331_342A).
func (u *UART) Version() uint32 { return u.bus.Read(UCV) }

// ComponentParams returns the component parameter register describing how
// this instance was configured at silicon build time (FIFO mode, data bus
// width, and so on).
func (u *UART) ComponentParams() uint32 { return u.bus.Read(CPR) }

// ModemStatus is a snapshot of the modem status register. The delta bits
// record changes since the previous read and are cleared by the read that
// produced the snapshot.
type ModemStatus uint8

func (m ModemStatus) CTS() bool { return uint32(m)&MSRCTS != 0 }
func (m ModemStatus) DSR() bool { return uint32(m)&MSRDSR != 0 }
func (m ModemStatus) RI() bool  { return uint32(m)&MSRRI != 0 }
func (m ModemStatus) DCD() bool { return uint32(m)&MSRDCD != 0 }

// DeltaCTS reports a CTS change since the previous ReadModemStatus.
func (m ModemStatus) DeltaCTS() bool { return uint32(m)&MSRDCTS != 0 }

// DeltaDSR reports a DSR change since the previous ReadModemStatus.
func (m ModemStatus) DeltaDSR() bool { return uint32(m)&MSRDDSR != 0 }

// TrailingRI reports a trailing edge on the ring indicator.
func (m ModemStatus) TrailingRI() bool { return uint32(m)&MSRTERI != 0 }

// DeltaDCD reports a DCD change since the previous ReadModemStatus.
func (m ModemStatus) DeltaDCD() bool { return uint32(m)&MSRDDCD != 0 }

// ReadModemStatus reads the modem status register once and returns the
// snapshot. The read clears the delta bits in hardware, so it consumes the
// modem-status interrupt condition.
func (u *UART) ReadModemStatus() ModemStatus {
	return ModemStatus(u.bus.Read(MSR))
}

// ModemControl returns the raw modem control register.
func (u *UART) ModemControl() uint32 { return u.bus.Read(MCR) }

// SetModemControl writes the raw modem control register. Callers own the
// whole value; Configure overwrites it.
func (u *UART) SetModemControl(bits uint32) { u.bus.Write(MCR, bits&0x7F) }
