// dwuart/regs.go

// Register map and bit definitions for the DW_apb_uart. The block follows
// the standard 16550 layout at 32-bit stride, extended with the DesignWare
// status, FIFO-level, soft-reset, fractional-divisor and component-ID
// registers.

package dwuart

// Reg is a word index into the mapped register block. The APB bus exposes
// each register on a 4-byte boundary: Reg 0 is byte offset 0x00, Reg 1 is
// byte offset 0x04, and so on.
type Reg uint8

// NumRegs is the size of the mapped block in 32-bit words (0x100 bytes).
const NumRegs = 64

const (
	// Shared offset 0x00: receive buffer on read, transmit holding on
	// write, divisor latch low while LCR.DLAB is set. Go through
	// readRxByte/writeTxByte/the divisor helpers, never raw.
	RBR Reg = 0
	THR Reg = 0
	DLL Reg = 0

	// Shared offset 0x04: interrupt enable, or divisor latch high under DLAB.
	IER Reg = 1
	DLH Reg = 1

	// Shared offset 0x08: interrupt identification on read, FIFO control on write.
	IIR Reg = 2
	FCR Reg = 2

	LCR Reg = 3 // line control
	MCR Reg = 4 // modem control
	LSR Reg = 5 // line status; reading clears the error bits
	MSR Reg = 6 // modem status; reading clears the delta bits
	SCR Reg = 7 // scratchpad

	USR Reg = 31 // UART status, side-effect free
	TFL Reg = 32 // transmit FIFO level
	RFL Reg = 33 // receive FIFO level
	SRR Reg = 34 // software reset, write only, self clearing

	DLF Reg = 48 // fractional baud divisor

	CPR Reg = 61 // component parameters
	UCV Reg = 62 // component version
	CTR Reg = 63 // component type
)

// Line control register bits.
const (
	LCRDLS5    uint32 = 0x0 // 5 data bits
	LCRDLS6    uint32 = 0x1
	LCRDLS7    uint32 = 0x2
	LCRDLS8    uint32 = 0x3
	LCRDLSMask uint32 = 0x3
	LCRStop    uint32 = 1 << 2 // 1.5 stop bits with 5 data bits, otherwise 2
	LCRPEN     uint32 = 1 << 3 // parity enable
	LCREPS     uint32 = 1 << 4 // even parity select
	LCRBC      uint32 = 1 << 6 // break control
	LCRDLAB    uint32 = 1 << 7 // divisor latch access
)

// Line status register bits. Reading LSR clears OE/PE/FE/BI.
const (
	LSRDR   uint32 = 1 << 0 // data ready
	LSROE   uint32 = 1 << 1 // overrun error
	LSRPE   uint32 = 1 << 2 // parity error
	LSRFE   uint32 = 1 << 3 // framing error
	LSRBI   uint32 = 1 << 4 // break interrupt
	LSRTHRE uint32 = 1 << 5 // transmit holding register empty
	LSRTEMT uint32 = 1 << 6 // transmitter empty
	LSRRFE  uint32 = 1 << 7 // error somewhere in the receive FIFO
)

// Interrupt enable register bits.
const (
	IERERBFI uint32 = 1 << 0 // received data available
	IERETBEI uint32 = 1 << 1 // transmit holding register empty
	IERELSI  uint32 = 1 << 2 // receiver line status
	IEREDSSI uint32 = 1 << 3 // modem status
)

// Interrupt identification codes, IIR bits 3:0. The hardware reports one
// code per read, ranked line status > data available/timeout > transmit
// empty > modem status > busy detect.
const (
	IIRMask        uint32 = 0x0F
	IIRNone        uint32 = 0x01
	IIRModemStatus uint32 = 0x00
	IIRTxEmpty     uint32 = 0x02
	IIRRxAvailable uint32 = 0x04
	IIRLineStatus  uint32 = 0x06
	IIRBusy        uint32 = 0x07 // DesignWare busy-detect extension
	IIRCharTimeout uint32 = 0x0C
)

// FIFO control register fields.
const (
	FCRFIFOE  uint32 = 1 << 0 // FIFO enable
	FCRRFIFOR uint32 = 1 << 1 // receive FIFO reset, self clearing
	FCRXFIFOR uint32 = 1 << 2 // transmit FIFO reset, self clearing
	FCRDMAM   uint32 = 1 << 3
	FCRTETPos        = 4 // transmit empty trigger field
	FCRRTPos         = 6 // receive trigger field
)

// Modem control register bits.
const (
	MCRDTR  uint32 = 1 << 0
	MCRRTS  uint32 = 1 << 1
	MCROut1 uint32 = 1 << 2
	MCROut2 uint32 = 1 << 3
	MCRLoop uint32 = 1 << 4 // internal loopback
	MCRAFCE uint32 = 1 << 5 // automatic RTS/CTS flow control
	MCRSIRE uint32 = 1 << 6
)

// Modem status register bits. Reading MSR clears the delta bits (3:0).
const (
	MSRDCTS uint32 = 1 << 0
	MSRDDSR uint32 = 1 << 1
	MSRTERI uint32 = 1 << 2
	MSRDDCD uint32 = 1 << 3
	MSRCTS  uint32 = 1 << 4
	MSRDSR  uint32 = 1 << 5
	MSRRI   uint32 = 1 << 6
	MSRDCD  uint32 = 1 << 7
)

// UART status register bits. USR reads have no side effects, which is why
// the transfer path polls USR rather than LSR.
const (
	USRBusy uint32 = 1 << 0 // transfer in flight
	USRTFNF uint32 = 1 << 1 // transmit FIFO not full
	USRTFE  uint32 = 1 << 2 // transmit FIFO empty
	USRRFNE uint32 = 1 << 3 // receive FIFO not empty
	USRRFF  uint32 = 1 << 4 // receive FIFO full
)

// Software reset register bits, all self clearing.
const (
	SRRUR  uint32 = 1 << 0 // whole-UART reset
	SRRRFR uint32 = 1 << 1 // receive FIFO reset
	SRRXFR uint32 = 1 << 2 // transmit FIFO reset
)
