//go:build tinygo

// Probe: reads the DesignWare component-ID registers and the current line
// setup from a live UART without reconfiguring it. Handy for confirming a
// base address guess on a new board.
package main

import (
	"github.com/jangala-dev/tinygo-dwuart/dwuart"
)

// Adjust for the target SoC before flashing.
const uartBase uintptr = 0x1000_0000

func hex32(v uint32) string {
	const digits = "0123456789abcdef"
	var b [10]byte
	b[0], b[1] = '0', 'x'
	for i := 0; i < 8; i++ {
		b[9-i] = digits[v&0xF]
		v >>= 4
	}
	return string(b[:])
}

func main() {
	u := dwuart.New(dwuart.NewMMIO(uartBase))

	println("dwuart probe at", hex32(uint32(uartBase)))
	println("  component version:", hex32(u.Version()))
	println("  component params: ", hex32(u.ComponentParams()))
	println("  baud divisor:     ", uint32(u.Divisor()))
	println("  tx fifo level:    ", uint32(u.TxLevel()))
	println("  rx fifo level:    ", uint32(u.RxLevel()))
	if u.Busy() {
		println("  line: busy")
	} else {
		println("  line: idle")
	}
}
