// dwuart/mmio.go

//go:build tinygo

package dwuart

import (
	"runtime/volatile"
	"unsafe"
)

// mmio is the hardware register accessor: every call is one volatile
// 32-bit access, issued in call order, with nothing cached or merged.
type mmio struct {
	regs *[NumRegs]volatile.Register32
}

// NewMMIO binds an accessor to an already-mapped DW_apb_uart register
// block. Mapping the peripheral's physical range is the environment's job;
// base must stay valid for the life of the controller and must not be
// handed to a second accessor.
func NewMMIO(base uintptr) Bus {
	return &mmio{regs: (*[NumRegs]volatile.Register32)(unsafe.Pointer(base))}
}

func (m *mmio) Read(r Reg) uint32     { return m.regs[r].Get() }
func (m *mmio) Write(r Reg, v uint32) { m.regs[r].Set(v) }
