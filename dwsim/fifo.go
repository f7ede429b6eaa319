// dwsim/fifo.go

package dwsim

// FIFODepth is the silicon FIFO depth the model reports through CPR.
const FIFODepth = 16

// fifo is a fixed-depth byte queue modelling one side of the UART's FIFOs.
// Capacity limiting against the effective depth (1 in character mode,
// FIFODepth in FIFO mode) is the Device's job; fifo only guards its
// absolute storage.
type fifo struct {
	buf [FIFODepth]byte
	r   int // read index
	n   int // occupancy
}

func (f *fifo) used() int { return f.n }

func (f *fifo) put(b byte) bool {
	if f.n == len(f.buf) {
		return false
	}
	f.buf[(f.r+f.n)%len(f.buf)] = b
	f.n++
	return true
}

func (f *fifo) get() (byte, bool) {
	if f.n == 0 {
		return 0, false
	}
	b := f.buf[f.r]
	f.r = (f.r + 1) % len(f.buf)
	f.n--
	return b, true
}

func (f *fifo) reset() {
	f.r, f.n = 0, 0
}
