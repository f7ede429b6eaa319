package dwuart_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jangala-dev/tinygo-dwuart/dwsim"
	"github.com/jangala-dev/tinygo-dwuart/dwuart"
)

// newPair returns a driver bound to a fresh simulated register block.
func newPair() (*dwuart.UART, *dwsim.Device) {
	d := dwsim.New(nil)
	return dwuart.New(d), d
}

func TestConfigureProgramsDivisor(t *testing.T) {
	u, d := newPair()

	// 48 MHz / (16 * 115200) = 26.04 -> divisor 26.
	err := u.Configure(dwuart.Config{ClockHz: 48_000_000, BaudRate: 115200})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := u.Divisor(); got != 26 {
		t.Fatalf("divisor = %d, want 26", got)
	}

	// Check the halves directly through the latch: low=26, high=0.
	d.Write(dwuart.LCR, d.Read(dwuart.LCR)|dwuart.LCRDLAB)
	if lo := d.Read(dwuart.DLL); lo != 26 {
		t.Fatalf("DLL = %d, want 26", lo)
	}
	if hi := d.Read(dwuart.DLH); hi != 0 {
		t.Fatalf("DLH = %d, want 0", hi)
	}
	d.Write(dwuart.LCR, d.Read(dwuart.LCR)&^dwuart.LCRDLAB)
}

func TestConfigureProgramsFractionalDivisor(t *testing.T) {
	u, d := newPair()

	// 50 MHz / (16 * 115200) = 27 remainder 233600; 233600/115200 = 2/16ths.
	err := u.Configure(dwuart.Config{ClockHz: 50_000_000, BaudRate: 115200})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := u.Divisor(); got != 27 {
		t.Fatalf("divisor = %d, want 27", got)
	}
	if got := d.Read(dwuart.DLF); got != 2 {
		t.Fatalf("DLF = %d, want 2", got)
	}
}

func TestConfigureRejectsDivisorZero(t *testing.T) {
	u, d := newPair()

	err := u.Configure(dwuart.Config{ClockHz: 48_000_000, BaudRate: 48_000_001})
	if !errors.Is(err, dwuart.ErrInvalidBaudRate) {
		t.Fatalf("err = %v, want ErrInvalidBaudRate", err)
	}
	// Validate-then-commit: nothing was written, DLAB clear.
	if lcr := d.Read(dwuart.LCR); lcr != 0 {
		t.Fatalf("LCR = %#x after failed Configure, want 0", lcr)
	}
}

func TestConfigureRejectsExtremeBaud(t *testing.T) {
	// 16*baud no longer fits in 32 bits here; a narrow multiply would
	// wrap to 0 (divide fault) or 16 (bogus divisor accepted).
	cases := []dwuart.Config{
		{ClockHz: 0xFFFF_FFFF, BaudRate: 1 << 28},
		{ClockHz: 1_000_000, BaudRate: 1<<28 + 1},
	}
	for _, cfg := range cases {
		u, d := newPair()
		err := u.Configure(cfg)
		if !errors.Is(err, dwuart.ErrInvalidBaudRate) {
			t.Fatalf("Configure(clock=%d, baud=%d) = %v, want ErrInvalidBaudRate",
				cfg.ClockHz, cfg.BaudRate, err)
		}
		if lcr := d.Read(dwuart.LCR); lcr != 0 {
			t.Fatalf("LCR = %#x after failed Configure, want 0", lcr)
		}
	}
}

func TestConfigureRejectsDivisorOverflow(t *testing.T) {
	u, d := newPair()

	// 48 MHz at 30 baud needs divisor 100000, over the 16-bit latch.
	err := u.Configure(dwuart.Config{ClockHz: 48_000_000, BaudRate: 30})
	if !errors.Is(err, dwuart.ErrInvalidBaudRate) {
		t.Fatalf("err = %v, want ErrInvalidBaudRate", err)
	}
	if d.Read(dwuart.LCR)&dwuart.LCRDLAB != 0 {
		t.Fatal("DLAB set after failed Configure")
	}
}

func TestConfigureRejectsBadFormat(t *testing.T) {
	u, _ := newPair()
	cfg := dwuart.Config{ClockHz: 1_843_200, BaudRate: 115200}

	cfg.DataBits = 9
	if err := u.Configure(cfg); !errors.Is(err, dwuart.ErrInvalidDataBits) {
		t.Fatalf("DataBits=9: err = %v, want ErrInvalidDataBits", err)
	}

	cfg.DataBits = 8
	cfg.StopBits = 3
	if err := u.Configure(cfg); !errors.Is(err, dwuart.ErrInvalidStopBits) {
		t.Fatalf("StopBits=3: err = %v, want ErrInvalidStopBits", err)
	}
}

func TestConfigureFailureKeepsPreviousState(t *testing.T) {
	u, _ := newPair()

	good := dwuart.Config{ClockHz: 1_843_200, BaudRate: 9600, DataBits: 7, Parity: dwuart.ParityEven}
	if err := u.Configure(good); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	want := u.Divisor()

	bad := good
	bad.BaudRate = 1 // divisor 115200, out of range
	if err := u.Configure(bad); !errors.Is(err, dwuart.ErrInvalidBaudRate) {
		t.Fatalf("err = %v, want ErrInvalidBaudRate", err)
	}
	if got := u.Divisor(); got != want {
		t.Fatalf("divisor changed across failed Configure: %d -> %d", want, got)
	}
}

func TestConfigureAlwaysClearsDLAB(t *testing.T) {
	u, d := newPair()

	cases := []dwuart.Config{
		{ClockHz: 48_000_000, BaudRate: 115200},             // ok
		{ClockHz: 48_000_000, BaudRate: 48_000_001},         // divisor 0
		{ClockHz: 48_000_000, BaudRate: 115200, DataBits: 4}, // bad format
	}
	for i, cfg := range cases {
		_ = u.Configure(cfg)
		if d.Read(dwuart.LCR)&dwuart.LCRDLAB != 0 {
			t.Fatalf("case %d: DLAB set after Configure returned", i)
		}
	}
}

func TestConfigureIdempotent(t *testing.T) {
	u, d := newPair()
	cfg := dwuart.Config{
		ClockHz:   48_000_000,
		BaudRate:  115200,
		DataBits:  8,
		StopBits:  2,
		Parity:    dwuart.ParityOdd,
		RXTrigger: dwuart.RXTriggerHalf,
		Flow:      true,
	}

	snapshot := func() [4]uint32 {
		return [4]uint32{
			d.Read(dwuart.LCR),
			d.Read(dwuart.MCR),
			d.Read(dwuart.DLF),
			uint32(u.Divisor()),
		}
	}

	if err := u.Configure(cfg); err != nil {
		t.Fatalf("first Configure: %v", err)
	}
	first := snapshot()
	if err := u.Configure(cfg); err != nil {
		t.Fatalf("second Configure: %v", err)
	}
	if second := snapshot(); second != first {
		t.Fatalf("register state diverged: %#x -> %#x", first, second)
	}
}

func TestConfigureFormatEncoding(t *testing.T) {
	u, d := newPair()

	err := u.Configure(dwuart.Config{
		ClockHz:  1_843_200,
		BaudRate: 9600,
		DataBits: 7,
		StopBits: 2,
		Parity:   dwuart.ParityEven,
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	want := dwuart.LCRDLS7 | dwuart.LCRStop | dwuart.LCRPEN | dwuart.LCREPS
	if got := d.Read(dwuart.LCR); got != want {
		t.Fatalf("LCR = %#x, want %#x", got, want)
	}
}

func TestConfigureDefaults(t *testing.T) {
	u, d := newPair()

	// Zero config plus a clock: 115200 8N1.
	if err := u.Configure(dwuart.Config{ClockHz: 1_843_200}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := u.Divisor(); got != 1 {
		t.Fatalf("divisor = %d, want 1", got)
	}
	if got := d.Read(dwuart.LCR); got != dwuart.LCRDLS8 {
		t.Fatalf("LCR = %#x, want 8N1 (%#x)", got, dwuart.LCRDLS8)
	}
	if got := u.Baud(); got != 115200 {
		t.Fatalf("Baud = %d, want 115200", got)
	}
}

func TestDivisorWaitsForBusyLine(t *testing.T) {
	u, d := newPair()

	if err := u.Configure(dwuart.Config{ClockHz: 48_000_000, BaudRate: 115200}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	d.Inject('A')
	d.SetBusy(true)

	done := make(chan uint16, 1)
	go func() { done <- u.Divisor() }()

	// While the line is busy the latch must stay shut: an early DLAB open
	// is discarded, and DLL reads would pop the live receive byte instead.
	select {
	case got := <-done:
		t.Fatalf("Divisor returned %d while the line was busy", got)
	case <-time.After(20 * time.Millisecond):
	}

	d.SetBusy(false)
	select {
	case got := <-done:
		if got != 26 {
			t.Fatalf("divisor = %d, want 26", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Divisor did not return after the line went idle")
	}

	if b, ok := u.TryReceive(); !ok || b != 'A' {
		t.Fatalf("TryReceive = %q, %v; want 'A', true", b, ok)
	}
}
