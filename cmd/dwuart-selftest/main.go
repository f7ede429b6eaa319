// Host-side selftest: runs the dwuart driver against the dwsim register
// model and checks the register sequencing end to end. Useful as a quick
// smoke test on any machine, no hardware needed.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jangala-dev/tinygo-dwuart/dwsim"
	"github.com/jangala-dev/tinygo-dwuart/dwuart"
)

var failures int

func check(name string, ok bool) {
	if ok {
		fmt.Printf("PASS %s\n", name)
		return
	}
	failures++
	fmt.Printf("FAIL %s\n", name)
}

func main() {
	fmt.Println("dwuart self-test starting")

	// Divisor programming: 48 MHz at 115200 baud is divisor 26.
	{
		d := dwsim.New(nil)
		u := dwuart.New(d)
		err := u.Configure(dwuart.Config{ClockHz: 48_000_000, BaudRate: 115200})
		check("configure 48MHz/115200", err == nil)
		check("divisor readback 26", u.Divisor() == 26)
		check("DLAB clear after configure", d.Read(dwuart.LCR)&dwuart.LCRDLAB == 0)

		err = u.Configure(dwuart.Config{ClockHz: 48_000_000, BaudRate: 48_000_001})
		check("impossible baud rejected", err == dwuart.ErrInvalidBaudRate)
		check("DLAB clear after rejection", d.Read(dwuart.LCR)&dwuart.LCRDLAB == 0)
	}

	// Loopback echo through the FIFOs.
	{
		d := dwsim.New(nil)
		u := dwuart.New(d)
		_ = u.Configure(dwuart.Config{ClockHz: 48_000_000, BaudRate: 115200, Loopback: true})
		_, _ = u.WriteString("ping")

		buf := make([]byte, 8)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		n, err := u.Receive(ctx, buf)
		cancel()
		check("loopback echo", err == nil && string(buf[:n]) == "ping")
	}

	// FIFO backpressure and drain ordering.
	{
		var out bytes.Buffer
		d := dwsim.New(&out)
		u := dwuart.New(d)
		_ = u.Configure(dwuart.Config{ClockHz: 48_000_000, BaudRate: 115200})

		d.HoldTx(true)
		accepted := 0
		for i := 0; i < dwsim.FIFODepth+4; i++ {
			if u.TryTransmit(byte('A' + i)) {
				accepted++
			}
		}
		check("full FIFO refuses bytes", accepted == dwsim.FIFODepth)
		d.HoldTx(false)
		check("drain preserves order", out.String() == "ABCDEFGHIJKLMNOP")
	}

	// Interrupt cause ranking: line status outranks data available.
	{
		d := dwsim.New(nil)
		u := dwuart.New(d)
		_ = u.Configure(dwuart.Config{ClockHz: 48_000_000, BaudRate: 115200})
		u.EnableInterrupts(dwuart.IntAll)

		d.InjectError(dwuart.LineParity)
		d.Inject('x')
		check("line status first", u.PollInterrupt() == dwuart.CauseLineStatus)
		check("parity error latched", u.ReadErrors().Parity())
		check("data available second", u.PollInterrupt() == dwuart.CauseRxAvailable)
		_, _ = u.TryReceive()
		check("transmit empty last", u.PollInterrupt() == dwuart.CauseTxEmpty)
	}

	if failures > 0 {
		fmt.Printf("dwuart self-test: %d failure(s)\n", failures)
		os.Exit(1)
	}
	fmt.Println("dwuart self-test: all checks passed")
}
