// dwuart/blocking.go

// Blocking convenience wrappers over the non-blocking primitives. The
// driver owns no timers; every wait is a spin with a cooperative yield,
// bounded by the caller's context.

package dwuart

import (
	"context"
	"time"
)

// Transmit queues all of p into the transmit FIFO, spinning while the FIFO
// is full. It returns the number of bytes accepted and the context error
// if ctx ends first. Acceptance is not transmission; use Flush for
// on-the-wire completion.
func (u *UART) Transmit(ctx context.Context, p []byte) (int, error) {
	sent := 0
	for sent < len(p) {
		if u.TryTransmit(p[sent]) {
			sent++
			continue
		}
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		time.Sleep(0) // polite yield while the FIFO drains
	}
	return sent, nil
}

// Receive blocks until at least one byte is available, then returns up to
// len(p) bytes without further waiting.
func (u *UART) Receive(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n := 0
		for n < len(p) {
			b, ok := u.TryReceive()
			if !ok {
				break
			}
			p[n] = b
			n++
		}
		if n > 0 {
			return n, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		time.Sleep(0)
	}
}

// ReceiveByte blocks for a single byte or until ctx is done.
func (u *UART) ReceiveByte(ctx context.Context) (byte, error) {
	for {
		if b, ok := u.TryReceive(); ok {
			return b, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		time.Sleep(0)
	}
}

// ReceiveFull blocks until exactly len(p) bytes have been read or ctx
// ends, returning the count read either way.
func (u *UART) ReceiveFull(ctx context.Context, p []byte) (int, error) {
	read := 0
	for read < len(p) {
		n, err := u.Receive(ctx, p[read:])
		read += n
		if err != nil {
			return read, err
		}
	}
	return read, nil
}

// Flush blocks until the transmit FIFO is empty and the shifter is idle,
// i.e. every accepted byte is on the wire.
func (u *UART) Flush(ctx context.Context) error {
	for {
		usr := u.bus.Read(USR)
		if usr&USRTFE != 0 && usr&USRBusy == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		time.Sleep(0)
	}
}

// Write implements io.Writer with no deadline: it blocks until all of p is
// accepted by the FIFO.
func (u *UART) Write(p []byte) (int, error) {
	return u.Transmit(context.Background(), p)
}

// WriteByte writes a single byte, blocking until the FIFO accepts it.
func (u *UART) WriteByte(b byte) error {
	_, err := u.Transmit(context.Background(), []byte{b})
	return err
}

// WriteString writes s, blocking like Write.
func (u *UART) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		for !u.TryTransmit(s[i]) {
			time.Sleep(0)
		}
	}
	return len(s), nil
}
