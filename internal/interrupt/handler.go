// Package interrupt turns the first SIGINT/SIGTERM into a context
// cancellation so the document pipeline can finish in-flight chunk
// refinements and still write partial output, and turns a second
// signal inside the grace window into an immediate exit.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// graceWindow is how long after the first interrupt a second one
// force-exits instead of letting partial output be written. A signal
// arriving after the window restarts it.
const graceWindow = 2 * time.Second

// exitCodeInterrupt is 128 + SIGINT.
const exitCodeInterrupt = 130

const (
	interruptHint = "\nInterrupted: finishing chunks in flight (Ctrl+C again to abort)"
	abortNotice   = "\nAborted."
)

// Notifier watches for interrupt signals on behalf of a run context.
// Callers check Interrupted after the run to distinguish a clean
// completion from one that was cut short and degraded to partial
// output.
type Notifier struct {
	interrupted atomic.Bool
	stopOnce    sync.Once
	stop        chan struct{}

	now     func() time.Time
	exit    func(int)
	stderr  io.Writer
	cleanup func()
}

// Notify registers for SIGINT/SIGTERM and returns a Notifier together
// with a child of parent that is canceled on the first signal.
// Call Stop when the run is over to release the signal registration.
func Notify(parent context.Context) (*Notifier, context.Context) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	n, ctx := notifyWith(parent, ch, time.Now, os.Exit, os.Stderr)
	n.cleanup = func() { signal.Stop(ch) }
	return n, ctx
}

// notifyWith wires a Notifier to an arbitrary signal source and clock
// so tests can drive it deterministically.
func notifyWith(parent context.Context, signals <-chan os.Signal,
	now func() time.Time, exit func(int), stderr io.Writer) (*Notifier, context.Context) {

	ctx, cancel := context.WithCancel(parent)
	n := &Notifier{
		stop:   make(chan struct{}),
		now:    now,
		exit:   exit,
		stderr: stderr,
	}
	go n.watch(signals, cancel)
	return n, ctx
}

// watch owns the signal loop. windowStart tracks the most recent
// signal that opened a grace window; only a signal inside an open
// window aborts.
func (n *Notifier) watch(signals <-chan os.Signal, cancel context.CancelFunc) {
	var windowStart time.Time

	for {
		select {
		case <-n.stop:
			return
		case _, ok := <-signals:
			if !ok {
				return
			}

			received := n.now()
			if n.interrupted.Load() && received.Sub(windowStart) <= graceWindow {
				fmt.Fprintln(n.stderr, abortNotice)
				n.exit(exitCodeInterrupt)
				return
			}

			windowStart = received
			fmt.Fprintln(n.stderr, interruptHint)
			if !n.interrupted.Load() {
				n.interrupted.Store(true)
				cancel()
			}
		}
	}
}

// Interrupted reports whether at least one signal was received.
// A run that completed after an interrupt carries degraded output and
// should exit with an interrupt status even though no error surfaced.
func (n *Notifier) Interrupted() bool {
	return n.interrupted.Load()
}

// Stop releases the signal registration and ends the watch loop.
// Safe to call more than once.
func (n *Notifier) Stop() {
	n.stopOnce.Do(func() {
		if n.cleanup != nil {
			n.cleanup()
		}
		close(n.stop)
	})
}
