// Command g8rtosdemo wires up a small thread pool, a periodic event, a
// semaphore, and a FIFO through the kernel package and runs it for a fixed
// number of ticks — the Go-simulation analogue of original_source's
// main.c, which does nothing but G8RTOS_Init/AddThread/Launch.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/camillechen/g8rtos/kernel"
)

const (
	producerIRQ = 1
	runTicks    = 50
)

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	k := kernel.New(kernel.DefaultConfig(), kernel.WithLogger(log))

	stock := kernel.NewSemaphore(1)
	if err := k.FIFOInit(0); err != nil {
		log.Fatal("fifo init", zap.Error(err))
	}

	if _, err := k.AddThread(consumer(k, stock), 1, "consumer"); err != nil {
		log.Fatal("add consumer", zap.Error(err))
	}
	if _, err := k.AddThread(reporter(), 2, "reporter"); err != nil {
		log.Fatal("add reporter", zap.Error(err))
	}

	if err := k.AddPeriodicEvent(func() {
		log.Info("heartbeat", zap.Uint32("tick", k.SystemTime()))
	}, 10); err != nil {
		log.Fatal("add periodic event", zap.Error(err))
	}
	if err := k.AddAperiodicEvent(func() {
		k.FIFOWrite(0, k.SystemTime())
	}, 1, producerIRQ); err != nil {
		log.Fatal("add aperiodic event", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return k.Launch()
	})
	g.Go(func() error {
		return driveTicksAndInterrupts(ctx, k, log)
	})

	if err := g.Wait(); err != nil {
		log.Error("demo run ended with error", zap.Error(err))
	}
}

// driveTicksAndInterrupts stands in for the external stimulus a real board
// would supply (a timer peripheral firing SysTick, a sensor asserting an
// IRQ): it fires the simulated producer interrupt a few times, then stops
// the kernel once runTicks worth of wall-clock time has elapsed.
func driveTicksAndInterrupts(ctx context.Context, k *kernel.Kernel, log *zap.Logger) error {
	ticker := time.NewTicker(5 * kernel.TickPeriod * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(runTicks * kernel.TickPeriod * time.Millisecond)

	for {
		select {
		case <-ticker.C:
			if err := k.FireAperiodicInterrupt(producerIRQ); err != nil {
				log.Warn("fire aperiodic interrupt", zap.Error(err))
			}
		case <-deadline:
			k.Stop()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// consumer reads every word the producer interrupt writes to FIFO 0 and
// hands off the shared "stock" semaphore around the read — not required by
// the FIFO's own synchronization, but exercised here the way an
// application thread would guard a second piece of shared state alongside
// a FIFO read.
func consumer(k *kernel.Kernel, stock *kernel.Semaphore) func(*kernel.Thread) {
	return func(t *kernel.Thread) {
		for {
			word := k.FIFORead(t, 0)
			t.Wait(stock)
			_ = word
			k.Signal(stock)
		}
	}
}

// reporter just yields in a loop, standing in for a low-priority
// application thread that has no work until woken — the same shape idle
// uses internally, but declared as an ordinary application thread to show
// AddThread accepting more than one body.
func reporter() func(*kernel.Thread) {
	return func(t *kernel.Thread) {
		for {
			t.Yield()
		}
	}
}
