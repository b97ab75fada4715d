package build

import (
	"context"
	"os"
	"os/signal"
)

// notifyInterrupt returns a context cancelled when the process receives one
// of interruptSignals. Signals the process ignores, as under nohup, stay
// ignored. stop restores the default signal behavior.
func notifyInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	sigs := watchedSignals()
	if len(sigs) == 0 {
		return context.WithCancel(ctx)
	}
	return signal.NotifyContext(ctx, sigs...)
}

func watchedSignals() []os.Signal {
	var sigs []os.Signal
	for _, sig := range interruptSignals {
		if !signal.Ignored(sig) {
			sigs = append(sigs, sig)
		}
	}
	return sigs
}
