package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Runner.Wait after a second stop signal.
var ErrForcedExit = errors.New("forced exit")

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name used in logs.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// Runner runs a group of Runnables sharing one context.
// When any of them returns, the others are canceled.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	count  int
	exitCh chan exit
	forced chan struct{}
}

type exit struct {
	name string
	err  error
}

// NewRunner creates a runner with a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner derived from ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	r := &Runner{
		exitCh: make(chan exit),
		forced: make(chan struct{}),
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	return r
}

// HandleSignals stops the group on SIGINT or SIGTERM, a second signal
// makes Wait return without waiting.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		glog.Infof("%v received, stopping", sig)
		r.cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.forced)
	}()
	return r
}

// Go starts the runnables.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		r.count++
		name := fmt.Sprintf("#%d", r.count)
		if named, ok := runnable.(Named); ok {
			name = named.Name()
		}
		glog.V(4).Infof("%s started", name)
		go func(runnable Runnable, name string) {
			r.exitCh <- exit{name: name, err: runnable.Run(r.ctx)}
		}(runnable, name)
	}
	return r
}

// Wait waits for all runnables and aggregates their errors.
// Cancellation is not an error.
func (r *Runner) Wait() error {
	defer r.cancel()
	var errs AggregatedError
	for n := 0; n < r.count; n++ {
		select {
		case <-r.forced:
			return ErrForcedExit
		case e := <-r.exitCh:
			r.cancel()
			if e.err == nil || errors.Is(e.err, context.Canceled) {
				glog.V(4).Infof("%s stopped", e.name)
				continue
			}
			glog.Errorf("%s failed: %v", e.name, e.err)
			errs.Add(e.err)
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs fn which doesn't accept a context.
// onCancel is called once the context is done and must make fn return.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if onCancel != nil {
		onCancel()
	}
	<-errCh
	return context.Canceled
}

// RunWithContext is RunWithContextCancel without a callback.
func RunWithContext(ctx context.Context, fn func() error) error {
	return RunWithContextCancel(ctx, nil, fn)
}

// RunWithContextCloser closes closer exactly once, either on cancel or
// after fn returns. Blocking stream reads are interrupted this way.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var once sync.Once
	closeOnce := func() { once.Do(func() { closer.Close() }) }
	defer closeOnce()
	return RunWithContextCancel(ctx, closeOnce, fn)
}
