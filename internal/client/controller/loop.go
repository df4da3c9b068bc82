package controller

import (
	"context"
	"sync"
	"time"

	"chessai/internal/core"
)

// Dispatcher runs a server call off the controller goroutine and delivers
// its outcome back onto it.
type Dispatcher interface {
	Dispatch(call Call, done func(*core.GameResponse, error))
}

// Loop is the controller's event goroutine. UI input and call completions
// are serialised through it.
type Loop struct {
	ctx     context.Context
	events  chan func()
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewLoop creates a loop bound to ctx. timeout bounds each dispatched call;
// zero means no limit beyond ctx.
func NewLoop(ctx context.Context, timeout time.Duration) *Loop {
	return &Loop{
		ctx:     ctx,
		events:  make(chan func(), 64),
		timeout: timeout,
	}
}

// Run processes events until the context is cancelled.
func (l *Loop) Run() {
	for {
		select {
		case fn := <-l.events:
			fn()
		case <-l.ctx.Done():
			return
		}
	}
}

// Post queues fn to run on the loop. It returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.events <- fn:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(fn func()) bool {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-l.ctx.Done():
		return false
	}
}

func (l *Loop) Dispatch(call Call, done func(*core.GameResponse, error)) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx := l.ctx
		if l.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.timeout)
			defer cancel()
		}
		resp, err := call(ctx)
		l.Post(func() { done(resp, err) })
	}()
}

// Wait blocks until every dispatched call has returned.
func (l *Loop) Wait() {
	l.wg.Wait()
}
