package internal

import (
	"context"

	"github.com/frankli0324/go-kwest/internal/model"
)

// Pending is the handle of a dispatch running in the background.
type Pending struct {
	cancel context.CancelCauseFunc
	done   chan struct{}

	resp *model.Response
	err  error
}

// Go starts a dispatch and returns immediately. Every failure, including
// invalid input, is delivered through Wait.
func (c *Client) Go(ctx context.Context, input interface{}) *Pending {
	ctx, cancel := context.WithCancelCause(ctx)
	p := &Pending{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.resp, p.err = c.Do(ctx, input)
		if p.err != nil {
			cancel(nil)
			return
		}
		// the context must outlive the body read
		p.resp.OnClose(func() { cancel(nil) })
	}()
	return p
}

// Cancel aborts the in-flight exchange of this dispatch only. After
// cancellation Wait reports a [model.CancellationError].
func (p *Pending) Cancel() {
	p.cancel(context.Canceled)
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the dispatch settles.
func (p *Pending) Wait() (*model.Response, error) {
	<-p.done
	return p.resp, p.err
}
