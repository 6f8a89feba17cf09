package transport

import (
	"errors"
	"net"
	"sync"

	"github.com/frankli0324/go-kwest/internal/model"
)

var errAborted = errors.New("exchange aborted")

// exchange is one request/response round over a dedicated connection.
// The first failure recorded wins; recording it also tears the
// connection down so that every blocked read or write returns.
type exchange struct {
	conn net.Conn
	uri  string

	failOnce sync.Once
	err      error

	mu      sync.Mutex
	closed  bool
	onClose []func()
}

func newExchange(conn net.Conn, uri string) *exchange {
	return &exchange{conn: conn, uri: uri}
}

// fail records err as the exchange's error unless another one came first,
// and returns whichever was recorded.
func (e *exchange) fail(op string, err error) error {
	e.failOnce.Do(func() {
		e.err = &model.TransportError{Op: op, URI: e.uri, Err: err}
		e.close()
	})
	return e.err
}

// Abort terminates the exchange.
func (e *exchange) Abort() {
	e.fail("abort", errAborted)
}

// addCloser registers fn to run when the exchange is torn down.
func (e *exchange) addCloser(fn func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		fn()
		return
	}
	e.onClose = append(e.onClose, fn)
	e.mu.Unlock()
}

func (e *exchange) close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	hooks := e.onClose
	e.onClose = nil
	e.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	e.conn.Close()
}
