package model

import (
	"io"
	"net/http"
	"strconv"
	"sync"
)

// RawResponse is what a transport produces before decoration.
type RawResponse struct {
	Proto      string
	Status     string
	StatusCode int
	Header     []Field // as delivered, in wire order

	ContentLength int64 // -1 when unknown
	Body          io.ReadCloser
}

// Response is the outcome of a completed exchange. It is its own body
// stream: reading from it consumes the payload, which can happen at most
// once, and header reads never touch the stream.
type Response struct {
	Proto      string
	Status     string
	StatusCode int

	RawHeader []Field // header lines as the transport delivered them
	Header    *Header // case-insensitive view, may be altered by middlewares

	ContentLength int64

	mu      sync.Mutex
	body    io.ReadCloser
	closed  bool
	onClose []func()
}

// Decorate attaches the case-insensitive header view and the body handle
// to a raw transport response.
func Decorate(raw *RawResponse) *Response {
	status := raw.Status
	if status == "" {
		status = strconv.Itoa(raw.StatusCode) + " " + http.StatusText(raw.StatusCode)
	}
	return &Response{
		Proto:         raw.Proto,
		Status:        status,
		StatusCode:    raw.StatusCode,
		RawHeader:     raw.Header,
		Header:        HeaderOf(raw.Header...),
		ContentLength: raw.ContentLength,
		body:          raw.Body,
	}
}

// NewResponse builds a synthetic response, e.g. for a middleware that
// recovers from an error without reaching the network.
func NewResponse(code int, header *Header, body io.Reader) *Response {
	if header == nil {
		header = &Header{}
	}
	rc, ok := body.(io.ReadCloser)
	if !ok && body != nil {
		rc = io.NopCloser(body)
	}
	return &Response{
		Proto:         "HTTP/1.1",
		Status:        strconv.Itoa(code) + " " + http.StatusText(code),
		StatusCode:    code,
		RawHeader:     header.Fields(),
		Header:        header,
		ContentLength: -1,
		body:          rc,
	}
}

func (r *Response) GetHeader(name string) string {
	return r.Header.Get(name)
}

func (r *Response) SetHeader(name, value string) {
	if r.Header == nil {
		r.Header = &Header{}
	}
	r.Header.Set(name, value)
}

// Data returns the response itself as the unconsumed body stream.
func (r *Response) Data() io.ReadCloser {
	return r
}

func (r *Response) Read(p []byte) (int, error) {
	r.mu.Lock()
	body, closed := r.body, r.closed
	r.mu.Unlock()
	if closed {
		return 0, ErrBodyClosed
	}
	if body == nil {
		return 0, io.EOF
	}
	return body.Read(p)
}

// Close releases the body and the exchange behind it. It is safe to call
// more than once.
func (r *Response) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	body, hooks := r.body, r.onClose
	r.onClose = nil
	r.mu.Unlock()

	var err error
	if body != nil {
		err = body.Close()
	}
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	return err
}

// OnClose registers fn to run when the response is closed. Hooks run in
// reverse registration order; fn runs immediately if already closed.
func (r *Response) OnClose(fn func()) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		fn()
		return
	}
	r.onClose = append(r.onClose, fn)
	r.mu.Unlock()
}
