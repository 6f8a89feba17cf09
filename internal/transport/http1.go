package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"sync"

	"github.com/frankli0324/go-kwest/internal/model"
	"github.com/frankli0324/go-kwest/internal/transport/chunked"
	"golang.org/x/net/http/httpguts"
)

// HTTP1 speaks HTTP/1.1 over an established connection.
type HTTP1 struct{}

// RoundTrip writes the request head, then pipes the body while the response
// head is being read. A failure on either side aborts the exchange and the
// first one recorded is returned.
func (t HTTP1) RoundTrip(ctx context.Context, ex *exchange, out *Outgoing) (*model.RawResponse, error) {
	closeBody := func() {}
	if c, ok := out.Body.(io.Closer); ok {
		var once sync.Once
		closeBody = func() { once.Do(func() { c.Close() }) }
		// a Read blocked on the body only returns once the body is closed
		ex.addCloser(closeBody)
	}
	bw := bufio.NewWriter(ex.conn) // default bufsize is 4096
	if err := t.writeHeader(bw, out); err != nil {
		return nil, ex.fail("write", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, ex.fail("write", err)
	}
	if out.Body != nil {
		go func() {
			defer closeBody()
			if err := t.writeBody(bw, out); err != nil {
				ex.fail("body", err)
			}
		}()
	}

	raw, err := t.ReadResponse(bufio.NewReader(ex.conn), out.Method)
	if err != nil {
		return nil, ex.fail("read", err)
	}
	return raw, nil
}

// writeHeader writes the status and header part of an http 1.1 request
// e.g.:
//
//	GET / HTTP/1.1\r\n
//	Host: www.google.com\r\n
//	X-Xx-Yy: cccccc\r\n
//	\r\n
func (t HTTP1) writeHeader(w *bufio.Writer, r *Outgoing) error {
	w.WriteString(r.Method)
	w.WriteByte(' ')
	w.WriteString(r.Path)
	w.WriteString(" HTTP/1.1\r\n")

	w.WriteString("Host: ")
	w.WriteString(r.Authority)
	w.WriteString("\r\n")
	switch {
	case r.ContentLength >= 0:
		w.WriteString("Content-Length: ")
		w.WriteString(strconv.FormatInt(r.ContentLength, 10))
		w.WriteString("\r\n")
	case r.Body != nil:
		w.WriteString("Transfer-Encoding: chunked\r\n")
	}
	for _, f := range r.Header {
		w.WriteString(f.Name)
		w.WriteString(": ")
		w.WriteString(f.Value)
		if _, err := w.WriteString("\r\n"); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// writeBody copies the request body onto the wire.
func (t HTTP1) writeBody(w *bufio.Writer, r *Outgoing) (err error) {
	if r.ContentLength == -1 {
		cw := chunked.NewChunkedWriter(w)
		if _, err := io.Copy(cw, r.Body); err != nil {
			return err
		}
		if err := cw.Close(); err != nil {
			return err
		}
		return w.Flush()
	}
	n, err := io.Copy(w, io.LimitReader(r.Body, r.ContentLength))
	if err != nil {
		return err
	}
	if n != r.ContentLength {
		return fmt.Errorf("request body length %d does not match content-length %d", n, r.ContentLength)
	}
	return w.Flush()
}

// ReadResponse reads a response head from r and frames the body that
// follows it. Interim 1xx responses other than 101 are skipped.
func (t HTTP1) ReadResponse(r *bufio.Reader, method string) (*model.RawResponse, error) {
	tp := textproto.NewReader(r)
	for {
		resp, err := t.readHead(tp)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 100 && resp.StatusCode < 200 && resp.StatusCode != http.StatusSwitchingProtocols {
			continue
		}
		return resp, t.readTransfer(r, method, resp)
	}
}

func (t HTTP1) readHead(tp *textproto.Reader) (*model.RawResponse, error) {
	line, err := tp.ReadLine()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	proto, status, ok := strings.Cut(line, " ")
	if !ok {
		return nil, errors.New("malformed HTTP response " + strconv.Quote(line))
	}
	resp := &model.RawResponse{Proto: proto, Status: strings.TrimLeft(status, " ")}

	statusCode, _, _ := strings.Cut(resp.Status, " ")
	if len(statusCode) != 3 {
		return nil, errors.New("malformed HTTP status code " + statusCode)
	}
	resp.StatusCode, err = strconv.Atoi(statusCode)
	if err != nil || resp.StatusCode < 0 {
		return nil, errors.New("malformed HTTP status code " + statusCode)
	}

	// header lines are kept in wire order, textproto.MIMEHeader would lose it
	for {
		line, err := tp.ReadContinuedLine()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !httpguts.ValidHeaderFieldName(name) {
			return nil, errors.New("malformed MIME header line: " + line)
		}
		resp.Header = append(resp.Header, model.Field{Name: name, Value: strings.TrimSpace(value)})
	}
	return resp, nil
}

func headerValues(fields []model.Field, name string) (values []string) {
	for _, f := range fields {
		if strings.EqualFold(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return
}

func bodyless(method string, code int) bool {
	switch {
	case method == "HEAD":
		return true
	case method == "CONNECT" && code >= 200 && code < 300:
		return true
	case code >= 100 && code < 200, code == http.StatusNoContent, code == http.StatusNotModified:
		return true
	}
	return false
}

func (t HTTP1) readTransfer(r *bufio.Reader, method string, resp *model.RawResponse) error {
	contentLens := headerValues(resp.Header, "Content-Length")

	// Hardening against HTTP request smuggling, taken from standard library
	if len(contentLens) > 1 {
		// Per RFC 7230 Section 3.3.2
		first := textproto.TrimString(contentLens[0])
		for _, ct := range contentLens[1:] {
			if first != textproto.TrimString(ct) {
				return fmt.Errorf("http: message cannot contain multiple Content-Length headers; got %q", contentLens)
			}
		}
	}

	cl := int64(-1)
	if len(contentLens) > 0 {
		n, err := strconv.ParseUint(textproto.TrimString(contentLens[0]), 10, 63)
		if err != nil {
			return fmt.Errorf("http: bad Content-Length %q", contentLens[0])
		}
		cl = int64(n)
	}

	resp.ContentLength = cl
	if bodyless(method, resp.StatusCode) {
		resp.Body = http.NoBody
		return nil
	}
	if httpguts.HeaderValuesContainsToken(headerValues(resp.Header, "Transfer-Encoding"), "chunked") {
		resp.ContentLength = -1
		resp.Body = io.NopCloser(chunked.NewChunkedReader(r))
		return nil
	}
	switch {
	case cl > 0:
		resp.Body = io.NopCloser(io.LimitReader(r, cl))
	case cl == 0:
		resp.Body = http.NoBody
	default: // delimited by the connection closing
		resp.Body = io.NopCloser(r)
	}
	return nil
}

// Connect establishes a tunnel to target through an HTTP proxy on conn.
func (t HTTP1) Connect(conn net.Conn, target string, header []model.Field) error {
	bw := bufio.NewWriter(conn)
	if err := t.writeHeader(bw, &Outgoing{
		Method: "CONNECT", Path: target, Authority: target,
		Header: header, ContentLength: -1,
	}); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	// the proxy sends nothing after its response head until the tunnel is
	// used, so the buffered reader does not swallow tunnel bytes
	resp, err := t.ReadResponse(bufio.NewReader(conn), "CONNECT")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		s, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("proxy server returned error. status:%d, body:%s", resp.StatusCode, string(s))
	}
	return nil
}
