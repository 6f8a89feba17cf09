package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/frankli0324/go-kwest/internal/model"
	"golang.org/x/net/http2"
)

// H2 runs a single request over a connection that negotiated h2 through
// ALPN. The connection is not shared with other exchanges.
type H2 struct {
	Transport *http2.Transport
}

var defaultH2Transport = &http2.Transport{}

func (t H2) RoundTrip(ctx context.Context, ex *exchange, out *Outgoing) (*model.RawResponse, error) {
	tr := t.Transport
	if tr == nil {
		tr = defaultH2Transport
	}
	cc, err := tr.NewClientConn(ex.conn)
	if err != nil {
		return nil, ex.fail("handshake", err)
	}
	ex.addCloser(func() { cc.Close() })

	req, err := t.stdRequest(ctx, out)
	if err != nil {
		return nil, ex.fail("write", err)
	}
	resp, err := cc.RoundTrip(req)
	if err != nil {
		return nil, ex.fail("roundtrip", err)
	}

	raw := &model.RawResponse{
		Proto:         resp.Proto,
		Status:        resp.Status,
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}
	// h2 header blocks carry no meaningful order once decoded
	names := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		for _, v := range resp.Header[k] {
			raw.Header = append(raw.Header, model.Field{Name: k, Value: v})
		}
	}
	return raw, nil
}

func (t H2) stdRequest(ctx context.Context, out *Outgoing) (*http.Request, error) {
	u, err := url.ParseRequestURI(out.Path)
	if err != nil {
		return nil, err
	}
	u.Scheme, u.Host = "https", out.Authority

	req := &http.Request{
		Method:        out.Method,
		URL:           u,
		Proto:         "HTTP/2.0",
		ProtoMajor:    2,
		Header:        make(http.Header, len(out.Header)),
		Host:          out.Authority,
		ContentLength: out.ContentLength,
	}
	for _, f := range out.Header {
		req.Header.Add(f.Name, f.Value)
	}
	if out.Body != nil {
		rc, ok := out.Body.(io.ReadCloser)
		if !ok {
			rc = io.NopCloser(out.Body)
		}
		req.Body = rc
		if req.ContentLength == -1 {
			req.ContentLength = 0 // with a non-nil Body this means unknown
		}
	} else if req.ContentLength < 0 {
		req.ContentLength = 0
	}
	return req.WithContext(ctx), nil
}
