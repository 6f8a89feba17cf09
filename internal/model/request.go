package model

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Options is the configuration form of a dispatch input.
type Options struct {
	// URI is one of string, *url.URL, URI or *URI.
	URI    interface{}
	Method string
	Header map[string]string
	Body   io.Reader

	// Fields carries extra values down to middlewares and the transport.
	// The keys "uri", "method", "headers" and "normalized" are reserved and
	// never copied onto the request.
	Fields map[string]interface{}
}

// Request is the canonical form of an outbound call.
type Request struct {
	URI    URI
	Method string
	Header *Header
	Body   io.Reader // nil means an empty body
	Fields map[string]interface{}

	normalized bool
}

var reservedFields = map[string]struct{}{
	"uri": {}, "method": {}, "headers": {}, "normalized": {},
}

// Normalize turns a dispatch input into a canonical [Request]. It accepts a
// URI string, a *url.URL, a URI, [Options], or a Request. A Request that was
// already normalized is returned unchanged.
func Normalize(input interface{}) (*Request, error) {
	switch in := input.(type) {
	case *Request:
		if in == nil {
			return nil, &InputError{Reason: "nil request"}
		}
		if in.normalized {
			return in, nil
		}
		uri, err := checkResolved(in.URI)
		if err != nil {
			return nil, err
		}
		return build(uri, in.Method, in.Header.Clone(), in.Body, in.Fields)
	case Options:
		return normalizeOptions(&in)
	case *Options:
		if in == nil {
			return nil, &InputError{Reason: "nil options"}
		}
		return normalizeOptions(in)
	case nil:
		return nil, &InputError{Reason: "missing uri"}
	default:
		uri, err := resolve(input)
		if err != nil {
			return nil, err
		}
		return build(uri, "", &Header{}, nil, nil)
	}
}

func resolve(v interface{}) (URI, error) {
	switch u := v.(type) {
	case string:
		return ResolveURI(u)
	case *url.URL:
		return ResolveURL(u)
	case URI:
		return checkResolved(u)
	case *URI:
		if u == nil {
			return URI{}, &InputError{Reason: "nil uri"}
		}
		return checkResolved(*u)
	case nil:
		return URI{}, &InputError{Reason: "missing uri"}
	}
	return URI{}, &InputError{Input: v, Reason: fmt.Sprintf("unsupported uri type %T", v)}
}

// checkResolved accepts a URI built by hand as long as it is complete,
// folding scheme and host the way ResolveURI does.
func checkResolved(u URI) (URI, error) {
	if !u.Resolved() {
		return URI{}, &InputError{Input: u, Reason: "uri is not resolved"}
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Port == "" {
		u.Port = defaultPorts[u.Scheme]
	}
	return u, nil
}

func normalizeOptions(o *Options) (*Request, error) {
	uri, err := resolve(o.URI)
	if err != nil {
		return nil, err
	}
	return build(uri, o.Method, NewHeader(o.Header), o.Body, o.Fields)
}

// build sets the canonical fields first; the generic merge of extra fields
// afterwards never touches them.
func build(uri URI, method string, header *Header, body io.Reader, fields map[string]interface{}) (*Request, error) {
	if method == "" {
		method = "GET"
	}
	if !httpguts.ValidHeaderFieldName(method) {
		return nil, &InputError{Input: method, Reason: "invalid method"}
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}
	r := &Request{
		URI:        uri,
		Method:     method,
		Header:     header,
		Body:       body,
		normalized: true,
	}
	for k, v := range fields {
		if _, reserved := reservedFields[k]; reserved {
			continue
		}
		if r.Fields == nil {
			r.Fields = make(map[string]interface{}, len(fields))
		}
		r.Fields[k] = v
	}
	return r, nil
}

func validateHeader(h *Header) (err error) {
	h.Each(func(name, value string) {
		if err != nil {
			return
		}
		if !httpguts.ValidHeaderFieldName(name) {
			err = &InputError{Input: name, Reason: "invalid header name"}
		} else if !httpguts.ValidHeaderFieldValue(value) {
			err = &InputError{Input: name, Reason: "invalid header value"}
		}
	})
	return err
}

// Normalized reports whether r came out of [Normalize].
func (r *Request) Normalized() bool {
	return r != nil && r.normalized
}

// Field returns an extra field carried by the request.
func (r *Request) Field(key string) (interface{}, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Clone returns a deep copy of r sharing only the body reader.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if r.Fields != nil {
		c.Fields = make(map[string]interface{}, len(r.Fields))
		for k, v := range r.Fields {
			c.Fields[k] = v
		}
	}
	return &c
}

// WithHeader returns a clone of r with name set to value.
func (r *Request) WithHeader(name, value string) *Request {
	c := r.Clone()
	c.Header.Set(name, value)
	return c
}
