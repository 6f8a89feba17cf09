package transport

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/frankli0324/go-kwest/internal/model"
	"golang.org/x/net/http/httpguts"
)

// Outgoing is a request projected onto the shape the wire transports take:
// the structured URI is split into its components and the header is
// flattened.
type Outgoing struct {
	Scheme    string
	Host      string
	Port      string
	Path      string
	Authority string // Host header value
	Method    string

	Header        []model.Field // without Host, Content-Length and Transfer-Encoding
	Body          io.Reader     // nil means no body
	ContentLength int64         // -1 means unknown, sent chunked

	Fields map[string]interface{}
}

// Project builds the Outgoing form of r. A Host header from the caller
// overrides the authority, a Content-Length header is only honoured for
// bodies whose size cannot be determined.
func Project(r *model.Request) (*Outgoing, error) {
	out := &Outgoing{
		Scheme:        r.URI.Scheme,
		Host:          r.URI.Host,
		Port:          r.URI.Port,
		Path:          r.URI.Path,
		Authority:     r.URI.Authority(),
		Method:        r.Method,
		Body:          r.Body,
		ContentLength: -1,
		Fields:        r.Fields,
	}
	if out.Body == http.NoBody {
		out.Body = nil
	}

	declared := int64(-1)
	var err error
	r.Header.Each(func(name, value string) {
		if err != nil {
			return
		}
		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
			err = &model.InputError{Input: name, Reason: "invalid header"}
			return
		}
		switch strings.ToLower(name) {
		case "host":
			out.Authority = value
		case "content-length":
			n, perr := strconv.ParseInt(value, 10, 64)
			if perr != nil || n < 0 {
				err = &model.InputError{Input: value, Reason: "invalid content-length"}
				return
			}
			declared = n
		case "transfer-encoding":
		default:
			out.Header = append(out.Header, model.Field{Name: name, Value: value})
		}
	})
	if err != nil {
		return nil, err
	}

	if out.Body != nil {
		out.ContentLength = bodySize(out.Body)
		if out.ContentLength == -1 {
			out.ContentLength = declared
		} else if declared != -1 && declared != out.ContentLength {
			return nil, &model.InputError{
				Input:  declared,
				Reason: fmt.Sprintf("content-length conflicts with body size %d", out.ContentLength),
			}
		}
		if out.ContentLength == 0 {
			out.Body = nil
		}
	} else if declared > 0 {
		return nil, &model.InputError{Input: declared, Reason: "content-length set without a body"}
	}
	if out.Body == nil && (declared == 0 || methodExpectsBody(out.Method)) {
		out.ContentLength = 0
	}

	if auth := basicAuth(r); auth != "" && !r.Header.Has("Authorization") {
		out.Header = append(out.Header, model.Field{Name: "Authorization", Value: auth})
	}
	return out, nil
}

// bodySize reports the remaining length of readers that know it.
func bodySize(b io.Reader) int64 {
	switch v := b.(type) {
	case interface{ Len() int }: // bytes.Buffer, bytes.Reader, strings.Reader
		return int64(v.Len())
	case interface{ Size() int64 }:
		return v.Size()
	}
	return -1
}

func methodExpectsBody(method string) bool {
	return method == "POST" || method == "PUT" || method == "PATCH"
}

// basicAuth resolves the "auth" field, falling back to the URI userinfo.
func basicAuth(r *model.Request) string {
	auth, _ := r.Fields["auth"].(string)
	if auth == "" {
		auth = r.URI.Auth
	}
	if auth == "" {
		return ""
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(auth))
}
