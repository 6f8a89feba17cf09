package model

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeInputs(t *testing.T) {
	want, err := ResolveURI("http://example.com/a?b=c")
	require.NoError(t, err)
	u, _ := url.Parse("http://example.com/a?b=c")

	for name, in := range map[string]interface{}{
		"string":   "http://example.com/a?b=c",
		"url":      u,
		"uri":      want,
		"uri ptr":  &want,
		"options":  Options{URI: "http://example.com/a?b=c"},
		"opts ptr": &Options{URI: u},
	} {
		r, err := Normalize(in)
		require.NoError(t, err, name)
		assert.Equal(t, want, r.URI, name)
		assert.Equal(t, "GET", r.Method, name)
		assert.True(t, r.Normalized(), name)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	r, err := Normalize(Options{
		URI:    "http://example.com/",
		Method: "POST",
		Header: map[string]string{"X-A": "1"},
		Body:   strings.NewReader("x"),
	})
	require.NoError(t, err)
	again, err := Normalize(r)
	require.NoError(t, err)
	assert.Same(t, r, again)
}

func TestNormalizeUnnormalizedRequest(t *testing.T) {
	uri, _ := ResolveURI("http://example.com/")
	r, err := Normalize(&Request{URI: uri})
	require.NoError(t, err)
	assert.Equal(t, "GET", r.Method)
	assert.NotNil(t, r.Header)
}

func TestNormalizeFields(t *testing.T) {
	r, err := Normalize(Options{
		URI: "http://example.com/",
		Fields: map[string]interface{}{
			"auth":       "u:p",
			"uri":        "http://evil.example/",
			"method":     "DELETE",
			"headers":    "x",
			"normalized": false,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "example.com", r.URI.Host)
	assert.Equal(t, "GET", r.Method)
	assert.Equal(t, map[string]interface{}{"auth": "u:p"}, r.Fields)
	v, ok := r.Field("auth")
	assert.True(t, ok)
	assert.Equal(t, "u:p", v)
}

func TestNormalizeErrors(t *testing.T) {
	for name, in := range map[string]interface{}{
		"nil":            nil,
		"nil options":    (*Options)(nil),
		"nil request":    (*Request)(nil),
		"int":            42,
		"relative":       "/path",
		"unresolved uri": URI{Host: "example.com"},
		"empty request":  &Request{},
		"no host":        &Request{URI: URI{Scheme: "http", Port: "8080", Path: "/"}},
		"no path":        &Request{URI: URI{Scheme: "http", Host: "example.com", Port: "80"}},
		"bad method":     Options{URI: "http://example.com/", Method: "GE T"},
		"bad header":     Options{URI: "http://example.com/", Header: map[string]string{"x a": "1"}},
		"bad value":      Options{URI: "http://example.com/", Header: map[string]string{"x": "a\nb"}},
		"non string uri": Options{URI: 3},
	} {
		_, err := Normalize(in)
		var ierr *InputError
		assert.ErrorAs(t, err, &ierr, name)
	}
}

func TestRequestWithHeader(t *testing.T) {
	r, err := Normalize(Options{URI: "http://example.com/", Fields: map[string]interface{}{"k": 1}})
	require.NoError(t, err)
	c := r.WithHeader("X-A", "1")
	c.Fields["k"] = 2
	assert.False(t, r.Header.Has("x-a"))
	assert.Equal(t, 1, r.Fields["k"])
	assert.True(t, c.Normalized())
}

func TestNormalizeResolvedURICasing(t *testing.T) {
	want, err := ResolveURI("HTTP://Example.COM/x")
	require.NoError(t, err)

	r, err := Normalize(URI{Scheme: "HTTP", Host: "Example.COM", Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, want, r.URI)

	r, err = Normalize(&Request{URI: URI{Scheme: "Https", Host: "API.example.com", Path: "/"}})
	require.NoError(t, err)
	assert.Equal(t, "https", r.URI.Scheme)
	assert.Equal(t, "api.example.com", r.URI.Host)
	assert.Equal(t, "443", r.URI.Port)
}
