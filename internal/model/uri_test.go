package model

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURI(t *testing.T) {
	cases := map[string]URI{
		"http://Example.COM":              {Scheme: "http", Host: "example.com", Port: "80", Path: "/"},
		"https://example.com/a/b?c=d#e":   {Scheme: "https", Host: "example.com", Port: "443", Path: "/a/b?c=d"},
		"http://example.com:8080/x":       {Scheme: "http", Host: "example.com", Port: "8080", Path: "/x"},
		"http://u:p@example.com/":         {Scheme: "http", Host: "example.com", Port: "80", Path: "/", Auth: "u:p"},
		"http://[::1]:3000/":              {Scheme: "http", Host: "::1", Port: "3000", Path: "/"},
		"http://bücher.example/":          {Scheme: "http", Host: "xn--bcher-kva.example", Port: "80", Path: "/"},
		"HTTP://example.com/path%20space": {Scheme: "http", Host: "example.com", Port: "80", Path: "/path%20space"},
	}
	for raw, want := range cases {
		got, err := ResolveURI(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestResolveURIInvalid(t *testing.T) {
	for _, raw := range []string{"", "/relative", "example.com", "http://", "http://%zz/"} {
		_, err := ResolveURI(raw)
		var ierr *InputError
		assert.ErrorAs(t, err, &ierr, raw)
	}
}

func TestResolveURL(t *testing.T) {
	u, _ := url.Parse("https://example.com/q?x=1")
	got, err := ResolveURL(u)
	require.NoError(t, err)
	assert.Equal(t, "/q?x=1", got.Path)

	_, err = ResolveURL(nil)
	assert.Error(t, err)
}

func TestURIAuthority(t *testing.T) {
	u, err := ResolveURI("http://example.com:80/")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Authority())
	assert.Equal(t, "example.com:80", u.HostPort())
	assert.Equal(t, "http://example.com/", u.String())

	u, err = ResolveURI("https://[::1]/")
	require.NoError(t, err)
	assert.Equal(t, "[::1]", u.Authority())
	assert.Equal(t, "[::1]:443", u.HostPort())

	u, err = ResolveURI("https://[::1]:8443/")
	require.NoError(t, err)
	assert.Equal(t, "[::1]:8443", u.Authority())
}
