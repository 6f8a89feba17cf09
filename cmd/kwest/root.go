package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	kwest "github.com/frankli0324/go-kwest"
	"github.com/frankli0324/go-kwest/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "unknown"
)

type flags struct {
	method  string
	headers []string
	data    string
	config  string
	output  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "kwest [flags] URL",
		Short:         "Send one HTTP request through the kwest pipeline",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args[0])
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	fl := cmd.Flags()
	fl.StringVarP(&f.method, "request", "X", "", "request method (default GET, POST with -d)")
	fl.StringArrayVarP(&f.headers, "header", "H", nil, `extra header "Name: value", repeatable`)
	fl.StringVarP(&f.data, "data", "d", "", "request body, @file reads it from a file")
	fl.StringVarP(&f.config, "config", "c", "", "config file path")
	fl.StringVarP(&f.output, "output", "o", "", "write the body to a file instead of stdout")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "print status line and response headers")
	return cmd
}

func parseHeaders(lines []string) (map[string]string, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	h := make(map[string]string, len(lines))
	for _, l := range lines {
		name, value, ok := strings.Cut(l, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("malformed header %q", l)
		}
		h[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return h, nil
}

func body(data string) (io.Reader, error) {
	if data == "" {
		return nil, nil
	}
	if path, ok := strings.CutPrefix(data, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(b), nil
	}
	return strings.NewReader(data), nil
}

func run(cmd *cobra.Command, f *flags, uri string) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if f.verbose && cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	log, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// command line tools have no scraper, metrics stay unregistered
	cfg.Client.Metrics.Enabled = false
	client, err := cfg.BuildWithLogger(log, nil)
	if err != nil {
		return err
	}

	header, err := parseHeaders(f.headers)
	if err != nil {
		return err
	}
	b, err := body(f.data)
	if err != nil {
		return err
	}
	method := f.method
	if method == "" && b != nil {
		method = "POST"
	}

	resp, err := client.Do(cmd.Context(), kwest.Options{
		URI:    uri,
		Method: method,
		Header: header,
		Body:   b,
	})
	if err != nil {
		return err
	}
	defer resp.Close()

	stderr := cmd.ErrOrStderr()
	if f.verbose {
		fmt.Fprintf(stderr, "< %s %s\n", resp.Proto, resp.Status)
		resp.Header.Each(func(name, value string) {
			fmt.Fprintf(stderr, "< %s: %s\n", name, value)
		})
		fmt.Fprintln(stderr, "<")
	}

	out := cmd.OutOrStdout()
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}
	n, err := io.Copy(out, resp.Data())
	if err != nil {
		return err
	}
	if f.verbose {
		fmt.Fprintf(stderr, "* %s received\n", humanize.Bytes(uint64(n)))
	}
	log.Debug("done", zap.Int64("bytes", n), zap.Int("status", resp.StatusCode))
	return nil
}
