// Package config builds kwest clients from a YAML file, with KWEST_*
// environment variables taking precedence over the file.
package config

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	kwest "github.com/frankli0324/go-kwest"
	"github.com/frankli0324/go-kwest/dialer"
	"github.com/frankli0324/go-kwest/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json|console
	} `yaml:"log"`
	Dialer struct {
		DNSServer   string            `yaml:"dns_server"`
		Network     string            `yaml:"network"` // ip4|ip6
		StaticHosts map[string]string `yaml:"static_hosts"`
		Proxy       string            `yaml:"proxy"`
		Insecure    bool              `yaml:"insecure"`
		SendBuffer  int               `yaml:"send_buffer"`
		RecvBuffer  int               `yaml:"recv_buffer"`
		KeepAlive   time.Duration     `yaml:"keep_alive"`
	} `yaml:"dialer"`
	Client struct {
		Headers   map[string]string `yaml:"headers"`
		UserAgent string            `yaml:"user_agent"`
		RequestID string            `yaml:"request_id"` // header name, empty disables
		Timeout   time.Duration     `yaml:"timeout"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
		Metrics struct {
			Enabled   bool   `yaml:"enabled"`
			Namespace string `yaml:"namespace"`
		} `yaml:"metrics"`
	} `yaml:"client"`
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Load reads a .env file from the working directory if there is one, then
// the YAML file at path, then applies environment overrides. An empty path
// skips the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, err
		}
		if cfg, err = Parse(b); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Logger builds a zap logger at the configured level, info by default.
func (c *Config) Logger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if c.Log.Level != "" {
		l, err := zapcore.ParseLevel(c.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("config: log level: %w", err)
		}
		level = l
	}
	zc := zap.NewProductionConfig()
	if c.Log.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// NewDialer derives a CoreDialer from dialer.Default.
func (c *Config) NewDialer() *dialer.CoreDialer {
	d := dialer.Default.Clone()
	dc := c.Dialer
	if dc.DNSServer != "" || dc.Network != "" || len(dc.StaticHosts) > 0 {
		d.ResolveConfig = (&dialer.ResolveConfig{
			CustomDNSServer: dc.DNSServer,
			Network:         dc.Network,
			StaticHosts:     dc.StaticHosts,
		}).Clone()
	}
	if dc.Proxy != "" {
		d.GetProxy = dialer.StaticProxy(dc.Proxy)
	}
	if dc.Insecure {
		if d.TLSConfig == nil {
			d.TLSConfig = &tls.Config{}
		}
		d.TLSConfig.InsecureSkipVerify = true
	}
	if dc.SendBuffer > 0 || dc.RecvBuffer > 0 || dc.KeepAlive != 0 {
		d.SocketConfig = &dialer.SocketConfig{
			SendBuffer: dc.SendBuffer,
			RecvBuffer: dc.RecvBuffer,
			KeepAlive:  dc.KeepAlive,
		}
	}
	return d
}

// Build returns a client wired according to c. Metrics are registered with
// reg when enabled; a nil reg falls back to the default registerer.
//
// From the transport outwards the layers are: default headers and user
// agent, request id, rate limit, timeout, metrics, logging.
func (c *Config) Build(reg prometheus.Registerer) (*kwest.Client, error) {
	log, err := c.Logger()
	if err != nil {
		return nil, err
	}
	return c.BuildWithLogger(log, reg)
}

func (c *Config) BuildWithLogger(log *zap.Logger, reg prometheus.Registerer) (*kwest.Client, error) {
	cl := c.Client
	var mws []kwest.Middleware
	if len(cl.Headers) > 0 {
		mws = append(mws, middleware.DefaultHeaders(cl.Headers))
	}
	if cl.UserAgent != "" {
		mws = append(mws, middleware.UserAgent(cl.UserAgent))
	}
	if cl.RequestID != "" {
		mws = append(mws, middleware.RequestID(cl.RequestID))
	}
	if cl.RateLimit.RPS > 0 {
		mws = append(mws, middleware.NewRateLimit(cl.RateLimit.RPS, cl.RateLimit.Burst))
	}
	if cl.Timeout > 0 {
		mws = append(mws, middleware.Timeout(cl.Timeout))
	}
	if cl.Metrics.Enabled {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		m, err := middleware.NewMetrics(reg, cl.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("config: metrics: %w", err)
		}
		mws = append(mws, m.Middleware())
	}
	mws = append(mws, middleware.Logging(log))

	return kwest.New(
		kwest.WithDialer(c.NewDialer()),
		kwest.WithLogger(log),
		kwest.WithMiddlewares(mws...),
	), nil
}
