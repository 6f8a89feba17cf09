package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ApplyEnv overrides cfg with the KWEST_* environment variables that are
// set. KWEST_HEADERS and KWEST_STATIC_HOSTS are comma separated k=v lists,
// socket buffer sizes accept units ("64KiB").
func ApplyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("KWEST_LOG_LEVEL", &cfg.Log.Level)
	str("KWEST_LOG_FORMAT", &cfg.Log.Format)
	str("KWEST_DNS_SERVER", &cfg.Dialer.DNSServer)
	str("KWEST_NETWORK", &cfg.Dialer.Network)
	str("KWEST_PROXY", &cfg.Dialer.Proxy)
	str("KWEST_USER_AGENT", &cfg.Client.UserAgent)
	str("KWEST_REQUEST_ID", &cfg.Client.RequestID)
	str("KWEST_METRICS_NAMESPACE", &cfg.Client.Metrics.Namespace)

	if v := os.Getenv("KWEST_INSECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: KWEST_INSECURE: %w", err)
		}
		cfg.Dialer.Insecure = b
	}
	if v := os.Getenv("KWEST_METRICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: KWEST_METRICS: %w", err)
		}
		cfg.Client.Metrics.Enabled = b
	}
	if v := os.Getenv("KWEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: KWEST_TIMEOUT: %w", err)
		}
		cfg.Client.Timeout = d
	}
	if v := os.Getenv("KWEST_RATE_RPS"); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("config: KWEST_RATE_RPS: %w", err)
		}
		cfg.Client.RateLimit.RPS = f
	}
	if v := os.Getenv("KWEST_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: KWEST_RATE_BURST: %w", err)
		}
		cfg.Client.RateLimit.Burst = n
	}
	for key, dst := range map[string]*int{
		"KWEST_SEND_BUFFER": &cfg.Dialer.SendBuffer,
		"KWEST_RECV_BUFFER": &cfg.Dialer.RecvBuffer,
	} {
		if v := os.Getenv(key); v != "" {
			n, err := humanize.ParseBytes(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			*dst = int(n)
		}
	}
	if v := os.Getenv("KWEST_HEADERS"); v != "" {
		m, err := parsePairs(v)
		if err != nil {
			return fmt.Errorf("config: KWEST_HEADERS: %w", err)
		}
		cfg.Client.Headers = m
	}
	if v := os.Getenv("KWEST_STATIC_HOSTS"); v != "" {
		m, err := parsePairs(v)
		if err != nil {
			return fmt.Errorf("config: KWEST_STATIC_HOSTS: %w", err)
		}
		cfg.Dialer.StaticHosts = m
	}
	return nil
}

func parsePairs(v string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, val, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("malformed pair %q", p)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return out, nil
}
