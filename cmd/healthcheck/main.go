// Healthcheck probes the watch-mode liveness endpoint. It is meant as a
// container HEALTHCHECK command: exit 0 when /healthz answers 200, exit 1
// otherwise.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const probeTimeout = 2 * time.Second

func main() {
	if err := probe(probeAddr(os.Getenv("NIGHTWATCH_METRICS_ADDR"))); err != nil {
		os.Exit(1)
	}
}

func probe(addr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/healthz", nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

// probeAddr maps the configured bind address to something dialable from
// inside the same container: an empty or bind-all host becomes loopback.
func probeAddr(raw string) string {
	if raw == "" {
		return "127.0.0.1:9090"
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return "127.0.0.1:9090"
	}
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
