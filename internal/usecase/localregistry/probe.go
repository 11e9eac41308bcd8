// Where: cli/internal/usecase/localregistry/probe.go
// What: Registry readiness probe and probe URL resolution.
// Why: Report a registry that started but does not answer before builds hit it.
package localregistry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var errRegistryNotResponding = errors.New("registry not responding")

// ReadinessProbe checks that registry answers on /v2/. caPath, when set, is
// trusted in addition to the system roots.
type ReadinessProbe func(ctx context.Context, registry, caPath string, timeout time.Duration) error

func defaultReadinessProbe(ctx context.Context, registry, caPath string, timeout time.Duration) error {
	if strings.TrimSpace(registry) == "" {
		return nil
	}
	probeURLs := resolveRegistryProbeURLs(registry)
	if len(probeURLs) == 0 {
		return fmt.Errorf("invalid registry address: %s", registry)
	}
	roots, err := registryRootCAs(caPath)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		for _, probeURL := range probeURLs {
			client := registryProbeHTTPClient(probeURL, roots)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
			if err != nil {
				return fmt.Errorf("create registry request: %w", err)
			}
			resp, err := client.Do(req)
			if err == nil {
				_ = resp.Body.Close()
				// 2xx-4xx means the endpoint is reachable and the registry is up.
				if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusInternalServerError {
					return nil
				}
			}
		}
		wait := min(time.Second, time.Until(deadline))
		if wait <= 0 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%w at %s", errRegistryNotResponding, probeURLs[0])
}

func registryRootCAs(caPath string) (*x509.CertPool, error) {
	if strings.TrimSpace(caPath) == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("read registry certificate: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificate found in %s", caPath)
	}
	return pool, nil
}

// resolveRegistryProbeURLs returns /v2/ URLs to try. TLS is tried first since
// the local registry only serves HTTPS.
func resolveRegistryProbeURLs(registry string) []string {
	trimmed := strings.TrimSpace(registry)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		parsed, err := url.Parse(trimmed)
		if err == nil && strings.TrimSpace(parsed.Host) != "" {
			parsed.Path = "/v2/"
			parsed.RawPath = ""
			parsed.RawQuery = ""
			parsed.Fragment = ""
			return []string{parsed.String()}
		}
	}

	host := strings.TrimSuffix(trimmed, "/")
	if slash := strings.Index(host, "/"); slash != -1 {
		host = host[:slash]
	}
	if host == "" {
		return nil
	}
	return []string{(&url.URL{Scheme: "https", Host: host, Path: "/v2/"}).String()}
}

func registryProbeHTTPClient(probeURL string, roots *x509.CertPool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	parsed, err := url.Parse(probeURL)
	if err == nil && shouldBypassRegistryProxy(parsed.Hostname()) {
		transport.Proxy = nil
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}
	if roots != nil {
		transport.TLSClientConfig = &tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12}
	}
	return &http.Client{
		Timeout:   2 * time.Second,
		Transport: transport,
	}
}

func shouldBypassRegistryProxy(host string) bool {
	normalized := strings.ToLower(strings.TrimSpace(host))
	switch normalized {
	case "localhost", "127.0.0.1", "registry", "host.docker.internal":
		return true
	}
	ip := net.ParseIP(normalized)
	return ip != nil && ip.IsLoopback()
}
