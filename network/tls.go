package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// BrowserTransport is a RoundTripper that performs the TLS handshake with a
// Chrome Client Hello. It prefers HTTP/2 and falls back to HTTP/1.1 when the
// server refuses h2. Plain http requests go through a regular transport.
type BrowserTransport struct {
	h1      *http.Transport
	h2      *http2.Transport
	plain   *http.Transport
	timeout time.Duration
}

// NewBrowserTransport creates a BrowserTransport whose dials time out after timeout.
func NewBrowserTransport(timeout time.Duration) *BrowserTransport {
	b := &BrowserTransport{
		plain:   newTransport(),
		timeout: timeout,
	}

	b.h2 = &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return b.dial(ctx, network, addr, nil)
		},
	}

	b.h1 = &http.Transport{
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return b.dial(ctx, network, addr, []string{"http/1.1"})
		},
	}

	return b
}

func (b *BrowserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return b.plain.RoundTrip(req)
	}

	resp, err := b.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	// a consumed body cannot be replayed on the fallback
	if req.Body != nil && req.GetBody == nil {
		return nil, err
	}

	fallback := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, bodyErr
		}
		fallback.Body = body
	}

	return b.h1.RoundTrip(fallback)
}

func (b *BrowserTransport) dial(ctx context.Context, network, addr string, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: b.timeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	config := &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}
	if protos != nil {
		config.NextProtos = protos
	}

	tlsConn := utls.UClient(conn, config, utls.HelloChrome_120)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
