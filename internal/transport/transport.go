// Package transport builds the http.RoundTripper stack the API client sends
// requests through: an optional Chrome TLS fingerprint at the bottom and a
// circuit breaker on top.
package transport

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

// Options selects the layers New assembles.
type Options struct {
	// Timeout bounds dialing and the TLS handshake.
	Timeout time.Duration
	// ChromeTLS presents a Chrome ClientHello instead of Go's own. Some CDNs
	// in front of the e-commerce API throttle the Go fingerprint.
	ChromeTLS bool
	// Breaker wraps the transport in a circuit breaker when non-nil.
	Breaker *BreakerConfig
}

// New assembles the transport described by opts.
func New(opts Options) http.RoundTripper {
	var base http.RoundTripper
	if opts.ChromeTLS {
		base = NewChromeTransport(opts.Timeout)
	} else {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSHandshakeTimeout = opts.Timeout
		base = t
	}
	if opts.Breaker != nil {
		return NewBreakerTransport(base, *opts.Breaker)
	}
	return base
}

// NewChromeTransport returns a RoundTripper that dials TLS with uTLS using
// HelloChrome_Auto and lets ALPN pick h2 or http/1.1.
func NewChromeTransport(timeout time.Duration) http.RoundTripper {
	dialer := &net.Dialer{Timeout: timeout}

	return &chromeTransport{
		h2: &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialChromeTLS(ctx, dialer, network, addr)
			},
		},
		h1: &http.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialChromeTLS(ctx, dialer, network, addr)
			},
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		},
	}
}

type chromeTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

// RoundTrip tries HTTP/2 first and falls back to HTTP/1.1. Plain http URLs
// go straight to the HTTP/1.1 transport.
func (t *chromeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.h1.RoundTrip(req)
	}
	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// body already consumed by the h2 attempt
		return nil, err
	}
	if req.GetBody != nil {
		body, gerr := req.GetBody()
		if gerr != nil {
			return nil, err
		}
		req = req.Clone(req.Context())
		req.Body = body
	}
	return t.h1.RoundTrip(req)
}

func dialChromeTLS(ctx context.Context, dialer *net.Dialer, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}
	return tlsConn, nil
}
