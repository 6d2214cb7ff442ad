// Package httpclient builds the outbound HTTP client shared by the Telegram
// and Gemini clients. Image generation calls and large photo uploads can run
// for minutes, so the timeouts here are deliberately generous.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"
)

const defaultTimeout = 180 * time.Second

type Options struct {
	PreferIPv4 bool
	Timeout    time.Duration
}

func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(opts.PreferIPv4),
	}
}

func newTransport(preferIPv4 bool) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	dial := dialer.DialContext
	if preferIPv4 {
		// Some networks route the Gemini endpoints badly over IPv6; pinning
		// the dial to tcp4 avoids minute-long connection stalls there.
		dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp4", addr)
		}
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dial,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
