package server

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/simman/go-gatekeeper/internal/config"
)

// tunnelConnect establishes a raw tunnel for a CONNECT request that the
// filters let through.
func (s *Server) tunnelConnect(w http.ResponseWriter, r *http.Request, upstream config.Upstream) error {
	var targetConn net.Conn
	var err error

	if upstream.Proxy != "" {
		targetConn, err = connectThroughProxy(upstream.Proxy, upstream.Addr)
	} else {
		targetConn, err = net.DialTimeout("tcp", upstream.Addr, 30*time.Second)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to target: %w", err)
	}
	defer targetConn.Close()

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		return fmt.Errorf("response writer does not support hijacking")
	}

	clientConn, _, err := hijacker.Hijack()
	if err != nil {
		return fmt.Errorf("failed to hijack connection: %w", err)
	}
	defer clientConn.Close()

	if _, err := clientConn.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n")); err != nil {
		return fmt.Errorf("failed to send connection established: %w", err)
	}

	log.Info().
		Str("host", r.Host).
		Str("target", upstream.Addr).
		Msg("CONNECT tunnel established")

	errCh := make(chan error, 2)

	go func() {
		_, err := io.Copy(targetConn, clientConn)
		errCh <- err
	}()
	go func() {
		_, err := io.Copy(clientConn, targetConn)
		errCh <- err
	}()

	// Wait for one direction to finish
	if err := <-errCh; err != nil && err != io.EOF {
		log.Debug().Err(err).Msg("tunnel copy error")
	}

	log.Debug().
		Str("host", r.Host).
		Str("target", upstream.Addr).
		Msg("CONNECT tunnel closed")

	return nil
}

// connectThroughProxy connects to the target through an HTTP proxy
func connectThroughProxy(proxyURL, targetAddr string) (net.Conn, error) {
	proxy, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}

	proxyConn, err := net.DialTimeout("tcp", proxy.Host, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to proxy: %w", err)
	}

	connectReq := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n\r\n", targetAddr, targetAddr)
	if _, err := proxyConn.Write([]byte(connectReq)); err != nil {
		proxyConn.Close()
		return nil, fmt.Errorf("failed to send CONNECT to proxy: %w", err)
	}

	buf := make([]byte, 1024)
	n, err := proxyConn.Read(buf)
	if err != nil {
		proxyConn.Close()
		return nil, fmt.Errorf("failed to read proxy response: %w", err)
	}

	response := string(buf[:n])
	if len(response) < 12 || response[9:12] != "200" {
		proxyConn.Close()
		return nil, fmt.Errorf("proxy returned non-200 response: %s", response)
	}

	return proxyConn, nil
}
