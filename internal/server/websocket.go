package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/simman/go-gatekeeper/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// proxyWebSocket upgrades the client connection and relays messages to the
// upstream. It runs only after the filters let the upgrade through.
func (s *Server) proxyWebSocket(w http.ResponseWriter, r *http.Request, upstream config.Upstream) error {
	clientConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade client connection: %w", err)
	}
	defer clientConn.Close()

	scheme := "wss"
	if r.TLS == nil {
		scheme = "ws"
	}
	backendURL := fmt.Sprintf("%s://%s%s", scheme, upstream.Addr, r.URL.RequestURI())

	dialer := websocket.Dialer{
		HandshakeTimeout: upgrader.HandshakeTimeout,
	}

	if upstream.Proxy != "" {
		proxyURL, err := url.Parse(upstream.Proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	backendConn, resp, err := dialer.Dial(backendURL, nil)
	if err != nil {
		if resp != nil {
			log.Error().Int("status", resp.StatusCode).Msg("upstream WebSocket response status")
		}
		return fmt.Errorf("failed to connect to upstream WebSocket %s: %w", backendURL, err)
	}
	defer backendConn.Close()

	log.Info().
		Str("host", r.Host).
		Str("path", r.URL.Path).
		Str("backend", backendURL).
		Msg("WebSocket connection established")

	errCh := make(chan error, 2)

	go func() {
		errCh <- copyWebSocket(backendConn, clientConn, "client->backend")
	}()
	go func() {
		errCh <- copyWebSocket(clientConn, backendConn, "backend->client")
	}()

	// Wait for one direction to finish
	if err := <-errCh; err != nil {
		log.Debug().Err(err).Msg("WebSocket copy error")
	}

	log.Debug().
		Str("host", r.Host).
		Str("path", r.URL.Path).
		Msg("WebSocket connection closed")

	return nil
}

// copyWebSocket copies messages from src to dst
func copyWebSocket(dst, src *websocket.Conn, direction string) error {
	for {
		messageType, message, err := src.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("direction", direction).Msg("unexpected WebSocket close")
			}
			return err
		}

		if err := dst.WriteMessage(messageType, message); err != nil {
			log.Debug().Err(err).Str("direction", direction).Msg("failed to write WebSocket message")
			return err
		}
	}
}
