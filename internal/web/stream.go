package web

import (
	"context"
	"net/http"
	"time"

	"glassngold/internal/pipeline"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeTimeout = 10 * time.Second

// handlePortfolioStream pushes the pipeline state on connect and after every
// change. Only the latest state matters, so a slow reader skips
// intermediate snapshots.
func (s *Server) handlePortfolioStream(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if allowsAnyOrigin(s.cfg.AllowedOrigins) {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = s.cfg.AllowedOrigins
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.log.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream ended")

	// The client never sends; CloseRead handles control frames and cancels
	// ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	updates := make(chan pipeline.State, 1)
	cancel := s.pipeline.Subscribe(func(st pipeline.State) {
		select {
		case updates <- st:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- st:
			default:
			}
		}
	})
	defer cancel()

	s.log.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))
	if err := s.writeState(ctx, conn, s.pipeline.State()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case st := <-updates:
			if err := s.writeState(ctx, conn, st); err != nil {
				s.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) writeState(ctx context.Context, conn *websocket.Conn, st pipeline.State) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, st)
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
