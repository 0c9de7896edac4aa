package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/hub"
	"github.com/DoyleJ11/team-draft-backend/internal/lobby"
	"github.com/DoyleJ11/team-draft-backend/internal/types"
)

var errRateLimited = errors.New("rate limited")
var errUnknownType = errors.New("unknown type")
var errBadJSON = errors.New("bad json")

type Options struct {
	Logger            *zap.Logger
	OriginPatterns    []string
	MessagesPerSecond float64
	Burst             int
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MessagesPerSecond <= 0 {
		opts.MessagesPerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}

	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		lb, err := h.Ensure(r.Context(), code)
		if errors.Is(err, hub.ErrLobbyNotFound) {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("failed to load lobby", zap.String("code", code), zap.Error(err))
			http.Error(w, "failed to load lobby", http.StatusInternalServerError)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			logger.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := logger.With(zap.String("code", code), zap.String("client", clientID))
		log.Debug("client connected")

		connCtx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan lobby.Snapshot, 8)
		select {
		case lb.Inbox() <- lobby.Join{ClientID: clientID, Outbox: out}:
		case <-lb.Done():
			conn.Close(websocket.StatusGoingAway, "lobby closed")
			return
		}
		defer func() {
			select {
			case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
			case <-lb.Done():
			}
		}()

		// Writer goroutine. out is closed when the lobby stops or drops us.
		go func() {
			defer cancel()
			for snap := range out {
				if err := write(connCtx, conn, types.NewSnapshotMessage(snap)); err != nil {
					log.Debug("snapshot write failed", zap.Error(err))
					return
				}
			}
		}()

		limiter := rate.NewLimiter(rate.Limit(opts.MessagesPerSecond), opts.Burst)

		// Reader loop
		for {
			_, data, err := conn.Read(connCtx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}

			if !limiter.Allow() {
				_ = write(connCtx, conn, types.NewErrorMessage(errRateLimited))
				continue
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(connCtx, conn, types.NewErrorMessage(errBadJSON))
				continue
			}

			cmd, ok := toEngineCommand(cm)
			if !ok {
				_ = write(connCtx, conn, types.NewErrorMessage(errUnknownType))
				continue
			}

			if err := lb.Send(connCtx, cmd); err != nil {
				if errors.Is(err, lobby.ErrLobbyClosed) {
					conn.Close(websocket.StatusGoingAway, "lobby closed")
					return
				}
				_ = write(connCtx, conn, types.NewErrorMessage(err))
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case "Spin":
		return engine.Command{Type: engine.CmdSpin}, true
	case "SpinComplete":
		return engine.Command{Type: engine.CmdSpinComplete}, true
	case "Confirm":
		return engine.Command{Type: engine.CmdConfirm}, true
	case "Reset":
		return engine.Command{Type: engine.CmdReset}, true
	default:
		return engine.Command{}, false
	}
}
