package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Yagnik-Gohil/skribbl-server/internal/registry"
	"github.com/Yagnik-Gohil/skribbl-server/internal/room"
	"github.com/Yagnik-Gohil/skribbl-server/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the connection and runs the read loop. Each
// connection gets a fresh client id; closing the socket, however it
// happens, is a disconnect.
func Handler(g *registry.Registry, log *zap.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := log.With(zap.String("client", clientID))

		// Abrupt or clean, the drop always cleans up. Uses a detached
		// context: r.Context() is already cancelled by the time the
		// socket is gone.
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			if _, err := g.Disconnect(ctx, clientID); err == nil {
				log.Info("client disconnected")
			}
		}()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()

		// Burst-tolerant cap on inbound actions per connection.
		limiter := rate.NewLimiter(rate.Limit(10), 20)

		c := client{ws: conn, writeCtx: writeCtx}

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			if !limiter.Allow() {
				c.writeError("rate limited")
				continue
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				c.writeError("bad json")
				continue
			}

			switch cm.Type {
			case types.ActionJoin:
				out := make(chan room.Notification, 16)
				p := room.Participant{
					ID:      clientID,
					RoomID:  cm.Room,
					IsAdmin: cm.Admin,
					Name:    cm.Name,
				}
				if _, err := g.Join(r.Context(), p, clientID, out); err != nil {
					c.writeError(err.Error())
					continue
				}
				go c.pump(out)
				log.Info("client joined", zap.String("room", cm.Room))

			case types.ActionLeave:
				if _, err := g.Leave(r.Context(), clientID); err != nil {
					c.writeError(err.Error())
				}

			case types.ActionUpdateConfiguration:
				if cm.Config == nil {
					c.writeError("missing config")
					continue
				}
				if _, err := g.UpdateConfiguration(r.Context(), cm.Room, *cm.Config); err != nil {
					c.writeError(err.Error())
				}

			case types.ActionWordSelection:
				if _, err := g.StartWordSelection(r.Context(), clientID); err != nil {
					c.writeError(err.Error())
				}

			case types.ActionWordSelected:
				if _, err := g.SelectWord(r.Context(), cm.Room, cm.Word); err != nil {
					c.writeError(err.Error())
				}

			case types.ActionWordGuessed:
				p, ok := g.ParticipantByClient(r.Context(), clientID)
				if !ok {
					c.writeError(registry.ErrClientNotInAnyRoom.Error())
					continue
				}
				if _, err := g.RecordCorrectGuess(r.Context(), p.RoomID, clientID); err != nil {
					c.writeError(err.Error())
				}

			default:
				c.writeError("unknown type")
			}
		}
	}
}

type client struct {
	ws       *websocket.Conn
	writeCtx context.Context
}

// pump drains one room subscription onto the socket. The room closes
// the channel when the client leaves, is dropped, or re-joins with a
// fresh outbox.
func (c client) pump(out <-chan room.Notification) {
	for n := range out {
		payload, err := json.Marshal(n)
		if err != nil {
			continue
		}
		ctx, cancel := context.WithTimeout(c.writeCtx, writeTimeout)
		_ = c.ws.Write(ctx, websocket.MessageText, payload)
		cancel()
	}
}

func (c client) writeError(msg string) {
	payload, _ := json.Marshal(types.ErrorMessage{Type: "error", Error: msg})
	ctx, cancel := context.WithTimeout(c.writeCtx, writeTimeout)
	_ = c.ws.Write(ctx, websocket.MessageText, payload)
	cancel()
}
