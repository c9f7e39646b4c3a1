package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hoshinonyaruko/centipede-in-im/board"
	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Action 客户端通过 websocket 发来的操作
type Action struct {
	Type string `json:"type"` // "fire" 或 "move"
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (act Action) apply(b *board.Board) {
	switch act.Type {
	case "fire":
		b.FireBullet()
	case "move":
		b.MoveShooterToPoint(structs.Position{X: act.X, Y: act.Y})
	}
}

// Watch streams the group's snapshot once per update period and applies
// actions sent by the client. The stream ends after the game is over.
func (a *API) Watch() gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := requireGroup(c)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			a.log.Warn("websocket upgrade for %s failed: %v", groupID, err)
			return
		}
		defer conn.Close()

		closed := make(chan struct{})
		go a.readActions(conn, groupID, closed)

		ticker := time.NewTicker(a.opts.Settings.UpdatePeriod)
		defer ticker.Stop()
		for {
			b, err := a.withGame(groupID, nil)
			if err != nil {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, err.Error()))
				return
			}

			payload, err := json.Marshal(b.Snapshot())
			if err != nil {
				a.log.Error("encoding snapshot of %s: %v", groupID, err)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			if b.State() == structs.StateOver {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
				return
			}

			select {
			case <-closed:
				return
			case <-ticker.C:
			}
		}
	}
}

func (a *API) readActions(conn *websocket.Conn, groupID string, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(maxMessageSize)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.log.Warn("websocket of %s closed: %v", groupID, err)
			}
			return
		}

		var act Action
		if err := json.Unmarshal(message, &act); err != nil {
			a.log.Warn("bad action from %s: %v", groupID, err)
			continue
		}
		if _, err := a.withGame(groupID, act.apply); err != nil {
			a.log.Error("applying %s action for %s: %v", act.Type, groupID, err)
		}
	}
}
