package api

import (
	"encoding/json"
	"errors"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/rocket-telemetry/dashboard/pkg/chart"
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/services"
)

// RegisterWebSocketRoutes mounts /ws/playback behind the session middleware.
func RegisterWebSocketRoutes(app *fiber.App, sessions services.SessionService, layouts services.LayoutService, logger customlog.Logger) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/playback", SessionMiddleware(sessions), websocket.New(func(conn *websocket.Conn) {
		PlaybackWebSocketHandler(conn, layouts, logger)
	}))

	logger.Infof("Registered playback WebSocket endpoint at /ws/playback")
}

// PlaybackWebSocketHandler pushes a rendered dashboard on every playback
// change of the connection's session and applies play/pause/seek commands.
func PlaybackWebSocketHandler(conn *websocket.Conn, layouts services.LayoutService, logger customlog.Logger) {
	sess, ok := conn.Locals(sessionLocalKey).(*services.Session)
	if !ok || sess == nil {
		logger.Errorf("Playback WS connected without a session: %s", conn.RemoteAddr())
		return
	}
	log := logger.WithField("session", sess.ID)
	log.Infof("Playback WebSocket connected: %s", conn.RemoteAddr())

	updates, unsubscribe := sess.Player().Subscribe()
	defer unsubscribe()

	commands := make(chan PlaybackCommand)
	done := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)
	go readCommands(conn, commands, done, quit, log)

	if err := sendDashboard(conn, sess, layouts); err != nil {
		log.Warnf("Playback WS initial send failed: %v", err)
		return
	}

	for {
		select {
		case <-done:
			log.Infof("Playback WebSocket disconnected: %s", conn.RemoteAddr())
			return
		case cmd := <-commands:
			if err := applyCommand(sess, cmd); err != nil {
				if err := writeJSON(conn, PlaybackMessage{Type: MessageError, State: sess.Player().State(), Message: err.Error()}); err != nil {
					return
				}
			}
		case _, open := <-updates:
			if !open {
				log.Infof("Session ended, closing playback WebSocket")
				return
			}
			if err := sendDashboard(conn, sess, layouts); err != nil {
				log.Warnf("Playback WS send failed: %v", err)
				return
			}
		}
	}
}

// readCommands owns the read side of conn. It closes done when the peer goes
// away and stops forwarding once quit is closed.
func readCommands(conn *websocket.Conn, commands chan<- PlaybackCommand, done chan<- struct{}, quit <-chan struct{}, logger customlog.Logger) {
	defer close(done)
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
				logger.Warnf("Playback WS read error: %v", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			logger.Debugf("Ignoring non-text Playback WS message type: %d", mt)
			continue
		}

		var cmd PlaybackCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			logger.Warnf("Failed to unmarshal playback command: %v. Message: %s", err, string(msg))
			continue
		}
		select {
		case commands <- cmd:
		case <-quit:
			return
		}
	}
}

var errUnknownAction = errors.New("unknown playback action")

func applyCommand(sess *services.Session, cmd PlaybackCommand) error {
	sess.Touch()
	player := sess.Player()
	switch cmd.Action {
	case ActionPlay:
		player.Play()
	case ActionPause:
		player.Pause()
	case ActionSeek:
		player.Seek(cmd.Index)
	default:
		return errUnknownAction
	}
	return nil
}

func sendDashboard(conn *websocket.Conn, sess *services.Session, layouts services.LayoutService) error {
	ds, state := sess.Snapshot()
	if ds.Len() == 0 {
		return writeJSON(conn, PlaybackMessage{Type: MessageWarning, State: state, Message: "No data found in dataset"})
	}

	d, err := chart.NewBuilder(layouts.GetLayout()).Build(ds, state.Index)
	if err != nil {
		return writeJSON(conn, PlaybackMessage{Type: MessageError, State: state, Message: err.Error()})
	}
	d.Playing = state.Playing
	return writeJSON(conn, PlaybackMessage{Type: MessageDashboard, State: state, Dashboard: &d})
}

func writeJSON(conn *websocket.Conn, msg PlaybackMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
