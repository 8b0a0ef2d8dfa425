package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"spotit/src/util/eventsource"
)

const wsWriteTimeout = time.Second * 10

var upgrader = websocket.Upgrader{
	// The API is meant for a local rendering layer.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// listen merges the events of the session and the jukebox.
func (api *API) listen(ctx context.Context) <-chan interface{} {
	sessionEvents := api.jukebox.SessionEvents().Listen(ctx)
	jukeboxEvents := api.jukebox.Events().Listen(ctx)
	out := make(chan interface{})
	go func() {
		defer close(out)
		for sessionEvents != nil || jukeboxEvents != nil {
			var event interface{}
			var ok bool
			select {
			case event, ok = <-sessionEvents:
				if !ok {
					sessionEvents = nil
					continue
				}
			case event, ok = <-jukeboxEvents:
				if !ok {
					jukeboxEvents = nil
					continue
				}
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (api *API) events(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	listener := api.listen(ctx)

	es, err := eventsource.Begin(w, r)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	if err := es.EventJSON("status", jsonStatus(api.jukebox.Status())); err != nil {
		return
	}

	for event := range listener {
		name, body, ok := eventMessage(event)
		if !ok {
			continue
		}
		if err := es.EventJSON(name, body); err != nil {
			log.Debugf("Event stream of %s closed: %v", r.RemoteAddr, err)
			return
		}
	}
}

type wsMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type wsCommand struct {
	Command string  `json:"command"`
	Value   float64 `json:"value"`
}

func (api *API) eventsWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Websocket upgrade for %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	clientID := uuid.New().String()
	logger := log.WithField("client", clientID)
	logger.Debugf("Websocket client connected from %s", r.RemoteAddr)
	defer logger.Debugf("Websocket client disconnected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	listener := api.listen(ctx)

	replies := make(chan wsMessage, 8)
	go func() {
		defer cancel()
		for {
			var cmd wsCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Debugf("Websocket read: %v", err)
				}
				return
			}
			if err := api.command(ctx, cmd); err != nil {
				logger.Warnf("Websocket command %q: %v", cmd.Command, err)
				select {
				case replies <- wsMessage{Event: "error", Data: map[string]interface{}{"error": err.Error()}}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	write := func(msg wsMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(msg)
	}
	if err := write(wsMessage{Event: "welcome", Data: map[string]interface{}{"client": clientID}}); err != nil {
		return
	}
	if err := write(wsMessage{Event: "status", Data: jsonStatus(api.jukebox.Status())}); err != nil {
		return
	}
	for {
		var msg wsMessage
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		case msg = <-replies:
		case event, ok := <-listener:
			if !ok {
				return
			}
			name, body, mapped := eventMessage(event)
			if !mapped {
				continue
			}
			msg = wsMessage{Event: name, Data: body}
		}
		if err := write(msg); err != nil {
			logger.Debugf("Websocket write: %v", err)
			return
		}
	}
}

// command applies a transport command received from a websocket client.
func (api *API) command(ctx context.Context, cmd wsCommand) error {
	switch cmd.Command {
	case "next":
		api.jukebox.Next(ctx)
	case "previous":
		api.jukebox.Previous(ctx)
	case "playpause":
		api.jukebox.PlayPause(ctx)
	case "seek":
		api.jukebox.Seek(ctx, fromSeconds(cmd.Value))
	case "volume":
		api.jukebox.SetVolume(ctx, toInt(cmd.Value))
	case "select":
		return api.jukebox.Select(ctx, toInt(cmd.Value), false)
	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
	return nil
}
