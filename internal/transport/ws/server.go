package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"growsim.app/internal/protocol"
	"growsim.app/internal/sim/game"
)

// Game is the part of game.Loop a player connection drives.
type Game interface {
	Submit(sub game.Submission) error
	Pause() error
	Resume() error
	SetSpeed(speed float64) error
}

type Options struct {
	// Welcome builds the WELCOME sent after a valid HELLO.
	Welcome func() protocol.WelcomeMsg
	// Save handles CONTROL SAVE; nil disables it.
	Save func(ctx context.Context) (string, error)
	// ActSchema, if set, validates every ACT before it is queued.
	ActSchema *jsonschema.Schema
}

type Server struct {
	game Game
	opts Options
	log  *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(g Game, opts Options, logger *log.Logger) *Server {
	return &Server{
		game: g,
		opts: opts,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		actor, ok := s.handshake(conn)
		if !ok {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := make(chan []byte, 64)
		results := make(chan game.Result, 256)

		// Writer goroutine.
		go func() {
			for {
				var b []byte
				select {
				case <-ctx.Done():
					return
				case b = <-out:
				case res := <-results:
					b, _ = json.Marshal(protocol.AckMsg{
						Type:            protocol.TypeAck,
						ProtocolVersion: protocol.Version,
						AckFor:          res.CommandID,
						Accepted:        res.Accepted,
						Code:            res.Code,
						Message:         res.Message,
						CreatedID:       res.CreatedID,
					})
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				sendAck(out, "", protocol.ErrProtoBadRequest, "malformed message")
				continue
			}
			if base.ProtocolVersion != protocol.Version {
				sendAck(out, "", protocol.ErrProtoBadRequest, "bad protocol_version")
				continue
			}
			switch base.Type {
			case protocol.TypeAct:
				s.handleAct(actor, msg, out, results)
			case protocol.TypeControl:
				s.handleControl(ctx, msg, out)
			default:
				sendAck(out, "", protocol.ErrProtoBadRequest, fmt.Sprintf("unexpected %s", base.Type))
			}
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (actor string, ok bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", false
	}
	if hello.ClientName == "" {
		hello.ClientName = "player"
	}

	sid := fmt.Sprintf("P%d", s.nextID.Add(1))
	welcome := protocol.WelcomeMsg{Type: protocol.TypeWelcome, ProtocolVersion: protocol.Version}
	if s.opts.Welcome != nil {
		welcome = s.opts.Welcome()
	}
	welcome.SessionID = sid
	if err := writeJSON(conn, welcome); err != nil {
		return "", false
	}
	if s.log != nil {
		s.log.Printf("player %s connected as %s", hello.ClientName, sid)
	}
	return sid + ":" + hello.ClientName, true
}

func (s *Server) handleAct(actor string, msg []byte, out chan<- []byte, results chan<- game.Result) {
	if s.opts.ActSchema != nil {
		var raw any
		if err := json.Unmarshal(msg, &raw); err != nil {
			sendAck(out, "", protocol.ErrProtoBadRequest, "malformed ACT")
			return
		}
		if err := s.opts.ActSchema.Validate(raw); err != nil {
			sendAck(out, "", protocol.ErrProtoBadRequest, err.Error())
			return
		}
	}
	var act protocol.ActMsg
	if err := json.Unmarshal(msg, &act); err != nil {
		sendAck(out, "", protocol.ErrProtoBadRequest, "malformed ACT")
		return
	}
	for _, cmd := range act.Commands {
		if err := s.game.Submit(game.Submission{Actor: actor, Cmd: cmd, Reply: results}); err != nil {
			sendAck(out, cmd.ID, protocol.ErrBusy, err.Error())
		}
	}
}

func (s *Server) handleControl(ctx context.Context, msg []byte, out chan<- []byte) {
	var c protocol.ControlMsg
	if err := json.Unmarshal(msg, &c); err != nil {
		sendAck(out, "", protocol.ErrProtoBadRequest, "malformed CONTROL")
		return
	}
	var (
		err     error
		created string
	)
	switch c.Action {
	case protocol.ControlPause:
		err = s.game.Pause()
	case protocol.ControlResume:
		err = s.game.Resume()
	case protocol.ControlSpeed:
		err = s.game.SetSpeed(c.Speed)
	case protocol.ControlSave:
		if s.opts.Save == nil {
			sendAck(out, c.Action, protocol.ErrBadRequest, "saving is disabled")
			return
		}
		sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		created, err = s.opts.Save(sctx)
		cancel()
	default:
		sendAck(out, c.Action, protocol.ErrBadRequest, "unknown control action")
		return
	}
	if err != nil {
		sendAck(out, c.Action, protocol.ErrBadRequest, err.Error())
		return
	}
	b, _ := json.Marshal(protocol.AckMsg{Type: protocol.TypeAck, ProtocolVersion: protocol.Version, AckFor: c.Action, Accepted: true, CreatedID: created})
	enqueue(out, b)
}

func sendAck(out chan<- []byte, ackFor, code, message string) {
	b, _ := json.Marshal(protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          ackFor,
		Accepted:        false,
		Code:            code,
		Message:         message,
	})
	enqueue(out, b)
}

func enqueue(out chan<- []byte, b []byte) {
	select {
	case out <- b:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
