package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"growsim.app/internal/protocol"
	"growsim.app/internal/sim/game"
)

// Server fans settled tick summaries out to read-only observers. Observe is
// registered with game.Loop.OnTick and runs on the loop goroutine.
type Server struct {
	log *log.Logger

	// Welcome builds the WELCOME sent after HELLO and served by the bootstrap
	// endpoint.
	Welcome func() protocol.WelcomeMsg

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu     sync.Mutex
	subs   map[string]chan []byte
	latest []byte
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log:  logger,
		subs: map[string]chan []byte{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Observe encodes the frame once and offers it to every subscriber. Slow
// observers only ever see the newest tick.
func (s *Server) Observe(f game.Frame) {
	b, err := json.Marshal(BuildTick(f))
	if err != nil {
		if s.log != nil {
			s.log.Printf("observer: encode tick %d: %v", f.Tick, err)
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = b
	for _, ch := range s.subs {
		sendLatest(ch, b)
	}
}

func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// BuildTick summarizes a frame. It reads frame.State and must be called before
// the observer callback returns.
func BuildTick(f game.Frame) protocol.TickMsg {
	st := f.State
	at := game.State{Ticks: f.Tick}
	msg := protocol.TickMsg{
		Type:            protocol.TypeTick,
		ProtocolVersion: protocol.Version,
		Tick:            f.Tick,
		Day:             at.Day(),
		HourOfDay:       at.HourOfDay(),
		Digest:          f.Digest,
		Ledger:          []protocol.LedgerEntry{},
		Warnings:        f.Report.Warnings,
		Claimed:         f.Report.Claimed,
		Resolved:        len(f.Report.Resolved),
		Structures:      []protocol.StructureObs{},
	}
	for _, e := range f.Report.Ledger {
		msg.Ledger = append(msg.Ledger, protocol.LedgerEntry{Category: e.Category, Amount: e.Amount, Revenue: e.Revenue})
	}
	for _, h := range f.Report.Harvests {
		msg.Harvests = append(msg.Harvests, protocol.HarvestObs{Count: h.Count, TotalYield: h.TotalYield, TotalRevenue: h.TotalRevenue})
	}
	for _, a := range f.Report.NewAlerts {
		msg.Alerts = append(msg.Alerts, protocol.AlertObs{ID: a.ID, Type: string(a.Type), Message: a.Message, ZoneID: a.Location.ZoneID})
	}

	c := st.Company
	if c == nil {
		return msg
	}
	msg.Capital = c.Capital
	msg.TotalRevenue = c.TotalRevenue()
	msg.TotalExpenses = c.TotalExpenses()
	msg.Employees = len(c.Employees)
	for _, s := range c.SortedStructures() {
		sum := s.PlantSummary()
		obs := protocol.StructureObs{
			ID:            s.ID,
			Name:          s.Name,
			Plants:        sum.Total,
			Living:        sum.Living,
			ExpectedYield: s.ExpectedYield(),
			Tasks:         len(c.Tasks(s.ID)),
		}
		if len(sum.ByStage) > 0 {
			obs.ByStage = make(map[string]int, len(sum.ByStage))
			for stage, n := range sum.ByStage {
				obs.ByStage[string(stage)] = n
			}
		}
		msg.Structures = append(msg.Structures, obs)
	}
	return msg
}

type bootstrapResponse struct {
	protocol.WelcomeMsg
	Latest json.RawMessage `json:"latest,omitempty"`
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		resp := bootstrapResponse{WelcomeMsg: s.welcome()}
		s.mu.Lock()
		resp.Latest = s.latest
		s.mu.Unlock()

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send HELLO first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var hello protocol.HelloMsg
		if err := json.Unmarshal(msg, &hello); err != nil || hello.Type != protocol.TypeHello || hello.ProtocolVersion != protocol.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
			return
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		welcome := s.welcome()
		welcome.SessionID = sid
		b, _ := json.Marshal(welcome)
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}

		tickOut := make(chan []byte, 8)
		s.mu.Lock()
		s.subs[sid] = tickOut
		if s.latest != nil {
			tickOut <- s.latest
		}
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.subs, sid)
			s.mu.Unlock()
		}()
		if s.log != nil {
			s.log.Printf("observer %s joined (%s)", sid, hello.ClientName)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-tickOut:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: observers send nothing useful; reads detect disconnects.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (s *Server) welcome() protocol.WelcomeMsg {
	if s.Welcome != nil {
		return s.Welcome()
	}
	return protocol.WelcomeMsg{Type: protocol.TypeWelcome, ProtocolVersion: protocol.Version}
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
