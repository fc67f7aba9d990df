package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"growsim.app/internal/protocol"
)

func main() {
	var (
		url   = flag.String("url", "ws://127.0.0.1:8080/admin/v1/observer/ws", "observer ws url")
		every = flag.Uint64("every", 1, "print every Nth tick")
		quiet = flag.Bool("quiet", false, "only print alerts and harvests")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[watch] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "watch"}); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session=%s game=%s seed=%d tick=%d speed=%.1fx", w.SessionID, w.Game.GameID, w.Game.Seed, w.Game.Tick, w.Game.Speed)
		case protocol.TypeTick:
			var t protocol.TickMsg
			if err := json.Unmarshal(msg, &t); err != nil {
				continue
			}
			printTick(os.Stdout, t, *every, *quiet)
		}
	}
}

func printTick(w io.Writer, t protocol.TickMsg, every uint64, quiet bool) {
	for _, a := range t.Alerts {
		fmt.Fprintf(w, "tick %d  ALERT %s: %s\n", t.Tick, a.Type, a.Message)
	}
	for _, h := range t.Harvests {
		fmt.Fprintf(w, "tick %d  HARVEST %d plants, %.1f g, %s\n", t.Tick, h.Count, h.TotalYield, money(h.TotalRevenue))
	}
	if quiet || every == 0 || t.Tick%every != 0 {
		return
	}
	fmt.Fprintf(w, "day %d %02d:00  tick %d  capital %s  staff %d  tasks claimed %d resolved %d\n",
		t.Day, t.HourOfDay, t.Tick, money(t.Capital), t.Employees, t.Claimed, t.Resolved)
	for _, s := range t.Structures {
		fmt.Fprintf(w, "  %-20s plants %d/%d %s expected %.1f g, %d open tasks\n",
			s.Name, s.Living, s.Plants, stages(s.ByStage), s.ExpectedYield, s.Tasks)
	}
}

func money(x float64) string {
	if x < 0 {
		return "-$" + humanize.CommafWithDigits(-x, 2)
	}
	return "$" + humanize.CommafWithDigits(x, 2)
}

func stages(by map[string]int) string {
	if len(by) == 0 {
		return "[]"
	}
	keys := make([]string, 0, len(by))
	for k := range by {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, by[k]))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
