package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"growsim.app/internal/protocol"
)

// step builds the next command from the ids created so far.
type step func(ids map[string]string) protocol.Command

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name   = flag.String("name", "bot", "client name")
		strain = flag.String("strain", "ak47", "strain to plant")
		count  = flag.Int("plants", 4, "plants per zone")
		site   = flag.String("structure", "shed", "structure blueprint to rent")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: *name}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}
	var w protocol.WelcomeMsg
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	if err := conn.ReadJSON(&w); err != nil {
		logger.Fatalf("read WELCOME: %v", err)
	}
	logger.Printf("WELCOME session=%s game=%s tick=%d seed=%d paused=%v", w.SessionID, w.Game.GameID, w.Game.Tick, w.Game.Seed, w.Game.Paused)

	steps := []struct {
		key string
		fn  step
	}{
		{"structure", func(map[string]string) protocol.Command {
			return protocol.Command{Type: protocol.CmdRentStructure, BlueprintID: *site}
		}},
		{"growroom", func(ids map[string]string) protocol.Command {
			return protocol.Command{Type: protocol.CmdAddRoom, StructureID: ids["structure"], Name: "Grow", Purpose: "growroom", AreaM2: 30}
		}},
		{"breakroom", func(ids map[string]string) protocol.Command {
			return protocol.Command{Type: protocol.CmdAddRoom, StructureID: ids["structure"], Name: "Break", Purpose: "breakroom", AreaM2: 8}
		}},
		{"zone", func(ids map[string]string) protocol.Command {
			return protocol.Command{Type: protocol.CmdAddZone, StructureID: ids["structure"], RoomID: ids["growroom"], Name: "A", AreaM2: 10, MethodID: "basic_soil_pot"}
		}},
		{"lamp", func(ids map[string]string) protocol.Command {
			return protocol.Command{Type: protocol.CmdInstallDevice, StructureID: ids["structure"], ZoneID: ids["zone"], BlueprintID: "led_veg_150"}
		}},
		{"climate", func(ids map[string]string) protocol.Command {
			return protocol.Command{Type: protocol.CmdInstallDevice, StructureID: ids["structure"], ZoneID: ids["zone"], BlueprintID: "cool_air_split"}
		}},
		{"planting", func(ids map[string]string) protocol.Command {
			return protocol.Command{Type: protocol.CmdPlantStrain, StructureID: ids["structure"], ZoneID: ids["zone"], StrainID: *strain, Quantity: *count}
		}},
		{"plan", func(ids map[string]string) protocol.Command {
			return protocol.Command{Type: protocol.CmdSetPlantingPlan, StructureID: ids["structure"], ZoneID: ids["zone"], StrainID: *strain, Quantity: *count, AutoReplant: true}
		}},
	}

	ids := map[string]string{}
	for i, s := range steps {
		cmd := s.fn(ids)
		cmd.ID = fmt.Sprintf("B%d_%s", i, s.key)
		act := protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, Commands: []protocol.Command{cmd}}
		if err := conn.WriteJSON(act); err != nil {
			logger.Fatalf("send ACT: %v", err)
		}
		ack, err := awaitAck(conn, cmd.ID)
		if err != nil {
			logger.Fatalf("%s: %v", cmd.Type, err)
		}
		if !ack.Accepted {
			logger.Fatalf("%s rejected: %s %s", cmd.Type, ack.Code, ack.Message)
		}
		ids[s.key] = ack.CreatedID
		logger.Printf("%-18s ok %s", cmd.Type, ack.CreatedID)
	}
	logger.Printf("farm ready: structure=%s zone=%s (hire staff from the job market to run it)", ids["structure"], ids["zone"])
}

// awaitAck reads until the ACK for id arrives; other acks are logged.
func awaitAck(conn *websocket.Conn, id string) (protocol.AckMsg, error) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return protocol.AckMsg{}, err
		}
		var ack protocol.AckMsg
		if err := json.Unmarshal(msg, &ack); err != nil || ack.Type != protocol.TypeAck {
			continue
		}
		if ack.AckFor == id {
			return ack, nil
		}
		if !ack.Accepted {
			return ack, fmt.Errorf("server: %s %s", ack.Code, ack.Message)
		}
	}
}
