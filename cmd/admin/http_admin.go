package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"growsim.app/internal/persistence/indexdb"
)

// serverState mirrors /admin/v1/state.
type serverState struct {
	GameID    string  `json:"game_id"`
	Tick      uint64  `json:"tick"`
	Paused    bool    `json:"paused"`
	Speed     float64 `json:"speed"`
	LastError string  `json:"last_error"`
	Status    struct {
		Day           uint64  `json:"day"`
		Capital       float64 `json:"capital"`
		TotalRevenue  float64 `json:"total_revenue"`
		TotalExpenses float64 `json:"total_expenses"`
		Structures    int     `json:"structures"`
		Employees     int     `json:"employees"`
		Plants        int     `json:"plants"`
		LivingPlants  int     `json:"living_plants"`
		OpenAlerts    int     `json:"open_alerts"`
		Warnings      int     `json:"warnings_last_tick"`
	} `json:"status"`
	Observers int            `json:"observers"`
	Index     *indexdb.Stats `json:"index"`
}

// saveResult mirrors /admin/v1/save.
type saveResult struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Path   string `json:"path"`
	Tick   uint64 `json:"tick"`
	Digest string `json:"digest"`
}

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	raw := fs.Bool("json", false, "print the raw response")
	_ = fs.Parse(args)

	var st serverState
	body, err := callAdmin(http.MethodGet, adminURL(*baseURL, "state"), 5*time.Second, &st)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *raw {
		fmt.Println(strings.TrimSpace(string(body)))
		return
	}
	printState(os.Stdout, st)
}

func saveCmd(args []string) {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	var res saveResult
	_, err := callAdmin(http.MethodPost, adminURL(*baseURL, "save"), 10*time.Second, &res)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	printSave(os.Stdout, res)
}

func adminURL(base, endpoint string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/admin/v1/" + endpoint
}

// callAdmin decodes the JSON reply into out. Non-2xx replies are errors,
// carrying the server's error text when it sent one.
func callAdmin(method, url string, timeout time.Duration, out any) ([]byte, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, err
	}
	cl := &http.Client{Timeout: timeout}
	resp, err := cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return body, fmt.Errorf("%s: %s", resp.Status, e.Error)
		}
		return body, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return body, fmt.Errorf("decode: %w", err)
	}
	return body, nil
}

func printState(w io.Writer, st serverState) {
	run := fmt.Sprintf("running x%g", st.Speed)
	if st.Paused {
		run = "paused"
	}
	fmt.Fprintf(w, "game %s  tick %d (day %d)  %s\n", st.GameID, st.Tick, st.Status.Day, run)
	if st.LastError != "" {
		fmt.Fprintf(w, "last error: %s\n", st.LastError)
	}
	fmt.Fprintf(w, "capital %s  revenue %s  expenses %s\n",
		dollars(st.Status.Capital), dollars(st.Status.TotalRevenue), dollars(st.Status.TotalExpenses))
	fmt.Fprintf(w, "structures %d  employees %d  plants %d/%d living  alerts %d\n",
		st.Status.Structures, st.Status.Employees, st.Status.LivingPlants, st.Status.Plants, st.Status.OpenAlerts)
	fmt.Fprintf(w, "observers %d", st.Observers)
	if ix := st.Index; ix != nil {
		dropped := ix.DropTick + ix.DropCommand + ix.DropSnapshot + ix.DropMonth
		fmt.Fprintf(w, "  index queue %d/%d dropped %s", ix.QueueDepth, ix.QueueCapacity, humanize.Comma(int64(dropped)))
	}
	fmt.Fprintln(w)
}

func printSave(w io.Writer, res saveResult) {
	digest := res.Digest
	if len(digest) > 12 {
		digest = digest[:12]
	}
	fmt.Fprintf(w, "saved tick %d digest %s\n%s\n", res.Tick, digest, res.Path)
}

func dollars(x float64) string {
	if x < 0 {
		return "-$" + humanize.CommafWithDigits(-x, 2)
	}
	return "$" + humanize.CommafWithDigits(x, 2)
}
