package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	persistlog "growsim.app/internal/persistence/log"
	"growsim.app/internal/persistence/snapshot"
	"growsim.app/internal/protocol"
	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/company"
	"growsim.app/internal/sim/game"
	"growsim.app/internal/sim/staff"
	"growsim.app/internal/sim/tuning"
	"growsim.app/internal/transport/observer"
	"growsim.app/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		gameID     = flag.String("game", "game_1", "game id")
		seed       = flag.Int64("seed", 1337, "game seed (used only when starting a fresh game)")
		configDir  = flag.String("configs", "./configs", "config directory")
		schemaDir  = flag.String("schemas", "./schemas", "protocol schema directory (empty disables ACT validation)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable indexing (frames/audit + catalogs + snapshot metadata)")
		namesURL   = flag.String("names_url", "", "optional randomuser.me style endpoint for candidate names")
		startPause = flag.Bool("paused", false, "start with the clock paused")

		snapPath   = flag.String("snapshot", "", "path to save to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest save from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	gameDir := filepath.Join(*dataDir, "games", *gameID)
	_ = os.MkdirAll(gameDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if tune.ProtocolVersion != "" && tune.ProtocolVersion != protocol.Version {
		logger.Fatalf("tuning protocol_version=%s, server speaks %s", tune.ProtocolVersion, protocol.Version)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	names := staff.NewHTTPNameSource(strings.TrimSpace(*namesURL), logger)
	deps := game.Deps{Config: company.ConfigFromTuning(tune), Catalogs: cats}
	if names != nil {
		names.Prefetch()
		deps.Names = names
	}

	// Optional: read-model index backend (does not affect sim determinism).
	idx, err := openRuntimeIndex(gameDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index backend: upsert catalogs: %v", err)
		}
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad, err = snapshot.Latest(filepath.Join(gameDir, "snapshots"))
		if err != nil {
			logger.Fatalf("find latest save: %v", err)
		}
	}

	var state game.State
	if snapshotToLoad != "" {
		save, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read save: %v", err)
		}
		if save.Header.GameID != "" && save.Header.GameID != *gameID {
			logger.Fatalf("save game id mismatch: flag=%s save=%s", *gameID, save.Header.GameID)
		}
		state, err = game.Load(save, deps)
		if err != nil {
			logger.Fatalf("load save: %v", err)
		}
		logger.Printf("resumed from save=%s tick=%d", filepath.Base(snapshotToLoad), state.Ticks)
	} else {
		state, err = game.New(*seed, deps)
		if err != nil {
			logger.Fatalf("new game: %v", err)
		}
		logger.Printf("new game %s seed=%d capital=%.2f", *gameID, *seed, state.Company.Capital)
	}

	loop := game.NewLoop(state, game.LoopConfig{
		GameID:             *gameID,
		TickInterval:       time.Duration(tune.TickIntervalMs) * time.Millisecond,
		Speed:              tune.Speed,
		SnapshotEveryTicks: uint64(max(tune.SnapshotEveryTicks, 0)),
		StartPaused:        *startPause,
		InboxSize:          envInt("GS_INBOX_SIZE", 0),
	}, logger)

	ctx, cancel := signalContext()
	defer cancel()
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	tickLog := persistlog.NewTickLogger(gameDir)
	auditLog := persistlog.NewAuditLogger(gameDir)
	defer tickLog.Close()
	defer auditLog.Close()
	loop.SetTickLogger(tickLog)
	if idx != nil {
		loop.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})
		loop.OnTick(idx.RecordFrame)
	} else {
		loop.SetAuditLogger(auditLog)
	}

	status := &statusTracker{}
	loop.OnTick(status.Observe)

	welcome := func() protocol.WelcomeMsg {
		return protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			Game: protocol.GameParams{
				GameID:         loop.GameID(),
				Seed:           loop.Seed(),
				Tick:           loop.CurrentTick(),
				TickIntervalMs: int(loop.TickInterval().Milliseconds()),
				Speed:          loop.Speed(),
				Paused:         loop.Paused(),
			},
			Catalogs: protocol.CatalogDigests{
				StructuresDigest: cats.Structures.Digest,
				StrainsDigest:    cats.Strains.Digest,
				DevicesDigest:    cats.Devices.Digest,
				MethodsDigest:    cats.Methods.Digest,
				PricesDigest:     cats.Prices.Digest,
				TasksDigest:      cats.Tasks.Digest,
				TuningDigest:     tuning.Digest(tune),
			},
		}
	}

	obsSrv := observer.NewServer(logger)
	obsSrv.Welcome = welcome
	loop.OnTick(obsSrv.Observe)

	// Save writer.
	saves := saveWriter{gameDir: gameDir, ticksPerMonth: tune.Economy.TicksPerMonth, idx: idx, logger: logger}
	snapCh := make(chan snapshot.SaveV1, 2)
	loop.SetSnapshotSink(snapCh)
	go saves.run(loopCtx, snapCh)

	saveNow := func(ctx context.Context) (string, error) {
		save, err := loop.SaveNow(ctx)
		if err != nil {
			return "", err
		}
		return saves.persist(save)
	}

	var actSchema *jsonschema.Schema
	if dir := strings.TrimSpace(*schemaDir); dir != "" {
		actSchema, err = jsonschema.Compile(filepath.Join(dir, "act.schema.json"))
		if err != nil {
			logger.Fatalf("compile act schema: %v", err)
		}
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(loopCtx); err != nil && err != context.Canceled {
			logger.Printf("game loop stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, *gameID, loop, status.Get(), obsSrv.Subscribers(), idx)
	})

	enableAdminHTTP := envBool("GS_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("GS_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		// Local-only admin endpoints (do not affect simulation determinism).
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			resp := struct {
				GameID    string         `json:"game_id"`
				Tick      uint64         `json:"tick"`
				Paused    bool           `json:"paused"`
				Speed     float64        `json:"speed"`
				LastError string         `json:"last_error,omitempty"`
				Status    statusSnapshot `json:"status"`
				Observers int            `json:"observers"`
				Index     any            `json:"index,omitempty"`
			}{
				GameID:    *gameID,
				Tick:      loop.CurrentTick(),
				Paused:    loop.Paused(),
				Speed:     loop.Speed(),
				LastError: loop.LastError(),
				Status:    status.Get(),
				Observers: obsSrv.Subscribers(),
			}
			if idx != nil {
				resp.Index = idx.Stats()
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(resp)
		})
		mux.HandleFunc("/admin/v1/save", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			save, err := loop.SaveNow(ctx2)
			var path string
			if err == nil {
				path, err = saves.persist(save)
			}
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{
				"ok":     true,
				"path":   path,
				"tick":   save.Header.Tick,
				"digest": save.Header.Digest,
			})
		})
		mux.HandleFunc("/admin/v1/observer/bootstrap", obsSrv.BootstrapHandler())
		mux.HandleFunc("/admin/v1/observer/ws", obsSrv.WSHandler())
	} else {
		logger.Printf("admin endpoints disabled (GS_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (GS_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(loop, ws.Options{
		Welcome:   welcome,
		Save:      saveNow,
		ActSchema: actSchema,
	}, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// Final save while the loop is still running, then stop it.
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if path, err := saveNow(saveCtx); err != nil {
		logger.Printf("final save: %v", err)
	} else {
		logger.Printf("final save %s", filepath.Base(path))
	}
	saveCancel()
	stopLoop()
	<-loopDone
	loop.Stop()
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
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

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

type multiAuditLogger struct {
	a game.AuditLogger
	b game.AuditLogger
}

func (m multiAuditLogger) WriteAudit(entry game.AuditEntry) error {
	if m.a != nil {
		_ = m.a.WriteAudit(entry)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return nil
}
