package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"block-party/server/catalog"
	"block-party/server/config"
	"block-party/server/logging"
	"block-party/server/logging/sinks"
	"block-party/server/powerup"
	"block-party/server/sched"
	"block-party/server/speed"
	"block-party/server/telemetry"
)

const (
	baseBallSpeed = 300.0
	// Per-tick chance that a broken brick drops a pickup in the demo loop.
	dropChance = 0.04
	startLives = 3
)

// Run wires the scheduler to the demo world and serves the telemetry and
// status endpoints until ctx is cancelled.
func Run(ctx context.Context) error {
	configPath := flag.String("config", "config/settings.yaml", "path to the settings file")
	flag.Parse()

	store, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings := store.Settings()

	defs, err := catalog.Load(settings.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	fallback := log.New(os.Stderr, "[block-party] ", log.LstdFlags)
	hub := telemetry.NewHub(fallback)

	router, err := buildRouter(settings, hub, fallback)
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}

	// Every event this session emits carries the session id, so interleaved
	// feeds from restarted daemons stay attributable.
	sessionID := uuid.New().String()
	publisher := logging.WithFields(router, map[string]any{"session": sessionID})
	publishSessionEvent(publisher, "session.started", sessionID)

	model := speed.NewModel(baseBallSpeed)
	model.SetDifficultyFactor(settings.DifficultyFactor)

	pool := newDemoPool()
	paddle := &demoPaddle{}
	bricks := &demoBricks{}
	powerBall := &powerup.Flag{}

	var lives atomic.Int64
	lives.Store(startLives)

	manager := powerup.NewManager(powerup.Config{
		Clock:       sched.SystemClock{},
		Speed:       model,
		Balls:       pool,
		Paddle:      paddle,
		Bricks:      bricks,
		PowerBall:   powerBall,
		Publisher:   publisher,
		Definitions: defs,
		Store:       store,
		OnExtraLife: func() { lives.Add(1) },
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/status", statusHandler(manager, model, pool, paddle, bricks, powerBall, hub, &lives))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{Addr: settings.ListenAddr, Handler: mux}
	serverErr := make(chan error, 1)
	go func() {
		fallback.Printf("listening on %s", settings.ListenAddr)
		serverErr <- server.ListenAndServe()
	}()

	ticker := time.NewTicker(settings.TickInterval())
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-serverErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			break loop
		case now := <-ticker.C:
			if rand.Float64() < dropChance {
				if dropped, ok := manager.RollDrop(rand.Float64()); ok {
					manager.Collect(dropped)
				}
			}
			manager.Update(now)
		}
	}

	manager.Clear()
	publishSessionEvent(publisher, "session.ended", sessionID)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fallback.Printf("http shutdown: %v", err)
	}
	if err := router.Close(shutdownCtx); err != nil {
		fallback.Printf("router close: %v", err)
	}
	return nil
}

func publishSessionEvent(publisher logging.Publisher, eventType logging.EventType, sessionID string) {
	publisher.Publish(context.Background(), logging.Event{
		Type:     eventType,
		Actor:    logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})
}

func buildRouter(settings config.Settings, hub *telemetry.Hub, fallback *log.Logger) (*logging.Router, error) {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = append([]string{"telemetry"}, settings.LogSinks...)
	cfg.JSON.FilePath = settings.LogJSONPath

	named := []logging.NamedSink{{Name: "telemetry", Sink: hub}}
	if cfg.HasSink("console") {
		named = append(named, logging.NamedSink{
			Name: "console",
			Sink: sinks.NewConsoleSink(os.Stdout, cfg.Console),
		})
	}
	if cfg.HasSink("json") && cfg.JSON.FilePath != "" {
		file, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open json sink: %w", err)
		}
		named = append(named, logging.NamedSink{
			Name: "json",
			Sink: sinks.NewJSON(file, cfg.JSON.FlushInterval),
		})
	}
	return logging.NewRouter(logging.ClockFunc(time.Now), cfg, named)
}

type statusResponse struct {
	Tick           uint64         `json:"tick"`
	Lives          int64          `json:"lives"`
	EffectiveSpeed float64        `json:"effectiveSpeed"`
	PowerBall      bool           `json:"powerBall"`
	SafetyNet      *safetyStatus  `json:"safetyNet,omitempty"`
	Effects        []effectStatus `json:"effects"`
	Balls          []ballStatus   `json:"balls"`
	Paddle         paddleStatus   `json:"paddle"`
	BrickDamage    int            `json:"brickDamageEvents"`
	Viewers        int            `json:"viewers"`
}

type effectStatus struct {
	Type        powerup.Type `json:"type"`
	RemainingMs int64        `json:"remainingMs"`
	Infinite    bool         `json:"infinite,omitempty"`
	StackCount  int          `json:"stackCount"`
}

type safetyStatus struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func statusHandler(
	manager *powerup.Manager,
	model *speed.Model,
	pool *demoPool,
	paddle *demoPaddle,
	bricks *demoBricks,
	powerBall *powerup.Flag,
	hub *telemetry.Hub,
	lives *atomic.Int64,
) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		now := time.Now()
		resp := statusResponse{
			Tick:           manager.CurrentTick(),
			Lives:          lives.Load(),
			EffectiveSpeed: model.EffectiveSpeed(),
			PowerBall:      powerBall.Active(),
			Effects:        []effectStatus{},
			Balls:          pool.statuses(),
			Paddle:         paddle.status(),
			BrickDamage:    bricks.damageCount(),
			Viewers:        hub.ClientCount(),
		}
		for _, rec := range manager.ActiveEffects() {
			status := effectStatus{
				Type:       rec.Type,
				Infinite:   rec.Infinite,
				StackCount: rec.StackCount,
			}
			if !rec.Infinite {
				status.RemainingMs = rec.Remaining(now).Milliseconds()
			}
			resp.Effects = append(resp.Effects, status)
		}
		if net, ok := manager.SafetyNet(); ok {
			resp.SafetyNet = &safetyStatus{ID: net.ID, CreatedAt: net.CreatedAt}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
