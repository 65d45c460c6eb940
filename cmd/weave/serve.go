package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/weaverun/weave/internal/config"
	"github.com/weaverun/weave/pkg/arraymap"
	"github.com/weaverun/weave/pkg/asynx"
	"github.com/weaverun/weave/pkg/hostclock"
	"github.com/weaverun/weave/pkg/reactive"
	"github.com/weaverun/weave/pkg/stws"
	"github.com/weaverun/weave/pkg/telemetry"
	"github.com/weaverun/weave/pkg/transport/wsbridge"
)

// demoItems seeds the reactive list each session mirrors to its
// client. serve is a demonstration harness, not a page framework: it
// exists to exercise pkg/reactive, pkg/arraymap, pkg/stws, and
// pkg/transport/wsbridge end to end under a real WebSocket connection.
var demoItems = []string{"alpha", "bravo", "charlie", "delta", "echo"}

func serveCmd() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a WebSocket server mirroring a reactive list to remote clients",
		Long: `serve starts an HTTP+WebSocket server. Each connecting client gets
its own reactive.Scheduler driving a live list: pkg/arraymap derives
remote nodes from a changing slice of strings, and the Sequential
Three-Way Splice reconciler (pkg/stws) applies the minimal set of
insert/remove/replace operations over pkg/transport/wsbridge as that
slice changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New()
			if configPath != "" {
				loaded, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if addr != "" {
				host, port, err := splitHostPort(addr)
				if err != nil {
					return err
				}
				cfg.Host, cfg.Port = host, port
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to weave.json (defaults omitted flags)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, host:port (overrides config)")

	return cmd
}

func runServe(cfg *config.Config) error {
	logger := slog.Default().With("component", "serve")

	var metrics *telemetry.Metrics
	var tracer *telemetry.Tracer
	if cfg.Telemetry.Enabled {
		metrics = telemetry.NewMetrics(telemetry.WithNamespace(cfg.Telemetry.Namespace))
		tracer = telemetry.NewTracer(telemetry.WithTracerName(cfg.Telemetry.Namespace))
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if cfg.Telemetry.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", "error", err)
			return
		}
		// conn outlives the HTTP handler (which returns as soon as the
		// upgrade completes), so the session gets its own background
		// context rather than r.Context(), which cancels on return.
		go serveSession(context.Background(), conn, cfg, metrics, tracer, logger)
	})

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		info("listening on %s", cfg.Address())
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-sigCh:
		warn("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		success("shut down cleanly")
	}
	return nil
}

// serveSession owns one connection end to end: its own Scheduler, its
// own RealClock-driven AsynX engine, its own reactive list, and the
// STWS reconciliation loop that keeps the client's tree in sync with
// it.
//
// The reactive graph this session owns (pkg/reactive, pkg/asynx) is
// single-threaded by design (spec.md §5): no mutex guards Scheduler,
// Owner, or Source state. Setup below runs synchronously on the
// goroutine the HTTP handler spawned us on, before the RealClock's
// worker goroutine has anything to do; every touch after that —
// the render effect's re-runs, the recurring mutation, and teardown —
// is marshaled onto that one worker goroutine instead (the recurring
// mutation because AsynX dispatch itself runs there, teardown
// explicitly via engine.Redispatch), so the graph is never entered
// from two goroutines at once.
func serveSession(ctx context.Context, conn *websocket.Conn, cfg *config.Config, metrics *telemetry.Metrics, tracer *telemetry.Tracer, logger *slog.Logger) {
	defer conn.Close()

	bridge := wsbridge.NewBridge(conn)
	bridge.OnError = func(err error) {
		logger.Warn("session read error", "error", err)
	}

	if metrics != nil {
		metrics.RootCreated()
		defer metrics.RootClosed()
	}

	clock := hostclock.NewRealClock(0)
	defer clock.Stop()

	sched := reactive.NewScheduler()
	engine := asynx.NewEngine(sched, clock)
	items := reactive.MakeObservable(sched, append([]string(nil), demoItems...))

	mapped := arraymap.MakeMapArray(sched, items.Read, func(v string, _ func() int) *wsbridge.RemoteNode {
		return bridge.NewNode("li", []byte(v))
	})

	var current []stws.Node
	reconcile := func() {
		values := mapped.Read()
		next := make([]stws.Node, len(values))
		for i, v := range values {
			next[i] = v
		}
		counted := telemetry.WrapNode(bridge.Root())
		run := func() telemetry.ReconcileCounts {
			stws.Reconcile(counted, &current, next)
			return counted.Counts
		}

		switch {
		case tracer != nil && metrics != nil:
			tracer.TraceReconcile(ctx, func() (telemetry.ReconcileCounts, error) {
				return metrics.ObserveReconcile(run), nil
			})
		case tracer != nil:
			tracer.TraceReconcile(ctx, func() (telemetry.ReconcileCounts, error) {
				return run(), nil
			})
		case metrics != nil:
			metrics.ObserveReconcile(run)
		default:
			run()
		}
	}

	var rootDispose func()
	reactive.Root(sched, func(dispose func()) {
		rootDispose = dispose
		// A tracked observer, not an explicit reconcileOnce() call: it runs
		// eagerly on creation and again after every settle that changes
		// mapped's value, so STWS reconciliation tracks the list
		// regardless of what triggered the settle (the recurring mutation
		// below, or anything else writing to items in the future).
		reactive.MakeObserver(sched, reconcile)
	})

	stopped := false
	var currentTask *asynx.Task[struct{}]
	var scheduleMutation func()
	scheduleMutation = func() {
		tick := func() {
			items.WriteFn(mutateDemoList)
			if !stopped {
				scheduleMutation()
			}
		}
		currentTask = asynx.Asynx(engine, asynx.Delay, 2000, []asynx.Action[struct{}]{
			asynx.Step(func(struct{}) struct{} {
				if metrics != nil {
					metrics.ObserveTick(tick)
				} else {
					tick()
				}
				return struct{}{}
			}),
		}, struct{}{})
		currentTask.OnError(func(err error) {
			logger.Warn("session tick failed", "error", err)
		})
	}
	scheduleMutation()

	readDone := make(chan struct{})
	go func() {
		bridge.ReadLoop(time.Duration(cfg.ReadTimeoutMS) * time.Millisecond)
		close(readDone)
	}()

	select {
	case <-readDone:
	case <-ctx.Done():
	}

	done := make(chan struct{})
	engine.Redispatch(func() {
		stopped = true
		currentTask.Dispose()
		rootDispose()
		close(done)
	})
	<-done
}

// mutateDemoList perturbs the list each tick: rotate, and
// occasionally drop or add an element, exercising every branch of the
// reconciler (prefix/suffix skip, cross-swap, LIS-based reorder).
func mutateDemoList(items []string) []string {
	if len(items) == 0 {
		return append([]string(nil), demoItems...)
	}
	out := append(append([]string(nil), items[1:]...), items[0])
	switch rand.Intn(4) {
	case 0:
		return out[:len(out)-1]
	case 1:
		return append(out, "new-"+itoaDigits(rand.Intn(1000)))
	default:
		return out
	}
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

func itoaDigits(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
