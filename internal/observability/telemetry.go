package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/b1g-analytics/internal/config"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// Telemetry owns the optional exporters started next to the API: Uptrace
// tracing, Pyroscope profiling and a pprof listener.
type Telemetry struct {
	logger *logging.Logger
	parts  []stopper
}

type stopper struct {
	name string
	stop func(context.Context) error
}

// StartTelemetry starts whatever cfg enables. On error, parts that already
// started are stopped before returning.
func StartTelemetry(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	if cfg.UptraceEnabled && cfg.UptraceDSN != "" {
		uptrace.ConfigureOpentelemetry(
			uptrace.WithDSN(cfg.UptraceDSN),
			uptrace.WithServiceName(cfg.ServiceName),
			uptrace.WithServiceVersion(cfg.ServiceVersion),
			uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		)
		t.add("uptrace", uptrace.Shutdown)
		logger.Info("tracing exporter enabled", "exporter", "uptrace", "env", cfg.AppEnv)
	}

	if cfg.PyroscopeEnabled {
		profiler, err := pyroscope.Start(profilerConfig(cfg))
		if err != nil {
			return nil, t.abort(fmt.Errorf("start pyroscope: %w", err))
		}
		t.add("pyroscope", func(context.Context) error { return profiler.Stop() })
		logger.Info("continuous profiling enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	}

	if cfg.PprofEnabled {
		srv, err := servePprof(cfg.PprofAddr, logger)
		if err != nil {
			return nil, t.abort(err)
		}
		t.add("pprof", srv.Shutdown)
	}

	return t, nil
}

func (t *Telemetry) add(name string, stop func(context.Context) error) {
	t.parts = append(t.parts, stopper{name: name, stop: stop})
}

func (t *Telemetry) abort(cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(cause, t.Shutdown(ctx))
}

// Shutdown stops parts in reverse start order and reports every failure.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	for i := len(t.parts) - 1; i >= 0; i-- {
		p := t.parts[i]
		if err := p.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", p.name, err))
			continue
		}
		t.logger.Debug("telemetry stopped", "part", p.name)
	}
	t.parts = nil
	return errors.Join(errs...)
}

// Enabled lists running parts by name.
func (t *Telemetry) Enabled() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.parts))
	for _, p := range t.parts {
		names = append(names, p.name)
	}
	return names
}

func profilerConfig(cfg config.Config) pyroscope.Config {
	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              map[string]string{"service": cfg.ServiceName, "env": cfg.AppEnv},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockDuration,
		},
	}
}

func pprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	return mux
}

// servePprof binds before returning so a taken port fails startup.
func servePprof(addr string, logger *logging.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen pprof on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: pprofHandler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("pprof server stopped unexpectedly", "error", err)
		}
	}()
	logger.Info("pprof listening", "addr", ln.Addr().String())
	return srv, nil
}
