package observability

import (
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/fantasy-racing/internal/config"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

// mutexProfileFraction samples 1 in n contention events for the mutex profiles.
const mutexProfileFraction = 5

func profileConfig(cfg config.Config) pyroscope.Config {
	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
			"version": cfg.ServiceVersion,
			"storage": cfg.StorageDriver,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
		},
	}
}

// InitPyroscope starts continuous profiling when enabled. The returned stop
// function is never nil.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }

	if !cfg.PyroscopeEnabled {
		logger.Debug("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return noop, nil
	}

	previous := runtime.SetMutexProfileFraction(mutexProfileFraction)
	profiler, err := pyroscope.Start(profileConfig(cfg))
	if err != nil {
		runtime.SetMutexProfileFraction(previous)
		return noop, err
	}

	logger.Info("pyroscope enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
		"upload_rate", cfg.PyroscopeUploadRate.String(),
	)

	return func() error {
		defer runtime.SetMutexProfileFraction(previous)
		return profiler.Stop()
	}, nil
}
