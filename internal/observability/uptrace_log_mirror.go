package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

const logMirrorScope = "fantasy-racing/internal/platform/logging"

// probePaths are access-log paths that never reach the log exporter.
var probePaths = map[string]struct{}{
	"/healthz": {},
	"/health":  {},
	"/livez":   {},
	"/readyz":  {},
}

type logMirror struct {
	logger otellog.Logger
	now    func() time.Time
}

func newLogMirror(serviceVersion string) *logMirror {
	return &logMirror{
		logger: otelglobal.Logger(logMirrorScope, otellog.WithInstrumentationVersion(serviceVersion)),
		now:    time.Now,
	}
}

func (m *logMirror) emit(ctx context.Context, level logging.Level, msg string, args ...any) {
	if isProbeAccessLog(msg, args) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	severity := severityOf(level)
	if !m.logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
		return
	}

	ts := m.now().UTC()
	var record otellog.Record
	record.SetTimestamp(ts)
	record.SetObservedTimestamp(ts)
	record.SetSeverity(severity)
	record.SetSeverityText(strings.ToUpper(level.String()))
	record.SetEventName(msg)
	record.SetBody(otellog.StringValue(msg))
	if attrs := logAttributes(args); len(attrs) > 0 {
		record.AddAttributes(attrs...)
	}
	m.logger.Emit(ctx, record)
}

// isProbeAccessLog reports whether an "http request" entry was logged for a
// health probe. Only the first "path" key is considered.
func isProbeAccessLog(msg string, args []any) bool {
	if msg != "http request" {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, _ := args[i].(string); key != "path" {
			continue
		}
		path, ok := args[i+1].(string)
		if !ok {
			return false
		}
		_, probe := probePaths[strings.ToLower(strings.TrimSpace(path))]
		return probe
	}
	return false
}

// logAttributes pairs up slog-style key/value args. A trailing key without a
// value becomes an empty attribute; non-string keys are named by position.
func logAttributes(args []any) []otellog.KeyValue {
	if len(args) == 0 {
		return nil
	}

	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = "arg_" + strconv.Itoa(i/2)
		}
		if i+1 == len(args) {
			attrs = append(attrs, otellog.Empty(key))
			break
		}
		attrs = append(attrs, otellog.KeyValue{Key: key, Value: logValue(args[i+1], 0)})
	}
	return attrs
}

func severityOf(level zapcore.Level) otellog.Severity {
	switch level {
	case zapcore.DebugLevel:
		return otellog.SeverityDebug
	case zapcore.InfoLevel:
		return otellog.SeverityInfo
	case zapcore.WarnLevel:
		return otellog.SeverityWarn
	case zapcore.ErrorLevel:
		return otellog.SeverityError
	}
	if level < zapcore.DebugLevel {
		return otellog.SeverityTrace
	}
	return otellog.SeverityFatal
}
