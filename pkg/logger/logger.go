package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with typed fields and an optional error collector.
type Logger struct {
	zl   zerolog.Logger
	sink *collectorSlot
}

// collectorSlot is shared by a logger and all its children, so a collector
// attached after With still sees the children's errors.
type collectorSlot struct {
	mu sync.RWMutex
	c  *LogCollector
}

func (s *collectorSlot) get() *LogCollector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c
}

type Config struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal panic"`
	Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output     string `yaml:"output" default:"stdout"` // stdout, stderr, or file path
	TimeFormat string `yaml:"time_format"`
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var output io.Writer
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = timeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: timeFormat}
	}

	zl := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &Logger{zl: zl, sink: &collectorSlot{}}, nil
}

// NewWithWriter builds a JSON logger writing to w. Used by tests.
func NewWithWriter(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger(), sink: &collectorSlot{}}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), sink: &collectorSlot{}}
}

// With returns a child logger carrying fields on every entry.
func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		k, v := f.GetKeyValue()
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zl: ctx.Logger(), sink: l.sink}
}

func (l *Logger) collect(level, msg string, fields []Field) {
	collector := l.sink.get()
	if collector == nil {
		return
	}

	// this function -> Error/Warn -> caller
	caller := "unknown"
	if _, file, line, ok := runtime.Caller(2); ok {
		parts := strings.Split(file, "OmniTrade")
		caller = fmt.Sprintf("%s:%d", parts[len(parts)-1], line)
	}

	fieldMap := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		k, v := f.GetKeyValue()
		fieldMap[k] = v
	}
	collector.AddLog(level, msg, fieldMap, caller)
}

func (l *Logger) emit(event *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		f.AddTo(event)
	}
	event.Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(l.zl.Debug(), msg, fields) }

func (l *Logger) Info(msg string, fields ...Field) { l.emit(l.zl.Info(), msg, fields) }

func (l *Logger) Warn(msg string, fields ...Field) { l.emit(l.zl.Warn(), msg, fields) }

func (l *Logger) Error(msg string, fields ...Field) {
	l.emit(l.zl.Error(), msg, fields)
	l.collect("error", msg, fields)
}

// AddCollector starts aggregating error entries into cfg.Publisher.
// Children created with With share the collector.
func (l *Logger) AddCollector(cfg *CollectionConfig) {
	l.sink.mu.Lock()
	old := l.sink.c
	l.sink.c = NewLogCollector(cfg)
	l.sink.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// RemoveCollector flushes and detaches the collector.
func (l *Logger) RemoveCollector() {
	l.sink.mu.Lock()
	old := l.sink.c
	l.sink.c = nil
	l.sink.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Field is a structured log attribute.
type Field interface {
	AddTo(event *zerolog.Event)
	GetKeyValue() (string, interface{})
}

type StringField struct {
	Key   string
	Value string
}

func (f StringField) AddTo(e *zerolog.Event) { e.Str(f.Key, f.Value) }
func (f StringField) GetKeyValue() (string, interface{}) { return f.Key, f.Value }

type IntField struct {
	Key   string
	Value int
}

func (f IntField) AddTo(e *zerolog.Event) { e.Int(f.Key, f.Value) }
func (f IntField) GetKeyValue() (string, interface{}) { return f.Key, f.Value }

type Int64Field struct {
	Key   string
	Value int64
}

func (f Int64Field) AddTo(e *zerolog.Event) { e.Int64(f.Key, f.Value) }
func (f Int64Field) GetKeyValue() (string, interface{}) { return f.Key, f.Value }

type Float64Field struct {
	Key   string
	Value float64
}

func (f Float64Field) AddTo(e *zerolog.Event) { e.Float64(f.Key, f.Value) }
func (f Float64Field) GetKeyValue() (string, interface{}) { return f.Key, f.Value }

type ErrorField struct {
	Key   string
	Value error
}

func (f ErrorField) AddTo(e *zerolog.Event) { e.Err(f.Value) }

func (f ErrorField) GetKeyValue() (string, interface{}) {
	if f.Value == nil {
		return f.Key, nil
	}
	return f.Key, f.Value.Error()
}

type AnyField struct {
	Key   string
	Value interface{}
}

func (f AnyField) AddTo(e *zerolog.Event) { e.Interface(f.Key, f.Value) }
func (f AnyField) GetKeyValue() (string, interface{}) { return f.Key, f.Value }

type BoolField struct {
	Key   string
	Value bool
}

func (f BoolField) AddTo(e *zerolog.Event) { e.Bool(f.Key, f.Value) }
func (f BoolField) GetKeyValue() (string, interface{}) { return f.Key, f.Value }

func String(key, value string) Field { return StringField{Key: key, Value: value} }

func Int(key string, value int) Field { return IntField{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Int64Field{Key: key, Value: value} }

func Uint64(key string, value uint64) Field { return Int64Field{Key: key, Value: int64(value)} }

func Float64(key string, value float64) Field { return Float64Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return BoolField{Key: key, Value: value} }

func Error(err error) Field { return ErrorField{Key: "error", Value: err} }

func Any(key string, value interface{}) Field { return AnyField{Key: key, Value: value} }

// Duration logs d in milliseconds.
func Duration(key string, d time.Duration) Field {
	return Int64Field{Key: key, Value: d.Milliseconds()}
}

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ", "))
}
