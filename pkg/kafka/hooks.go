package kafka

import (
	"context"
	"fmt"

	applogger "OmniTrade/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// ConsumerHook defines lifecycle hooks around message handling.
// Returning a non-nil error from BeforeHandle skips the handler and the
// message is treated as failed.
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error)
	AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
	OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
}

// NoopHook does nothing.
type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return ctx, km, data, nil
}

func (NoopHook) AfterHandle(context.Context, string, kafka.Message, []byte, error) {}

func (NoopHook) OnError(context.Context, string, kafka.Message, []byte, error) {}

// HookError represents an error produced by a hook.
type HookError struct {
	Code string
	Err  error
}

func (e *HookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *HookError) Unwrap() error { return e.Err }

// HookChain runs BeforeHandle in order and AfterHandle in reverse. A
// panicking hook is converted to an error and never reaches the worker.
type HookChain struct {
	hooks []ConsumerHook
}

// NewHookChain creates a composable hook chain. Nil hooks are ignored.
func NewHookChain(hooks ...ConsumerHook) *HookChain {
	filtered := make([]ConsumerHook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return &HookChain{hooks: filtered}
}

func (c *HookChain) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	for _, h := range c.hooks {
		nextCtx, nextMsg, nextData, err := safeBefore(h, ctx, topic, km, data)
		if err != nil {
			c.OnError(ctx, topic, km, data, err)
			return ctx, km, data, err
		}
		ctx, km, data = nextCtx, nextMsg, nextData
	}
	return ctx, km, data, nil
}

func (c *HookChain) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	for i := len(c.hooks) - 1; i >= 0; i-- {
		h := c.hooks[i]
		func() {
			defer func() { _ = recover() }()
			h.AfterHandle(ctx, topic, km, data, err)
		}()
	}
}

func (c *HookChain) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	for _, h := range c.hooks {
		func() {
			defer func() { _ = recover() }()
			h.OnError(ctx, topic, km, data, err)
		}()
	}
}

func safeBefore(h ConsumerHook, ctx context.Context, topic string, km kafka.Message, data []byte) (rctx context.Context, rmsg kafka.Message, rdata []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			rctx, rmsg, rdata = ctx, km, data
			err = &HookError{Code: "ERR_PANIC", Err: fmt.Errorf("hook panic: %v", r)}
		}
	}()
	return h.BeforeHandle(ctx, topic, km, data)
}

type ctxKey string

// CtxTraceID holds the correlation id taken from the trace_id header.
const CtxTraceID ctxKey = "kafka_hook_trace_id"

// TraceIDFrom returns the trace id stored by TraceHook, if any.
func TraceIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(CtxTraceID).(string)
	return s
}

// TraceHook copies the trace_id header into the handler context.
type TraceHook struct{ NoopHook }

func (TraceHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	for _, h := range km.Headers {
		if h.Key == "trace_id" && len(h.Value) > 0 {
			ctx = context.WithValue(ctx, CtxTraceID, string(h.Value))
			break
		}
	}
	return ctx, km, data, nil
}

// RejectEmptyHook fails messages with no payload before they reach the handler.
type RejectEmptyHook struct{ NoopHook }

func (RejectEmptyHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	if len(data) == 0 {
		return ctx, km, data, &HookError{Code: "ERR_EMPTY"}
	}
	return ctx, km, data, nil
}

// LoggingHook logs each failed attempt at warn level.
type LoggingHook struct {
	NoopHook
	Logger *applogger.Logger
}

func (h LoggingHook) OnError(ctx context.Context, topic string, km kafka.Message, _ []byte, err error) {
	h.Logger.Warn("kafka handle attempt failed",
		applogger.String("topic", topic),
		applogger.Int("partition", km.Partition),
		applogger.Int64("offset", km.Offset),
		applogger.String("trace_id", TraceIDFrom(ctx)),
		applogger.Error(err),
	)
}
