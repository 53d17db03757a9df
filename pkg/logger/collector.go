package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectionConfig struct {
	TimeInterval   time.Duration // flush interval
	CountThreshold int           // unique entries before an early flush
	Topic          string
	Publisher      Publisher
}

// AggregatedLogEntry counts repeats of one (level, message, fields, caller).
type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector deduplicates error entries and ships them in batches.
type LogCollector struct {
	config *CollectionConfig
	mu     sync.Mutex
	logMap map[string]*AggregatedLogEntry
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	sendWg sync.WaitGroup
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	if config.TimeInterval <= 0 {
		config.TimeInterval = 30 * time.Second
	}
	if config.CountThreshold <= 0 {
		config.CountThreshold = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &LogCollector{
		config: config,
		logMap: make(map[string]*AggregatedLogEntry),
		ctx:    ctx,
		cancel: cancel,
	}
	c.wg.Add(1)
	go c.periodicFlush()
	return c
}

func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := entryKey(level, message, fields, caller)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.logMap[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.logMap[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	if len(c.logMap) >= c.config.CountThreshold {
		c.flushLocked()
	}
}

func entryKey(level, message string, fields map[string]interface{}, caller string) string {
	data, _ := json.Marshal(struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{level, message, fields, caller})
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

func (c *LogCollector) periodicFlush() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
		case <-c.ctx.Done():
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
			return
		}
	}
}

// flushLocked hands the current batch to the publisher. c.mu must be held.
func (c *LogCollector) flushLocked() {
	if len(c.logMap) == 0 || c.config.Publisher == nil {
		return
	}

	logs := make([]AggregatedLogEntry, 0, len(c.logMap))
	for _, e := range c.logMap {
		logs = append(logs, *e)
	}
	c.logMap = make(map[string]*AggregatedLogEntry)

	c.sendWg.Add(1)
	go func() {
		defer c.sendWg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.config.Publisher.PublishMessage(ctx, c.config.Topic, logs); err != nil {
			// the logger itself is the thing failing; stderr is all that's left
			fmt.Fprintf(os.Stderr, "log collector: publish failed: %v\n", err)
		}
	}()
}

// Close flushes pending entries and waits for in-flight sends.
func (c *LogCollector) Close() {
	c.cancel()
	c.wg.Wait()
	c.sendWg.Wait()
}
