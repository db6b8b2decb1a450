/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package logbuffer provides an in-memory ring buffer for capturing logs,
// exposed to moderators through the admin logs endpoint.
package logbuffer

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry represents a single captured log entry.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Component string         `json:"component,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Buffer is a thread-safe ring buffer for log entries.
type Buffer struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	head     int
	count    int
}

// New creates a log buffer with the specified capacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 5000
	}
	return &Buffer{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Add appends a log entry, evicting the oldest when full.
func (b *Buffer) Add(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = entry
	b.head = (b.head + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// All returns every buffered entry in chronological order.
func (b *Buffer) All() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]Entry, b.count)
	if b.count == 0 {
		return result
	}

	start := 0
	if b.count == b.capacity {
		start = b.head
	}
	for i := 0; i < b.count; i++ {
		result[i] = b.entries[(start+i)%b.capacity]
	}
	return result
}

// QueryParams filters buffered entries.
type QueryParams struct {
	Level     string    // Filter by level (debug, info, warn, error)
	Component string    // Filter by component
	Search    string    // Case-insensitive substring match on the message
	Since     time.Time // Only entries after this time
	Limit     int       // Max entries to return (0 = all), newest first
}

// Query returns log entries matching the filter criteria, newest first.
func (b *Buffer) Query(params QueryParams) []Entry {
	all := b.All()

	var filtered []Entry
	for _, entry := range all {
		if params.Level != "" && entry.Level != params.Level {
			continue
		}
		if params.Component != "" && entry.Component != params.Component {
			continue
		}
		if !params.Since.IsZero() && entry.Timestamp.Before(params.Since) {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(entry.Message), strings.ToLower(params.Search)) {
			continue
		}
		filtered = append(filtered, entry)
	}

	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}

	if params.Limit > 0 && len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}
	return filtered
}

// Writer tees zerolog JSON output into the buffer.
type Writer struct {
	buffer *Buffer
}

// NewWriter creates a writer that captures logs to the buffer.
func NewWriter(buffer *Buffer) *Writer {
	return &Writer{buffer: buffer}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err == nil {
		entry := Entry{
			Timestamp: time.Now(),
			Fields:    make(map[string]any),
		}
		if lvl, ok := raw["level"].(string); ok {
			entry.Level = lvl
			delete(raw, "level")
		}
		if msg, ok := raw["message"].(string); ok {
			entry.Message = msg
			delete(raw, "message")
		}
		if comp, ok := raw["component"].(string); ok {
			entry.Component = comp
			delete(raw, "component")
		}
		delete(raw, "time")
		for k, v := range raw {
			entry.Fields[k] = v
		}
		w.buffer.Add(entry)
	}
	return len(p), nil
}

var _ io.Writer = (*Writer)(nil)
