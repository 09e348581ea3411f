package logger

import (
	"sync"
	"time"
)

// CollectionConfig bounds the in-memory record buffer.
type CollectionConfig struct {
	Capacity int // max retained records (e.g. 256)
}

// Record is a captured log entry kept for dashboard inspection.
type Record struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Caller  string                 `json:"caller"`
}

// LogCollector keeps the most recent warning/error records in a ring
// buffer so the status API can expose them without touching log files.
type LogCollector struct {
	capacity int
	records  []Record
	next     int
	filled   bool
	mutex    sync.RWMutex
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	capacity := 256
	if config != nil && config.Capacity > 0 {
		capacity = config.Capacity
	}
	return &LogCollector{
		capacity: capacity,
		records:  make([]Record, capacity),
	}
}

func (d *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.records[d.next] = Record{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Fields:  fields,
		Caller:  caller,
	}
	d.next++
	if d.next == d.capacity {
		d.next = 0
		d.filled = true
	}
}

// Recent returns up to limit records, newest first.
func (d *LogCollector) Recent(limit int) []Record {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	size := d.next
	if d.filled {
		size = d.capacity
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]Record, 0, limit)
	for i := 0; i < limit; i++ {
		idx := d.next - 1 - i
		if idx < 0 {
			idx += d.capacity
		}
		out = append(out, d.records[idx])
	}
	return out
}

func (d *LogCollector) Close() {}
