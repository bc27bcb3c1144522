package eventlog

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"duke2sim/internal/telemetry"
)

const (
	BufferSize         = 1024                   // circular buffer capacity
	MaxEventsPerSec     = 10000                 // global rate limit
	BatchFlushSize      = 64                    // events per batch write
	BatchFlushInterval  = 100 * time.Millisecond // periodic flush cadence
)

// Log is a bounded, rate-limited circular event log with an async file
// writer. Producers never block: a full buffer drops its oldest entry,
// an exhausted rate limiter drops the incoming one.
type Log struct {
	buffer    [BufferSize]Event
	writeHead uint64 // atomic
	readHead  uint64 // atomic

	limiter *rate.Limiter

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	filePath string
	file     *os.File
	fileMu   sync.Mutex

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

// NewLog creates a new bounded event log.
func NewLog() *Log {
	return &Log{
		limiter:  rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan: make(chan struct{}),
	}
}

// Start begins the async writer goroutine, optionally appending
// newline-delimited JSON to filePath. An empty filePath disables file
// output but still keeps the in-memory ring available for inspection.
func (l *Log) Start(filePath string) error {
	if l.running.Load() {
		return nil
	}

	l.filePath = filePath
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		l.file = file
	}

	l.running.Store(true)
	l.writerWg.Add(1)
	go l.writerLoop()

	return nil
}

// Stop gracefully drains and shuts down the log.
func (l *Log) Stop() {
	l.stopOnce.Do(func() {
		l.running.Store(false)
		close(l.stopChan)
		l.writerWg.Wait()

		l.fileMu.Lock()
		if l.file != nil {
			l.file.Close()
		}
		l.fileMu.Unlock()
	})
}

// Emit appends an event, returning false if it was dropped due to rate
// limiting or a full buffer.
func (l *Log) Emit(event Event) bool {
	if !l.running.Load() {
		return false
	}

	if !l.limiter.Allow() {
		atomic.AddUint64(&l.droppedCount, 1)
		telemetry.RecordEventDropped()
		return false
	}

	head := atomic.AddUint64(&l.writeHead, 1)
	tail := atomic.LoadUint64(&l.readHead)

	if head-tail >= BufferSize {
		// Drop the oldest entry to make room; this is a rolling window,
		// not an error condition.
		atomic.AddUint64(&l.readHead, 1)
		atomic.AddUint64(&l.droppedCount, 1)
		telemetry.RecordEventDropped()
	}

	event.Sequence = head
	l.buffer[(head-1)%BufferSize] = event

	atomic.AddUint64(&l.totalCount, 1)
	telemetry.RecordEventLogged()
	return true
}

// EmitSimple constructs and emits an event in one call.
func (l *Log) EmitSimple(typ Type, tickNum uint64, actorID uint32, payload interface{}) bool {
	return l.Emit(New(typ, tickNum, actorID, payload))
}

func (l *Log) writerLoop() {
	defer l.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)

	for {
		select {
		case <-l.stopChan:
			batch = l.collectBatch(batch[:0])
			if len(batch) > 0 {
				l.flushBatch(batch)
			}
			return
		case <-ticker.C:
			batch = l.collectBatch(batch[:0])
			if len(batch) > 0 {
				l.flushBatch(batch)
			}
		}
	}
}

func (l *Log) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&l.writeHead)
	tail := atomic.LoadUint64(&l.readHead)

	for i := tail; i < head && len(batch) < BatchFlushSize; i++ {
		batch = append(batch, l.buffer[i%BufferSize])
	}

	if len(batch) > 0 {
		atomic.AddUint64(&l.readHead, uint64(len(batch)))
	}

	return batch
}

func (l *Log) flushBatch(batch []Event) {
	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	if l.file == nil {
		return
	}

	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		l.file.Write(data)
		l.file.Write([]byte("\n"))
	}
}

// Stats reports buffer/throughput counters for health monitoring.
type Stats struct {
	Total   uint64
	Dropped uint64
	Pending uint64
	Running bool
}

// GetStats returns a point-in-time snapshot of the log's counters.
func (l *Log) GetStats() Stats {
	head := atomic.LoadUint64(&l.writeHead)
	tail := atomic.LoadUint64(&l.readHead)

	return Stats{
		Total:   atomic.LoadUint64(&l.totalCount),
		Dropped: atomic.LoadUint64(&l.droppedCount),
		Pending: head - tail,
		Running: l.running.Load(),
	}
}

// Snapshot returns the events currently resident in the ring buffer, in
// sequence order, without consuming them.
func (l *Log) Snapshot() []Event {
	head := atomic.LoadUint64(&l.writeHead)
	tail := atomic.LoadUint64(&l.readHead)

	out := make([]Event, 0, head-tail)
	for i := tail; i < head; i++ {
		out = append(out, l.buffer[i%BufferSize])
	}
	return out
}
