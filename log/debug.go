package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Debug mode configuration. Enable with TTYCODEC_DEBUG=1.
var (
	DebugEnabled bool
	DebugLog     = log.New(io.Discard, "", 0)
	debugLogFile *os.File
)

var debugLogFileName = filepath.Join(os.TempDir(), "ttycodec-debug.log")

// InitDebug initializes debug logging if TTYCODEC_DEBUG=1 is set.
func InitDebug() {
	if os.Getenv("TTYCODEC_DEBUG") != "1" {
		DebugLog = log.New(io.Discard, "", 0)
		return
	}

	DebugEnabled = true

	f, err := os.OpenFile(debugLogFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		ErrorLog.Printf("could not open debug log file: %s", err)
		DebugLog = log.New(io.Discard, "", 0)
		return
	}

	DebugLog = log.New(f, "DEBUG:", log.Ldate|log.Ltime|log.Lmicroseconds)
	debugLogFile = f

	DebugLog.Println("Debug mode enabled")
	DebugLog.Printf("Debug log: %s", debugLogFileName)
}

// CloseDebug closes the debug log file.
func CloseDebug() {
	if debugLogFile != nil {
		_ = debugLogFile.Close()
		debugLogFile = nil
		fmt.Println("wrote debug logs to " + debugLogFileName)
	}
}

// Debug logs a debug message if debug mode is enabled.
func Debug(format string, v ...interface{}) {
	if DebugEnabled && DebugLog != nil {
		DebugLog.Printf(format, v...)
	}
}

// Profiler tracks how long each refresh phase takes and how many bytes it emits.
type Profiler struct {
	mu           sync.RWMutex
	phases       map[string]*PhaseMetrics
	frameCount   int64
	frameBytes   int64
	totalTime    time.Duration
	frameTimings []time.Duration // rolling window of frame times
}

// PhaseMetrics tracks metrics for a single phase such as "draw-line".
type PhaseMetrics struct {
	Name      string
	Count     int64
	Bytes     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

var profiler = &Profiler{
	phases:       make(map[string]*PhaseMetrics),
	frameTimings: make([]time.Duration, 0, 100),
}

// GetProfiler returns the global refresh profiler.
func GetProfiler() *Profiler {
	return profiler
}

// Start begins timing a phase. The returned function takes the number of
// bytes the phase emitted.
func (p *Profiler) Start(phase string) func(bytes int) {
	if !DebugEnabled {
		return func(int) {}
	}

	start := time.Now()
	return func(bytes int) {
		p.record(phase, time.Since(start), bytes)
	}
}

func (p *Profiler) record(phase string, elapsed time.Duration, bytes int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.phases[phase]
	if !ok {
		m = &PhaseMetrics{
			Name:    phase,
			MinTime: elapsed,
			MaxTime: elapsed,
		}
		p.phases[phase] = m
	}

	m.Count++
	m.Bytes += int64(bytes)
	m.TotalTime += elapsed
	if elapsed < m.MinTime {
		m.MinTime = elapsed
	}
	if elapsed > m.MaxTime {
		m.MaxTime = elapsed
	}
}

// RecordFrame records one complete refresh.
func (p *Profiler) RecordFrame(elapsed time.Duration, bytes int) {
	if !DebugEnabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	p.frameBytes += int64(bytes)
	p.totalTime += elapsed

	if len(p.frameTimings) >= 100 {
		p.frameTimings = p.frameTimings[1:]
	}
	p.frameTimings = append(p.frameTimings, elapsed)

	// > 16ms misses a 60Hz refresh
	if elapsed > 16*time.Millisecond {
		DebugLog.Printf("SLOW FRAME: %v (%d bytes)", elapsed, bytes)
	}
}

// GetStats returns a summary of refresh statistics.
func (p *Profiler) GetStats() string {
	if !DebugEnabled {
		return ""
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("\n=== Refresh Profile ===\n")
	sb.WriteString(fmt.Sprintf("Total frames: %d (%d bytes)\n", p.frameCount, p.frameBytes))

	if p.frameCount > 0 {
		avg := p.totalTime / time.Duration(p.frameCount)
		sb.WriteString(fmt.Sprintf("Avg frame time: %v, avg frame size: %d bytes\n",
			avg, p.frameBytes/p.frameCount))
	}

	sb.WriteString("\n--- Phases ---\n")

	var sorted []*PhaseMetrics
	for _, m := range p.phases {
		sorted = append(sorted, m)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TotalTime > sorted[j].TotalTime
	})

	for _, m := range sorted {
		avg := time.Duration(0)
		if m.Count > 0 {
			avg = m.TotalTime / time.Duration(m.Count)
		}
		sb.WriteString(fmt.Sprintf("  %s: count=%d bytes=%d total=%v avg=%v min=%v max=%v\n",
			m.Name, m.Count, m.Bytes, m.TotalTime, avg, m.MinTime, m.MaxTime))
	}

	return sb.String()
}

// LogStats logs the current refresh statistics.
func (p *Profiler) LogStats() {
	if DebugEnabled {
		DebugLog.Print(p.GetStats())
	}
}

// Reset clears all profiling data.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.phases = make(map[string]*PhaseMetrics)
	p.frameCount = 0
	p.frameBytes = 0
	p.totalTime = 0
	p.frameTimings = make([]time.Duration, 0, 100)
}

// DrawTrace logs line renderer decisions.
func DrawTrace(format string, v ...interface{}) {
	if DebugEnabled {
		DebugLog.Printf("[DRAW] "+format, v...)
	}
}

// CapabilityTrace logs catalog construction and override events.
func CapabilityTrace(term, format string, v ...interface{}) {
	if DebugEnabled {
		msg := fmt.Sprintf(format, v...)
		DebugLog.Printf("[CAP:%s] %s", term, msg)
	}
}

// ProbeTrace logs detection probe traffic.
func ProbeTrace(format string, v ...interface{}) {
	if DebugEnabled {
		DebugLog.Printf("[PROBE] "+format, v...)
	}
}
