package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/internal/telemetry"
	"github.com/sentinelgrid/analyzer/pkg/common"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// WatchOptions configures the follow loop (spec.md §4.5, Design Notes).
type WatchOptions struct {
	InputPath   string
	OutputDir   string
	Policies    []string
	RulesCfg    config.RulesConfig
	PoliciesCfg config.PoliciesConfig
	HorizonDays float64
	PollInterval time.Duration
	MaxWorkers  int
	Metrics     *telemetry.Metrics
}

// watchState is the single mutable piece of state the watch loop owns:
// the byte offset already consumed and the events accumulated so far.
// Modeled as an explicit struct per the Design Note calling for one
// owner goroutine holding this state, rather than scattering it across
// closures.
type watchState struct {
	offset int64
	events []contracts.Event
}

// Watch tails InputPath, growing the in-memory event list on each tick (or
// early fsnotify wake-up), and re-runs the full analysis chain on the
// accumulated events, overwriting outputs atomically. It returns only when
// ctx is cancelled or an unrecoverable I/O error occurs opening the input.
func Watch(ctx context.Context, opts WatchOptions) error {
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		common.Warn("fsnotify watcher unavailable, falling back to poll-only", zap.Error(err))
	} else {
		defer watcher.Close()
		dir := filepath.Dir(opts.InputPath)
		if err := watcher.Add(dir); err != nil {
			common.Warn("failed to watch input directory, falling back to poll-only", zap.Error(err), zap.String("dir", dir))
		}
	}

	state := &watchState{}

	// runCycle returns a non-nil error only when the input file could not
	// be opened at all (E1001) — that is the "unrecoverable I/O error
	// opening the input" this function's doc comment promises stops the
	// loop. Every other failure (a transient stat error, a bad analysis
	// cycle, a panic) is logged and the loop keeps ticking.
	runCycle := func() (fatal error) {
		defer func() {
			if r := recover(); r != nil {
				common.Error("watch cycle panicked, continuing to next tick", common.NewError("E9999", "panic in watch cycle", map[string]interface{}{"recovered": r}))
			}
		}()
		if err := tailOnce(state, opts.InputPath); err != nil {
			if common.IsCode(err, "E1001") {
				return err
			}
			common.Warn("failed to tail input file this cycle", zap.Error(err))
			return nil
		}
		if err := runAndWriteOnce(state.events, opts); err != nil {
			common.Warn("analysis cycle failed, will retry next tick", zap.Error(err))
		}
		return nil
	}

	if err := runCycle(); err != nil {
		return err
	}

	var fsEvents <-chan fsnotify.Event
	if watcher != nil {
		fsEvents = watcher.Events
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := runCycle(); err != nil {
				return err
			}
		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if ev.Name == opts.InputPath && (ev.Op&(fsnotify.Write|fsnotify.Create) != 0) {
				if err := runCycle(); err != nil {
					return err
				}
			}
		}
	}
}

// tailOnce checks whether path has grown past state.offset and, if so,
// reloads the whole file with the same CSV/JSONL dispatch as a batch load,
// replacing state.events and recording the new size as state.offset. It
// does not read only the appended bytes: state.offset is used solely to
// detect growth, and every reload parses the file from the start.
func tailOnce(state *watchState, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return common.NewErrorFrom("E1001", err, "failed to open watched input file", map[string]interface{}{"path": path})
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return common.WrapError(err, "failed to stat watched input file", map[string]interface{}{"path": path})
	}
	if info.Size() <= state.offset {
		return nil
	}

	all, err := LoadEvents(path)
	if err != nil {
		return err
	}
	state.events = all
	state.offset = info.Size()
	return nil
}

func runAndWriteOnce(events []contracts.Event, opts WatchOptions) error {
	horizon := Horizon(events, opts.HorizonDays)
	results, err := RunAll(events, opts.Policies, opts.RulesCfg, opts.PoliciesCfg, horizon, opts.Metrics, opts.MaxWorkers)
	if err != nil {
		return err
	}

	if err := WriteResultsCSV(filepath.Join(opts.OutputDir, "results.csv"), AllMetrics(results)); err != nil {
		return err
	}
	if err := WriteIncidentsCSV(filepath.Join(opts.OutputDir, "incidents.csv"), AllIncidents(results)); err != nil {
		return err
	}
	return nil
}
