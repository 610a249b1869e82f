// Package pipeline wires the detector, correlator and metrics engine
// end-to-end per selected policy, and owns the I/O adapters (CSV/JSONL
// event ingestion, results/incidents CSV writers, watch-mode tailing)
// that spec.md §1 scopes out of the core but still names as external
// interfaces (§6). Grounded on the teacher's collector/normalizer
// file-reading conventions, adapted from streaming Kafka producers to
// plain file adapters per SPEC_FULL.md §B.
package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sentinelgrid/analyzer/pkg/common"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// LoadEvents reads every event record from path, dispatching CSV vs JSONL
// on the file extension (spec.md §6), and returns them sorted by
// timestamp. Malformed rows are logged and skipped, never fatal.
func LoadEvents(path string) ([]contracts.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewErrorFrom("E1001", err, "failed to open event input file", map[string]interface{}{"path": path})
	}
	defer f.Close()

	var events []contracts.Event
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jsonl" || ext == ".ndjson" {
		events = readJSONL(f)
	} else {
		events = readCSV(f)
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].TS.Before(events[j].TS) })
	return events, nil
}

func readCSV(r io.Reader) []contracts.Event {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		common.Warn("empty or unreadable CSV input, no events loaded")
		return nil
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	var out []contracts.Event
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			common.Warn("malformed CSV row skipped", zap.Error(err))
			continue
		}
		row := rowFromColumns(rec, cols)
		evt, err := contracts.EventFromRow(row)
		if err != nil {
			common.Warn("malformed CSV row skipped", zap.Error(err))
			continue
		}
		out = append(out, evt)
	}
	return out
}

func rowFromColumns(rec []string, cols map[string]int) map[string]string {
	row := make(map[string]string, len(contracts.EventCSVColumns))
	for _, name := range contracts.EventCSVColumns {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			row[name] = ""
			continue
		}
		row[name] = rec[idx]
	}
	return row
}

func readJSONL(r io.Reader) []contracts.Event {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out []contracts.Event
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row map[string]string
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			common.Warn("malformed JSONL line skipped", zap.Error(err))
			continue
		}
		evt, err := contracts.EventFromRow(row)
		if err != nil {
			common.Warn("malformed JSONL line skipped", zap.Error(err))
			continue
		}
		out = append(out, evt)
	}
	return out
}
