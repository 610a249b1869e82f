package contracts

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"time"

	"github.com/sentinelgrid/analyzer/pkg/common"
)

// EventCSVColumns is the fixed external column order for Event CSV
// interchange (spec.md §6). Order is part of the interface — do not
// reorder without a corresponding spec change.
var EventCSVColumns = []string{
	"timestamp", "source", "component", "event", "actor", "ip",
	"key", "value", "unit", "severity", "tags", "correlation_id",
}

// Event is an atomic, immutable input record (spec.md §3). Timestamps are
// parsed once at ingest per the design note on clock handling: the raw
// ISO-8601 string is kept for faithful re-emission, and the parsed instant
// (TS) is what all window/ordering math operates on.
type Event struct {
	Timestamp     string `json:"timestamp"`
	Source        string `json:"source"`
	Component     string `json:"component"`
	Event         string `json:"event"`
	Actor         string `json:"actor"`
	IP            string `json:"ip"`
	Key           string `json:"key"`
	Value         string `json:"value"`
	Unit          string `json:"unit"`
	Severity      string `json:"severity"`
	Tags          string `json:"tags"`
	CorrelationID string `json:"correlation_id"`

	TS time.Time `json:"-"`
}

// ParseTimestamp parses an ISO-8601 timestamp accepting both a trailing Z
// and an explicit +00:00 offset on input (spec.md §6).
func ParseTimestamp(iso string) (time.Time, error) {
	if iso == "" {
		return time.Time{}, common.NewError("E2003", "empty timestamp", nil)
	}
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05Z", iso); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, common.NewError("E2003", "unparseable timestamp", map[string]interface{}{"timestamp": iso})
}

// FormatTimestamp renders t as ISO-8601 UTC with a trailing Z, the
// canonical on-output form (spec.md §6).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// NewEvent builds an Event from raw field values and eagerly parses its
// timestamp. Missing optional fields default to empty string, matching the
// external CSV/JSONL contract.
func NewEvent(timestamp, source, component, event, actor, ip, key, value, unit, severity, tags, correlationID string) (Event, error) {
	e := Event{
		Timestamp: timestamp, Source: source, Component: component, Event: event,
		Actor: actor, IP: ip, Key: key, Value: value, Unit: unit,
		Severity: severity, Tags: tags, CorrelationID: correlationID,
	}
	ts, err := ParseTimestamp(timestamp)
	if err != nil {
		return Event{}, err
	}
	e.TS = ts
	return e, nil
}

// TagList returns the semicolon-joined tags field split into its elements.
func (e Event) TagList() []string {
	if e.Tags == "" {
		return nil
	}
	parts := strings.Split(e.Tags, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ToCSVRow renders e as a single CSV row (no trailing newline) following
// EventCSVColumns.
func (e Event) ToCSVRow() (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{
		e.Timestamp, e.Source, e.Component, e.Event, e.Actor, e.IP,
		e.Key, e.Value, e.Unit, e.Severity, e.Tags, e.CorrelationID,
	}); err != nil {
		return "", err
	}
	w.Flush()
	return strings.TrimRight(sb.String(), "\r\n"), w.Error()
}

// ToJSON renders e as a compact JSON object for line-delimited streaming.
func (e Event) ToJSON() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EventFromRow builds an Event from a CSV DictReader-style row keyed by
// EventCSVColumns, or a parsed JSON object with the same field names.
func EventFromRow(row map[string]string) (Event, error) {
	return NewEvent(
		row["timestamp"], row["source"], row["component"], row["event"],
		row["actor"], row["ip"], row["key"], row["value"], row["unit"],
		row["severity"], row["tags"], row["correlation_id"],
	)
}
