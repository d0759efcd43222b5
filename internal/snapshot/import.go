package snapshot

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rnwolfe/rack/internal/settings"
	"github.com/rnwolfe/rack/internal/store"
	"github.com/rnwolfe/rack/internal/task"
)

// Importer replaces every collection with the contents of a document.
type Importer struct {
	db          *store.DB
	tasks       *task.Store
	calibration *task.CalibrationStore
	settings    *settings.Store
	now         func() time.Time
}

// NewImporter creates an importer writing through db.
func NewImporter(db *store.DB, tasks *task.Store, calibration *task.CalibrationStore, s *settings.Store) *Importer {
	return &Importer{db: db, tasks: tasks, calibration: calibration, settings: s, now: time.Now}
}

// Import decodes a document from r, filters and coerces every record, then
// replaces tasks, calibration history and settings in one transaction.
// Nothing is written when the version is unsupported or the document
// cannot be decoded.
func (im *Importer) Import(ctx context.Context, r io.Reader, format Format) (*Report, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	top, err := decodeGeneric(raw, format)
	if err != nil {
		return nil, err
	}
	data, err := coerceDocument(top, im.now())
	if err != nil {
		return nil, err
	}

	values := make(map[string]json.RawMessage, len(data.settings)+1)
	for k, v := range data.settings {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding setting %s: %w", k, err)
		}
		values[k] = b
	}
	if len(data.routines) > 0 {
		b, err := json.Marshal(data.routines)
		if err != nil {
			return nil, fmt.Errorf("encoding routines: %w", err)
		}
		values[settings.KeyRoutines] = b
	}

	err = im.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := im.tasks.ReplaceAllTx(ctx, tx, data.tasks); err != nil {
			return err
		}
		if err := im.calibration.ReplaceAllTx(ctx, tx, data.calibration); err != nil {
			return err
		}
		return im.settings.ReplaceAllTx(ctx, tx, values)
	})
	if err != nil {
		return nil, fmt.Errorf("replacing data: %w", err)
	}
	data.report.Settings = len(data.settings)
	return &data.report, nil
}

func decodeGeneric(raw []byte, format Format) (map[string]any, error) {
	var top any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &top); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&top); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	m, ok := top.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}
	return m, nil
}

type imported struct {
	tasks       []task.Task
	calibration []task.CalibrationEntry
	routines    []Routine
	settings    map[string]any
	report      Report
}

func coerceDocument(top map[string]any, now time.Time) (*imported, error) {
	version, ok := asInt(top["version"])
	if !ok || version < MinVersion || version > Version {
		return nil, fmt.Errorf("%w: %v (supported %d-%d)", ErrUnsupportedVersion, top["version"], MinVersion, Version)
	}
	out := &imported{settings: map[string]any{}}
	out.report.Version = version

	c := &coercer{report: &out.report, now: now, seen: map[string]bool{}}
	for _, v := range asList(top["tasks"]) {
		if t, ok := c.task(v); ok {
			out.tasks = append(out.tasks, t)
		}
	}
	c.fixParents(out.tasks)
	c.fixTop3(out.tasks)
	out.report.Tasks = len(out.tasks)

	c.seen = map[string]bool{}
	for _, v := range asList(top["calibration"]) {
		if e, ok := c.entry(v); ok {
			out.calibration = append(out.calibration, e)
		}
	}
	out.report.Calibration = len(out.calibration)

	c.seen = map[string]bool{}
	for _, v := range asList(top["routines"]) {
		if r, ok := c.routine(v); ok {
			out.routines = append(out.routines, r)
		}
	}
	out.report.Routines = len(out.routines)

	if m, ok := top["settings"].(map[string]any); ok {
		c.settings(m, out.settings)
	}
	return out, nil
}

// coercer filters untrusted records down to known fields. Out-of-range
// values are reset rather than failing the record.
type coercer struct {
	report *Report
	now    time.Time
	seen   map[string]bool
}

func (c *coercer) id(v any) string {
	id, _ := v.(string)
	id = strings.TrimSpace(id)
	if id == "" || c.seen[id] {
		id = task.NewID()
		c.report.Regenerated++
	}
	c.seen[id] = true
	return id
}

func (c *coercer) task(v any) (task.Task, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		c.report.Dropped++
		return task.Task{}, false
	}
	desc, _ := asString(m["description"])
	desc = strings.TrimSpace(desc)
	if desc == "" {
		c.report.Dropped++
		return task.Task{}, false
	}

	t := task.Task{ID: c.id(m["id"]), Description: desc, Status: task.StatusInbox}
	if s, ok := asString(m["status"]); ok {
		if st, err := task.ParseStatus(s); err == nil {
			t.Status = st
		} else {
			c.report.Coerced++
		}
	}

	t.Impact = c.rangeInt(m, "impact", 1, 5)
	t.Consequences = c.rangeInt(m, "consequences", 1, 5)
	t.Friction = c.rangeInt(m, "friction", 1, 5)
	t.Leverage = c.rangeInt(m, "leverage", 0, 2)
	t.EnergyMatch = c.rangeInt(m, "energy_match", 0, 2)
	t.TimeCriticality = c.rangeInt(m, "time_criticality", 0, 2)
	t.Actual = c.rangeInt(m, "actual", 0, 24*60)
	t.RecurrenceDay = c.rangeInt(m, "recurrence_day", 0, 31)

	if n, present := c.intField(m, "estimate"); present {
		if n != nil && task.ValidBucket(*n) {
			t.Estimate = n
		} else {
			c.report.Coerced++
		}
	}
	if s, ok := c.stringField(m, "confidence"); ok {
		if conf, err := task.ParseConfidence(s); err == nil {
			t.Confidence = conf
		} else {
			c.report.Coerced++
		}
	}
	if s, ok := c.stringField(m, "recurrence"); ok {
		if r, err := task.ParseRecurrence(s); err == nil {
			t.Recurrence = r
		} else {
			c.report.Coerced++
		}
	}
	if s, ok := c.stringField(m, "tag"); ok {
		if tag, err := task.ParseTag(s); err == nil {
			t.Tag = tag
		} else {
			c.report.Coerced++
		}
	}
	t.ScheduledFor = c.date(m, "scheduled_for")
	t.DueDate = c.date(m, "due_date")
	t.ParentID, _ = c.stringField(m, "parent_id")

	t.IsTop3, _ = m["is_top3"].(bool)
	t.Top3Locked, _ = m["top3_locked"].(bool)
	t.Top3Date = c.date(m, "top3_date")
	t.Top3Order = unordered
	if n, ok := asInt(m["top3_order"]); ok && n >= 0 && n < 3 {
		t.Top3Order = n
	}
	if t.IsTop3 && (t.Top3Date == "" || t.IsDone()) {
		t.ClearTop3()
		c.report.Coerced++
	}
	if !t.IsTop3 {
		t.ClearTop3()
	}

	t.CreatedAt = c.timeField(m, "created_at", c.now)
	t.UpdatedAt = c.timeField(m, "updated_at", t.CreatedAt)
	if ts, ok := asTime(m["completed_at"]); ok {
		t.CompletedAt = &ts
	}
	if ts, ok := asTime(m["started_at"]); ok {
		t.StartedAt = &ts
	}
	return t, true
}

// fixParents drops parent links that point at nothing, at the task itself,
// or at another subtask.
func (c *coercer) fixParents(tasks []task.Task) {
	parents := make(map[string]string, len(tasks))
	for _, t := range tasks {
		parents[t.ID] = t.ParentID
	}
	for i := range tasks {
		p := tasks[i].ParentID
		if p == "" {
			continue
		}
		grand, exists := parents[p]
		if !exists || p == tasks[i].ID || grand != "" {
			tasks[i].ParentID = ""
			c.report.Coerced++
		}
	}
}

// unordered marks a Top-3 member whose stored order was missing or out of
// range. fixTop3 sorts it last and renumbers it.
const unordered = -1

// fixTop3 keeps at most three members per date, preferring the lowest order,
// with at most one open monster among them, and renumbers the survivors from
// zero.
func (c *coercer) fixTop3(tasks []task.Task) {
	byDate := map[string][]int{}
	for i, t := range tasks {
		if t.IsTop3 {
			byDate[t.Top3Date] = append(byDate[t.Top3Date], i)
		}
	}
	for _, idx := range byDate {
		sort.SliceStable(idx, func(a, b int) bool {
			oa, ob := tasks[idx[a]].Top3Order, tasks[idx[b]].Top3Order
			if oa == unordered || ob == unordered {
				return ob == unordered && oa != unordered
			}
			return oa < ob
		})
		kept, monster := 0, false
		for _, i := range idx {
			big := !tasks[i].IsDone() && task.IsMonsterEffective(tasks[i], tasks)
			if kept >= 3 || (big && monster) {
				tasks[i].ClearTop3()
				c.report.Coerced++
				continue
			}
			monster = monster || big
			tasks[i].Top3Order = kept
			kept++
		}
	}
}

func (c *coercer) entry(v any) (task.CalibrationEntry, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		c.report.Dropped++
		return task.CalibrationEntry{}, false
	}
	est, okE := asInt(m["estimate"])
	actual, okA := asInt(m["actual"])
	completed, okT := asTime(m["completed_at"])
	if !okE || !okA || !okT || est <= 0 || actual <= 0 {
		c.report.Dropped++
		return task.CalibrationEntry{}, false
	}
	e := task.CalibrationEntry{ID: c.id(m["id"]), Tag: task.DefaultTag, Estimate: est, Actual: actual, CompletedAt: completed}
	if s, ok := asString(m["tag"]); ok {
		if tag, err := task.ParseTag(s); err == nil {
			e.Tag = tag
		} else {
			c.report.Coerced++
		}
	}
	return e, true
}

func (c *coercer) routine(v any) (Routine, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		c.report.Dropped++
		return Routine{}, false
	}
	name, _ := asString(m["name"])
	r := Routine{ID: c.id(m["id"]), Name: strings.TrimSpace(name), Items: []RoutineItem{}}
	for _, raw := range asList(m["items"]) {
		switch it := raw.(type) {
		case string:
			if s := strings.TrimSpace(it); s != "" {
				r.Items = append(r.Items, PlainItem(s))
				continue
			}
		case map[string]any:
			title, _ := asString(it["title"])
			if title = strings.TrimSpace(title); title != "" {
				tpl := Template{Title: title}
				if n, ok := asInt(it["minutes"]); ok && n > 0 {
					tpl.Minutes = &n
				}
				if s, ok := asString(it["tag"]); ok {
					if tag, err := task.ParseTag(s); err == nil {
						tpl.Tag = tag
					}
				}
				r.Items = append(r.Items, TemplateItem(tpl))
				continue
			}
		}
		c.report.Dropped++
	}
	return r, true
}

func (c *coercer) settings(in map[string]any, out map[string]any) {
	for name, v := range in {
		if k, ok := settings.Lookup(name); ok {
			if norm, ok := k.Normalize(v); ok {
				out[name] = norm
			} else {
				c.report.Dropped++
			}
			continue
		}
		switch name {
		case settings.KeyCapacityOverride:
			m, _ := v.(map[string]any)
			date, okD := asString(m["date"])
			minutes, okM := asInt(m["minutes"])
			if okD && isDate(date) && okM && minutes >= 0 {
				out[name] = settings.CapacityOverride{Date: date, Minutes: minutes}
				continue
			}
		case settings.KeyLastRollover:
			if s, ok := asString(v); ok && isDate(s) {
				out[name] = s
				continue
			}
		}
		c.report.Dropped++
	}
}

// rangeInt returns the field when it is an integer within [lo, hi]. Any
// other non-null value counts as coerced.
func (c *coercer) rangeInt(m map[string]any, key string, lo, hi int) *int {
	n, _ := c.intField(m, key)
	if n != nil && (*n < lo || *n > hi) {
		c.report.Coerced++
		return nil
	}
	return n
}

// intField reports the integer value of key and whether a non-null value
// was present. A present but non-integer value is counted and returned nil.
func (c *coercer) intField(m map[string]any, key string) (*int, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	n, ok := asInt(v)
	if !ok {
		c.report.Coerced++
		return nil, true
	}
	return &n, true
}

func (c *coercer) stringField(m map[string]any, key string) (string, bool) {
	s, ok := asString(m[key])
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

func (c *coercer) date(m map[string]any, key string) string {
	s, ok := c.stringField(m, key)
	if !ok {
		return ""
	}
	if !isDate(s) {
		c.report.Coerced++
		return ""
	}
	return s
}

func (c *coercer) timeField(m map[string]any, key string, fallback time.Time) time.Time {
	if ts, ok := asTime(m[key]); ok {
		return ts
	}
	return fallback
}

func isDate(s string) bool {
	_, err := time.Parse(task.DateLayout, s)
	return err == nil
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case time.Time:
		return s.Format(time.RFC3339Nano), true
	}
	return "", false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", task.DateLayout}

func asTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
