// Package settings holds the planner's mutable configuration: capacity,
// slack, workday end and behavior toggles. Values live in the kv table as
// JSON and are read with defaults at call time. Only whitelisted keys are
// accepted.
package settings

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rnwolfe/rack/internal/config"
)

// Settings is the resolved planner configuration.
type Settings struct {
	WeekdayCapacity   int  // minutes
	WeekendCapacity   int  // minutes
	SlackPercent      int  // planning buffer withheld from capacity, 0-90
	WorkdayEndHour    int  // 0-24, local time
	AutoClearTop3     bool // clear stale unlocked Top-3 during maintenance
	AutoRollScheduled bool // carry "tomorrow" tasks into today during maintenance
}

// Defaults returns the settings used when nothing is stored.
func Defaults() Settings {
	return Settings{
		WeekdayCapacity:   360,
		WeekendCapacity:   180,
		SlackPercent:      20,
		WorkdayEndHour:    18,
		AutoClearTop3:     true,
		AutoRollScheduled: true,
	}
}

// Internal keys written by the planner; not user-settable.
const (
	KeyCapacityOverride = "capacity_override"
	KeyLastRollover     = "last_rollover_date"
	KeyRoutines         = "routines"
)

// CapacityOverride replaces usable capacity for a single day.
type CapacityOverride struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// KeyType represents the data type of a settings key.
type KeyType string

const (
	KeyTypeInt  KeyType = "int"
	KeyTypeBool KeyType = "bool"
)

// Key describes a whitelisted, user-settable key.
type Key struct {
	Name       string
	Type       KeyType
	Desc       string
	DefaultStr string

	get func(Settings) any
	// set validates a string value and applies it.
	set func(s *Settings, value string) error
	// decode applies a stored JSON value, rejecting out-of-range data.
	decode func(s *Settings, v any) bool
}

// Get returns the key's current value as a string.
func (k *Key) Get(s Settings) string { return fmt.Sprint(k.get(s)) }

// Normalize validates a decoded value for this key and returns its canonical
// form. Integral numbers of any width are accepted for int keys.
func (k *Key) Normalize(v any) (any, bool) {
	if f, ok := number(v); ok {
		v = f
	}
	var tmp Settings
	if !k.decode(&tmp, v) {
		return nil, false
	}
	return k.get(tmp), true
}

// Values returns every whitelisted key with its value in s.
func (s Settings) Values() map[string]any {
	out := make(map[string]any, len(Keys))
	for name, k := range Keys {
		out[name] = k.get(s)
	}
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Keys is the whitelist of user-settable keys.
var Keys = map[string]*Key{
	"weekday_capacity": intKey("weekday_capacity", "Base capacity on weekdays (minutes)", 0, 1440,
		func(s Settings) int { return s.WeekdayCapacity }, func(s *Settings, v int) { s.WeekdayCapacity = v }),
	"weekend_capacity": intKey("weekend_capacity", "Base capacity on weekends (minutes)", 0, 1440,
		func(s Settings) int { return s.WeekendCapacity }, func(s *Settings, v int) { s.WeekendCapacity = v }),
	"slack_percent": intKey("slack_percent", "Share of capacity never planned (percent)", 0, 90,
		func(s Settings) int { return s.SlackPercent }, func(s *Settings, v int) { s.SlackPercent = v }),
	"workday_end_hour": intKey("workday_end_hour", "Hour the workday ends (0-24)", 0, 24,
		func(s Settings) int { return s.WorkdayEndHour }, func(s *Settings, v int) { s.WorkdayEndHour = v }),
	"auto_clear_top3": boolKey("auto_clear_top3", "Clear stale unlocked Top-3 on rollover",
		func(s Settings) bool { return s.AutoClearTop3 }, func(s *Settings, v bool) { s.AutoClearTop3 = v }),
	"auto_roll_scheduled": boolKey("auto_roll_scheduled", "Carry tomorrow's tasks into today on rollover",
		func(s Settings) bool { return s.AutoRollScheduled }, func(s *Settings, v bool) { s.AutoRollScheduled = v }),
}

// KeyNames returns the sorted whitelist.
func KeyNames() []string {
	names := make([]string, 0, len(Keys))
	for k := range Keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the Key for a whitelisted name.
func Lookup(name string) (*Key, bool) {
	k, ok := Keys[name]
	return k, ok
}

func intKey(name, desc string, lo, hi int, get func(Settings) int, apply func(*Settings, int)) *Key {
	return &Key{
		Name:       name,
		Type:       KeyTypeInt,
		Desc:       desc,
		DefaultStr: strconv.Itoa(get(Defaults())),
		get:        func(s Settings) any { return get(s) },
		set: func(s *Settings, value string) error {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("invalid value %q for %s: expected an integer", value, name)
			}
			if n < lo || n > hi {
				return fmt.Errorf("invalid value %d for %s: must be between %d and %d", n, name, lo, hi)
			}
			apply(s, n)
			return nil
		},
		decode: func(s *Settings, v any) bool {
			f, ok := v.(float64)
			if !ok || f != float64(int(f)) || int(f) < lo || int(f) > hi {
				return false
			}
			apply(s, int(f))
			return true
		},
	}
}

func boolKey(name, desc string, get func(Settings) bool, apply func(*Settings, bool)) *Key {
	return &Key{
		Name:       name,
		Type:       KeyTypeBool,
		Desc:       desc,
		DefaultStr: strconv.FormatBool(get(Defaults())),
		get:        func(s Settings) any { return get(s) },
		set: func(s *Settings, value string) error {
			b, err := config.ParseBoolValue(value)
			if err != nil {
				return fmt.Errorf("invalid value %q for %s: %w", value, name, err)
			}
			apply(s, b)
			return nil
		},
		decode: func(s *Settings, v any) bool {
			b, ok := v.(bool)
			if ok {
				apply(s, b)
			}
			return ok
		},
	}
}
