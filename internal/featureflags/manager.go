// Package featureflags evaluates runtime switches configured through FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// RegistrationClosed rejects self-registration with 403.
	RegistrationClosed = "registration_closed"
	// StatsAdminOnly puts the stats endpoint behind the admin role.
	StatsAdminOnly = "stats_admin_only"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "registration_closed=on,stats_admin_only=off"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// On reports whether a global (not per-admin) flag is switched on.
// Percentage rollouts count as on only at 100%.
func (m *Manager) On(name string) bool {
	return m.Enabled(name, 0)
}

// Enabled returns whether a flag is enabled for a given admin.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic per-admin rollout, e.g. 25%)
func (m *Manager) Enabled(name string, adminID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	switch {
	case err != nil || pct <= 0:
		return false
	case pct >= 100:
		return true
	case adminID == 0:
		return false
	}
	return rolloutBucket(name, adminID) < pct
}

// Snapshot returns evaluated flag status for one admin.
func (m *Manager) Snapshot(adminID uint) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, adminID)
	}
	return out
}

// Raw returns a copy of the configured flag values.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string)
	if m == nil {
		return out
	}
	for name, value := range m.flags {
		out[name] = value
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, adminID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), adminID)))
	return int(h.Sum32() % 100)
}
