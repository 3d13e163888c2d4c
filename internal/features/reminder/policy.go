package reminder

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go-approvals/internal/common/models"
	"go-approvals/internal/config"

	"gopkg.in/yaml.v3"
)

// Policy holds the reminder cadence per urgency and the escalation delay.
type Policy struct {
	Intervals       map[models.Urgency]time.Duration `yaml:"intervals"`
	DefaultInterval time.Duration                    `yaml:"default_interval"`
	EscalateAfter   time.Duration                    `yaml:"escalate_after"`
}

func DefaultPolicy() Policy {
	return Policy{
		Intervals: map[models.Urgency]time.Duration{
			models.UrgencyCritical: 2 * time.Hour,
			models.UrgencyHigh:     4 * time.Hour,
			models.UrgencyMedium:   12 * time.Hour,
			models.UrgencyLow:      24 * time.Hour,
		},
		DefaultInterval: 24 * time.Hour,
		EscalateAfter:   48 * time.Hour,
	}
}

// IntervalFor returns the reminder cadence for u. NORMAL is read as MEDIUM;
// anything unknown gets the default.
func (p Policy) IntervalFor(u models.Urgency) time.Duration {
	key := models.Urgency(strings.ToUpper(string(u)))
	if key == "NORMAL" {
		key = models.UrgencyMedium
	}
	if d, ok := p.Intervals[key]; ok {
		return d
	}
	return p.DefaultInterval
}

func (p Policy) Validate() error {
	for u, d := range p.Intervals {
		if d <= 0 {
			return fmt.Errorf("interval for %s must be positive", u)
		}
	}
	if p.DefaultInterval <= 0 {
		return fmt.Errorf("default_interval must be positive")
	}
	if p.EscalateAfter <= 0 {
		return fmt.Errorf("escalate_after must be positive")
	}
	return nil
}

// LoadPolicy overlays the YAML file at path on DefaultPolicy.
//
//	intervals:
//	  CRITICAL: 1h
//	default_interval: 24h
//	escalate_after: 72h
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read reminder policy: %w", err)
	}

	var file Policy
	if err := yaml.Unmarshal(data, &file); err != nil {
		return policy, fmt.Errorf("parse reminder policy %s: %w", path, err)
	}

	for u, d := range file.Intervals {
		policy.Intervals[models.Urgency(strings.ToUpper(string(u)))] = d
	}
	if file.DefaultInterval != 0 {
		policy.DefaultInterval = file.DefaultInterval
	}
	if file.EscalateAfter != 0 {
		policy.EscalateAfter = file.EscalateAfter
	}

	if err := policy.Validate(); err != nil {
		return policy, fmt.Errorf("reminder policy %s: %w", path, err)
	}
	return policy, nil
}

// NewPolicy returns the configured policy, or the defaults when no file is set.
func NewPolicy(cfg *config.Config) (Policy, error) {
	if cfg.ReminderPolicyFile == "" {
		return DefaultPolicy(), nil
	}
	return LoadPolicy(cfg.ReminderPolicyFile)
}
