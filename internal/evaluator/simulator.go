package evaluator

import (
	"log/slog"

	"github.com/kestrel-hq/kestrel/internal/model"
)

// Simulator runs automation rules against test payloads without
// performing their actions
type Simulator struct{}

// NewSimulator creates a new simulator
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Simulate runs a single rule against a payload. It is a pure function
// of its inputs: malformed paths degrade to nil extracted values and a
// disabled rule can never execute regardless of its condition.
func (s *Simulator) Simulate(rule model.AutomationRule, payload interface{}) model.SimulationResult {
	extracted := make(map[string]interface{})
	for _, mapping := range rule.FieldMappings {
		if mapping.Path == "" {
			continue
		}
		extracted[mapping.Key] = Resolve(payload, mapping.Path)
	}

	verdict := Evaluate(payload, rule.Condition)

	wouldExecute := rule.Enabled && (verdict == nil || verdict.Passed)

	slog.Debug("Rule simulation completed",
		"rule", rule.Name,
		"action_type", rule.ActionType,
		"enabled", rule.Enabled,
		"would_execute", wouldExecute,
	)

	return model.SimulationResult{
		RuleName:        rule.Name,
		ActionType:      rule.ActionType,
		ExtractedValues: extracted,
		WouldExecute:    wouldExecute,
		ConditionResult: verdict,
	}
}

// SimulateAll runs every rule against the payload in order
func (s *Simulator) SimulateAll(rules []model.AutomationRule, payload interface{}) []model.SimulationResult {
	results := make([]model.SimulationResult, 0, len(rules))
	for _, rule := range rules {
		results = append(results, s.Simulate(rule, payload))
	}
	return results
}
