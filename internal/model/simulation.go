package model

// ConditionVerdict is the outcome of evaluating a rule condition.
// Reason embeds the field path, the actual value, and the comparison
// performed, e.g. `customer.status ("active") == "active"`.
type ConditionVerdict struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// SimulationResult is the per-rule outcome of a dry-run simulation.
// ConditionResult is nil when the rule carries no condition, which is
// distinct from a condition that explicitly passed.
type SimulationResult struct {
	RuleName        string                 `json:"ruleName"`
	ActionType      string                 `json:"actionType"`
	ExtractedValues map[string]interface{} `json:"extractedValues"`
	WouldExecute    bool                   `json:"wouldExecute"`
	ConditionResult *ConditionVerdict      `json:"conditionResult,omitempty"`
}

// TestSummary aggregates the would-execute outcomes of one test run
type TestSummary struct {
	TotalRules    int `json:"totalRules"`
	EnabledRules  int `json:"enabledRules"`
	DisabledRules int `json:"disabledRules"`
}
