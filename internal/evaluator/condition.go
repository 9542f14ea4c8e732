package evaluator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kestrel-hq/kestrel/internal/model"
)

// Evaluate applies a rule condition against a payload and returns the
// verdict. A nil return means the rule carries no condition, which the
// caller treats as trivially passed but must report as absent rather
// than as an explicit pass.
//
// An unrecognized operator yields passed=false with an empty reason.
func Evaluate(payload interface{}, cond *model.RuleCondition) *model.ConditionVerdict {
	if cond == nil || cond.Field == "" {
		return nil
	}

	actual := Resolve(payload, cond.Field)
	verdict := &model.ConditionVerdict{}

	switch cond.Operator {
	case model.OperatorEquals:
		verdict.Passed = strictEqual(actual, cond.Value)
		verdict.Reason = fmt.Sprintf("%s (%s) == %s", cond.Field, jsonString(actual), jsonString(cond.Value))
	case model.OperatorNotEquals:
		verdict.Passed = !strictEqual(actual, cond.Value)
		verdict.Reason = fmt.Sprintf("%s (%s) != %s", cond.Field, jsonString(actual), jsonString(cond.Value))
	case model.OperatorContains:
		verdict.Passed = strings.Contains(coerceString(actual), coerceString(cond.Value))
		verdict.Reason = fmt.Sprintf("%s (%s) contains %s", cond.Field, jsonString(actual), jsonString(cond.Value))
	case model.OperatorExists:
		verdict.Passed = actual != nil
		verdict.Reason = fmt.Sprintf("%s (%s) exists", cond.Field, jsonString(actual))
	default:
		slog.Debug("Unrecognized condition operator",
			"operator", cond.Operator,
			"field", cond.Field,
		)
	}

	return verdict
}

// strictEqual compares two decoded JSON values without type coercion.
// Numbers compare across Go's numeric representations since BSON
// decodes whole numbers to int32/int64 while JSON yields float64.
// Composite values never compare equal.
func strictEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if numA, ok := asNumber(a); ok {
		numB, okB := asNumber(b)
		return okB && numA == numB
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

// asNumber normalizes numeric values to float64
func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// coerceString converts a value to its string form for containment
// checks; absent values coerce to the empty string.
func coerceString(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// jsonString renders a value for verdict reasons
func jsonString(value interface{}) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
