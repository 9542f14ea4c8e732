package model

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Condition operators supported by the rule engine
const (
	OperatorEquals    = "equals"
	OperatorNotEquals = "not_equals"
	OperatorContains  = "contains"
	OperatorExists    = "exists"
)

// FieldMapping names one payload extraction: the value at Path lands
// under Key in the flat extracted-values object.
type FieldMapping struct {
	Key  string `json:"key" bson:"key"`
	Path string `json:"path" bson:"path"`
}

// RuleCondition is the single optional comparison gating a rule.
// Rules carry at most one condition; there is no boolean composition.
type RuleCondition struct {
	Field    string      `json:"field" bson:"field"`
	Operator string      `json:"operator" bson:"operator"`
	Value    interface{} `json:"value" bson:"value"`
}

// AutomationRule is one conditional action definition belonging to a webhook
type AutomationRule struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	WebhookID     primitive.ObjectID `json:"webhook_id" bson:"webhook_id"`
	Name          string             `json:"name" bson:"name"`
	ActionType    string             `json:"action_type" bson:"action_type"`
	Enabled       bool               `json:"enabled" bson:"enabled"`
	FieldMappings []FieldMapping     `json:"field_mappings" bson:"field_mappings"`
	Condition     *RuleCondition     `json:"condition,omitempty" bson:"condition,omitempty"`
	SortOrder     int                `json:"sort_order" bson:"sort_order"`
	Metadata      Metadata           `json:"metadata" bson:"metadata"`
}

// Validate validates rule configuration
func (r *AutomationRule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if r.ActionType == "" {
		return errors.New("rule action type is required")
	}

	if r.Condition != nil && r.Condition.Field != "" {
		validOperators := map[string]bool{
			OperatorEquals: true, OperatorNotEquals: true,
			OperatorContains: true, OperatorExists: true,
		}
		if !validOperators[r.Condition.Operator] {
			return fmt.Errorf("invalid condition operator: %s", r.Condition.Operator)
		}
	}

	return nil
}
