package domain

// Operator is a comparison applied by a condition node.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// Condition is the rule a condition node checks against the participant's next input.
type Condition struct {
	// Attribute names the contact attribute being checked. It is informational:
	// comparison always runs against the raw input.
	Attribute string   `json:"attribute" mapstructure:"attribute"`
	Operator  Operator `json:"operator" mapstructure:"operator"`
	Value     string   `json:"value" mapstructure:"value"`
}
