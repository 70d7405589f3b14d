package envelope

import (
	"fmt"
	"strings"
)

// ValidationError reports a broken message contract. Entity names the type
// that failed and Fields lists every missing field or violated rule. It is
// always caller-fixable and never worth retrying.
type ValidationError struct {
	Entity string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s missing required fields: %s", e.Entity, strings.Join(e.Fields, ", "))
}

type field struct {
	name  string
	value string
}

// requireFields reports every blank or whitespace-only field in one pass.
func requireFields(entity string, fields ...field) error {
	var missing []string
	for _, f := range fields {
		if isBlank(f.value) {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Entity: entity, Fields: missing}
}

func ruleViolation(entity, rule string) error {
	return &ValidationError{Entity: entity, Fields: []string{rule}}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
