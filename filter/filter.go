// Package filter provides expression-based filtering of Venmo transaction
// feeds, using expr-lang expressions compiled once and evaluated per record.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/venmo-go/venmo"
)

// Filter represents a compiled transaction filter
type Filter struct {
	program *vm.Program
	expr    string
}

// staticEnv holds the helper functions available in every expression.
func staticEnv() map[string]interface{} {
	return map[string]interface{}{
		// Date helpers
		"daysSince": func(t time.Time) int {
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"monthsAgo": func(months int) time.Time {
			return time.Now().AddDate(0, -months, 0)
		},
		"parseDate": func(dateStr string) time.Time {
			t, _ := time.Parse("2006-01-02", dateStr)
			return t
		},
		// String helpers
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		// Current time
		"now": time.Now,
	}
}

// Compile compiles a filter expression. Expressions see the full Transaction
// plus shortcuts for the common fields (note, amount, actor, target, type,
// audience, device) and the helper functions from staticEnv.
func Compile(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty filter expression"}
	}

	program, err := expr.Compile(expression,
		expr.Env(staticEnv()),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, &CompilationError{Expression: expression, Reason: err.Error(), Err: err}
	}

	return &Filter{
		program: program,
		expr:    expression,
	}, nil
}

// Expression returns the source expression of the filter.
func (f *Filter) Expression() string {
	return f.expr
}

// Evaluate evaluates the filter against a transaction
func (f *Filter) Evaluate(tx venmo.Transaction) (bool, error) {
	env := staticEnv()
	env["Transaction"] = tx
	env["note"] = tx.Note
	env["amount"] = tx.Payment.Amount
	env["type"] = string(tx.Type)
	env["audience"] = string(tx.Audience)
	env["actor"] = tx.Payment.Actor.Username
	env["target"] = tx.Payment.TargetUser().Username
	env["device"] = tx.App.DeviceName()
	env["comments"] = len(tx.Comments.Data)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			FilterName:    f.expr,
			TransactionID: tx.ID,
			Reason:        err.Error(),
			Err:           err,
		}
	}

	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			FilterName:    f.expr,
			TransactionID: tx.ID,
			Reason:        fmt.Sprintf("expression returned %T, expected bool", result),
		}
	}
	return matched, nil
}

// Apply returns the transactions matching the filter, in input order.
func (f *Filter) Apply(transactions []venmo.Transaction) ([]venmo.Transaction, error) {
	var matched []venmo.Transaction
	for _, tx := range transactions {
		ok, err := f.Evaluate(tx)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, tx)
		}
	}
	return matched, nil
}
