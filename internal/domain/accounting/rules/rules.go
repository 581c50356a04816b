// Package rules evaluates configurable account-selection expressions.
//
// Posting templates sometimes depend on attributes of the source event:
// a cash sale debits Cash, an invoiced sale debits Accounts Receivable.
// Rather than hard-coding every variant, rules are CEL expressions over
// the source event attributes, evaluated first-match.
package rules

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"kardex/internal/core/apperror"
)

// Rule binds a CEL condition to an account code.
type Rule struct {
	// Name identifies the rule in logs and errors
	Name string `json:"name" mapstructure:"name"`

	// When is a CEL boolean expression over the `source` map,
	// e.g. `source.paymentMethod == "cash"`.
	When string `json:"when" mapstructure:"when"`

	// Account is the account code selected when the condition holds
	Account string `json:"account" mapstructure:"account"`
}

type compiledRule struct {
	rule    Rule
	program cel.Program
}

// Engine evaluates an ordered rule list against source event attributes.
type Engine struct {
	rules    []compiledRule
	fallback string
}

// NewEngine compiles the rule list. fallback is the account code returned
// when no rule matches; it must not be empty.
func NewEngine(ruleList []Rule, fallback string) (*Engine, error) {
	if fallback == "" {
		return nil, apperror.NewValidation("rules engine requires a fallback account")
	}

	env, err := cel.NewEnv(
		cel.Variable("source", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	compiled := make([]compiledRule, 0, len(ruleList))
	for _, r := range ruleList {
		ast, issues := env.Compile(r.When)
		if issues != nil && issues.Err() != nil {
			return nil, apperror.NewValidation("invalid rule condition").
				WithDetail("rule", r.Name).
				WithCause(issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, apperror.NewValidation("rule condition must be boolean").
				WithDetail("rule", r.Name).
				WithDetail("type", ast.OutputType().String())
		}

		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("build program for rule %s: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: r, program: program})
	}

	return &Engine{rules: compiled, fallback: fallback}, nil
}

// ResolveAccount returns the account code of the first rule whose condition
// holds for the given source attributes, or the fallback.
func (e *Engine) ResolveAccount(ctx context.Context, source map[string]any) (string, error) {
	if source == nil {
		source = map[string]any{}
	}

	for _, cr := range e.rules {
		out, _, err := cr.program.ContextEval(ctx, map[string]any{"source": source})
		if err != nil {
			return "", fmt.Errorf("evaluate rule %s: %w", cr.rule.Name, err)
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return "", fmt.Errorf("rule %s returned non-boolean %T", cr.rule.Name, out.Value())
		}
		if matched {
			return cr.rule.Account, nil
		}
	}

	return e.fallback, nil
}
