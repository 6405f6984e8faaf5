/*
Package conditions evaluates a rule's extra eligibility conditions.

PURPOSE:
  A rule's Condition is a CEL (Common Expression Language) boolean
  expression. The resolver only needs a yes/no per rule; this package
  compiles, caches and runs the expressions.

VARIABLES:
  cart_subtotal  double     sum of price * quantity over the cart
  cart_items     int        total quantity in the cart
  user_id        string     shopper id, "" for guests
  user_groups    list(string)
  now            timestamp  evaluation time passed by the caller

EXAMPLES:
  cart_subtotal >= 100.0
  "wholesale" in user_groups && cart_items >= 10
  now < timestamp("2026-12-25T00:00:00Z")

FAILURE MODE:
  A condition that fails to compile, does not return a bool, or errors at
  evaluation counts as NOT met. The resolver is never handed an error.
*/
package conditions

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"go.uber.org/zap"

	"github.com/warp/price-engine/pricing"
)

// CELEvaluator implements pricing.ConditionEvaluator.
type CELEvaluator struct {
	env    *cel.Env
	logger *zap.Logger

	mu       sync.RWMutex
	programs map[string]compiled
}

type compiled struct {
	prg cel.Program
	err error
}

// NewCELEvaluator builds the CEL environment. A nil logger is replaced by a no-op.
func NewCELEvaluator(logger *zap.Logger) (*CELEvaluator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	env, err := cel.NewEnv(
		cel.Variable("cart_subtotal", cel.DoubleType),
		cel.Variable("cart_items", cel.IntType),
		cel.Variable("user_id", cel.StringType),
		cel.Variable("user_groups", cel.ListType(cel.StringType)),
		cel.Variable("now", cel.TimestampType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build CEL environment: %w", err)
	}
	return &CELEvaluator{
		env:      env,
		logger:   logger,
		programs: make(map[string]compiled),
	}, nil
}

// Validate compiles expr and reports why it cannot be used.
func (e *CELEvaluator) Validate(expr string) error {
	if expr == "" {
		return nil
	}
	return e.program(expr).err
}

// ConditionsMet evaluates the rule's condition against env.
func (e *CELEvaluator) ConditionsMet(rule pricing.Rule, env pricing.Environment) bool {
	if rule.Condition == "" {
		return true
	}

	c := e.program(rule.Condition)
	if c.err != nil {
		e.logger.Warn("rule condition unusable",
			zap.Int64("rule_id", int64(rule.ID)),
			zap.String("condition", rule.Condition),
			zap.Error(c.err),
		)
		return false
	}

	out, _, err := c.prg.Eval(activation(env))
	if err != nil {
		e.logger.Warn("rule condition evaluation failed",
			zap.Int64("rule_id", int64(rule.ID)),
			zap.Error(err),
		)
		return false
	}

	met, ok := out.Value().(bool)
	return ok && met
}

func (e *CELEvaluator) program(expr string) compiled {
	e.mu.RLock()
	c, ok := e.programs[expr]
	e.mu.RUnlock()
	if ok {
		return c
	}

	c = e.compile(expr)

	e.mu.Lock()
	e.programs[expr] = c
	e.mu.Unlock()
	return c
}

func (e *CELEvaluator) compile(expr string) compiled {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return compiled{err: fmt.Errorf("%w: %v", pricing.ErrInvalidRule, issues.Err())}
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return compiled{err: fmt.Errorf("%w: condition must be boolean, got %s", pricing.ErrInvalidRule, ast.OutputType())}
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return compiled{err: fmt.Errorf("%w: %v", pricing.ErrInvalidRule, err)}
	}
	return compiled{prg: prg}
}

func activation(env pricing.Environment) map[string]any {
	groups := env.UserGroups
	if groups == nil {
		groups = []string{}
	}
	return map[string]any{
		"cart_subtotal": env.Cart.Subtotal().InexactFloat64(),
		"cart_items":    int64(env.Cart.ItemCount()),
		"user_id":       env.UserID,
		"user_groups":   groups,
		"now":           env.Now,
	}
}

var _ pricing.ConditionEvaluator = (*CELEvaluator)(nil)
