// Package policy holds the configurable business predicates the rest of
// the engine must agree on. The source product shipped with conflicting
// definitions of "paid" and "joy reserve"; instead of hard-coding one, both
// are CEL expressions compiled once at startup and shared by the customer
// and finance services.
package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"livecart/internal/core/types"
)

// Config holds the predicate expressions.
type Config struct {
	// PaidExpr decides whether an order counts as paid for aggregates
	// and finance rollups.
	PaidExpr string

	// JoyReserveExpr decides whether an order marks its buyer as a
	// claimed-but-never-paid risk.
	JoyReserveExpr string
}

// DefaultConfig returns the shipped predicate semantics:
// an order is paid when its payment status says so or the posted amount
// covers the grand total; a buyer earns a joy-reserve mark for an order
// with nothing posted against it that is not paid.
func DefaultConfig() Config {
	return Config{
		PaidExpr:       `paymentStatus == "PAID" || amountPaid >= grandTotal`,
		JoyReserveExpr: `amountPaid == 0 && paymentStatus != "PAID"`,
	}
}

// OrderFacts is the activation an order exposes to the predicates.
type OrderFacts struct {
	Status        string
	PaymentStatus string
	AmountPaid    types.MinorUnits
	GrandTotal    types.MinorUnits
}

// Engine evaluates the compiled predicates.
type Engine struct {
	paid cel.Program
	joy  cel.Program
}

// New compiles the predicate expressions. Compilation errors surface at
// startup, not per evaluation.
func New(cfg Config) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("status", cel.StringType),
		cel.Variable("paymentStatus", cel.StringType),
		cel.Variable("amountPaid", cel.IntType),
		cel.Variable("grandTotal", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	paid, err := compileBool(env, cfg.PaidExpr)
	if err != nil {
		return nil, fmt.Errorf("compile paid predicate: %w", err)
	}
	joy, err := compileBool(env, cfg.JoyReserveExpr)
	if err != nil {
		return nil, fmt.Errorf("compile joy-reserve predicate: %w", err)
	}

	return &Engine{paid: paid, joy: joy}, nil
}

// MustNew compiles the default predicates, panicking on error.
// Use in tests and wiring code that passes DefaultConfig.
func MustNew(cfg Config) *Engine {
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

func compileBool(env *cel.Env, expr string) (cel.Program, error) {
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("expression %q must return bool, got %v", expr, ast.OutputType())
	}
	return env.Program(ast)
}

// IsPaid evaluates the paid predicate against an order.
func (e *Engine) IsPaid(f OrderFacts) (bool, error) {
	return e.eval(e.paid, f)
}

// IsJoyReserve evaluates the joy-reserve predicate against an order.
func (e *Engine) IsJoyReserve(f OrderFacts) (bool, error) {
	return e.eval(e.joy, f)
}

func (e *Engine) eval(prg cel.Program, f OrderFacts) (bool, error) {
	out, _, err := prg.Eval(map[string]any{
		"status":        f.Status,
		"paymentStatus": f.PaymentStatus,
		"amountPaid":    int64(f.AmountPaid),
		"grandTotal":    int64(f.GrandTotal),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate predicate: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("predicate returned %T, want bool", out.Value())
	}
	return b, nil
}
