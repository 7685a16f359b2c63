// Package filter evaluates expression-language filters against normalized
// devices, so CLI users can narrow cross-vendor inventory with expressions
// like `Online && Vendor == "dahua"`.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kpaulsen/vmsbridge/apierr"
	"github.com/kpaulsen/vmsbridge/bridge"
)

// Filter is a compiled device filter. Compile once, match many.
type Filter struct {
	expression string
	program    *vm.Program
}

// New compiles a filter expression. The expression must evaluate to a
// boolean; a compile failure is a parameter error.
func New(expression string) (*Filter, error) {
	if expression == "" {
		return nil, apierr.New(apierr.KindParameter, "filter: expression is required")
	}

	program, err := expr.Compile(expression,
		expr.Env(env(bridge.Device{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, apierr.Newf(apierr.KindParameter, "filter: invalid expression: %v", err)
	}

	return &Filter{expression: expression, program: program}, nil
}

// Expression returns the source expression.
func (f *Filter) Expression() string { return f.expression }

// Match evaluates the filter against one device.
func (f *Filter) Match(device bridge.Device) (bool, error) {
	result, err := expr.Run(f.program, env(device))
	if err != nil {
		return false, fmt.Errorf("evaluating filter: %w", err)
	}

	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter did not evaluate to a boolean: %T", result)
	}
	return matched, nil
}

// Apply returns the devices matching the filter, preserving order.
func (f *Filter) Apply(devices []bridge.Device) ([]bridge.Device, error) {
	var matched []bridge.Device
	for _, device := range devices {
		ok, err := f.Match(device)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, device)
		}
	}
	return matched, nil
}

// env exposes the device fields to the expression runtime.
func env(d bridge.Device) map[string]any {
	return map[string]any{
		"Vendor": d.Vendor,
		"ID":     d.ID,
		"Name":   d.Name,
		"Type":   d.Type,
		"Online": d.Online,
	}
}
