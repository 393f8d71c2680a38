// Package cel compiles and evaluates CEL (Common Expression Language) filter
// expressions over SweatStack activities.
//
// Filters are type checked against a fixed environment, restricted to an
// allow-list of fields, and evaluated in memory against each listed activity.
package cel

import (
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// FieldValidator validates field access in a CEL expression.
type FieldValidator interface {
	// ValidateSelectExpr returns an error if the selected field is not allowed.
	ValidateSelectExpr(sel *expr.Expr_Select) error
}

// ValidateFieldAccess walks e and checks every field selection with validator.
func ValidateFieldAccess(e *expr.Expr, validator FieldValidator) error {
	if e == nil {
		return nil
	}

	switch exprKind := e.ExprKind.(type) {
	case *expr.Expr_SelectExpr:
		sel := exprKind.SelectExpr
		if err := validator.ValidateSelectExpr(sel); err != nil {
			return err
		}
		if operand := sel.GetOperand(); operand != nil {
			if err := ValidateFieldAccess(operand, validator); err != nil {
				return err
			}
		}

	case *expr.Expr_CallExpr:
		call := exprKind.CallExpr
		if call.Target != nil {
			if err := ValidateFieldAccess(call.Target, validator); err != nil {
				return err
			}
		}
		for _, arg := range call.Args {
			if err := ValidateFieldAccess(arg, validator); err != nil {
				return err
			}
		}

	case *expr.Expr_ListExpr:
		for _, elem := range exprKind.ListExpr.Elements {
			if err := ValidateFieldAccess(elem, validator); err != nil {
				return err
			}
		}

	case *expr.Expr_StructExpr:
		for _, entry := range exprKind.StructExpr.Entries {
			if err := ValidateFieldAccess(entry.GetValue(), validator); err != nil {
				return err
			}
		}

	case *expr.Expr_ComprehensionExpr:
		comp := exprKind.ComprehensionExpr
		for _, part := range []*expr.Expr{comp.IterRange, comp.AccuInit, comp.LoopCondition, comp.LoopStep, comp.Result} {
			if err := ValidateFieldAccess(part, validator); err != nil {
				return err
			}
		}
	}

	return nil
}
