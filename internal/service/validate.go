package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateProposal checks every field rule of the submitted form and
// returns all violations at once.
func validateProposal(input ProposalInput) *ValidationError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Violations: []FieldViolation{{
			Field:   "form",
			Message: "dados inválidos",
		}}}
	}

	violations := make([]FieldViolation, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations = append(violations, FieldViolation{
			Field:   fieldPath(fe),
			Message: violationMessage(fe),
		})
	}
	return &ValidationError{Violations: violations}
}

// assertProposalShape re-checks the structural business rule before any
// external call: a proposal needs at least one order and every order at
// least one item. The field rules above already enforce this, the domain
// rule is asserted separately so that schema changes cannot relax it.
func assertProposalShape(input ProposalInput) error {
	if len(input.Orders) == 0 {
		return fmt.Errorf("%w: proposta sem pedidos", ErrDomainRule)
	}
	for _, order := range input.Orders {
		if len(order.Items) == 0 {
			return fmt.Errorf("%w: pedido %s sem itens", ErrDomainRule, order.OrderNumber)
		}
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	// Namespace comes as "ProposalInput.orders[0].items[1].name";
	// drop the root struct segment.
	namespace := fe.Namespace()
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return fe.Field()
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "é obrigatório"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("precisa de pelo menos %s elemento(s)", fe.Param())
		}
		return fmt.Sprintf("deve ter no mínimo %s caracteres", fe.Param())
	case "max":
		return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", fe.Param())
	case "gte":
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	default:
		return "valor inválido"
	}
}
