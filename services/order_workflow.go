package services

import (
	"fmt"

	"freshfetch/models"
)

type transitionRule struct {
	roles []string
	owner bool
}

var orderTransitionRules = map[[2]string]transitionRule{
	{models.OrderStatusPending, models.OrderStatusShipped}: {
		roles: []string{models.RoleAdmin, models.RoleManager},
	},
	{models.OrderStatusPending, models.OrderStatusCancelled}: {
		roles: []string{models.RoleAdmin, models.RoleManager},
		owner: true,
	},
	{models.OrderStatusShipped, models.OrderStatusDelivered}: {
		roles: []string{models.RoleAdmin, models.RoleManager},
	},
	{models.OrderStatusCancelled, models.OrderStatusPending}: {
		roles: []string{models.RoleAdmin},
	},
}

// CheckTransition reports whether the caller may move an order from one status to another.
// isOwner is true when the caller placed the order.
func CheckTransition(from, to, role string, isOwner bool) error {
	rule, ok := orderTransitionRules[[2]string{from, to}]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	for _, r := range rule.roles {
		if r == role {
			return nil
		}
	}
	if rule.owner && isOwner {
		return nil
	}
	return fmt.Errorf("%w: %s may not move an order from %s to %s", ErrForbidden, role, from, to)
}

// CheckPaymentTransition only allows pending -> paid.
func CheckPaymentTransition(from, to string) error {
	if from == to {
		return nil
	}
	if from == models.PaymentStatusPending && to == models.PaymentStatusPaid {
		return nil
	}
	return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, from, to)
}
