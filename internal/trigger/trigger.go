// Package trigger decides whether an order change event warrants a notification
// and which notification variant applies.
package trigger

import (
	"fmt"

	"order-notifier/internal/models"
)

// Variant names a notification kind.
type Variant string

const (
	VariantOrderCreated   Variant = "order_created"
	VariantOrderCompleted Variant = "order_completed"
	VariantOrderCancelled Variant = "order_cancelled"
)

// Rule is the trigger predicate of one variant.
// A zero TargetStatus means "new row" (old_record absent).
type Rule struct {
	Variant      Variant
	TargetStatus models.OrderStatus
}

// Created fires for inserted rows.
func Created() Rule {
	return Rule{Variant: VariantOrderCreated}
}

// StatusTransition fires on the edge into target: old.status != target && new.status == target.
func StatusTransition(variant Variant, target models.OrderStatus) Rule {
	return Rule{Variant: variant, TargetStatus: target}
}

// RequiresPriorState reports whether the predicate reads old_record.
func (r Rule) RequiresPriorState() bool {
	return r.TargetStatus != ""
}

// Evaluate applies the rule to ev.
// Created never fires without record (DELETE or empty body).
// A status transition rule needs both records: no record is ErrInvalidPayload,
// no old_record is ErrMissingPriorState.
func (r Rule) Evaluate(ev models.ChangeEvent) (bool, error) {
	if !r.RequiresPriorState() {
		return ev.OldRecord == nil && ev.Record != nil, nil
	}
	if ev.Record == nil {
		return false, fmt.Errorf("%s: %w", r.Variant, models.ErrInvalidPayload)
	}
	if ev.OldRecord == nil {
		return false, fmt.Errorf("%s: %w", r.Variant, models.ErrMissingPriorState)
	}
	return ev.OldRecord.Status != r.TargetStatus && ev.Record.Status == r.TargetStatus, nil
}

// Select evaluates every applicable rule and returns the single match.
// Rules that need old_record are skipped when the event has none, so an INSERT
// can only ever match Created. An event without record matches nothing.
// More than one match is rejected with ErrAmbiguousTrigger.
func Select(ev models.ChangeEvent, rules ...Rule) (Rule, bool, error) {
	if ev.Record == nil {
		return Rule{}, false, nil
	}

	var matched []Rule
	for _, r := range rules {
		if r.RequiresPriorState() && ev.OldRecord == nil {
			continue
		}
		ok, err := r.Evaluate(ev)
		if err != nil {
			return Rule{}, false, err
		}
		if ok {
			matched = append(matched, r)
		}
	}

	switch len(matched) {
	case 0:
		return Rule{}, false, nil
	case 1:
		return matched[0], true, nil
	default:
		names := make([]Variant, 0, len(matched))
		for _, r := range matched {
			names = append(names, r.Variant)
		}
		return Rule{}, false, fmt.Errorf("%w: %v", models.ErrAmbiguousTrigger, names)
	}
}
