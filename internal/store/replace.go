package store

import (
	"context"
	"log/slog"

	"shopfront/internal/metrics"
	"shopfront/internal/model"
	"shopfront/internal/reconcile"
)

// Replace makes the cart match desired. It refreshes from the server, diffs
// the lines and applies only the needed mutations in the order remove,
// update, add. Each mutation is an ordinary optimistic action, so a failure
// rolls back that step only; earlier steps stay applied and the first error
// is returned. The executed diff is returned either way.
func (s *CartStore) Replace(ctx context.Context, desired []reconcile.DesiredItem) (*reconcile.LineItemDiff, error) {
	if s.Token() == "" {
		s.record("replace", metrics.OutcomeGuarded)
		return &reconcile.LineItemDiff{}, nil
	}

	if err := s.Refresh(ctx); err != nil {
		s.notify.Notify(ctx, Notification{Level: LevelError, Message: model.UserMessage(err, MsgReplaceFailed)})
		return nil, err
	}
	diff := reconcile.DiffLineItems(reconcile.CurrentItems(s.Snapshot().Cart), desired)
	if diff.IsEmpty() {
		return diff, nil
	}

	if err := s.applyDiff(ctx, diff); err != nil {
		s.logger.WarnContext(ctx, "cart replace failed",
			slog.Int("mutations", diff.Len()),
			slog.String("error", err.Error()),
		)
		s.notify.Notify(ctx, Notification{Level: LevelError, Message: model.UserMessage(err, MsgReplaceFailed)})
		return diff, err
	}
	s.notify.Notify(ctx, Notification{Level: LevelSuccess, Message: MsgCartReplaced})
	return diff, nil
}

func (s *CartStore) applyDiff(ctx context.Context, diff *reconcile.LineItemDiff) error {
	for _, item := range diff.ToRemove {
		if err := s.removeItem(ctx, item.ProductID, true); err != nil {
			return err
		}
	}
	for _, item := range diff.ToUpdate {
		if err := s.updateQuantity(ctx, item.ProductID, item.NewQuantity, true); err != nil {
			return err
		}
	}
	for _, item := range diff.ToAdd {
		if err := s.addItem(ctx, item.ProductID, AddOptions{}, true); err != nil {
			return err
		}
		// Adding creates the line with a count of one.
		if item.Quantity > 1 {
			if err := s.updateQuantity(ctx, item.ProductID, item.Quantity, true); err != nil {
				return err
			}
		}
	}
	return nil
}
