// Package notify tells people and downstream systems about archival passes.
package notify

import (
	"context"
	"errors"

	"gitlab.com/yelinaung/backoffice/internal/archive"
)

// Compile-time checks that every notifier satisfies archive.Notifier.
var (
	_ archive.Notifier = Nop{}
	_ archive.Notifier = Multi(nil)
	_ archive.Notifier = (*TelegramNotifier)(nil)
	_ archive.Notifier = (*EventPublisher)(nil)
)

// Nop discards notifications.
type Nop struct{}

// NotifyArchive does nothing.
func (Nop) NotifyArchive(context.Context, *archive.Result) error { return nil }

// Multi fans a notification out to several notifiers. Every notifier is
// called even when an earlier one fails; the errors are joined.
type Multi []archive.Notifier

// NotifyArchive calls each notifier in order.
func (m Multi) NotifyArchive(ctx context.Context, result *archive.Result) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyArchive(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Combine returns the smallest notifier covering ns: Nop for none, the
// notifier itself for one, Multi otherwise. Nil entries are skipped.
func Combine(ns ...archive.Notifier) archive.Notifier {
	var kept Multi
	for _, n := range ns {
		if n != nil {
			kept = append(kept, n)
		}
	}
	switch len(kept) {
	case 0:
		return Nop{}
	case 1:
		return kept[0]
	default:
		return kept
	}
}
