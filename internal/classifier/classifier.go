// Package classifier decides what a publish notification means for the index.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/marminbh/indexpush-svc/internal/host"
	"github.com/marminbh/indexpush-svc/internal/models"
)

// Action is the outcome of classifying a notification
type Action string

const (
	ActionIgnore Action = "ignore"
	ActionDelete Action = "delete"
	ActionUpsert Action = "upsert"
)

// Decision is what the pipeline should do with a notification. Items is empty
// for ActionIgnore and otherwise holds the batch to dispatch.
type Decision struct {
	Action Action
	Items  []models.ItemRef
	Reason string
}

func ignore(reason string) Decision {
	return Decision{Action: ActionIgnore, Reason: reason}
}

type Classifier struct {
	store host.ItemStore
}

func New(store host.ItemStore) *Classifier {
	return &Classifier{store: store}
}

// Classify inspects a notification and gathers the items it affects
func (c *Classifier) Classify(ctx context.Context, n models.PublishNotification) (Decision, error) {
	switch n.Kind {
	case models.KindProcessing:
		return c.classifyProcessing(ctx, n)
	case models.KindProcessed:
		return c.classifyProcessed(ctx, n)
	default:
		return Decision{}, fmt.Errorf("unknown notification kind: %q", n.Kind)
	}
}

// classifyProcessing handles deletes, which have to be caught before the item
// disappears from the target database. The target and all its descendants are
// sent so their URLs can be pushed for removal.
func (c *Classifier) classifyProcessing(ctx context.Context, n models.PublishNotification) (Decision, error) {
	if n.Action != models.ActionDeleteTargetItem {
		return ignore("action " + string(n.Action) + " is not a delete"), nil
	}

	target, err := c.store.GetItem(ctx, n.ItemID)
	if errors.Is(err, host.ErrItemNotFound) {
		return ignore("delete target not found"), nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load delete target %s: %w", n.ItemID, err)
	}

	descendants, err := c.store.GetDescendants(ctx, target)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load descendants of %s: %w", n.ItemID, err)
	}

	items := make([]models.ItemRef, 0, len(descendants)+1)
	items = append(items, target)
	items = append(items, descendants...)

	return Decision{Action: ActionDelete, Items: items}, nil
}

func (c *Classifier) classifyProcessed(ctx context.Context, n models.PublishNotification) (Decision, error) {
	switch n.Operation {
	case models.OperationNone, models.OperationSkipped, models.OperationDeleted:
		return ignore("operation " + string(n.Operation)), nil
	case models.OperationCreated, models.OperationUpdated:
		// No version means the item is not published to this target
		if n.VersionToPublish == nil {
			return ignore("no version to publish"), nil
		}
		if SkipItem(n.VersionToPublish) {
			return ignore("not a content item"), nil
		}
	default:
		return Decision{}, fmt.Errorf("unknown publish operation: %q", n.Operation)
	}

	item, err := c.store.GetItem(ctx, n.ItemID)
	if errors.Is(err, host.ErrItemNotFound) {
		return ignore("published item not found"), nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load published item %s: %w", n.ItemID, err)
	}

	return Decision{Action: ActionUpsert, Items: []models.ItemRef{item}}, nil
}

// SkipItem reports whether an item is kept out of the index. Media and other
// non-content items are indexed through their own channel.
func SkipItem(item *models.ItemRef) bool {
	return item == nil || !item.IsContentItem
}
