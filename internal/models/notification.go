package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NotificationKind tells which stage of the publish pipeline emitted a notification
type NotificationKind string

const (
	KindProcessing NotificationKind = "processing"
	KindProcessed  NotificationKind = "processed"
)

// PublishNotification is a single publish event emitted by the CMS host.
// Processing notifications carry Action, processed notifications carry Operation
// and, when a version was selected for the target, VersionToPublish.
type PublishNotification struct {
	Kind             NotificationKind `json:"kind"`
	ItemID           string           `json:"item_id"`
	Action           PublishAction    `json:"action,omitempty"`
	Operation        PublishOperation `json:"operation,omitempty"`
	VersionToPublish *ItemRef         `json:"version_to_publish,omitempty"`
}

// ParseNotification decodes and validates a JSON publish notification
func ParseNotification(data []byte) (PublishNotification, error) {
	var n PublishNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return PublishNotification{}, fmt.Errorf("failed to unmarshal publish notification: %w", err)
	}
	if err := n.Validate(); err != nil {
		return PublishNotification{}, err
	}
	return n, nil
}

// Validate normalizes enum casing and checks that the fields required by the
// notification kind are present
func (n *PublishNotification) Validate() error {
	if strings.TrimSpace(n.ItemID) == "" {
		return fmt.Errorf("item_id is required")
	}

	switch NotificationKind(strings.ToLower(string(n.Kind))) {
	case KindProcessing:
		n.Kind = KindProcessing
		action, err := ParsePublishAction(string(n.Action))
		if err != nil {
			return err
		}
		n.Action = action
	case KindProcessed:
		n.Kind = KindProcessed
		operation, err := ParsePublishOperation(string(n.Operation))
		if err != nil {
			return err
		}
		n.Operation = operation
	default:
		return fmt.Errorf("unknown notification kind: %q", n.Kind)
	}

	return nil
}
