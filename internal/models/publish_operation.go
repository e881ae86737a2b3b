package models

import (
	"fmt"
	"strings"
)

// PublishAction is the action the publisher has planned for an item while it is
// still being processed
type PublishAction string

const (
	ActionNone                PublishAction = "None"
	ActionDeleteTargetItem    PublishAction = "DeleteTargetItem"
	ActionPublishSharedFields PublishAction = "PublishSharedFields"
	ActionPublishVersion      PublishAction = "PublishVersion"
	ActionSkipped             PublishAction = "Skipped"
)

// PublishOperation is the outcome reported once an item has been processed
type PublishOperation string

const (
	OperationNone    PublishOperation = "None"
	OperationSkipped PublishOperation = "Skipped"
	OperationDeleted PublishOperation = "Deleted"
	OperationCreated PublishOperation = "Created"
	OperationUpdated PublishOperation = "Updated"
)

// ParsePublishAction parses a string into a PublishAction (case-insensitive)
// Returns an error if the action is unknown
func ParsePublishAction(name string) (PublishAction, error) {
	name = strings.TrimSpace(name)

	validActions := []PublishAction{
		ActionNone,
		ActionDeleteTargetItem,
		ActionPublishSharedFields,
		ActionPublishVersion,
		ActionSkipped,
	}

	for _, action := range validActions {
		if strings.EqualFold(string(action), name) {
			return action, nil
		}
	}

	return "", fmt.Errorf("unknown publish action: %s", name)
}

// ParsePublishOperation parses a string into a PublishOperation (case-insensitive)
// Returns an error if the operation is unknown
func ParsePublishOperation(name string) (PublishOperation, error) {
	name = strings.TrimSpace(name)

	validOperations := []PublishOperation{
		OperationNone,
		OperationSkipped,
		OperationDeleted,
		OperationCreated,
		OperationUpdated,
	}

	for _, operation := range validOperations {
		if strings.EqualFold(string(operation), name) {
			return operation, nil
		}
	}

	return "", fmt.Errorf("unknown publish operation: %s", name)
}
