package secgroup

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord matches every *MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")

	ErrUnknownReverseDirection = errors.New("unknown reverse rule direction")
)

// MalformedRecordError reports a raw record missing a required field.
type MalformedRecordError struct {
	GroupID string // empty when the group id itself is missing
	Field   string
}

func (e *MalformedRecordError) Error() string {
	if e.GroupID == "" {
		return fmt.Sprintf("malformed record: missing %s", e.Field)
	}
	return fmt.Sprintf("malformed record %s: missing %s", e.GroupID, e.Field)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
