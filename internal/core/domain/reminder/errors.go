package reminder

import "errors"

var (
	ErrReminderDoesNotExist = errors.New("reminder does not exist")
	ErrReminderPermission   = errors.New("reminder belongs to another user")
	ErrDispatchFailed       = errors.New("notification dispatch failed")
	ErrStoreContention      = errors.New("reminder was concurrently modified")
	ErrLabelTooLong         = errors.New("reminder label is too long")
)
