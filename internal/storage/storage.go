package storage

import "errors"

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrCorruptSnapshot  = errors.New("snapshot is corrupt")
)
