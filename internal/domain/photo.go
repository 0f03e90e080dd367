package domain

import "time"

// Photo is an image stored in object storage under a place's key prefix.
type Photo struct {
	Key          string
	URL          string
	Size         int64
	LastModified *time.Time
}
