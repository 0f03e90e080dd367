package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Meta carries the identity and timestamps shared by every entity.
type Meta struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Metadata exposes the embedded metadata to generic repositories.
func (m *Meta) Metadata() *Meta {
	return m
}

// Stamp assigns a new identifier and sets both timestamps to now.
func (m *Meta) Stamp(now time.Time) {
	now = now.UTC().Truncate(time.Microsecond)
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
}

// Touch moves UpdatedAt forward. It never goes backwards or stays equal,
// even when the clock has not advanced past the stored precision.
func (m *Meta) Touch(now time.Time) {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(m.UpdatedAt) {
		now = m.UpdatedAt.Add(time.Microsecond)
	}
	m.UpdatedAt = now
}

// Entity is implemented by pointers to the four domain types.
type Entity[T any] interface {
	Metadata() *Meta
	// Matches reports whether the attribute named attr equals value.
	// Unknown attribute names return an error.
	Matches(attr string, value any) (bool, error)
	Clone() T
}

// Patch lists the mutable fields of an entity. Nil fields are left untouched.
type Patch[T any] interface {
	Apply(entity T)
}

// FoldKey is the comparison key for case-insensitive attributes (email,
// amenity name). Every backend compares on this key.
func FoldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchString(value any, want string, fold bool) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	if fold {
		return FoldKey(s) == FoldKey(want)
	}
	return s == want
}

func unknownAttribute(entity, attr string) error {
	return fmt.Errorf("%s has no attribute %q", entity, attr)
}
