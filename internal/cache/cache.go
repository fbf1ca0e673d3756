// Package cache provides a tag-invalidated read cache for form listings and
// form details. Writes never go through the cache; mutations invalidate the
// tags they can affect.
package cache

import (
	"context"
	"fmt"
	"strconv"
)

// Cache stores JSON-encodable values under a key and associates them with tags.
type Cache interface {
	// Get decodes the cached value into dest. Returns false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Stamp captures the current version of each tag. Take it before reading
	// the value that will be cached.
	Stamp(ctx context.Context, tags ...string) (Stamp, error)

	// Set stores value under key and records key under every tag. The write
	// is skipped when a tag in stamp was invalidated after the stamp was
	// taken; a zero Stamp always writes.
	Set(ctx context.Context, key string, value any, stamp Stamp, tags ...string) error

	// Invalidate drops every key recorded under any of the tags and bumps
	// their versions
	Invalidate(ctx context.Context, tags ...string) error
}

// Stamp is a snapshot of tag versions
type Stamp struct {
	versions map[string]int64
}

// current reports whether every stamped tag still has its stamped version
func (s Stamp) current(version func(tag string) int64) bool {
	for tag, v := range s.versions {
		if version(tag) != v {
			return false
		}
	}
	return true
}

func (s Stamp) tags() []string {
	tags := make([]string, 0, len(s.versions))
	for tag := range s.versions {
		tags = append(tags, tag)
	}
	return tags
}

// TagUserForms covers every per-owner form listing
const TagUserForms = "user-forms"

// OwnerTag covers everything derived from one owner's forms
func OwnerTag(ownerID string) string {
	return "owner:" + ownerID
}

// FormTag covers everything derived from one form
func FormTag(formID int64) string {
	return "form:" + strconv.FormatInt(formID, 10)
}

// FormKey is the cache key of a single form
func FormKey(formID int64) string {
	return fmt.Sprintf("form:%d", formID)
}

// OwnerFormsKey is the cache key of an owner's form listing
func OwnerFormsKey(ownerID string) string {
	return "forms:owner:" + ownerID
}
