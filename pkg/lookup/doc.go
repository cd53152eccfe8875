// Package lookup builds validator.Lookup functions backed by set membership,
// typically the redis sets managed by pkg/redis.
//
// Unique fails values already present in a set (taken usernames), Known
// fails values missing from one (unknown promo codes). A Registry maps the
// lookup names used in form definitions to these functions.
package lookup
