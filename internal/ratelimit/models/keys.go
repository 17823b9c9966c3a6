package models

import "strings"

// KeyPrefix namespaces all counter keys in the shared store.
const KeyPrefix = "ratelimit"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// to prevent key collision attacks where user-controlled identifiers containing
// ':' could manipulate adjacent rate limit buckets.
//
// Example: An identifier "user:admin" would become "user_admin", preventing
// it from being interpreted as a separate key segment.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// CounterKey builds the store key for a (category, identity) pair.
// Shape: ratelimit:<category>:<kind>:<value>.
func CounterKey(category Category, identity Identity) string {
	return KeyPrefix + ":" + string(category) + ":" + identity.String()
}
