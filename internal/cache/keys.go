package cache

import "strings"

const keyPrefix = "talentforge"

// GenerateCacheKey builds a namespaced cache key from its parts, e.g.
// GenerateCacheKey("assessment", id) -> "talentforge:assessment:<id>".
func GenerateCacheKey(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

// AssessmentKey is the cache key for a fully loaded assessment.
func AssessmentKey(assessmentID string) string {
	return GenerateCacheKey("assessment", assessmentID)
}

// UserEmailKey is the lookaside key mapping an email to its user id.
func UserEmailKey(email string) string {
	return GenerateCacheKey("user", "email", strings.ToLower(email))
}
