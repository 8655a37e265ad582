package models

import "regexp"

// Canonical UUID form: version 1-5, RFC 4122 variant. Request ids are
// validated against this before reaching the storage layer.
var uuidRe = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func IsUUID(s string) bool {
	return uuidRe.MatchString(s)
}
