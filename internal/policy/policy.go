package policy

import (
	"regexp"
	"strconv"
)

// Tuple links a subject (a role) to an object/action pair. The Action
// field is loosely typed: it either embeds a permission identifier using
// the permission::<id> form or carries an opaque payload owned by another
// subsystem.
type Tuple struct {
	Subject string
	Object  string
	Action  string
}

// ValueKind discriminates the decoded forms of a tuple action field.
type ValueKind int

const (
	// Opaque marks an action payload this package does not understand.
	Opaque ValueKind = iota
	// PermissionRef marks an action embedding a permission identifier.
	PermissionRef
)

const permissionPrefix = "permission::"

// Only canonical decimal forms count as permission refs. A zero-padded
// id would re-encode differently and corrupt the payload on a
// round-trip, so it stays opaque.
var permissionRefPattern = regexp.MustCompile(`^permission::(0|[1-9][0-9]*)$`)

// Value is the decoded form of a tuple action field.
type Value struct {
	kind         ValueKind
	permissionID int64
	raw          string
}

// Kind reports which form the value takes.
func (v Value) Kind() ValueKind { return v.kind }

// PermissionID returns the embedded permission identifier. The second
// return is false for opaque values.
func (v Value) PermissionID() (int64, bool) {
	return v.permissionID, v.kind == PermissionRef
}

// Raw returns the original action payload unchanged.
func (v Value) Raw() string { return v.raw }

// Encode renders a permission identifier in the tuple action form.
func Encode(permissionID int64) string {
	return permissionPrefix + strconv.FormatInt(permissionID, 10)
}

// Decode parses a tuple action field. It never fails: anything that does
// not match the permission::<id> form is returned as an opaque value so
// payloads owned by other subsystems pass through uncorrupted.
func Decode(action string) Value {
	m := permissionRefPattern.FindStringSubmatch(action)
	if m == nil {
		return Value{kind: Opaque, raw: action}
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Digits overflowing int64 degrade to opaque rather than failing.
		return Value{kind: Opaque, raw: action}
	}
	return Value{kind: PermissionRef, permissionID: id, raw: action}
}

// DecodeAction decodes the action field of a tuple.
func DecodeAction(t Tuple) Value {
	return Decode(t.Action)
}
