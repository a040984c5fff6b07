// Package canonid builds and parses canonical entity identifiers of the form
// urn:<namespace>:<entity-type>:<uuid>.
package canonid

import (
	"fmt"
	"strings"
)

// ID is an opaque canonical identifier. IDs are immutable once assigned.
type ID string

// EntityType is the type tag embedded in an ID.
type EntityType string

const (
	Inbox     EntityType = "inbox"
	Action    EntityType = "action"
	Project   EntityType = "project"
	Waiting   EntityType = "waiting"
	Someday   EntityType = "someday"
	Calendar  EntityType = "calendar"
	Reference EntityType = "reference"
	Context   EntityType = "context"
	Tag       EntityType = "tag"
)

var entityTypes = map[EntityType]bool{
	Inbox: true, Action: true, Project: true, Waiting: true, Someday: true,
	Calendar: true, Reference: true, Context: true, Tag: true,
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool { return entityTypes[t] }

// Parts are the segments of a parsed ID.
type Parts struct {
	Namespace  string
	EntityType EntityType
	UUID       string
}

// New formats a canonical id. The uuid is not validated.
func New(namespace string, t EntityType, uuid string) ID {
	return ID(fmt.Sprintf("urn:%s:%s:%s", namespace, t, uuid))
}

// Parse splits id on its first three colons. Everything after the third colon
// is the UUID, colons included. Malformed input yields whatever segments exist.
func Parse(id ID) Parts {
	segs := strings.SplitN(string(id), ":", 4)
	var p Parts
	if len(segs) > 1 {
		p.Namespace = segs[1]
	}
	if len(segs) > 2 {
		p.EntityType = EntityType(segs[2])
	}
	if len(segs) > 3 {
		p.UUID = segs[3]
	}
	return p
}

// EntityTypeForBucket returns the id tag used for a freshly created entity
// living in bucket.
func EntityTypeForBucket(bucket string) EntityType {
	switch bucket {
	case "inbox":
		return Inbox
	case "waiting":
		return Waiting
	case "someday":
		return Someday
	case "calendar":
		return Calendar
	case "project":
		return Project
	case "reference":
		return Reference
	default:
		return Action
	}
}

func (id ID) String() string { return string(id) }
