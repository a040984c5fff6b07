package domain

// IsActionBucket reports whether b holds action items.
func IsActionBucket(b Bucket) bool {
	switch b {
	case BucketInbox, BucketNext, BucketWaiting, BucketCalendar, BucketSomeday:
		return true
	}
	return false
}

// IsKnownBucket reports whether b is any bucket of the workflow.
func IsKnownBucket(b Bucket) bool {
	return IsActionBucket(b) || b == BucketProject || b == BucketReference
}

// IsReferenceEntity reports whether e lives in the reference bucket.
func IsReferenceEntity(e Entity) bool {
	return e != nil && e.EntityBucket() == BucketReference
}

func AsAction(e Entity) (*ActionItem, bool) {
	a, ok := e.(*ActionItem)
	return a, ok && a != nil
}

func AsProject(e Entity) (*Project, bool) {
	p, ok := e.(*Project)
	return p, ok && p != nil
}

func AsReference(e Entity) (Reference, bool) {
	r, ok := e.(Reference)
	return r, ok
}

func AsPerson(e Entity) (*PersonItem, bool) {
	p, ok := e.(*PersonItem)
	return p, ok && p != nil
}

func AsOrgDoc(e Entity) (*OrgDocItem, bool) {
	d, ok := e.(*OrgDocItem)
	return d, ok && d != nil
}

func AsCalendarEntry(e Entity) (*CalendarEntry, bool) {
	c, ok := e.(*CalendarEntry)
	return c, ok && c != nil
}
