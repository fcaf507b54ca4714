// Package lockqueue implements the per-repository mutual-exclusion
// primitive: tasks submitted under the same key serialize, distinct
// keys run concurrently, and concurrent callers for the same key share
// one in-flight task's result rather than repeating its side effects.
package lockqueue

import (
	"golang.org/x/sync/singleflight"
)

// Queue serializes work by key. The zero value is ready to use.
type Queue struct {
	group singleflight.Group
}

// New returns a ready-to-use Queue.
func New() *Queue {
	return &Queue{}
}

// Do runs fn under the given key. If another call for the same key is
// already in flight, Do waits for it and returns its result instead of
// running fn again — task side effects (fetch/clone) complete exactly
// once per overlapping batch of callers on that key.
func (q *Queue) Do(key string, fn func() (any, error)) (any, error) {
	v, err, _ := q.group.Do(key, fn)
	return v, err
}
