package services

import (
	"testing"

	"sports-data-service/database"
)

type countingNotifier struct {
	calls int
	last  *database.Match
}

func (n *countingNotifier) BroadcastMatchCreated(match *database.Match) {
	n.calls++
	n.last = match
}

func TestMultiNotifierFansOut(t *testing.T) {
	first := &countingNotifier{}
	second := &countingNotifier{}
	multi := NewMultiNotifier(first, second)

	match := &database.Match{ID: 7}
	multi.BroadcastMatchCreated(match)

	for i, n := range []*countingNotifier{first, second} {
		if n.calls != 1 {
			t.Errorf("Expected notifier %d to be called once, got %d", i, n.calls)
		}
		if n.last != match {
			t.Errorf("Expected notifier %d to receive the match", i)
		}
	}
}

func TestMultiNotifierEmpty(t *testing.T) {
	multi := NewMultiNotifier()

	// 没有通知器时也不应崩溃
	multi.BroadcastMatchCreated(&database.Match{ID: 1})
}
