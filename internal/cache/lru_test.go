package cache

import "testing"

func TestLRUList(t *testing.T) {
	l := newLRUList[int]()
	if _, ok := l.Oldest(); ok {
		t.Fatal("Oldest on empty list reported a key")
	}
	n1 := l.PushFront(1)
	l.PushFront(2)
	n3 := l.PushFront(3)

	if k, _ := l.Oldest(); k != 1 {
		t.Errorf("Oldest() = %d, want 1", k)
	}
	l.MoveToFront(n1)
	if k, _ := l.Oldest(); k != 2 {
		t.Errorf("Oldest() after MoveToFront(1) = %d, want 2", k)
	}

	l.Remove(n3)
	l.Remove(n3)
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}

	for _, want := range []int{2, 1} {
		if k, ok := l.RemoveOldest(); !ok || k != want {
			t.Errorf("RemoveOldest() = %d, %t; want %d", k, ok, want)
		}
	}
	if _, ok := l.RemoveOldest(); ok || l.Len() != 0 {
		t.Error("list should be empty")
	}

	l.PushFront(9)
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len() after Clear = %d", l.Len())
	}
}
