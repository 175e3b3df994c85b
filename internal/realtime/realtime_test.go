package realtime

import "testing"

func TestHubDispatchesToDocumentAndCollection(t *testing.T) {
	h := NewHub()
	var docHits, collHits, otherHits, userHits int
	h.Subscribe("users/u1/moods/m1", func() { docHits++ })
	h.Subscribe("users/u1/moods", func() { collHits++ })
	h.Subscribe("users/u1/journal", func() { otherHits++ })
	h.Subscribe("users/u1", func() { userHits++ })

	h.Dispatch(Change{Path: "users/u1/moods/m1"})
	h.Dispatch(Change{Path: "users/u1/moods/m2"})

	if docHits != 1 {
		t.Fatalf("doc hits=%d, want 1", docHits)
	}
	if collHits != 2 {
		t.Fatalf("collection hits=%d, want 2", collHits)
	}
	if otherHits != 0 || userHits != 0 {
		t.Fatalf("unrelated subscribers fired: journal=%d user=%d", otherHits, userHits)
	}
}

func TestHubCancel(t *testing.T) {
	h := NewHub()
	hits := 0
	cancel := h.Subscribe("users/u1/journal", func() { hits++ })
	cancel()
	cancel()
	h.Dispatch(Change{Path: "users/u1/journal/j1"})
	if hits != 0 {
		t.Fatalf("cancelled subscriber fired %d times", hits)
	}
	if n := h.Subscribers("users/u1/journal"); n != 0 {
		t.Fatalf("subscribers=%d after cancel", n)
	}
}
