package assessment

import "testing"

func TestRegistryAttemptsPerUser(t *testing.T) {
	def := studentDefinition(t)
	r := NewRegistry()

	first := r.Start("u1", def)
	if err := first.SelectAnswer(0, 3); err != nil {
		t.Fatal(err)
	}
	if got, ok := r.Get("u1", def.ID); !ok || got != first {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if _, ok := r.Get("u2", def.ID); ok {
		t.Fatal("attempt leaked to another user")
	}

	// Starting again replaces the earlier attempt with a blank one.
	second := r.Start("u1", def)
	if second == first || second.Pointer() != 0 {
		t.Fatalf("restart kept pointer %d", second.Pointer())
	}

	r.Start("u2", def)
	r.DropUser("u1")
	if _, ok := r.Get("u1", def.ID); ok {
		t.Fatal("DropUser kept attempt")
	}
	if _, ok := r.Get("u2", def.ID); !ok {
		t.Fatal("DropUser removed another user's attempt")
	}
}
