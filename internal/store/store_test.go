package store

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)

	saved, err := s.Save("wobble", "{ cutoff = range(200, 2000, (osc(0.5))) }")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected a generated id")
	}

	got, err := s.Get("wobble")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Source != saved.Source || got.ID != saved.ID {
		t.Errorf("loaded preset differs: %+v vs %+v", got, saved)
	}
}

func TestSaveRejectsInvalidSource(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Save("broken", "{ x = osc(osc(1)) }"); err == nil {
		t.Fatal("expected save to reject a program that does not parse")
	}
	if _, err := s.Get("broken"); err == nil {
		t.Fatal("rejected preset must not be stored")
	}
}

func TestSaveOverwritesByName(t *testing.T) {
	s := openTestStore(t)

	first, err := s.Save("beat", "{ x = 1 }")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := s.Save("beat", "{ x = 2 }")
	if err != nil {
		t.Fatalf("re-save failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("overwrite must keep the preset id")
	}

	got, err := s.Get("beat")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Source != "{ x = 2 }" {
		t.Errorf("got %q, want the overwritten source", got.Source)
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"b", "a", "c"} {
		if _, err := s.Save(name, "{ x = 1 }"); err != nil {
			t.Fatalf("save %q failed: %v", name, err)
		}
	}

	presets, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(presets) != 3 {
		t.Fatalf("expected 3 presets, got %d", len(presets))
	}
	if presets[0].Name != "a" || presets[2].Name != "c" {
		t.Errorf("presets not ordered by name: %v", presets)
	}

	if err := s.Delete("b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.Delete("b"); err == nil {
		t.Error("deleting a missing preset must fail")
	}

	presets, _ = s.List()
	if len(presets) != 2 {
		t.Errorf("expected 2 presets after delete, got %d", len(presets))
	}
}

func TestRebindPlaceholders(t *testing.T) {
	pg := &Store{driver: "postgres"}
	got := pg.rebind("UPDATE presets SET source = ?, updated_at = ? WHERE id = ?")
	want := "UPDATE presets SET source = $1, updated_at = $2 WHERE id = $3"
	if got != want {
		t.Errorf("postgres rebind:\n got %s\nwant %s", got, want)
	}

	lite := &Store{driver: "sqlite3"}
	query := "DELETE FROM presets WHERE name = ?"
	if got := lite.rebind(query); got != query {
		t.Errorf("sqlite3 query must pass through unchanged, got %s", got)
	}
}
