package starnotify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func TestStoreLoadMissingFileReturnsEmptySet(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "state.json"))

	known := st.Load()

	if len(known) != 0 {
		t.Fatalf("expected empty set for missing file, got %v", known)
	}
}

func TestStoreLoadCorruptFileReturnsEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("not json{"), 0o644); err != nil {
		t.Fatalf("writing corrupt state: %v", err)
	}

	known := NewStore(path).Load()

	if len(known) != 0 {
		t.Fatalf("expected empty set for corrupt file, got %v", known)
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := NewStore(path)
	known := KnownSet{"bob_2": {}, "alice_1": {}}

	if err := st.Save(known, time.Now()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	reloaded := st.Load()

	if len(reloaded) != len(known) {
		t.Fatalf("expected %d entries after reload, got %d", len(known), len(reloaded))
	}
	for key := range known {
		if !reloaded.Has(key) {
			t.Fatalf("expected key %s after reload, got %v", key, reloaded)
		}
	}
}

func TestStoreSaveWritesSortedKeysAndTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := NewStore(path)
	known := KnownSet{"zed_3": {}, "alice_1": {}, "bob_2": {}}
	checked := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := st.Save(known, checked); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading state file: %v", err)
	}
	var sf struct {
		KnownStars []string `json:"known_stars"`
		LastCheck  string   `json:"last_check"`
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		t.Fatalf("state file is not valid JSON: %v", err)
	}
	if !sort.StringsAreSorted(sf.KnownStars) {
		t.Errorf("expected sorted keys, got %v", sf.KnownStars)
	}
	parsed, err := time.Parse(time.RFC3339, sf.LastCheck)
	if err != nil {
		t.Fatalf("last_check is not RFC3339: %v", err)
	}
	if !parsed.Equal(checked) {
		t.Errorf("expected last_check %v, got %v", checked, parsed)
	}
}

func TestStoreSaveOverwritesPriorContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := NewStore(path)

	if err := st.Save(KnownSet{"old_1": {}}, time.Now()); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := st.Save(KnownSet{"new_2": {}}, time.Now()); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	reloaded := st.Load()
	if reloaded.Has("old_1") {
		t.Fatalf("expected old content to be replaced, got %v", reloaded)
	}
	if !reloaded.Has("new_2") {
		t.Fatalf("expected new content present, got %v", reloaded)
	}
}

func TestStoreSaveErrorIsSurfaced(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "no-such-dir", "state.json"))

	if err := st.Save(KnownSet{"a_1": {}}, time.Now()); err == nil {
		t.Fatal("expected error writing to nonexistent directory")
	}
}
