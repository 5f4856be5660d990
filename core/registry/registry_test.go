package registry

import "testing"

func TestRegistry_SetGet(t *testing.T) {
	r := New()
	r.SetGlobal("k", 1)
	v, ok := r.GetGlobal("k")
	if !ok || v != 1 {
		t.Errorf("GetGlobal = %v, %v; want 1, true", v, ok)
	}
	if _, ok := r.GetGlobal("missing"); ok {
		t.Error("GetGlobal missing: want false")
	}
}

func TestRegistry_LockIgnoresWrites(t *testing.T) {
	r := New()
	r.SetGlobal("k", "before")
	r.Lock("k")
	if !r.IsLocked("k") {
		t.Fatal("IsLocked = false after Lock")
	}
	r.SetGlobal("k", "after")
	if v, _ := r.GetGlobal("k"); v != "before" {
		t.Errorf("locked value = %v, want before", v)
	}

	r.UnlockForTesting("k")
	r.SetGlobal("k", "after")
	if v, _ := r.GetGlobal("k"); v != "after" {
		t.Errorf("unlocked value = %v, want after", v)
	}
}
