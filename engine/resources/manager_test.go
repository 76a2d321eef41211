package resources

import "testing"

func TestPushThenGetRoundTrips(t *testing.T) {
	m := NewManager()
	id := m.Push(RESOURCE_CACHE_ID, KindMesh, "mesh-payload")

	v, err := m.Get(id)
	if err != nil {
		t.Fatalf("unexpected error getting a freshly pushed resource: %s", err)
	}
	if v.(string) != "mesh-payload" {
		t.Errorf("expecting round-tripped payload, got %v", v)
	}
}

func TestZeroValueHandleIsInvalid(t *testing.T) {
	var id ResourceID
	if id.IsValid() {
		t.Errorf("expecting the zero-value ResourceID to be invalid")
	}
	if _, err := (&Manager{groups: map[string]*ResourceGroup{}}).Get(id); err == nil {
		t.Errorf("expecting Get on the zero-value handle to error")
	}
}

func TestDestroyGroupInvalidatesOutstandingHandles(t *testing.T) {
	m := NewManager()
	id := m.Push("level1", KindTexture, "tex-payload")

	m.DestroyGroup("level1")

	if _, err := m.Get(id); err == nil {
		t.Errorf("expecting Get to fail after the owning group is destroyed")
	}
}

func TestDestroyGroupRefusesDefaultGroup(t *testing.T) {
	m := NewManager()
	id := m.Push(RESOURCE_CACHE_ID, KindShader, "shader-payload")

	m.DestroyGroup(RESOURCE_CACHE_ID)

	if _, err := m.Get(id); err != nil {
		t.Errorf("expecting the default group to survive DestroyGroup, got %s", err)
	}
}

func TestGetRejectsStaleGenerationAfterRecycle(t *testing.T) {
	m := NewManager()
	id := m.Push("level1", KindMaterial, "mat-a")
	m.DestroyGroup("level1")
	// Pushing under the same name again reuses the destroyed slot at a
	// bumped generation.
	second := m.Push("level1", KindMaterial, "mat-b")

	if _, err := m.Get(id); err == nil {
		t.Errorf("expecting the original handle to be invalid once its group was recreated")
	}
	v, err := m.Get(second)
	if err != nil {
		t.Fatalf("unexpected error getting the new handle: %s", err)
	}
	if v.(string) != "mat-b" {
		t.Errorf("expecting the new handle to resolve to its own payload, got %v", v)
	}
}
