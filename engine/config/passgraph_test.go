package config

import "testing"

func TestDefaultPassGraphOrdersShadowFirst(t *testing.T) {
	desc := DefaultPassGraph()
	if len(desc.Passes) == 0 {
		t.Fatalf("expecting a non-empty default pass graph")
	}
	if desc.Passes[0].Name != "shadow" {
		t.Errorf("expecting shadow to be the first pass, got %q", desc.Passes[0].Name)
	}
}

func TestDefaultPassGraphDebugAndParticleBorrowLight(t *testing.T) {
	desc := DefaultPassGraph()
	byName := map[string]PassDescriptor{}
	for _, p := range desc.Passes {
		byName[p.Name] = p
	}

	if byName["debug"].Parent != "light" {
		t.Errorf("expecting debug to borrow light's framebuffer, got parent %q", byName["debug"].Parent)
	}
	if byName["particle"].Parent != "light" {
		t.Errorf("expecting particle to borrow light's framebuffer, got parent %q", byName["particle"].Parent)
	}
	if byName["light"].Parent != "" {
		t.Errorf("expecting light to own its framebuffer, got parent %q", byName["light"].Parent)
	}
}
