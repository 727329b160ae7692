package memconfig

import "testing"

func TestLoadDefaults(t *testing.T) {
	s := Load()
	if s.MaxRegions <= 0 {
		t.Fatalf("MaxRegions = %d, want positive default", s.MaxRegions)
	}
	if s.MaxPageBytes <= 0 {
		t.Fatalf("MaxPageBytes = %d, want positive default", s.MaxPageBytes)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MEMSCAN_MAX_REGIONS", "42")
	s := Load()
	if s.MaxRegions != 42 {
		t.Fatalf("MaxRegions = %d, want 42 from env override", s.MaxRegions)
	}
}
