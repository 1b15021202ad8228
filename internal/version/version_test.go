package version

import "testing"

func TestString(t *testing.T) {
	old := Version
	Version = "1.2.3"
	defer func() { Version = old }()

	if got, want := String(), "catalogsearch 1.2.3 (unknown, unknown)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if Fields()["version"] != "1.2.3" {
		t.Errorf("Fields() = %v", Fields())
	}
}
