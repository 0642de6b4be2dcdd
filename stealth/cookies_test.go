package stealth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCookieJar_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookies.json")
	jar := NewCookieJar(path)

	in := []CookieRecord{
		{Name: "sid", Value: "abc123", Domain: ".search.yahoo.com", Path: "/", Expires: 1893456000, Secure: true},
		{Name: "pref", Value: "en", Domain: ".duckduckgo.com", Path: "/", HTTPOnly: true},
	}
	jar.Save(in)

	out := jar.Load()
	if len(out) != len(in) {
		t.Fatalf("loaded %d cookies, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("cookie %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestCookieJar_MissingFileYieldsNil(t *testing.T) {
	jar := NewCookieJar(filepath.Join(t.TempDir(), "absent.json"))
	if got := jar.Load(); got != nil {
		t.Errorf("Load() = %v, want nil for missing jar", got)
	}
}

func TestCookieJar_CorruptFileYieldsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	jar := NewCookieJar(path)
	if got := jar.Load(); got != nil {
		t.Errorf("Load() = %v, want nil for corrupt jar", got)
	}
}

func TestCookieJar_SaveReplaces(t *testing.T) {
	jar := NewCookieJar(filepath.Join(t.TempDir(), "cookies.json"))

	jar.Save([]CookieRecord{{Name: "old", Value: "1"}, {Name: "older", Value: "2"}})
	jar.Save([]CookieRecord{{Name: "new", Value: "3"}})

	out := jar.Load()
	if len(out) != 1 || out[0].Name != "new" {
		t.Errorf("Load() = %+v, want only the latest save", out)
	}
}
