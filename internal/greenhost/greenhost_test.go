package greenhost

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsGreen(t *testing.T) {
	c := New()

	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.netlify.com", true},
		{"https://netlify.com/pricing", true},
		{"https://example.com", false},
		{"https://docs.netlify.com", true},
		{"https://someuser.github.io/project/", true},
		{"http://WWW.WIKIPEDIA.ORG", true},
		{"https://notnetlify.com", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			if got := c.IsGreen(tc.url); got != tc.want {
				t.Errorf("IsGreen(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	c := New()
	if c.IsGreen("https://internal.example.org") {
		t.Fatal("Did not expect host to be green before adding")
	}

	c.Add("www.Example.ORG ")
	if !c.IsGreen("https://internal.example.org") {
		t.Error("Expected host to be green after adding")
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	content := "hosts:\n  - mygreenhost.example\n  - www.another.example\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !c.IsGreen("https://mygreenhost.example") {
		t.Error("Expected host from file to be green")
	}
	if !c.IsGreen("https://another.example") {
		t.Error("Expected www-prefixed host from file to be green")
	}
	if !c.IsGreen("https://www.netlify.com") {
		t.Error("Expected bundled defaults to survive a file merge")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if !c.IsGreen("https://www.netlify.com") {
		t.Error("Expected defaults when the file is missing")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error for empty path, got %v", err)
	}
	if c.IsGreen("https://example.com") {
		t.Error("example.com should not be green by default")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	if err := os.WriteFile(path, []byte("hosts: [unclosed"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML, got nil")
	}
}
