package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadDotEnvLoadsValuesAndIgnoresNoise(t *testing.T) {
	t.Setenv("A", "")
	t.Setenv("B", "")
	t.Setenv("C", "")

	path := writeDotEnv(t, `
# comment

A=one
export B=two
C="three"
not a pair
`)

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv returned error: %v", err)
	}

	for key, want := range map[string]string{"A": "one", "B": "two", "C": "three"} {
		if got := os.Getenv(key); got != want {
			t.Errorf("%s=%q, want %q", key, got, want)
		}
	}
}

func TestLoadDotEnvDoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("KEEP", "already")

	path := writeDotEnv(t, "KEEP=fromfile\n")
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv returned error: %v", err)
	}

	if got := os.Getenv("KEEP"); got != "already" {
		t.Fatalf("KEEP=%q, want %q", got, "already")
	}
}

func TestLoadDotEnvStripsQuotes(t *testing.T) {
	t.Setenv("SINGLE", "")
	t.Setenv("DOUBLE", "")

	path := writeDotEnv(t, "SINGLE='hello world'\nDOUBLE=\"two words\"\n")
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv returned error: %v", err)
	}

	if got := os.Getenv("SINGLE"); got != "hello world" {
		t.Errorf("SINGLE=%q", got)
	}
	if got := os.Getenv("DOUBLE"); got != "two words" {
		t.Errorf("DOUBLE=%q", got)
	}
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("loadDotEnv returned error for missing file: %v", err)
	}
}
