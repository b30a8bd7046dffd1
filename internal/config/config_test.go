package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("default mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CorruptFileReturnsDefaultAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{ not json"), 0o600)

	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("default mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_AcceptsCommentsAndTrailingCommas(t *testing.T) {
	doc := `{
  // tracker base URL
  "server": "https://jira.example.com",
  "auth_type": "Token",
  "token": "abc",
  "thread_count": 16,
  "theme": "Light",
}`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server != "https://jira.example.com" || cfg.AuthType != AuthToken || cfg.Token != "abc" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.ThreadCount != 16 {
		t.Errorf("ThreadCount = %v, want 16", cfg.ThreadCount)
	}
	if cfg.ProxyOption != ProxyNo {
		t.Errorf("ProxyOption should default to No, got %q", cfg.ProxyOption)
	}
}

func TestThreadCount_JSON(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		want    ThreadCount
		wantErr bool
	}{
		{"safe mode string", `{"thread_count":"safe_mode"}`, 0, false},
		{"number", `{"thread_count":24}`, 24, false},
		{"numeric string", `{"thread_count":"8"}`, 8, false},
		{"unsupported", `{"thread_count":7}`, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tc.doc))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if cfg.ThreadCount != tc.want {
				t.Errorf("ThreadCount = %v, want %v", cfg.ThreadCount, tc.want)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	want := Config{
		Server:      "https://jira.example.com",
		AuthType:    AuthBasic,
		Username:    "sam",
		Password:    "secret",
		ProxyOption: ProxyYes,
		HTTPProxy:   "http://proxy:3128",
		HTTPSProxy:  "http://proxy:3128",
		ThreadCount: 0,
		Theme:       ThemeLight,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSetAuthType_ClearsOtherScheme(t *testing.T) {
	cfg := Config{AuthType: AuthBasic, Username: "u", Password: "p"}
	cfg.SetAuthType(AuthToken)
	if cfg.Username != "" || cfg.Password != "" {
		t.Errorf("basic credentials not cleared: %+v", cfg)
	}
	cfg.Token = "t"
	cfg.SetAuthType(AuthBasic)
	if cfg.Token != "" {
		t.Errorf("token not cleared: %+v", cfg)
	}
}

func TestThreadBudget(t *testing.T) {
	cfg := Default()
	if got := cfg.ThreadBudget(7); got != 7 {
		t.Errorf("safe mode budget = %d, want 7", got)
	}
	if got := cfg.ThreadBudget(0); got != 1 {
		t.Errorf("safe mode budget with zero capacity = %d, want 1", got)
	}
	cfg.ThreadCount = 12
	if got := cfg.ThreadBudget(7); got != 12 {
		t.Errorf("explicit budget = %d, want 12", got)
	}
}

func TestSet(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("server", " https://jira.example.com/ "); err != nil {
		t.Fatal(err)
	}
	if cfg.Server != "https://jira.example.com" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if err := cfg.Set("thread_count", "20"); err != nil {
		t.Fatal(err)
	}
	if cfg.ThreadCount != 20 {
		t.Errorf("ThreadCount = %v", cfg.ThreadCount)
	}
	if err := cfg.Set("theme", "Purple"); err == nil {
		t.Error("expected error for bad theme")
	}
	if err := cfg.Set("bogus", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}
