package config

import (
	"strings"
	"testing"
)

func resetCurrent(t *testing.T) {
	t.Helper()
	prev := GetConfig()
	SetConfig(nil)
	t.Cleanup(func() { SetConfig(prev) })
}

func TestGetConfig_BeforeSet(t *testing.T) {
	resetCurrent(t)

	if cfg := GetConfig(); cfg != nil {
		t.Errorf("GetConfig() = %+v before SetConfig, want nil", cfg)
	}

	cfg := Default()
	SetConfig(cfg)
	if GetConfig() != cfg {
		t.Error("GetConfig() does not return the installed configuration")
	}
}

func TestReloadConfig(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantErr     string
		wantThreads int
		wantTimeout int
	}{
		{
			name:        "valid file replaces the active config",
			content:     `{"port": 8080, "threads": 3, "timeout": 250}`,
			wantThreads: 3,
			wantTimeout: 250,
		},
		{
			name:        "invalid values keep the active config",
			content:     `{"port": 0, "threads": -3}`,
			wantErr:     "threads",
			wantThreads: DefaultThreads,
			wantTimeout: DefaultTimeout,
		},
		{
			name:        "unparsable file keeps the active config",
			content:     `{"port": `,
			wantErr:     "parse",
			wantThreads: DefaultThreads,
			wantTimeout: DefaultTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetCurrent(t)
			SetConfig(Default())

			err := ReloadConfig(writeConfig(t, tt.content))
			if tt.wantErr == "" && err != nil {
				t.Fatalf("ReloadConfig() error = %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("ReloadConfig() error = %v, want it to mention %q", err, tt.wantErr)
			}

			cfg := GetConfig()
			if cfg.Threads != tt.wantThreads || cfg.Timeout != tt.wantTimeout {
				t.Errorf("active config threads=%d timeout=%d, want %d/%d",
					cfg.Threads, cfg.Timeout, tt.wantThreads, tt.wantTimeout)
			}
		})
	}
}

func TestReloadConfig_MissingFile(t *testing.T) {
	resetCurrent(t)
	cfg := Default()
	SetConfig(cfg)

	if err := ReloadConfig(t.TempDir() + "/absent.yaml"); err == nil {
		t.Fatal("ReloadConfig() of a missing file succeeded")
	}
	if GetConfig() != cfg {
		t.Error("missing file replaced the active configuration")
	}
}
