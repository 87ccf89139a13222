package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func stubBuild(t *testing.T, version, commit, buildTime string, bi *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origBuildTime, origRead := Version, GitCommit, BuildTime, readBuildInfo
	t.Cleanup(func() {
		Version, GitCommit, BuildTime, readBuildInfo = origVersion, origCommit, origBuildTime, origRead
	})
	Version, GitCommit, BuildTime = version, commit, buildTime
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestGetVersionInfo(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		commit      string
		buildTime   string
		bi          *debug.BuildInfo
		wantVersion string
		wantCommit  string
		wantRelease bool
		wantDirty   bool
		wantDate    time.Time
	}{
		{
			name:        "dev without build info",
			version:     "dev",
			wantVersion: "dev",
		},
		{
			name:        "ldflags release",
			version:     "1.0.0",
			commit:      "abc1234",
			buildTime:   "2026-01-15T10:30:00Z",
			wantVersion: "1.0.0",
			wantCommit:  "abc1234",
			wantRelease: true,
			wantDate:    time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "module version from go install",
			version: "dev",
			bi: &debug.BuildInfo{
				GoVersion: "go1.26.0",
				Main:      debug.Module{Version: "v0.3.1"},
			},
			wantVersion: "0.3.1",
			wantRelease: true,
		},
		{
			name:    "devel build uses vcs settings",
			version: "dev",
			bi: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
					{Key: "vcs.time", Value: "2026-03-01T00:00:00Z"},
				},
			},
			wantVersion: "dev",
			wantCommit:  "0123456",
			wantDirty:   true,
			wantDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "ldflags win over vcs",
			version: "2.0.0",
			commit:  "fedcba9",
			bi: &debug.BuildInfo{
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789"}},
			},
			wantVersion: "2.0.0",
			wantCommit:  "fedcba9",
			wantRelease: true,
		},
		{
			name:        "short revision kept",
			version:     "dev",
			bi:          &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}}},
			wantVersion: "dev",
			wantCommit:  "abc",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stubBuild(t, tc.version, tc.commit, tc.buildTime, tc.bi)
			info := GetVersionInfo()

			if info.Version != tc.wantVersion {
				t.Errorf("Version = %q, want %q", info.Version, tc.wantVersion)
			}
			if info.GitCommit != tc.wantCommit {
				t.Errorf("GitCommit = %q, want %q", info.GitCommit, tc.wantCommit)
			}
			if info.IsRelease != tc.wantRelease {
				t.Errorf("IsRelease = %v, want %v", info.IsRelease, tc.wantRelease)
			}
			if info.IsDirty != tc.wantDirty {
				t.Errorf("IsDirty = %v, want %v", info.IsDirty, tc.wantDirty)
			}
			if !info.BuildDate.Equal(tc.wantDate) {
				t.Errorf("BuildDate = %v, want %v", info.BuildDate, tc.wantDate)
			}
			if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
				t.Errorf("unexpected platform %q", info.Platform)
			}
		})
	}
}

func TestGetShortVersion(t *testing.T) {
	stubBuild(t, "1.0.0", "abc1234", "", nil)
	if got := GetShortVersion(); got != "1.0.0-abc1234" {
		t.Errorf("expected 1.0.0-abc1234, got %q", got)
	}

	stubBuild(t, "dev", "", "", &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789"},
		{Key: "vcs.modified", Value: "true"},
	}})
	if got := GetShortVersion(); got != "dev-0123456-dirty" {
		t.Errorf("expected dev-0123456-dirty, got %q", got)
	}
}

func TestInfoString(t *testing.T) {
	stubBuild(t, "1.0.0", "abc1234", "2026-01-15T10:30:00Z", nil)
	s := GetVersionInfo().String()

	for _, want := range []string{"hostproc 1.0.0", "(abc1234)", "built 2026-01-15T10:30:00Z", runtime.GOOS} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
}
