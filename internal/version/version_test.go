package version

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Name != "backoffice-server" {
		t.Errorf("Name = %q, want backoffice-server", info.Name)
	}
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q, want go prefix", info.GoVersion)
	}
}

func TestGetLinkerValuesWin(t *testing.T) {
	oldCommit, oldTime := GitCommit, BuildTime
	defer func() { GitCommit, BuildTime = oldCommit, oldTime }()

	GitCommit, BuildTime = "abc123", "2024-01-01T00:00:00Z"
	info := Get()
	if info.GitCommit != "abc123" || info.BuildTime != "2024-01-01T00:00:00Z" {
		t.Errorf("Get() = %+v, want linker values", info)
	}
}

func TestBuildInfoJSON(t *testing.T) {
	data, err := json.Marshal(Get())
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	for _, field := range []string{"name", "version", "gitCommit", "buildTime", "goVersion"} {
		if _, ok := m[field]; !ok {
			t.Errorf("JSON missing field %s", field)
		}
	}
}

func TestString(t *testing.T) {
	if s := String(); !strings.HasPrefix(s, "backoffice-server ") {
		t.Errorf("String() = %q", s)
	}
}
