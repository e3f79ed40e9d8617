package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `log_dir = "/var/log/hiscorebot"
proxies = ["https://proxy-a.example/fetch", "https://proxy-b.example/fetch"]
status_addr = "127.0.0.1:8090"

[wiki.en]
api_path = "https://runescape.wiki/api.php"
username = "CountsBot"
password = "hunter2"

[wiki.pt_br]
api_path = "https://pt.runescape.wiki/api.php"
username = "CountsBot"
password = "hunter2"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogDir != "/var/log/hiscorebot" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if len(cfg.Proxies) != 2 {
		t.Errorf("Proxies = %v", cfg.Proxies)
	}
	if cfg.StatusAddr != "127.0.0.1:8090" {
		t.Errorf("StatusAddr = %q", cfg.StatusAddr)
	}
	if cfg.Wiki.EN == nil || cfg.Wiki.EN.APIPath != "https://runescape.wiki/api.php" {
		t.Errorf("Wiki.EN = %+v", cfg.Wiki.EN)
	}
	if cfg.Wiki.PtBR == nil || cfg.Wiki.PtBR.Username != "CountsBot" {
		t.Errorf("Wiki.PtBR = %+v", cfg.Wiki.PtBR)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, `log_dir = "/tmp/logs"

[wiki.en]
api_path = "https://runescape.wiki/api.php"
username = "CountsBot"
password = "hunter2"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ProxyDelay != 12 {
		t.Errorf("ProxyDelay = %d, want the default 12", cfg.ProxyDelay)
	}
	if cfg.RequestDelay != 1 {
		t.Errorf("RequestDelay = %d, want the default 1", cfg.RequestDelay)
	}
	if len(cfg.Proxies) != 0 {
		t.Errorf("Proxies = %v, want none", cfg.Proxies)
	}
	if cfg.Wiki.PtBR != nil {
		t.Errorf("Wiki.PtBR = %+v, want nil when unset", cfg.Wiki.PtBR)
	}
}

func TestLoad_MissingLogDir(t *testing.T) {
	_, err := Load(writeTempConfig(t, `[wiki.en]
api_path = "https://runescape.wiki/api.php"
username = "CountsBot"
password = "hunter2"
`))
	if err == nil || !strings.Contains(err.Error(), "log_dir") {
		t.Fatalf("Load error = %v, want a log_dir complaint", err)
	}
}

func TestLoad_MissingEnglishWiki(t *testing.T) {
	_, err := Load(writeTempConfig(t, `log_dir = "/tmp/logs"`))
	if err == nil || !strings.Contains(err.Error(), "wiki.en") {
		t.Fatalf("Load error = %v, want a wiki.en complaint", err)
	}
}

func TestLoad_IncompleteWikiSection(t *testing.T) {
	_, err := Load(writeTempConfig(t, `log_dir = "/tmp/logs"

[wiki.en]
api_path = "https://runescape.wiki/api.php"
username = "CountsBot"
`))
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("Load error = %v, want a credentials complaint", err)
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	if _, err := Load(writeTempConfig(t, `log_dir = [`)); err == nil {
		t.Fatal("Load accepted malformed TOML")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}
