package notifier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/keepup/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = old })
	return dir
}

func withProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
	t.Cleanup(func() { findProcessFunc = old })
}

func TestGetTrayAppConfigDir(t *testing.T) {
	configDir := withConfigDir(t)
	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != trayDir {
		t.Errorf("expected %s, got %s", trayDir, dir)
	}

	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	customDir := "/custom/keepup/dir"
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, customDir)
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != customDir {
		t.Errorf("expected %s, got %s", customDir, dir)
	}

	// Garbage settings fall back to the default dir
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	dir, _ = GetTrayAppConfigDir()
	if dir != trayDir {
		t.Errorf("expected fallback %s, got %s", trayDir, dir)
	}
}

func TestParseLock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    trayLock
		wantErr bool
	}{
		{"valid", "8080|12345|secret\n", trayLock{Port: 8080, PID: 12345, Secret: "secret"}, false},
		{"two parts", "8080|12345", trayLock{}, true},
		{"garbage", "invalid", trayLock{}, true},
		{"empty secret", "8080|12345|", trayLock{}, true},
		{"empty port", "|12345|secret", trayLock{}, true},
		{"port out of range", "99999|12345|secret", trayLock{}, true},
		{"bad pid", "8080|abc|secret", trayLock{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLock(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLock() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLock() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateProcess(t *testing.T) {
	withProcess(t, "")
	if err := validateProcess(1); err != ErrTrayNotRunning {
		t.Errorf("expected ErrTrayNotRunning, got %v", err)
	}

	withProcess(t, "other-app")
	if err := validateProcess(1); err == nil {
		t.Error("expected error for wrong executable")
	}

	withProcess(t, "keepup-tray")
	if err := validateProcess(1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func newTrayServer(t *testing.T, failures int32) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost || r.Header.Get("X-Keepup-Secret") != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Text == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func serverPort(t *testing.T, server *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return port
}

func TestSend(t *testing.T) {
	server, _ := newTrayServer(t, 0)
	port := serverPort(t, server)
	n := New()

	if err := n.send(trayLock{Port: port, Secret: "test-secret"}, Payload{Text: "hello"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := n.send(trayLock{Port: port, Secret: "wrong"}, Payload{Text: "hello"}); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestNotifyRetries(t *testing.T) {
	configDir := withConfigDir(t)
	withProcess(t, "keepup-tray")

	server, calls := newTrayServer(t, 2)
	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	lock := fmt.Sprintf("%d|%d|test-secret", serverPort(t, server), os.Getpid())
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(lock), 0600); err != nil {
		t.Fatal(err)
	}

	n := New()
	n.retryDelay = time.Millisecond
	if err := n.Notify("Missed Run"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if got := atomic.LoadInt32(calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestNotifyWithoutTray(t *testing.T) {
	withConfigDir(t)
	if err := New().Notify("hello"); err != ErrTrayNotRunning {
		t.Errorf("expected ErrTrayNotRunning, got %v", err)
	}
}
