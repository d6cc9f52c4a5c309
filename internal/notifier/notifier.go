// Package notifier shows desktop toasts through the habitquest tray app. The
// tray writes "port|pid|secret" to a lockfile and accepts JSON webhooks on
// 127.0.0.1:port carrying that secret.
package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
)

const secretHeader = "X-Habitquest-Secret"

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess

	ErrTrayNotRunning = errors.New("habitquest-tray is not running")
)

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// tray is a validated, running tray endpoint.
type tray struct {
	port   int
	pid    int
	secret string
}

type Notifier struct {
	client *http.Client
}

func New() *Notifier {
	return &Notifier{client: &http.Client{Timeout: 2 * time.Second}}
}

// Notify sends text to the tray app.
func (n *Notifier) Notify(text string) error {
	dir, err := TrayConfigDir()
	if err != nil {
		return err
	}
	t, err := discoverTray(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}
	return n.send(t, WebhookPayload{Text: text, DurationMs: constants.NotificationDurationMs})
}

// LevelUp announces a level up. A missing tray is not an error worth
// surfacing, so failures are only logged.
func (n *Notifier) LevelUp(ev models.LevelUpEvent) {
	if err := n.Notify(LevelUpMessage(ev)); err != nil {
		logger.Debug("Level-up notification not delivered", "level", ev.Level, "error", err)
	}
}

// Refresh is a no-op; the tray only cares about level ups.
func (n *Notifier) Refresh() {}

// LevelUpMessage is the text shown for a level up.
func LevelUpMessage(ev models.LevelUpEvent) string {
	return fmt.Sprintf("Level up! You reached level %d. Next level in %d XP.", ev.Level, ev.XPForNextLevel)
}

// TrayConfigDir returns the directory holding the tray lockfile. The tray's
// settings.json may point it elsewhere via settings.lockfile_dir.
func TrayConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	dir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		return dir, nil
	}
	var settings struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		logger.Warn("Ignoring unreadable tray settings", "error", err)
		return dir, nil
	}
	if d := settings.Settings.LockfileDir; d != nil && *d != "" {
		return *d, nil
	}
	return dir, nil
}

func parseLockfile(content string) (tray, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return tray{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return tray{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return tray{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return tray{}, errors.New("invalid process ID in lockfile")
	}

	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return tray{}, errors.New("secret in lockfile is empty")
	}
	return tray{port: port, pid: pid, secret: secret}, nil
}

func discoverTray(lockfilePath string) (tray, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return tray{}, ErrTrayNotRunning
	}
	t, err := parseLockfile(string(content))
	if err != nil {
		return tray{}, err
	}

	process, err := findProcessFunc(t.pid)
	if err != nil || process == nil {
		return tray{}, ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayExecutablePrefix) {
		return tray{}, fmt.Errorf("process with PID %d is not %s (is %s)", t.pid, constants.TrayExecutablePrefix, process.Executable())
	}
	return t, nil
}

func (n *Notifier) send(t tray, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://127.0.0.1:%d", t.port), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, t.secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
