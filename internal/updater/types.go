package updater

import (
	"context"
	"time"

	"github.com/creativeprojects/go-selfupdate"
)

// State is the update state machine position.
type State string

// Update states.
const (
	StateIdle        State = "idle"
	StateChecking    State = "checking"
	StateAvailable   State = "available"
	StateDownloading State = "downloading"
	StateApplying    State = "applying"
	StateRestarting  State = "restarting"
	StateError       State = "error"
	StateRolledBack  State = "rolled_back"
)

// Service checks for, installs and reverts releases of the daemon.
type Service interface {
	// Check asks the release source for a newer version.
	Check(ctx context.Context) (*Release, error)

	// Apply installs the newest release and schedules a restart.
	Apply(ctx context.Context) error

	// Rollback restores the binary saved before the last Apply.
	Rollback(ctx context.Context) error

	// Status returns the current state.
	Status() Status

	// Enabled reports whether updates are possible on this host.
	Enabled() bool

	// DisabledReason explains why Enabled is false.
	DisabledReason() string
}

// Release describes the newest published release.
type Release struct {
	CurrentVersion  string    `json:"current_version" example:"v1.2.0" doc:"Running version"`
	LatestVersion   string    `json:"latest_version" example:"v1.3.0" doc:"Newest published version"`
	ReleaseNotes    string    `json:"release_notes,omitempty" doc:"Release notes"`
	ReleaseURL      string    `json:"release_url,omitempty" doc:"Release page"`
	PublishedAt     time.Time `json:"published_at,omitempty" doc:"Publication time"`
	AssetSize       int       `json:"asset_size,omitempty" doc:"Download size in bytes"`
	UpdateAvailable bool      `json:"update_available" doc:"Whether LatestVersion is newer"`
}

// Status is a snapshot of the updater.
type Status struct {
	State           State      `json:"state" enum:"idle,checking,available,downloading,applying,restarting,error,rolled_back" doc:"Update state"`
	CurrentVersion  string     `json:"current_version" doc:"Running version"`
	TargetVersion   string     `json:"target_version,omitempty" doc:"Version being installed"`
	Error           string     `json:"error,omitempty" doc:"Last error"`
	LastChecked     *time.Time `json:"last_checked,omitempty" doc:"Time of the last check"`
	BackupAvailable bool       `json:"backup_available" doc:"Whether Rollback is possible"`
	BackupVersion   string     `json:"backup_version,omitempty" doc:"Version held by the backup"`
}

// Options configures the updater.
type Options struct {
	// Repository is the GitHub slug, e.g. "smazurov/rgbnode". Empty
	// disables updates.
	Repository string
	Prerelease bool

	// BackupDir holds the previous binary. Defaults to the user cache dir.
	BackupDir string
	// Executable defaults to the running binary.
	Executable string
	// Source defaults to GitHub.
	Source selfupdate.Source
	// Restart is called after a successful Apply or Rollback. Defaults
	// to sending SIGTERM to this process so systemd restarts it.
	Restart func()
}
