package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/smazurov/rgbnode/internal/logging"
	"github.com/smazurov/rgbnode/internal/version"
)

// restartDelay lets the HTTP response go out before the process exits.
const restartDelay = 500 * time.Millisecond

type service struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater
	executable string
	backup     *backupManager
	restart    func()

	mu          sync.RWMutex
	state       State
	latest      *selfupdate.Release
	lastChecked *time.Time
	lastError   error

	disabledReason string

	logger *slog.Logger
}

// NewService creates the updater. Hosts where the binary cannot be
// replaced get a disabled service rather than an error.
func NewService(opts Options) (Service, error) {
	logger := logging.GetLogger("updater")
	disabled := func(reason string) (Service, error) {
		logger.Info("Update service disabled", "reason", reason)
		return &service{state: StateIdle, disabledReason: reason, logger: logger}, nil
	}

	if opts.Repository == "" {
		return disabled("no repository configured")
	}

	exe := opts.Executable
	if exe == "" {
		var err error
		if exe, err = selfupdate.ExecutablePath(); err != nil {
			return disabled(fmt.Sprintf("failed to get executable path: %v", err))
		}
	}
	if reason := checkWritable(filepath.Dir(exe)); reason != "" {
		return disabled(reason)
	}

	source := opts.Source
	if source == nil {
		gh, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub source: %w", err)
		}
		source = gh
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	backupDir := opts.BackupDir
	if backupDir == "" {
		if cache, cacheErr := os.UserCacheDir(); cacheErr == nil {
			backupDir = filepath.Join(cache, "rgbnode", "backup")
		}
	}
	var backup *backupManager
	if backupDir != "" {
		if backup, err = newBackupManager(backupDir, exe, logger); err != nil {
			logger.Warn("Backups disabled", "error", err)
		}
	}

	restart := opts.Restart
	if restart == nil {
		restart = func() { signalSelf(logger) }
	}

	return &service{
		repository: selfupdate.ParseSlug(opts.Repository),
		updater:    updater,
		executable: exe,
		backup:     backup,
		restart:    restart,
		state:      StateIdle,
		logger:     logger,
	}, nil
}

func checkWritable(dir string) string {
	f, err := os.CreateTemp(dir, ".rgbnode.update.*")
	if err != nil {
		return fmt.Sprintf("no write permission to %s: %v", dir, err)
	}
	f.Close()
	os.Remove(f.Name())
	return ""
}

func (s *service) Enabled() bool { return s.disabledReason == "" }

func (s *service) DisabledReason() string { return s.disabledReason }

func (s *service) Check(ctx context.Context) (*Release, error) {
	if !s.Enabled() {
		return nil, newError(ErrCodeDisabled, s.disabledReason, nil)
	}
	if !s.transitionTo(StateChecking, StateIdle, StateAvailable, StateError, StateRolledBack) {
		return nil, newError(ErrCodeInvalidState,
			fmt.Sprintf("cannot check for updates in state %s", s.getState()), nil)
	}

	release, found, err := s.updater.DetectLatest(ctx, s.repository)
	if err != nil {
		s.setError(err)
		return nil, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}

	now := time.Now()
	s.mu.Lock()
	s.lastChecked = &now
	s.mu.Unlock()

	if !found {
		err := fmt.Errorf("repository has no releases for this platform")
		s.setError(err)
		return nil, newError(ErrCodeNotFound, err.Error(), nil)
	}

	current := version.Version
	info := &Release{
		CurrentVersion:  current,
		LatestVersion:   release.Version(),
		ReleaseNotes:    release.ReleaseNotes,
		ReleaseURL:      release.URL,
		PublishedAt:     release.PublishedAt,
		AssetSize:       release.AssetByteSize,
		UpdateAvailable: version.IsDev() || release.GreaterThan(current),
	}

	if !info.UpdateAvailable {
		s.transitionTo(StateIdle)
		return info, nil
	}

	s.mu.Lock()
	s.latest = release
	s.mu.Unlock()
	s.transitionTo(StateAvailable)
	return info, nil
}

func (s *service) Apply(ctx context.Context) error {
	if !s.Enabled() {
		return newError(ErrCodeDisabled, s.disabledReason, nil)
	}

	if s.getState() != StateAvailable {
		info, err := s.Check(ctx)
		if err != nil {
			return err
		}
		if !info.UpdateAvailable {
			return newError(ErrCodeNoUpdate, "no update available", nil)
		}
	}

	if !s.transitionTo(StateDownloading, StateAvailable) {
		return newError(ErrCodeInvalidState,
			fmt.Sprintf("cannot apply update in state %s", s.getState()), nil)
	}

	if s.backup != nil {
		if err := s.backup.create(); err != nil {
			s.setError(err)
			return newError(ErrCodeBackupFailed, "failed to create backup", err)
		}
	}

	s.transitionTo(StateApplying)

	s.mu.RLock()
	release := s.latest
	s.mu.RUnlock()

	if err := s.updater.UpdateTo(ctx, release, s.executable); err != nil {
		s.setError(err)
		s.attemptRollback()
		return newError(ErrCodeApplyFailed, "failed to apply update", err)
	}

	s.transitionTo(StateRestarting)
	s.logger.Info("Update applied, restarting", "version", release.Version())
	time.AfterFunc(restartDelay, s.restart)
	return nil
}

func (s *service) Rollback(_ context.Context) error {
	if !s.Enabled() {
		return newError(ErrCodeDisabled, s.disabledReason, nil)
	}
	if s.backup == nil || !s.backup.available() {
		return newError(ErrCodeNoBackup, "no backup available for rollback", nil)
	}
	if err := s.backup.restore(); err != nil {
		return newError(ErrCodeRollbackFailed, "failed to restore backup", err)
	}

	s.transitionTo(StateRolledBack)
	s.logger.Info("Rollback completed, restarting")
	time.AfterFunc(restartDelay, s.restart)
	return nil
}

func (s *service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		State:          s.state,
		CurrentVersion: version.Version,
		LastChecked:    s.lastChecked,
	}
	if s.latest != nil {
		st.TargetVersion = s.latest.Version()
	}
	if s.lastError != nil {
		st.Error = s.lastError.Error()
	}
	if s.backup != nil {
		st.BackupAvailable = s.backup.available()
		st.BackupVersion = s.backup.version()
	}
	return st
}

func (s *service) transitionTo(newState State, validFrom ...State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(validFrom) > 0 && !slices.Contains(validFrom, s.state) {
		return false
	}

	s.logger.Debug("State transition", "from", s.state, "to", newState)
	s.state = newState
	s.lastError = nil
	return true
}

func (s *service) getState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *service) setError(err error) {
	s.mu.Lock()
	s.lastError = err
	s.state = StateError
	s.mu.Unlock()
}

func (s *service) attemptRollback() {
	if s.backup == nil || !s.backup.available() {
		s.logger.Error("No backup available for automatic rollback")
		return
	}
	if err := s.backup.restore(); err != nil {
		s.logger.Error("Failed to restore backup", "error", err)
		return
	}
	s.transitionTo(StateRolledBack)
	s.logger.Info("Automatic rollback completed")
}

// signalSelf asks the process to shut down; the graceful shutdown path
// flushes pending records and systemd starts the new binary.
func signalSelf(logger *slog.Logger) {
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		logger.Error("Failed to find own process", "error", err)
		return
	}
	logger.Info("Sending SIGTERM to trigger restart")
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		logger.Error("Failed to send SIGTERM", "error", err)
	}
}
