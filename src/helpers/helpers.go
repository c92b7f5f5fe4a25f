// Package helpers contains few helper functions which are used throughout
// the project.
package helpers

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ProjectUserPath returns the directory in which user files of the project
// should be stored. Configuration, log files and the like.
func ProjectUserPath() (string, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding user config dir: %w", err)
	}

	return filepath.Join(cfgDir, "coverlift"), nil
}

// AbsolutePath returns the absolute path representation of path. If path is
// already absolute it is returned unchanged. If it is relative then it is
// considered relative to workDir.
func AbsolutePath(path, workDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}

// SetLogsFile sets the logfile of the server to logFilePath on the file
// system appfs.
func SetLogsFile(appfs afero.Fs, logFilePath string) error {
	dir := filepath.Dir(logFilePath)
	if err := appfs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating log file directory `%s`: %w", dir, err)
	}

	logFile, err := appfs.Create(logFilePath)
	if err != nil {
		return fmt.Errorf("could not open logfile `%s`: %w", logFilePath, err)
	}

	log.SetOutput(logFile)
	return nil
}

// SetUpPidFile writes the process' PID in the file pidFile on the file
// system appfs.
func SetUpPidFile(appfs afero.Fs, pidFile string) error {
	fh, err := appfs.Create(pidFile)
	if err != nil {
		return fmt.Errorf("creating pidfile `%s`: %w", pidFile, err)
	}

	if _, err := fmt.Fprintf(fh, "%d", os.Getpid()); err != nil {
		fh.Close()
		_ = appfs.Remove(pidFile)
		return fmt.Errorf("writing pidfile `%s`: %w", pidFile, err)
	}

	return fh.Close()
}

// RemovePidFile deletes the pidFile from the file system appfs. Errors are
// logged but otherwise ignored since there is nothing to be done about them
// during shutdown.
func RemovePidFile(appfs afero.Fs, pidFile string) {
	if err := appfs.Remove(pidFile); err != nil {
		log.Printf("error removing pidfile `%s`: %s", pidFile, err)
	}
}
