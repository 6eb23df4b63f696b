// Package projects owns the on-disk deployment projects: each one is a
// copy of the viewer template tree plus a config.json artifact.
package projects

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
)

const configName = "config.json"

var (
	ErrNotFound      = errors.New("no such deployment project")
	ErrAlreadyExists = errors.New("deployment project already exists")
)

// ids never contain path separators or dots; a malformed one must not
// reach the filesystem.
var validID = regexp.MustCompile(`^[0-9A-Za-z-]+$`)

type Store struct {
	// DeploymentsRoot holds one directory per deployment.
	DeploymentsRoot string

	// TemplateRoot is the pristine viewer tree copied for each new
	// deployment.
	TemplateRoot string
}

// NewID issues a fresh deployment id. Nothing is created on disk yet.
func (s Store) NewID() string {
	return uuid.NewString()
}

func (s Store) dir(deploymentID string) (string, error) {
	if !validID.MatchString(deploymentID) {
		return "", fmt.Errorf("malformed deployment id: %q", deploymentID)
	}
	return filepath.Join(s.DeploymentsRoot, deploymentID), nil
}

// Create copies the template tree into a new project directory.
func (s Store) Create(deploymentID string) error {
	dir, err := s.dir(deploymentID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, deploymentID)
	}
	if err := copyTree(s.TemplateRoot, dir); err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("creating project %s: %w", deploymentID, err)
	}
	return nil
}

// WriteConfig writes the config artifact, replacing any previous one. A
// resumed deployment republishes through here, so an existing artifact
// is not a conflict.
func (s Store) WriteConfig(deploymentID string, cfg domain.PortalConfig) error {
	dir, err := s.dir(deploymentID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, deploymentID)
	}
	return writeJSON(filepath.Join(dir, configName), cfg)
}

// UpdateConfig overwrites the config artifact, keeping the previous
// version beside it as a backup.
func (s Store) UpdateConfig(deploymentID string, cfg domain.PortalConfig) error {
	dir, err := s.dir(deploymentID)
	if err != nil {
		return err
	}
	target := filepath.Join(dir, configName)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("%w: %s has no config to update", ErrNotFound, deploymentID)
	}
	backup := target + "." + uuid.NewString() + ".bak"
	if err := os.Rename(target, backup); err != nil {
		return fmt.Errorf("backing up config of %s: %w", deploymentID, err)
	}
	return writeJSON(target, cfg)
}

// Delete removes the project tree and everything in it.
func (s Store) Delete(deploymentID string) error {
	dir, err := s.dir(deploymentID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, deploymentID)
	}
	return os.RemoveAll(dir)
}

func writeJSON(path string, cfg domain.PortalConfig) error {
	payload, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0644)
}

func copyTree(src string, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()
		if _, err := io.Copy(out, in); err != nil {
			return err
		}
		return out.Close()
	})
}
