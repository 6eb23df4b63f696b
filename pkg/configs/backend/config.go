// Package backend holds the configuration of the awhinad_backend server.
package backend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type BackendConfig struct {
	ServerPort string `yaml:"port"`

	// PortalURL is the root URL of the GIS portal used to verify caller
	// tokens.
	PortalURL string `yaml:"portalURL"`

	// AdminGroupIDs are the portal groups whose members may call this
	// server.
	AdminGroupIDs []string `yaml:"adminGroupIDs"`

	// DeploymentsRoot is the directory deployment project directories
	// are created under.
	DeploymentsRoot string `yaml:"deploymentsRoot"`

	// TemplateRoot is the portal template directory copied for each new
	// deployment.
	TemplateRoot string `yaml:"templateRoot"`
}

func LoadBackendConfig(filepath string) (*BackendConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (*BackendConfig, error) {
	var out BackendConfig
	if err := yaml.Unmarshal(conf, &out); err != nil {
		return nil, err
	}
	if out.PortalURL == "" {
		return nil, fmt.Errorf("backend config: portalURL is required")
	}
	if out.DeploymentsRoot == "" {
		return nil, fmt.Errorf("backend config: deploymentsRoot is required")
	}
	if out.TemplateRoot == "" {
		return nil, fmt.Errorf("backend config: templateRoot is required")
	}
	return &out, nil
}
