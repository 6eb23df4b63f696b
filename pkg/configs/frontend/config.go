// Package frontend holds the configuration of the awhinad server.
package frontend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

type FrontendConfig struct {
	ServerPort string `yaml:"port"`

	// PortalURL is the root URL of the GIS portal, e.g.
	// https://gis.example.org/portal
	PortalURL string `yaml:"portalURL"`

	// RecordTableURL is the layer URL of the hosted feature table holding
	// deployment records.
	RecordTableURL string `yaml:"recordTableURL"`

	// BackendApiRoot is the root URL of awhinad_backend.
	BackendApiRoot string `yaml:"backendApiRoot"`

	// CataloguePath points at the field catalogue JSON. awhinad restarts
	// itself when this file changes.
	CataloguePath string `yaml:"cataloguePath"`

	// DashboardTemplatePath points at the dashboard item JSON template.
	DashboardTemplatePath string `yaml:"dashboardTemplatePath"`

	// DeploymentBaseURL is where deployed portals are served from;
	// the deployment id is appended.
	DeploymentBaseURL string `yaml:"deploymentBaseURL"`

	// Survey123BaseURL is the root of the Survey123 sharing site.
	Survey123BaseURL string `yaml:"survey123BaseURL"`

	// AdminGroupIDs are the portal groups whose members may operate
	// this server.
	AdminGroupIDs []string `yaml:"adminGroupIDs"`

	// MaxGroupIteration caps how many CDEM group units are provisioned
	// concurrently. Zero takes the built-in default.
	MaxGroupIteration int `yaml:"maxGroupIteration"`

	// CDEMGroups is the register of known CDEM groups.
	CDEMGroups []CDEMGroupEntry `yaml:"cdemGroups"`
}

type CDEMGroupEntry struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Short string `yaml:"short"`
}

// Register renders the configured CDEM groups as the domain register.
func (c *FrontendConfig) Register() domain.Register {
	return slices.Map(c.CDEMGroups, func(e CDEMGroupEntry) domain.CDEMGroup {
		return domain.CDEMGroup{ID: e.ID, Name: e.Name, Short: e.Short}
	})
}

func LoadFrontendConfig(filepath string) (*FrontendConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (*FrontendConfig, error) {
	var out FrontendConfig
	if err := yaml.Unmarshal(conf, &out); err != nil {
		return nil, err
	}
	if out.PortalURL == "" {
		return nil, fmt.Errorf("frontend config: portalURL is required")
	}
	if out.RecordTableURL == "" {
		return nil, fmt.Errorf("frontend config: recordTableURL is required")
	}
	if len(out.CDEMGroups) == 0 {
		return nil, fmt.Errorf("frontend config: at least one CDEM group is required")
	}
	return &out, nil
}
