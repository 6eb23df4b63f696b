// Package portalcfg builds the static configuration document consumed
// by a deployment's portal viewer.
package portalcfg

import (
	"fmt"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
)

// Locations anchors the artifact's absolute URLs.
type Locations struct {
	// PortalURL is the portal web root.
	PortalURL string

	// DeploymentBaseURL prefixes the per-deployment viewer URL; the
	// deployment id is appended.
	DeploymentBaseURL string

	// Survey123BaseURL prefixes the survey form share link.
	Survey123BaseURL string
}

// Build renders the artifact from a fully provisioned record.
//
// Per unit, layerURLs carries one entry per welfare-need key, the
// registration view under its four subset keys, and the source dataset
// under "all". The dashboard entry is the portal deep link.
func Build(r *domain.DeploymentRecord, loc Locations) domain.PortalConfig {
	cfg := domain.PortalConfig{
		EmergencyName: r.Project,
		Title:         "Āwhina Welfare System - " + r.Project,
		WelfareNeeds:  r.WelfareNeeds,
		DeploymentURL: strings.TrimSuffix(loc.DeploymentBaseURL, "/") + "/" + r.DeploymentID,
		PortalURL:     loc.PortalURL,
		Survey123URL: fmt.Sprintf(
			"%s/share/%s?portalUrl=%s",
			strings.TrimSuffix(loc.Survey123BaseURL, "/"), r.SurveyFormID, loc.PortalURL,
		),
		CDEMGroups: map[string]domain.PortalGroupConfig{},
	}

	for _, unit := range r.Units() {
		cfg.CDEMGroups[unit.Short()] = groupConfig(r, unit, loc)
	}
	return cfg
}

func groupConfig(r *domain.DeploymentRecord, unit domain.GroupUnit, loc Locations) domain.PortalGroupConfig {
	gc := domain.PortalGroupConfig{
		LayerURLs: map[string]string{},
		CDEMGroup: unit.FullNames(),
	}

	// full, unfiltered data rides under "all"
	if r.Source.URL != "" {
		gc.LayerURLs["all"] = r.Source.URL
	}

	short := unit.Short()
	for _, v := range r.LayerViews {
		if v.Group != short {
			continue
		}
		if v.Need == domain.Registration {
			for _, key := range []string{"overview", "requestor", "notes", "system"} {
				gc.LayerURLs[key] = v.ServiceURL
			}
			continue
		}
		gc.LayerURLs[v.Need.Key()] = v.ServiceURL
	}

	if d, ok := r.DashboardFor(short); ok {
		gc.DashboardURL = fmt.Sprintf("%s/apps/opsdashboard/index.html#/%s", loc.PortalURL, d.ItemID)
	}
	return gc
}
