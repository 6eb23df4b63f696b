// Package deployments defines the wire types of the deployment API.
package deployments

import (
	"time"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

// Summary is a deployment as listed.
type Summary struct {
	UID          string    `json:"uid"`
	Project      string    `json:"project"`
	CDEMGroups   []string  `json:"cdemGroups"`
	Grouping     string    `json:"grouping"`
	WelfareNeeds []string  `json:"welfareNeeds"`
	Status       string    `json:"status"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	LastEditedBy string    `json:"lastEditedBy"`
	LastEditedAt time.Time `json:"lastEditedAt"`
}

type LayerView struct {
	Need       string `json:"need"`
	CDEMGroup  string `json:"cdemGroup"`
	ItemID     string `json:"itemID"`
	ServiceURL string `json:"serviceURL"`
}

type Dashboard struct {
	CDEMGroup string `json:"cdemGroup"`
	ItemID    string `json:"itemID"`
	Title     string `json:"title"`
}

type AccessGroup struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Folder struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Detail is a deployment with everything it provisioned.
type Detail struct {
	Summary

	SurveyFormID string               `json:"surveyFormID"`
	SourceURL    string               `json:"sourceURL,omitempty"`
	LayerViews   []LayerView          `json:"layerViews,omitempty"`
	Dashboards   []Dashboard          `json:"dashboards,omitempty"`
	AccessGroups []AccessGroup        `json:"accessGroups,omitempty"`
	Folder       *Folder              `json:"folder,omitempty"`
	PortalConfig *domain.PortalConfig `json:"portalConfig,omitempty"`
	Log          []string             `json:"log,omitempty"`
}

// CreateRequest is the payload creating a deployment. CDEM groups are
// named by their full name as registered in the server's configuration.
type CreateRequest struct {
	Project      string   `json:"project"`
	CDEMGroups   []string `json:"cdemGroups"`
	Grouping     string   `json:"grouping"`
	WelfareNeeds []string `json:"welfareNeeds"`
	SurveyFormID string   `json:"surveyFormID"`
}

// ExtendRequest is the payload adding welfare needs to a deployment.
type ExtendRequest struct {
	WelfareNeeds []string `json:"welfareNeeds"`
}

func ComposeSummary(r domain.DeploymentRecord) Summary {
	return Summary{
		UID:          r.DeploymentID,
		Project:      r.Project,
		CDEMGroups:   slices.Map(r.CDEMGroups, func(g domain.CDEMGroup) string { return g.Name }),
		Grouping:     string(r.Grouping),
		WelfareNeeds: slices.Map(r.WelfareNeeds, domain.WelfareNeed.String),
		Status:       r.Status.String(),
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		LastEditedBy: r.LastEditedBy,
		LastEditedAt: r.LastEditedAt,
	}
}

func ComposeDetail(r domain.DeploymentRecord) Detail {
	d := Detail{
		Summary:      ComposeSummary(r),
		SurveyFormID: r.SurveyFormID,
		SourceURL:    r.Source.URL,
		LayerViews: slices.Map(r.LayerViews, func(v domain.LayerView) LayerView {
			return LayerView{
				Need:       v.Need.String(),
				CDEMGroup:  v.Group,
				ItemID:     v.ItemID,
				ServiceURL: v.ServiceURL,
			}
		}),
		Dashboards: slices.Map(r.Dashboards, func(d domain.DashboardItem) Dashboard {
			return Dashboard{CDEMGroup: d.Group, ItemID: d.ItemID, Title: d.Title}
		}),
		AccessGroups: slices.Map(r.AccessGroups, func(g domain.AccessGroup) AccessGroup {
			return AccessGroup{ID: g.ID, Title: g.Title}
		}),
		PortalConfig: r.PortalConfig,
		Log:          r.Log,
	}
	if r.Folder.ID != "" {
		d.Folder = &Folder{ID: r.Folder.ID, Title: r.Folder.Title}
	}
	return d
}
