package domain

import (
	"fmt"
	"time"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

// DeploymentStatus of a deployment record.
//
// Statuses move monotonically toward a terminal state per workflow
// invocation: any remote-call failure forces Failed and halts forward
// progress.
type DeploymentStatus string

const (
	// The creation workflow is running.
	Creating DeploymentStatus = "Creating"

	// The edit workflow is running against an already-created deployment.
	Updating DeploymentStatus = "Updating"

	// All provisioning completed and the portal config artifact is written.
	Created DeploymentStatus = "Created"

	// A provisioning step failed; already-created remote items are left
	// as they are.
	Failed DeploymentStatus = "Failed"

	// The delete workflow failed part way.
	DeletionFailed DeploymentStatus = "Deletion Failed"
)

func (s DeploymentStatus) String() string {
	return string(s)
}

func AsDeploymentStatus(s string) (DeploymentStatus, error) {
	switch s {
	case string(Creating):
		return Creating, nil
	case string(Updating):
		return Updating, nil
	case string(Created):
		return Created, nil
	case string(Failed):
		return Failed, nil
	case string(DeletionFailed):
		return DeletionFailed, nil
	default:
		return "", fmt.Errorf("'%s' is not DeploymentStatus", s)
	}
}

// Terminal statuses end a workflow invocation.
func (s DeploymentStatus) Terminal() bool {
	switch s {
	case Created, Failed, DeletionFailed:
		return true
	default:
		return false
	}
}

// SourceDataset identifies the upstream survey dataset feeding a deployment.
type SourceDataset struct {
	ID          string `json:"id"`
	URL         string `json:"url"` // layer URL (".../FeatureServer/0")
	Title       string `json:"title"`
	ServiceName string `json:"servicename"`
}

// LayerView is one provisioned feature view.
type LayerView struct {
	Need       WelfareNeed `json:"welfareType"`
	Group      string      `json:"group"` // owning GroupUnit's Short()
	ItemID     string      `json:"itemId"`
	ServiceURL string      `json:"serviceurl"`
}

// DashboardItem is one provisioned operations dashboard.
type DashboardItem struct {
	Group  string `json:"group"`
	ItemID string `json:"id"`
	Title  string `json:"title"`
}

// AccessGroup is one provisioned (or reused) access-control group, with
// the item ids shared to it.
type AccessGroup struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Folder is the container folder all provisioned items are moved into.
type Folder struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PortalGroupConfig is the per-CDEM-group section of the portal config
// artifact: layer URLs keyed by welfare-need key (plus "all" for the full
// dataset and the Registration subtable keys), and the dashboard deep link.
type PortalGroupConfig struct {
	LayerURLs    map[string]string `json:"layerURLs"`
	DashboardURL string            `json:"dashboardURL"`
	CDEMGroup    []string          `json:"cdemGroup"`
}

// PortalConfig is the static configuration document consumed by the
// deployment's portal viewer.
type PortalConfig struct {
	EmergencyName string                       `json:"emergencyName"`
	Title         string                       `json:"title"`
	WelfareNeeds  []WelfareNeed                `json:"welfareNeeds"`
	DeploymentURL string                       `json:"awhinaDeploymentURL"`
	PortalURL     string                       `json:"portalURL"`
	Survey123URL  string                       `json:"survey123URL"`
	CDEMGroups    map[string]PortalGroupConfig `json:"cdemGroups"`
}

// DeploymentRecord is the canonical, persisted unit of work: one complete
// provisioned instance of the welfare-tracking portal for one event.
//
// Identity and classification fields are set at creation; the derived
// fields below them are accumulated progressively by the orchestration
// stages. The record has exactly one logical writer at a time (the
// current stage).
type DeploymentRecord struct {
	// ObjectID is assigned by the record store on first insert.
	ObjectID int `json:"objectid"`

	// DeploymentID names the project directory on the file backend.
	DeploymentID string `json:"uid"`

	Project      string        `json:"project"`
	CDEMGroups   []CDEMGroup   `json:"cdemgroups"`
	Grouping     GroupingMode  `json:"grouping"`
	WelfareNeeds []WelfareNeed `json:"welfareneeds"`
	SurveyFormID string        `json:"surveyformid"`

	Status DeploymentStatus `json:"status"`

	CreatedBy    string    `json:"created_user"`
	CreatedAt    time.Time `json:"created_date"`
	LastEditedBy string    `json:"last_edited_user"`
	LastEditedAt time.Time `json:"last_edited_date"`

	// Derived, populated during orchestration.
	Source       SourceDataset   `json:"featureservice"`
	LayerViews   []LayerView     `json:"layerviews"`
	Dashboards   []DashboardItem `json:"dashboards"`
	AccessGroups []AccessGroup   `json:"esrigroups"`
	Folder       Folder          `json:"folder"`

	// ItemsToMove grows as each provisioning step completes and is
	// consumed (cleared) by the folder placement stage.
	ItemsToMove []string `json:"itemstomove"`

	PortalConfig *PortalConfig `json:"portalconfig,omitempty"`

	// Log is the running human-readable log of the last workflow run.
	Log []string `json:"log,omitempty"`
}

// Units are the provisioning units of this deployment (see Units).
func (r *DeploymentRecord) Units() []GroupUnit {
	return Units(r.CDEMGroups, r.Grouping)
}

// ShortNames is the ", "-joined shorthand of the deployment's CDEM groups,
// e.g. "WGN, AUK".
func (r *DeploymentRecord) ShortNames() string {
	return joinShorts(r.CDEMGroups)
}

// LayerOrder of this deployment (see LayerOrder).
func (r *DeploymentRecord) LayerOrder() []WelfareNeed {
	return LayerOrder(r.WelfareNeeds)
}

// AddLayerView records a provisioned view and marks its item for the
// folder move.
func (r *DeploymentRecord) AddLayerView(v LayerView) {
	r.LayerViews = append(r.LayerViews, v)
	r.ItemsToMove = append(r.ItemsToMove, v.ItemID)
}

// AddDashboard records a provisioned dashboard and marks its item for the
// folder move.
func (r *DeploymentRecord) AddDashboard(d DashboardItem) {
	r.Dashboards = append(r.Dashboards, d)
	r.ItemsToMove = append(r.ItemsToMove, d.ItemID)
}

// AddAccessGroup records a provisioned access group, one entry per group
// id. Re-provisioning a group updates its entry in place.
func (r *DeploymentRecord) AddAccessGroup(g AccessGroup) {
	for i, have := range r.AccessGroups {
		if have.ID == g.ID {
			r.AccessGroups[i] = g
			return
		}
	}
	r.AccessGroups = append(r.AccessGroups, g)
}

// MarkForMove queues item ids for the folder placement stage.
func (r *DeploymentRecord) MarkForMove(itemIDs ...string) {
	r.ItemsToMove = append(r.ItemsToMove, itemIDs...)
}

// TakeItemsToMove consumes the queued item ids, clearing the queue.
func (r *DeploymentRecord) TakeItemsToMove() []string {
	items := r.ItemsToMove
	r.ItemsToMove = nil
	return items
}

// ViewFor returns the layer view of the given need owned by the given
// group unit label.
func (r *DeploymentRecord) ViewFor(group string, need WelfareNeed) (LayerView, bool) {
	return slices.First(r.LayerViews, func(v LayerView) bool {
		return v.Group == group && v.Need == need
	})
}

// DashboardFor returns the dashboard owned by the given group unit label.
func (r *DeploymentRecord) DashboardFor(group string) (DashboardItem, bool) {
	return slices.First(r.Dashboards, func(d DashboardItem) bool {
		return d.Group == group
	})
}
