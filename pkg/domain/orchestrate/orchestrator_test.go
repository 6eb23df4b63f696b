package orchestrate_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/orchestrate"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/portalcfg"
	recmock "github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/record/mock"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/schema"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	gismock "github.com/carg563/Awhina-2-Testing-Portal/pkg/gis/mock"
	pfmock "github.com/carg563/Awhina-2-Testing-Portal/pkg/projectfiles/mock"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/cmp"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/try"
)

var (
	wellington = domain.CDEMGroup{ID: "wgn", Name: "Wellington Region Emergency Management Office", Short: "WGN"}
	auckland   = domain.CDEMGroup{ID: "auk", Name: "Auckland Emergency Management", Short: "AUK"}

	operator = gis.Credential{Username: "welfare.admin", Token: "token-1"}
)

const surveyFormID = "form-0a1b"

func testCatalogue() schema.Catalogue {
	return schema.Catalogue{
		"objectid": {
			Name: "objectid", Type: "esriFieldTypeOID",
			IncludeIn: []string{"system"}, VisibleIn: []string{"system"},
		},
		"cdemgroup": {
			Name: "cdemgroup", Type: "esriFieldTypeString",
			IncludeIn: []string{"all"}, VisibleIn: []string{"all"},
		},
		"reg_name": {
			Name: "reg_name", Alias: "Name", Type: "esriFieldTypeString",
			IncludeIn: []string{"registration", "all"}, VisibleIn: []string{"registration", "all"},
		},
	}
}

func describedFields() []gis.ServiceField {
	return []gis.ServiceField{
		{Name: "objectid", Type: "esriFieldTypeOID"},
		{Name: "cdemgroup", Type: "esriFieldTypeString"},
		{Name: "reg_name", Alias: "Name", Type: "esriFieldTypeString"},
	}
}

// env wires an orchestrator to fully scripted backends behaving as a
// healthy platform. Tests override single Impl entries to break things.
type env struct {
	gw      *gismock.Gateway
	records *recmock.Interface
	files   *pfmock.Interface
	orc     *orchestrate.Orchestrator

	// saved mirrors the single record row; groups mirrors the groups
	// created on the platform so far.
	saved  domain.DeploymentRecord
	groups []gis.Group
}

func newEnv() *env {
	e := &env{gw: gismock.NewGateway(), records: recmock.New(), files: pfmock.New()}

	e.records.Impl.Create = func(_ context.Context, r *domain.DeploymentRecord) error {
		r.ObjectID = 1
		e.saved = *r
		return nil
	}
	e.records.Impl.Update = func(_ context.Context, r *domain.DeploymentRecord) error {
		e.saved = *r
		return nil
	}
	e.records.Impl.Get = func(_ context.Context, id string) (domain.DeploymentRecord, error) {
		return e.saved, nil
	}

	e.files.Impl.NewDeploymentID = func(context.Context, string) (string, error) { return "dep-0001", nil }
	e.files.Impl.CreateProject = func(context.Context, string, string) error { return nil }
	e.files.Impl.WriteConfig = func(context.Context, string, string, domain.PortalConfig) error { return nil }
	e.files.Impl.UpdateConfig = func(context.Context, string, string, domain.PortalConfig) error { return nil }

	content := e.gw.ContentAPI
	content.Impl.RelatedItems = func(context.Context, string, string) ([]gis.RelatedItem, error) {
		return []gis.RelatedItem{{
			ID:    "src-item",
			URL:   "https://gis.example/rest/services/survey_results/FeatureServer",
			Title: "survey results",
			Name:  "survey_results",
		}}, nil
	}
	content.Impl.AddItem = func(_ context.Context, item gis.NewItem) (gis.Item, error) {
		return gis.Item{ID: fmt.Sprintf("dash-%d", content.Calls.AddItem.Times()), Title: item.Title}, nil
	}
	content.Impl.Folders = func(context.Context) ([]gis.Folder, error) { return nil, nil }
	content.Impl.CreateFolder = func(_ context.Context, title, _, _ string) (gis.Folder, error) {
		return gis.Folder{ID: "folder-1", Title: title}, nil
	}
	content.Impl.MoveItem = func(context.Context, string, string) error { return nil }
	content.Impl.ShareItems = func(context.Context, []string, string) error { return nil }

	community := e.gw.CommunityAPI
	community.Impl.Memberships = func(context.Context, []string) ([]gis.Group, error) {
		return append([]gis.Group{}, e.groups...), nil
	}
	community.Impl.CreateGroup = func(_ context.Context, group gis.NewGroup) (gis.Group, error) {
		g := gis.Group{ID: fmt.Sprintf("grp-%d", len(e.groups)), Title: group.Title}
		e.groups = append(e.groups, g)
		return g, nil
	}

	services := e.gw.ServicesAPI
	services.Impl.SetLimits = func(context.Context, string, gis.ServiceLimits) error { return nil }
	services.Impl.Describe = func(context.Context, string) ([]gis.ServiceField, error) {
		return describedFields(), nil
	}
	services.Impl.SetFieldNotes = func(context.Context, string, []gis.ViewField) error { return nil }
	services.Impl.CreateView = func(_ context.Context, name, _ string) (gis.ViewService, error) {
		return gis.ViewService{
			ItemID:     "item:" + name,
			ServiceURL: "https://gis.example/rest/services/" + name + "/FeatureServer",
		}, nil
	}
	services.Impl.AttachSource = func(context.Context, string, gis.SourceLayer) error { return nil }
	services.Impl.SetViewDefinition = func(context.Context, string, gis.ViewDefinition) error { return nil }

	e.orc = e.orchestrator(testCatalogue())
	return e
}

// orchestrator builds an orchestrator over the env's backends. Tests of
// catalogue extension build a second one with the grown catalogue, the
// way a restarted server would.
func (e *env) orchestrator(cat schema.Catalogue) *orchestrate.Orchestrator {
	return orchestrate.New(orchestrate.Config{
		Records:           e.records,
		Files:             e.files,
		Catalogue:         cat,
		DashboardTemplate: []byte(`{"headerPanel":{"title":""},"widgets":[{"datasource":"FEATURESOURCE"}]}`),
		Locations: portalcfg.Locations{
			PortalURL:         "https://gis.example",
			DeploymentBaseURL: "https://awhina.example/deployments",
			Survey123BaseURL:  "https://survey123.example",
		},
	})
}

func createRequest() orchestrate.CreateRequest {
	return orchestrate.CreateRequest{
		Project:      "Alpine Fault Response",
		CDEMGroups:   []domain.CDEMGroup{wellington, auckland},
		Grouping:     domain.Separate,
		WelfareNeeds: []domain.WelfareNeed{domain.MissingPerson},
		SurveyFormID: surveyFormID,
	}
}

func TestCreateProvisionsFullDeployment(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	rec := try.To(e.orc.Create(ctx, e.gw, operator, createRequest())).OrFatal(t)

	if rec.Status != domain.Created {
		t.Errorf("status: got %s, want %s", rec.Status, domain.Created)
	}
	if e.saved.Status != domain.Created {
		t.Errorf("persisted status: got %s, want %s", e.saved.Status, domain.Created)
	}
	if rec.DeploymentID != "dep-0001" {
		t.Errorf("deployment id: got %s", rec.DeploymentID)
	}
	if e.records.Calls.Create.Times() != 1 || e.records.Calls.Create[0].Status != domain.Creating {
		t.Errorf("record should be inserted once, as Creating: %+v", e.records.Calls.Create)
	}

	// limits raised on the source layer before anything is carved from it
	limits := e.gw.ServicesAPI.Calls.SetLimits
	if limits.Times() != 1 {
		t.Fatalf("SetLimits: called %d times", limits.Times())
	}
	if limits[0].ServiceURL != "https://gis.example/rest/services/survey_results/FeatureServer/0" {
		t.Errorf("SetLimits url: got %s", limits[0].ServiceURL)
	}
	if limits[0].Limits != (gis.ServiceLimits{MaxRecordCount: 10000, MaxViewsCount: 160}) {
		t.Errorf("SetLimits: got %+v", limits[0].Limits)
	}
	if e.gw.ServicesAPI.Calls.SetFieldNotes.Times() != 1 {
		t.Errorf("SetFieldNotes: called %d times", e.gw.ServicesAPI.Calls.SetFieldNotes.Times())
	}

	// two units x (Missing Person + Registration)
	views := e.gw.ServicesAPI.Calls.CreateView
	gotNames := slices.Map(views, func(c struct{ Name, Description string }) string { return c.Name })
	wantNames := []string{
		"alpine_fault_response_wgn_missing_person",
		"alpine_fault_response_wgn_registration",
		"alpine_fault_response_auk_missing_person",
		"alpine_fault_response_auk_registration",
	}
	if !cmp.SliceContentEq(gotNames, wantNames) {
		t.Errorf("created views: got %v, want %v", gotNames, wantNames)
	}
	if e.gw.ServicesAPI.Calls.AttachSource.Times() != 4 {
		t.Errorf("AttachSource: called %d times", e.gw.ServicesAPI.Calls.AttachSource.Times())
	}

	// one dashboard per unit, fed by the unit's registration view
	dashboards := e.gw.ContentAPI.Calls.AddItem
	if dashboards.Times() != 2 {
		t.Fatalf("AddItem: called %d times", dashboards.Times())
	}
	for _, d := range dashboards {
		if !strings.Contains(d.Text, "_registration/FeatureServer/0") {
			t.Errorf("dashboard not fed by a registration view: %s", d.Text)
		}
	}

	// source item + 4 views + 2 dashboards moved into the folder
	if e.gw.ContentAPI.Calls.CreateFolder.Times() != 1 {
		t.Errorf("CreateFolder: called %d times", e.gw.ContentAPI.Calls.CreateFolder.Times())
	}
	moved := slices.Map(e.gw.ContentAPI.Calls.MoveItem, func(c struct{ ItemID, FolderID string }) string { return c.ItemID })
	if len(moved) != 7 || !slices.Contains(moved, "src-item") {
		t.Errorf("moved items: %v", moved)
	}

	// access groups per unit and role, with items shared
	groupTitles := slices.Map(e.gw.CommunityAPI.Calls.CreateGroup, func(g gis.NewGroup) string { return g.Title })
	wantTitles := []string{
		"Alpine Fault Response - WGN - Missing Person",
		"Alpine Fault Response - WGN - MAIN",
		"Alpine Fault Response - AUK - Missing Person",
		"Alpine Fault Response - AUK - MAIN",
	}
	if !cmp.SliceContentEq(groupTitles, wantTitles) {
		t.Errorf("created groups: got %v, want %v", groupTitles, wantTitles)
	}
	if e.gw.ContentAPI.Calls.ShareItems.Times() != 4 {
		t.Errorf("ShareItems: called %d times", e.gw.ContentAPI.Calls.ShareItems.Times())
	}

	// each MAIN role receives the full set: the unit's views, the
	// source dataset, the survey form, and the unit's dashboard
	mains := 0
	for _, share := range e.gw.ContentAPI.Calls.ShareItems {
		g, ok := slices.First(e.groups, func(g gis.Group) bool { return g.ID == share.GroupID })
		if !ok {
			t.Fatalf("items shared to an unknown group: %s", share.GroupID)
		}
		if !strings.HasSuffix(g.Title, "MAIN") {
			continue
		}
		mains += 1
		for _, want := range []string{"src-item", surveyFormID} {
			if !slices.Contains(share.ItemIDs, want) {
				t.Errorf("MAIN share for %s missing %s", g.Title, want)
			}
		}
		if _, ok := slices.First(share.ItemIDs, func(id string) bool { return strings.HasPrefix(id, "dash-") }); !ok {
			t.Errorf("MAIN share for %s missing the dashboard", g.Title)
		}
	}
	if mains != 2 {
		t.Errorf("MAIN shares: got %d, want 2", mains)
	}

	// config artifact written once, covering both units
	writes := e.files.Calls.WriteConfig
	if writes.Times() != 1 {
		t.Fatalf("WriteConfig: called %d times", writes.Times())
	}
	cfg := writes[0].Config
	if cfg.EmergencyName != "Alpine Fault Response" {
		t.Errorf("config emergency name: got %s", cfg.EmergencyName)
	}
	for _, short := range []string{"WGN", "AUK"} {
		section, ok := cfg.CDEMGroups[short]
		if !ok {
			t.Fatalf("config missing section %s", short)
		}
		if section.LayerURLs["all"] != "https://gis.example/rest/services/survey_results/FeatureServer/0" {
			t.Errorf("%s all layer: got %s", short, section.LayerURLs["all"])
		}
		if _, ok := section.LayerURLs["missingperson"]; !ok {
			t.Errorf("%s missing missingperson layer", short)
		}
	}
	if rec.PortalConfig == nil {
		t.Error("record should carry the portal config")
	}
	if len(e.saved.Log) == 0 {
		t.Error("record should carry the run journal")
	}
}

func TestCreateViewFailureFailsDeployment(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.gw.ServicesAPI.Impl.CreateView = func(context.Context, string, string) (gis.ViewService, error) {
		return gis.ViewService{}, errors.New("view quota exhausted")
	}

	rec, err := e.orc.Create(ctx, e.gw, operator, createRequest())
	if err == nil {
		t.Fatal("create should fail")
	}

	if rec.Status != domain.Failed || e.saved.Status != domain.Failed {
		t.Errorf("status: got %s (persisted %s), want %s", rec.Status, e.saved.Status, domain.Failed)
	}

	// nothing past the view stage runs
	if n := e.gw.ContentAPI.Calls.AddItem.Times(); n != 0 {
		t.Errorf("AddItem: called %d times", n)
	}
	if n := e.gw.ContentAPI.Calls.CreateFolder.Times(); n != 0 {
		t.Errorf("CreateFolder: called %d times", n)
	}
	if n := e.gw.CommunityAPI.Calls.CreateGroup.Times(); n != 0 {
		t.Errorf("CreateGroup: called %d times", n)
	}
	if n := e.files.Calls.WriteConfig.Times(); n != 0 {
		t.Errorf("WriteConfig: called %d times", n)
	}

	if len(e.saved.Log) == 0 {
		t.Error("failure should leave a journal on the record")
	}
}

func TestCreateSuspendsOnUnresolvedFields(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.gw.ServicesAPI.Impl.Describe = func(context.Context, string) ([]gis.ServiceField, error) {
		return append(describedFields(), gis.ServiceField{Name: "mystery_column", Type: "esriFieldTypeString"}), nil
	}

	rec, err := e.orc.Create(ctx, e.gw, operator, createRequest())

	var manual *schema.ManualResolutionRequired
	if !errors.As(err, &manual) {
		t.Fatalf("want ManualResolutionRequired, got %v", err)
	}
	if !cmp.SliceEq(manual.Fields, []string{"mystery_column"}) {
		t.Errorf("unresolved fields: got %v", manual.Fields)
	}

	// suspended, not failed: the operator resumes after extending the
	// catalogue
	if rec.Status != domain.Creating || e.saved.Status != domain.Creating {
		t.Errorf("status: got %s (persisted %s), want %s", rec.Status, e.saved.Status, domain.Creating)
	}
	if n := e.gw.ServicesAPI.Calls.SetFieldNotes.Times(); n != 0 {
		t.Errorf("SetFieldNotes: called %d times", n)
	}
	if n := e.gw.ServicesAPI.Calls.CreateView.Times(); n != 0 {
		t.Errorf("CreateView: called %d times", n)
	}
}

func TestResumeSkipsAlreadyProvisioned(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	// first run: every view of the second unit fails
	healthyCreateView := e.gw.ServicesAPI.Impl.CreateView
	e.gw.ServicesAPI.Impl.CreateView = func(ctx context.Context, name, description string) (gis.ViewService, error) {
		if strings.Contains(name, "_auk_") {
			return gis.ViewService{}, errors.New("lock timeout")
		}
		return healthyCreateView(ctx, name, description)
	}
	if _, err := e.orc.Create(ctx, e.gw, operator, createRequest()); err == nil {
		t.Fatal("first run should fail")
	}
	if e.saved.Status != domain.Failed {
		t.Fatalf("persisted status after first run: %s", e.saved.Status)
	}
	viewsBefore := e.gw.ServicesAPI.Calls.CreateView.Times()

	// second run: platform healthy again
	e.gw.ServicesAPI.Impl.CreateView = healthyCreateView
	rec := try.To(e.orc.Resume(ctx, e.gw, operator, "dep-0001")).OrFatal(t)

	if rec.Status != domain.Created || e.saved.Status != domain.Created {
		t.Errorf("status: got %s (persisted %s), want %s", rec.Status, e.saved.Status, domain.Created)
	}

	// only the second unit's views are created on resume
	resumed := e.gw.ServicesAPI.Calls.CreateView[viewsBefore:]
	if len(resumed) != 2 {
		t.Fatalf("CreateView on resume: called %d times", len(resumed))
	}
	for _, c := range resumed {
		if !strings.Contains(c.Name, "_auk_") {
			t.Errorf("resume recreated an existing view: %s", c.Name)
		}
	}
	if len(rec.LayerViews) != 4 {
		t.Errorf("layer views: got %d, want 4", len(rec.LayerViews))
	}

	// the source is resolved once across both runs
	if n := e.gw.ContentAPI.Calls.RelatedItems.Times(); n != 1 {
		t.Errorf("RelatedItems: called %d times", n)
	}

	// everything ends up in the folder regardless of which run made it
	if n := e.gw.ContentAPI.Calls.MoveItem.Times(); n != 7 {
		t.Errorf("MoveItem: called %d times", n)
	}
	if n := e.files.Calls.WriteConfig.Times(); n != 1 {
		t.Errorf("WriteConfig: called %d times", n)
	}
}

func TestResumeAfterCatalogueExtension(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.gw.ServicesAPI.Impl.Describe = func(context.Context, string) ([]gis.ServiceField, error) {
		return append(describedFields(), gis.ServiceField{Name: "mystery_column", Type: "esriFieldTypeString"}), nil
	}

	var manual *schema.ManualResolutionRequired
	if _, err := e.orc.Create(ctx, e.gw, operator, createRequest()); !errors.As(err, &manual) {
		t.Fatalf("want ManualResolutionRequired, got %v", err)
	}

	// the operator classifies the field; the restarted server loads the
	// grown catalogue
	cat := testCatalogue()
	cat["mystery_column"] = domain.FieldDescriptor{
		Name: "mystery_column", Type: "esriFieldTypeString",
		IncludeIn: []string{"missingperson", "all"}, VisibleIn: []string{"missingperson", "all"},
	}
	rec := try.To(e.orchestrator(cat).Resume(ctx, e.gw, operator, "dep-0001")).OrFatal(t)

	if rec.Status != domain.Created || e.saved.Status != domain.Created {
		t.Errorf("status: got %s (persisted %s), want %s", rec.Status, e.saved.Status, domain.Created)
	}

	// the classification is written back into the source service
	notes := e.gw.ServicesAPI.Calls.SetFieldNotes
	if notes.Times() != 1 {
		t.Fatalf("SetFieldNotes: called %d times", notes.Times())
	}
	note, ok := slices.First(notes[0].Fields, func(f gis.ViewField) bool { return f.Name == "mystery_column" })
	if !ok {
		t.Fatal("field notes should cover mystery_column")
	}
	if note.Description == nil {
		t.Fatal("mystery_column note should carry the classification")
	}
	noteValue, _ := note.Description.Value.(map[string]any)
	if includeIn, ok := noteValue["includeIn"].([]string); !ok || !cmp.SliceEq(includeIn, []string{"missingperson", "all"}) {
		t.Errorf("mystery_column includeIn: got %v", noteValue["includeIn"])
	}

	// and the field is visible in the missing-person views
	for _, def := range e.gw.ServicesAPI.Calls.SetViewDefinition {
		if !strings.Contains(def.ViewServiceURL, "missing_person") {
			continue
		}
		f, ok := slices.First(def.Def.Fields, func(f gis.ViewField) bool { return f.Name == "mystery_column" })
		if !ok || !f.Visible {
			t.Errorf("mystery_column should be visible in %s", def.ViewServiceURL)
		}
	}

	if n := e.gw.ServicesAPI.Calls.CreateView.Times(); n != 4 {
		t.Errorf("CreateView: called %d times", n)
	}
	if n := e.files.Calls.WriteConfig.Times(); n != 1 {
		t.Errorf("WriteConfig: called %d times", n)
	}
}

func TestResumeRepublishesConfig(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	// the config write reaches the backend but the response is lost
	e.files.Impl.WriteConfig = func(context.Context, string, string, domain.PortalConfig) error {
		return errors.New("backend timeout")
	}
	if _, err := e.orc.Create(ctx, e.gw, operator, createRequest()); err == nil {
		t.Fatal("first run should fail")
	}
	if e.saved.Status != domain.Failed {
		t.Fatalf("persisted status after first run: %s", e.saved.Status)
	}

	e.files.Impl.WriteConfig = func(context.Context, string, string, domain.PortalConfig) error { return nil }
	rec := try.To(e.orc.Resume(ctx, e.gw, operator, "dep-0001")).OrFatal(t)

	if rec.Status != domain.Created || e.saved.Status != domain.Created {
		t.Errorf("status: got %s (persisted %s), want %s", rec.Status, e.saved.Status, domain.Created)
	}
	if n := e.files.Calls.WriteConfig.Times(); n != 2 {
		t.Errorf("WriteConfig: called %d times", n)
	}

	// nothing on the platform is rebuilt on the way
	if n := e.gw.ServicesAPI.Calls.CreateView.Times(); n != 4 {
		t.Errorf("CreateView: called %d times", n)
	}
	if n := e.gw.CommunityAPI.Calls.CreateGroup.Times(); n != 4 {
		t.Errorf("CreateGroup: called %d times", n)
	}
}

func TestDashboardFailureDoesNotBlockSiblings(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	healthyAddItem := e.gw.ContentAPI.Impl.AddItem
	e.gw.ContentAPI.Impl.AddItem = func(ctx context.Context, item gis.NewItem) (gis.Item, error) {
		if strings.Contains(item.Title, "WGN") {
			return gis.Item{}, errors.New("item quota exhausted")
		}
		return healthyAddItem(ctx, item)
	}

	if _, err := e.orc.Create(ctx, e.gw, operator, createRequest()); err == nil {
		t.Fatal("create should fail")
	}
	if e.saved.Status != domain.Failed {
		t.Fatalf("persisted status: %s", e.saved.Status)
	}

	// both units are attempted; the sibling's dashboard survives the
	// failure
	if n := e.gw.ContentAPI.Calls.AddItem.Times(); n != 2 {
		t.Errorf("AddItem: called %d times", n)
	}
	if _, ok := e.saved.DashboardFor("AUK"); !ok {
		t.Error("AUK dashboard should be provisioned despite the WGN failure")
	}

	// resume rebuilds only the failed dashboard
	e.gw.ContentAPI.Impl.AddItem = healthyAddItem
	rec := try.To(e.orc.Resume(ctx, e.gw, operator, "dep-0001")).OrFatal(t)
	if rec.Status != domain.Created {
		t.Errorf("status after resume: %s", rec.Status)
	}
	if n := e.gw.ContentAPI.Calls.AddItem.Times(); n != 3 {
		t.Errorf("AddItem after resume: called %d times", n)
	}
}

func TestResumeRecoversFailedExtension(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	try.To(e.orc.Create(ctx, e.gw, operator, createRequest())).OrFatal(t)

	healthyCreateView := e.gw.ServicesAPI.Impl.CreateView
	e.gw.ServicesAPI.Impl.CreateView = func(ctx context.Context, name, description string) (gis.ViewService, error) {
		if strings.Contains(name, "animal_welfare") {
			return gis.ViewService{}, errors.New("lock timeout")
		}
		return healthyCreateView(ctx, name, description)
	}
	if _, err := e.orc.AddWelfareNeeds(
		ctx, e.gw, operator, "dep-0001", []domain.WelfareNeed{domain.AnimalWelfare},
	); err == nil {
		t.Fatal("extension should fail")
	}
	if e.saved.Status != domain.Failed {
		t.Fatalf("persisted status: %s", e.saved.Status)
	}
	// the record carries the extended need list even though the views
	// never landed, so a plain resume finishes the job
	if !cmp.SliceEq(e.saved.WelfareNeeds, []domain.WelfareNeed{domain.MissingPerson, domain.AnimalWelfare}) {
		t.Fatalf("persisted welfare needs: %v", e.saved.WelfareNeeds)
	}

	e.gw.ServicesAPI.Impl.CreateView = healthyCreateView
	groupsBefore := e.gw.CommunityAPI.Calls.CreateGroup.Times()
	rec := try.To(e.orc.Resume(ctx, e.gw, operator, "dep-0001")).OrFatal(t)

	if rec.Status != domain.Created || e.saved.Status != domain.Created {
		t.Errorf("status: got %s (persisted %s), want %s", rec.Status, e.saved.Status, domain.Created)
	}
	if len(rec.LayerViews) != 6 {
		t.Errorf("layer views: got %d, want 6", len(rec.LayerViews))
	}

	// the new need's access groups come up with the resumed run
	created := e.gw.CommunityAPI.Calls.CreateGroup[groupsBefore:]
	titles := slices.Map(created, func(g gis.NewGroup) string { return g.Title })
	if !cmp.SliceContentEq(titles, []string{
		"Alpine Fault Response - WGN - Animal Welfare",
		"Alpine Fault Response - AUK - Animal Welfare",
	}) {
		t.Errorf("groups created on resume: %v", titles)
	}

	// and the republished config covers it
	writes := e.files.Calls.WriteConfig
	if writes.Times() != 2 {
		t.Fatalf("WriteConfig: called %d times", writes.Times())
	}
	for _, short := range []string{"WGN", "AUK"} {
		if _, ok := writes[1].Config.CDEMGroups[short].LayerURLs["animalwelfare"]; !ok {
			t.Errorf("%s config missing animalwelfare layer", short)
		}
	}
}

func TestAddWelfareNeedsExtendsDeployment(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	try.To(e.orc.Create(ctx, e.gw, operator, createRequest())).OrFatal(t)

	viewsBefore := e.gw.ServicesAPI.Calls.CreateView.Times()
	groupsBefore := e.gw.CommunityAPI.Calls.CreateGroup.Times()
	movesBefore := e.gw.ContentAPI.Calls.MoveItem.Times()

	rec := try.To(e.orc.AddWelfareNeeds(
		ctx, e.gw, operator, "dep-0001", []domain.WelfareNeed{domain.AnimalWelfare},
	)).OrFatal(t)

	if rec.Status != domain.Created || e.saved.Status != domain.Created {
		t.Errorf("status: got %s (persisted %s), want %s", rec.Status, e.saved.Status, domain.Created)
	}
	if !cmp.SliceEq(rec.WelfareNeeds, []domain.WelfareNeed{domain.MissingPerson, domain.AnimalWelfare}) {
		t.Errorf("welfare needs: got %v", rec.WelfareNeeds)
	}

	// the workflow passes through Updating while it runs
	_, sawUpdating := slices.First(e.records.Calls.Update, func(r domain.DeploymentRecord) bool {
		return r.Status == domain.Updating
	})
	if !sawUpdating {
		t.Error("record should be persisted as Updating during the edit")
	}

	// one new view per unit; registration views and dashboards are not
	// touched
	added := e.gw.ServicesAPI.Calls.CreateView[viewsBefore:]
	addedNames := slices.Map(added, func(c struct{ Name, Description string }) string { return c.Name })
	wantAdded := []string{
		"alpine_fault_response_wgn_animal_welfare",
		"alpine_fault_response_auk_animal_welfare",
	}
	if !cmp.SliceContentEq(addedNames, wantAdded) {
		t.Errorf("added views: got %v, want %v", addedNames, wantAdded)
	}
	if n := e.gw.ContentAPI.Calls.AddItem.Times(); n != 2 {
		t.Errorf("AddItem: called %d times", n)
	}
	if n := e.gw.ContentAPI.Calls.CreateFolder.Times(); n != 1 {
		t.Errorf("CreateFolder: called %d times", n)
	}

	// new views join the existing folder
	if n := e.gw.ContentAPI.Calls.MoveItem.Times() - movesBefore; n != 2 {
		t.Errorf("MoveItem during edit: called %d times", n)
	}

	// Animal Welfare groups are new; MAIN groups are reused for the
	// extra sharing
	newGroups := e.gw.CommunityAPI.Calls.CreateGroup[groupsBefore:]
	newTitles := slices.Map(newGroups, func(g gis.NewGroup) string { return g.Title })
	wantTitles := []string{
		"Alpine Fault Response - WGN - Animal Welfare",
		"Alpine Fault Response - AUK - Animal Welfare",
	}
	if !cmp.SliceContentEq(newTitles, wantTitles) {
		t.Errorf("groups created during edit: got %v, want %v", newTitles, wantTitles)
	}

	// refreshed artifact goes through the update endpoint
	updates := e.files.Calls.UpdateConfig
	if updates.Times() != 1 {
		t.Fatalf("UpdateConfig: called %d times", updates.Times())
	}
	for _, short := range []string{"WGN", "AUK"} {
		if _, ok := updates[0].Config.CDEMGroups[short].LayerURLs["animalwelfare"]; !ok {
			t.Errorf("updated config missing animalwelfare layer for %s", short)
		}
	}
	if n := e.files.Calls.WriteConfig.Times(); n != 1 {
		t.Errorf("WriteConfig: called %d times", n)
	}
}

func TestAddWelfareNeedsRejections(t *testing.T) {
	type When struct {
		status domain.DeploymentStatus
		needs  []domain.WelfareNeed
	}

	theory := func(when When, wantMessage string) func(*testing.T) {
		return func(t *testing.T) {
			ctx := context.Background()
			e := newEnv()
			try.To(e.orc.Create(ctx, e.gw, operator, createRequest())).OrFatal(t)
			e.saved.Status = when.status

			viewsBefore := e.gw.ServicesAPI.Calls.CreateView.Times()
			_, err := e.orc.AddWelfareNeeds(ctx, e.gw, operator, "dep-0001", when.needs)
			if err == nil || !strings.Contains(err.Error(), wantMessage) {
				t.Errorf("error: got %v, want containing %q", err, wantMessage)
			}
			if n := e.gw.ServicesAPI.Calls.CreateView.Times(); n != viewsBefore {
				t.Errorf("no views should be provisioned, got %d extra", n-viewsBefore)
			}
		}
	}

	t.Run("when the deployment is not created, it rejects the edit", theory(
		When{status: domain.Failed, needs: []domain.WelfareNeed{domain.AnimalWelfare}},
		"only created deployments can be extended",
	))
	t.Run("when every need is already covered, it rejects the edit", theory(
		When{status: domain.Created, needs: []domain.WelfareNeed{domain.MissingPerson}},
		"already covers",
	))
	t.Run("when a need is not selectable, it rejects the edit", theory(
		When{status: domain.Created, needs: []domain.WelfareNeed{domain.Main}},
		"not a selectable welfare need",
	))
}

func TestCreateRequestValidation(t *testing.T) {
	theory := func(mutate func(*orchestrate.CreateRequest), wantMessage string) func(*testing.T) {
		return func(t *testing.T) {
			e := newEnv()
			req := createRequest()
			mutate(&req)

			_, err := e.orc.Create(context.Background(), e.gw, operator, req)
			if err == nil || !strings.Contains(err.Error(), wantMessage) {
				t.Errorf("error: got %v, want containing %q", err, wantMessage)
			}
			if n := e.files.Calls.NewDeploymentID.Times(); n != 0 {
				t.Errorf("nothing should be allocated, NewDeploymentID called %d times", n)
			}
		}
	}

	t.Run("when the project name is empty, it rejects the request", theory(
		func(r *orchestrate.CreateRequest) { r.Project = "" },
		"project name is required",
	))
	t.Run("when no CDEM group is given, it rejects the request", theory(
		func(r *orchestrate.CreateRequest) { r.CDEMGroups = nil },
		"at least one CDEM group",
	))
	t.Run("when no welfare need is given, it rejects the request", theory(
		func(r *orchestrate.CreateRequest) { r.WelfareNeeds = nil },
		"at least one welfare need",
	))
	t.Run("when a pseudo-need is given, it rejects the request", theory(
		func(r *orchestrate.CreateRequest) { r.WelfareNeeds = []domain.WelfareNeed{domain.Registration} },
		"not a selectable welfare need",
	))
	t.Run("when the survey form id is empty, it rejects the request", theory(
		func(r *orchestrate.CreateRequest) { r.SurveyFormID = "" },
		"survey form id is required",
	))
}

func TestResumeRejectsCreatedDeployment(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	try.To(e.orc.Create(ctx, e.gw, operator, createRequest())).OrFatal(t)

	viewsBefore := e.gw.ServicesAPI.Calls.CreateView.Times()
	_, err := e.orc.Resume(ctx, e.gw, operator, "dep-0001")
	if err == nil || !strings.Contains(err.Error(), "already") {
		t.Errorf("error: got %v", err)
	}
	if n := e.gw.ServicesAPI.Calls.CreateView.Times(); n != viewsBefore {
		t.Error("resume of a created deployment should provision nothing")
	}
}
