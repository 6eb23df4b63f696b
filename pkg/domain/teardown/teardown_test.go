package teardown_test

import (
	"context"
	"errors"
	"testing"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	recmock "github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/record/mock"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/teardown"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	gismock "github.com/carg563/Awhina-2-Testing-Portal/pkg/gis/mock"
	pfmock "github.com/carg563/Awhina-2-Testing-Portal/pkg/projectfiles/mock"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/cmp"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

var operator = gis.Credential{Username: "welfare.admin", Token: "token-1"}

func provisionedRecord() domain.DeploymentRecord {
	return domain.DeploymentRecord{
		ObjectID:     7,
		DeploymentID: "dep-0001",
		Project:      "Alpine Fault Response",
		Status:       domain.Created,
		Source:       domain.SourceDataset{ID: "src-item", URL: "https://gis.example/rest/services/survey_results/FeatureServer/0"},
		LayerViews: []domain.LayerView{
			{Need: domain.MissingPerson, Group: "WGN", ItemID: "view-1"},
			{Need: domain.Registration, Group: "WGN", ItemID: "view-2"},
		},
		Dashboards:   []domain.DashboardItem{{Group: "WGN", ItemID: "dash-1"}},
		AccessGroups: []domain.AccessGroup{{ID: "grp-1", Title: "... - WGN - Missing Person"}, {ID: "grp-2", Title: "... - WGN - MAIN"}},
		Folder:       domain.Folder{ID: "folder-1", Title: "Alpine Fault Response - Āwhina Welfare - Wellington Region Emergency Management Office"},
	}
}

type env struct {
	gw      *gismock.Gateway
	records *recmock.Interface
	files   *pfmock.Interface
	runner  *teardown.Runner
	saved   domain.DeploymentRecord
}

func newEnv() *env {
	e := &env{gw: gismock.NewGateway(), records: recmock.New(), files: pfmock.New()}
	e.saved = provisionedRecord()

	e.records.Impl.Get = func(context.Context, string) (domain.DeploymentRecord, error) { return e.saved, nil }
	e.records.Impl.Update = func(_ context.Context, r *domain.DeploymentRecord) error {
		e.saved = *r
		return nil
	}
	e.records.Impl.Delete = func(context.Context, int) error { return nil }

	e.gw.ContentAPI.Impl.DeleteItem = func(context.Context, string) error { return nil }
	e.gw.ContentAPI.Impl.DeleteFolder = func(context.Context, string) error { return nil }
	e.gw.CommunityAPI.Impl.DeleteGroup = func(context.Context, string) error { return nil }
	e.files.Impl.DeleteProject = func(context.Context, string, string) error { return nil }

	e.runner = teardown.New(e.records, e.files, nil)
	return e
}

func TestDeleteRemovesEverything(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	if err := e.runner.Delete(ctx, e.gw, operator, "dep-0001"); err != nil {
		t.Fatal(err)
	}

	deleted := slices.Map(e.gw.ContentAPI.Calls.DeleteItem, func(c struct{ ItemID string }) string { return c.ItemID })
	if !cmp.SliceContentEq(deleted, []string{"view-1", "view-2", "dash-1"}) {
		t.Errorf("deleted items: got %v", deleted)
	}
	if slices.Contains(deleted, "src-item") {
		t.Error("the source dataset must survive deletion")
	}

	groups := slices.Map(e.gw.CommunityAPI.Calls.DeleteGroup, func(c struct{ GroupID string }) string { return c.GroupID })
	if !cmp.SliceContentEq(groups, []string{"grp-1", "grp-2"}) {
		t.Errorf("deleted groups: got %v", groups)
	}
	if e.gw.ContentAPI.Calls.DeleteFolder.Times() != 1 {
		t.Errorf("DeleteFolder: called %d times", e.gw.ContentAPI.Calls.DeleteFolder.Times())
	}

	if e.files.Calls.DeleteProject.Times() != 1 {
		t.Errorf("DeleteProject: called %d times", e.files.Calls.DeleteProject.Times())
	}
	if e.records.Calls.Delete.Times() != 1 || e.records.Calls.Delete[0].ObjectID != 7 {
		t.Errorf("record delete: %+v", e.records.Calls.Delete)
	}
}

func TestDeleteToleratesAlreadyDeletedItems(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.gw.ContentAPI.Impl.DeleteItem = func(_ context.Context, itemID string) error {
		return &gis.PlatformError{Op: "deleteItem", Code: 400, Message: "Item does not exist or is inaccessible."}
	}

	if err := e.runner.Delete(ctx, e.gw, operator, "dep-0001"); err != nil {
		t.Fatal(err)
	}
	if e.records.Calls.Delete.Times() != 1 {
		t.Error("the record row should still be removed")
	}
}

func TestDeleteFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.gw.CommunityAPI.Impl.DeleteGroup = func(_ context.Context, groupID string) error {
		if groupID == "grp-1" {
			return errors.New("group is busy")
		}
		return nil
	}

	err := e.runner.Delete(ctx, e.gw, operator, "dep-0001")
	if err == nil {
		t.Fatal("delete should fail")
	}

	// every removal is still attempted
	if e.gw.CommunityAPI.Calls.DeleteGroup.Times() != 2 {
		t.Errorf("DeleteGroup: called %d times", e.gw.CommunityAPI.Calls.DeleteGroup.Times())
	}
	if e.gw.ContentAPI.Calls.DeleteFolder.Times() != 1 {
		t.Errorf("DeleteFolder: called %d times", e.gw.ContentAPI.Calls.DeleteFolder.Times())
	}

	if e.files.Calls.DeleteProject.Times() != 0 {
		t.Error("project files should be kept for the retry")
	}
	if e.records.Calls.Delete.Times() != 0 {
		t.Error("the record row should be kept")
	}
	if e.saved.Status != domain.DeletionFailed {
		t.Errorf("persisted status: got %s, want %s", e.saved.Status, domain.DeletionFailed)
	}
}
