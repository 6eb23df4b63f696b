// Package orchestrate drives the deployment workflows: creation, resume
// after suspension, extension with additional welfare needs.
//
// Each workflow is a fixed sequence of provisioning stages over the GIS
// platform. The deployment record is the single source of truth for how
// far a workflow got: every stage appends what it built to the record,
// and the record is persisted whenever the status changes and again when
// the workflow concludes. Stages skip work the record already shows as
// done, so a resumed workflow picks up where the failed one stopped.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/access"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/batch"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/dashboard"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/folder"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/portalcfg"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/record"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/schema"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/view"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/projectfiles"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

// surveyRelationship is the relationship type linking a survey form item
// to the hosted feature service holding its results.
const surveyRelationship = "Survey2Service"

// sourceLimits are the caps pushed onto the source service before views
// are carved from it. The platform defaults are far too low for a
// deployment's worth of views.
var sourceLimits = gis.ServiceLimits{MaxRecordCount: 10000, MaxViewsCount: 160}

type Config struct {
	Records   record.Interface
	Files     projectfiles.Interface
	Catalogue schema.Catalogue

	// DashboardTemplate is the raw dashboard item JSON carrying the
	// dashboard.SourceToken where the data source URL goes.
	DashboardTemplate []byte

	Locations portalcfg.Locations
	Scheduler batch.Scheduler
	Logger    *zap.Logger
}

// Orchestrator runs deployment workflows. Remote access is passed per
// call: a Gateway is bound to the calling operator's credential, and every
// item, group and folder is created as that operator.
type Orchestrator struct {
	records   record.Interface
	files     projectfiles.Interface
	catalogue schema.Catalogue
	template  []byte
	locations portalcfg.Locations
	scheduler batch.Scheduler
	logger    *zap.Logger
}

func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		records:   cfg.Records,
		files:     cfg.Files,
		catalogue: cfg.Catalogue,
		template:  cfg.DashboardTemplate,
		locations: cfg.Locations,
		scheduler: cfg.Scheduler,
		logger:    logger,
	}
}

// CreateRequest is the operator's input to the creation workflow.
type CreateRequest struct {
	Project      string
	CDEMGroups   []domain.CDEMGroup
	Grouping     domain.GroupingMode
	WelfareNeeds []domain.WelfareNeed
	SurveyFormID string
}

// Validate checks the request is well formed before anything is
// allocated.
func (r CreateRequest) Validate() error {
	if r.Project == "" {
		return errors.New("project name is required")
	}
	if len(r.CDEMGroups) == 0 {
		return errors.New("at least one CDEM group is required")
	}
	if len(r.WelfareNeeds) == 0 {
		return errors.New("at least one welfare need is required")
	}
	for _, n := range r.WelfareNeeds {
		if !slices.Contains(domain.SelectableNeeds(), n) {
			return fmt.Errorf("'%s' is not a selectable welfare need", n)
		}
	}
	if r.SurveyFormID == "" {
		return errors.New("survey form id is required")
	}
	return nil
}

// Create runs the creation workflow end to end: allocate the project on
// the file backend, persist the record, then provision everything.
//
// returns:
//   - domain.DeploymentRecord: the record as last persisted
//   - error: nil on success; a *schema.ManualResolutionRequired when the
//     workflow suspended for operator input; any other error means the
//     deployment is Failed
func (o *Orchestrator) Create(
	ctx context.Context, gw gis.Gateway, cred gis.Credential, req CreateRequest,
) (domain.DeploymentRecord, error) {
	rec, err := o.Prepare(ctx, cred, req)
	if err != nil {
		return domain.DeploymentRecord{}, err
	}
	return o.Run(ctx, gw, cred, rec)
}

// Prepare is the synchronous half of the creation workflow: allocate the
// deployment id and project directory on the file backend and insert the
// record with status Creating. The deployment is visible (and resumable)
// from the moment Prepare returns; callers answering an HTTP request can
// hand the returned record to Run in the background.
func (o *Orchestrator) Prepare(
	ctx context.Context, cred gis.Credential, req CreateRequest,
) (domain.DeploymentRecord, error) {
	if err := req.Validate(); err != nil {
		return domain.DeploymentRecord{}, err
	}

	id, err := o.files.NewDeploymentID(ctx, cred.Token)
	if err != nil {
		return domain.DeploymentRecord{}, fmt.Errorf("allocating deployment id: %w", err)
	}
	if err := o.files.CreateProject(ctx, cred.Token, id); err != nil {
		return domain.DeploymentRecord{}, fmt.Errorf("creating project %s: %w", id, err)
	}

	now := time.Now()
	rec := domain.DeploymentRecord{
		DeploymentID: id,
		Project:      req.Project,
		CDEMGroups:   req.CDEMGroups,
		Grouping:     req.Grouping,
		WelfareNeeds: slices.Uniq(req.WelfareNeeds),
		SurveyFormID: req.SurveyFormID,
		Status:       domain.Creating,
		CreatedBy:    cred.Username,
		CreatedAt:    now,
		LastEditedBy: cred.Username,
		LastEditedAt: now,
	}
	if err := o.records.Create(ctx, &rec); err != nil {
		return domain.DeploymentRecord{}, fmt.Errorf("recording deployment %s: %w", id, err)
	}
	return rec, nil
}

// Run provisions a prepared deployment (see Prepare).
func (o *Orchestrator) Run(
	ctx context.Context, gw gis.Gateway, cred gis.Credential, rec domain.DeploymentRecord,
) (domain.DeploymentRecord, error) {
	j := o.journalFor(&rec)
	j.Printf("deployment %s accepted for project %s", rec.DeploymentID, rec.Project)
	return o.conclude(ctx, &rec, j, o.provision(ctx, gw, cred, &rec, j))
}

// Resume re-runs the creation workflow of a deployment that suspended or
// failed. Stages consult the record and skip what a previous run already
// provisioned.
func (o *Orchestrator) Resume(
	ctx context.Context, gw gis.Gateway, cred gis.Credential, deploymentID string,
) (domain.DeploymentRecord, error) {
	rec, err := o.records.Get(ctx, deploymentID)
	if err != nil {
		return domain.DeploymentRecord{}, err
	}
	if rec.Status == domain.Created {
		return rec, fmt.Errorf("deployment %s is already %s", deploymentID, rec.Status)
	}

	rec.Status = domain.Creating
	rec.LastEditedBy = cred.Username
	j := o.journalFor(&rec)
	j.Printf("resuming deployment %s", deploymentID)
	if err := o.persist(ctx, &rec, j); err != nil {
		return rec, err
	}
	return o.conclude(ctx, &rec, j, o.provision(ctx, gw, cred, &rec, j))
}

// AddWelfareNeeds extends a created deployment with additional welfare
// needs: new views for each unit, sharing to the (new and MAIN) access
// groups, and a refreshed portal config. Dashboards and the folder are
// untouched.
func (o *Orchestrator) AddWelfareNeeds(
	ctx context.Context, gw gis.Gateway, cred gis.Credential, deploymentID string, needs []domain.WelfareNeed,
) (domain.DeploymentRecord, error) {
	rec, err := o.records.Get(ctx, deploymentID)
	if err != nil {
		return domain.DeploymentRecord{}, err
	}
	if rec.Status != domain.Created {
		return rec, fmt.Errorf("deployment %s is %s; only created deployments can be extended", deploymentID, rec.Status)
	}

	added := slices.Filter(slices.Uniq(needs), func(n domain.WelfareNeed) bool {
		return !slices.Contains(rec.WelfareNeeds, n)
	})
	if len(added) == 0 {
		return rec, fmt.Errorf("deployment %s already covers the requested welfare needs", deploymentID)
	}
	for _, n := range added {
		if !slices.Contains(domain.SelectableNeeds(), n) {
			return rec, fmt.Errorf("'%s' is not a selectable welfare need", n)
		}
	}

	rec.Status = domain.Updating
	rec.LastEditedBy = cred.Username
	j := o.journalFor(&rec)
	j.Printf("extending deployment %s with: %s", deploymentID, joinNeeds(added))
	if err := o.persist(ctx, &rec, j); err != nil {
		return rec, err
	}
	return o.conclude(ctx, &rec, j, o.extend(ctx, gw, cred, &rec, j, added))
}

func (o *Orchestrator) journalFor(rec *domain.DeploymentRecord) *Journal {
	return NewJournal(o.logger.With(zap.String("deployment", rec.DeploymentID)))
}

// conclude closes a workflow run: mark the terminal status, fold the
// journal into the record, persist. Suspension for manual schema
// resolution is not a failure; the status set at workflow entry stands
// and the operator resumes once the catalogue covers the dataset.
func (o *Orchestrator) conclude(
	ctx context.Context, rec *domain.DeploymentRecord, j *Journal, err error,
) (domain.DeploymentRecord, error) {
	var manual *schema.ManualResolutionRequired
	switch {
	case err == nil:
		rec.Status = domain.Created
		j.Printf("deployment %s completed", rec.DeploymentID)
	case errors.As(err, &manual):
		j.Printf("deployment %s suspended: %s", rec.DeploymentID, err)
	default:
		rec.Status = domain.Failed
		j.Printf("deployment %s failed: %s", rec.DeploymentID, err)
	}
	if perr := o.persist(ctx, rec, j); perr != nil {
		err = errors.Join(err, perr)
	}
	return *rec, err
}

func (o *Orchestrator) persist(ctx context.Context, rec *domain.DeploymentRecord, j *Journal) error {
	rec.Log = j.Entries()
	rec.LastEditedAt = time.Now()
	if err := o.records.Update(ctx, rec); err != nil {
		return fmt.Errorf("persisting deployment %s: %w", rec.DeploymentID, err)
	}
	return nil
}

// provision is the creation stage sequence. Shared by Create and Resume.
func (o *Orchestrator) provision(
	ctx context.Context, gw gis.Gateway, cred gis.Credential, rec *domain.DeploymentRecord, j *Journal,
) error {
	if err := o.resolveSource(ctx, gw, rec, j); err != nil {
		return err
	}
	if err := gw.Services().SetLimits(ctx, rec.Source.URL, sourceLimits); err != nil {
		return fmt.Errorf("raising limits of %s: %w", rec.Source.ServiceName, err)
	}
	j.Printf("raised source service caps to %d records, %d views", sourceLimits.MaxRecordCount, sourceLimits.MaxViewsCount)

	fields, err := o.resolveSchema(ctx, gw, rec, j)
	if err != nil {
		return err
	}
	if err := o.provisionViews(ctx, gw, rec, j, fields, rec.LayerOrder()); err != nil {
		return err
	}
	if err := o.provisionDashboards(ctx, gw, rec, j); err != nil {
		return err
	}
	if err := o.placeInFolder(ctx, gw, rec, j); err != nil {
		return err
	}
	if err := o.provisionAccess(ctx, gw, rec, j, domain.AccessRoles(rec.WelfareNeeds)); err != nil {
		return err
	}
	return o.publishConfig(ctx, cred, rec, j, o.files.WriteConfig)
}

// extend is the edit stage sequence for newly added welfare needs.
func (o *Orchestrator) extend(
	ctx context.Context, gw gis.Gateway, cred gis.Credential, rec *domain.DeploymentRecord, j *Journal,
	added []domain.WelfareNeed,
) error {
	// The record carries the extended need list from the start, so an
	// extension that fails or suspends and is then resumed provisions
	// the missing views, groups, and config for the new needs too.
	rec.WelfareNeeds = append(rec.WelfareNeeds, added...)

	fields, err := o.resolveSchema(ctx, gw, rec, j)
	if err != nil {
		return err
	}
	if err := o.provisionViews(ctx, gw, rec, j, fields, added); err != nil {
		return err
	}
	if err := o.placeInFolder(ctx, gw, rec, j); err != nil {
		return err
	}
	// MAIN groups get the new views shared to them alongside the new
	// per-need groups.
	roles := append(append([]domain.WelfareNeed{}, added...), domain.Main)
	if err := o.provisionAccess(ctx, gw, rec, j, roles); err != nil {
		return err
	}
	return o.publishConfig(ctx, cred, rec, j, o.files.UpdateConfig)
}

// resolveSource finds the result dataset behind the survey form. Exactly
// one related item is required; zero means the form never collected,
// more than one is ambiguous and needs an operator.
func (o *Orchestrator) resolveSource(
	ctx context.Context, gw gis.Gateway, rec *domain.DeploymentRecord, j *Journal,
) error {
	if rec.Source.URL != "" {
		j.Printf("source dataset already resolved: %s", rec.Source.ServiceName)
		return nil
	}

	rels, err := gw.Content().RelatedItems(ctx, rec.SurveyFormID, surveyRelationship)
	if err != nil {
		return fmt.Errorf("resolving source dataset of form %s: %w", rec.SurveyFormID, err)
	}
	if len(rels) != 1 {
		return fmt.Errorf("survey form %s has %d result datasets, want exactly one", rec.SurveyFormID, len(rels))
	}

	rel := rels[0]
	rec.Source = domain.SourceDataset{
		ID:          rel.ID,
		URL:         rel.URL + "/0",
		Title:       strings.ReplaceAll(rel.Title, " ", "_"),
		ServiceName: rel.Name,
	}
	rec.MarkForMove(rel.ID)
	j.Printf("resolved source dataset %s (%s)", rec.Source.ServiceName, rel.ID)
	return nil
}

// resolveSchema matches the source dataset's fields against the catalogue
// and writes the layer classification back into the field descriptions.
// Fields the catalogue does not cover suspend the workflow.
func (o *Orchestrator) resolveSchema(
	ctx context.Context, gw gis.Gateway, rec *domain.DeploymentRecord, j *Journal,
) ([]domain.FieldDescriptor, error) {
	fields, err := gw.Services().Describe(ctx, rec.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("describing source dataset: %w", err)
	}

	res := schema.Resolve(o.catalogue, fields)
	if len(res.Unresolved) != 0 {
		return nil, &schema.ManualResolutionRequired{
			DeploymentID: rec.DeploymentID,
			Fields:       res.Unresolved,
		}
	}
	if err := gw.Services().SetFieldNotes(ctx, rec.Source.URL, res.FieldNotes()); err != nil {
		return nil, fmt.Errorf("annotating source fields: %w", err)
	}
	j.Printf("resolved %d source fields against the catalogue", len(res.Resolved))
	return res.Resolved, nil
}

func (o *Orchestrator) provisionViews(
	ctx context.Context, gw gis.Gateway, rec *domain.DeploymentRecord, j *Journal,
	fields []domain.FieldDescriptor, layers []domain.WelfareNeed,
) error {
	provisioner := view.New(gw.Services())

	// The scheduler runs units concurrently; the record is not safe for
	// concurrent mutation.
	var mu sync.Mutex
	err := o.scheduler.Run(ctx, rec.Units(), layers, func(ctx context.Context, unit domain.GroupUnit, layer domain.WelfareNeed) error {
		mu.Lock()
		_, done := rec.ViewFor(unit.Short(), layer)
		mu.Unlock()
		if done {
			return nil
		}

		v, err := provisioner.Provision(ctx, rec.Project, unit, layer, rec.Source, fields)
		if err != nil {
			j.Printf("provisioning %s view for %s failed: %s", layer, unit.Short(), err)
			return err
		}
		mu.Lock()
		rec.AddLayerView(v)
		mu.Unlock()
		j.Printf("provisioned %s view for %s", layer, unit.Short())
		return nil
	})
	if err != nil {
		return fmt.Errorf("provisioning views: %w", err)
	}
	return nil
}

// provisionDashboards creates every unit's dashboard concurrently. A
// failed unit does not block its siblings; the failures are joined.
func (o *Orchestrator) provisionDashboards(
	ctx context.Context, gw gis.Gateway, rec *domain.DeploymentRecord, j *Journal,
) error {
	provisioner := dashboard.New(gw.Content(), o.template)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, unit := range rec.Units() {
		if _, ok := rec.DashboardFor(unit.Short()); ok {
			continue
		}
		wg.Add(1)
		go func(unit domain.GroupUnit) {
			defer wg.Done()
			mu.Lock()
			reg, ok := rec.ViewFor(unit.Short(), domain.Registration)
			mu.Unlock()
			if !ok {
				mu.Lock()
				errs = append(errs, fmt.Errorf("no registration view for %s to feed its dashboard", unit.Short()))
				mu.Unlock()
				return
			}
			d, err := provisioner.Provision(ctx, rec.Project, unit, reg.ServiceURL)
			if err != nil {
				j.Printf("provisioning dashboard for %s failed: %s", unit.Short(), err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			mu.Lock()
			rec.AddDashboard(d)
			mu.Unlock()
			j.Printf("provisioned dashboard for %s", unit.Short())
		}(unit)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (o *Orchestrator) placeInFolder(
	ctx context.Context, gw gis.Gateway, rec *domain.DeploymentRecord, j *Journal,
) error {
	provisioner := folder.New(gw.Content())
	if rec.Folder.ID == "" {
		f, err := provisioner.Ensure(ctx, rec.Project, rec.CDEMGroups)
		if err != nil {
			return fmt.Errorf("ensuring deployment folder: %w", err)
		}
		rec.Folder = f
		j.Printf("deployment folder %s ready", f.Title)
	}

	items := rec.TakeItemsToMove()
	if len(items) == 0 {
		return nil
	}
	if err := provisioner.Move(ctx, rec.Folder, items); err != nil {
		// Requeue so a resumed run retries the move; moving an item
		// already in the folder is a no-op on the platform.
		rec.MarkForMove(items...)
		return fmt.Errorf("moving items into %s: %w", rec.Folder.Title, err)
	}
	j.Printf("moved %d items into %s", len(items), rec.Folder.Title)
	return nil
}

func (o *Orchestrator) provisionAccess(
	ctx context.Context, gw gis.Gateway, rec *domain.DeploymentRecord, j *Journal,
	roles []domain.WelfareNeed,
) error {
	// Seeding with the caller's memberships makes group creation
	// idempotent across runs: a group created by a previous run is found
	// by title, not recreated.
	memberships, err := gw.Community().Memberships(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing group memberships: %w", err)
	}
	provisioner := access.New(gw.Community(), gw.Content(), memberships)

	for _, unit := range rec.Units() {
		for _, role := range roles {
			g, err := provisioner.Provision(ctx, rec.Project, unit, role, access.MemberItems(rec, unit, role))
			if err != nil {
				return err
			}
			rec.AddAccessGroup(g)
			j.Printf("access group %s ready", g.Title)
		}
	}
	return nil
}

func (o *Orchestrator) publishConfig(
	ctx context.Context, cred gis.Credential, rec *domain.DeploymentRecord, j *Journal,
	write func(ctx context.Context, token string, deploymentID string, cfg domain.PortalConfig) error,
) error {
	cfg := portalcfg.Build(rec, o.locations)
	rec.PortalConfig = &cfg
	if err := write(ctx, cred.Token, rec.DeploymentID, cfg); err != nil {
		return fmt.Errorf("writing portal config: %w", err)
	}
	j.Printf("portal config written for %s", rec.DeploymentID)
	return nil
}

func joinNeeds(needs []domain.WelfareNeed) string {
	return strings.Join(slices.Map(needs, domain.WelfareNeed.String), ", ")
}
