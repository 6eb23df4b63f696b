// Package teardown removes everything a deployment provisioned.
package teardown

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/record"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/projectfiles"
)

type Runner struct {
	records record.Interface
	files   projectfiles.Interface
	logger  *zap.Logger
}

func New(records record.Interface, files projectfiles.Interface, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{records: records, files: files, logger: logger}
}

// Delete removes the deployment's views, dashboards, access groups and
// folder from the platform, then the project directory and the record
// row. The source dataset and its survey form are never touched; the
// collected data outlives the deployment.
//
// Items already gone from the platform are treated as deleted. Every
// removal is attempted even when earlier ones fail; any failure leaves
// the record behind with status Deletion Failed so the operator can
// retry.
func (r *Runner) Delete(ctx context.Context, gw gis.Gateway, cred gis.Credential, deploymentID string) error {
	rec, err := r.records.Get(ctx, deploymentID)
	if err != nil {
		return err
	}
	logger := r.logger.With(zap.String("deployment", deploymentID))

	var errs []error
	for _, v := range rec.LayerViews {
		if err := tolerateGone(gw.Content().DeleteItem(ctx, v.ItemID)); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s view of %s: %w", v.Need, v.Group, err))
			continue
		}
		logger.Info("deleted view", zap.String("item", v.ItemID))
	}
	for _, d := range rec.Dashboards {
		if err := tolerateGone(gw.Content().DeleteItem(ctx, d.ItemID)); err != nil {
			errs = append(errs, fmt.Errorf("deleting dashboard of %s: %w", d.Group, err))
			continue
		}
		logger.Info("deleted dashboard", zap.String("item", d.ItemID))
	}
	for _, g := range rec.AccessGroups {
		if err := tolerateGone(gw.Community().DeleteGroup(ctx, g.ID)); err != nil {
			errs = append(errs, fmt.Errorf("deleting group %s: %w", g.Title, err))
			continue
		}
		logger.Info("deleted group", zap.String("group", g.ID))
	}
	if rec.Folder.ID != "" {
		if err := tolerateGone(gw.Content().DeleteFolder(ctx, rec.Folder.ID)); err != nil {
			errs = append(errs, fmt.Errorf("deleting folder %s: %w", rec.Folder.Title, err))
		} else {
			logger.Info("deleted folder", zap.String("folder", rec.Folder.ID))
		}
	}

	if len(errs) == 0 {
		if err := r.files.DeleteProject(ctx, cred.Token, deploymentID); err != nil {
			errs = append(errs, fmt.Errorf("deleting project files: %w", err))
		}
	}

	if len(errs) != 0 {
		rec.Status = domain.DeletionFailed
		if perr := r.records.Update(ctx, &rec); perr != nil {
			errs = append(errs, fmt.Errorf("persisting deployment %s: %w", deploymentID, perr))
		}
		return errors.Join(errs...)
	}

	if err := r.records.Delete(ctx, rec.ObjectID); err != nil {
		return fmt.Errorf("removing record of %s: %w", deploymentID, err)
	}
	logger.Info("deployment deleted")
	return nil
}

// tolerateGone folds "no such item" platform errors into success; a
// retried teardown must not trip over what a previous one removed.
func tolerateGone(err error) error {
	if gis.IsNotFound(err) {
		return nil
	}
	return err
}
