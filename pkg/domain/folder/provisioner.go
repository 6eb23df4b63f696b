// Package folder places a deployment's items into its container folder.
package folder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

type Provisioner struct {
	content gis.ContentInterface
}

func New(content gis.ContentInterface) *Provisioner {
	return &Provisioner{content: content}
}

// Ensure finds the deployment's folder by its exact title, creating it
// when absent. Re-runs of a deployment reuse the same folder.
func (p *Provisioner) Ensure(ctx context.Context, project string, groups []domain.CDEMGroup) (domain.Folder, error) {
	title := domain.FolderTitle(project, groups)

	folders, err := p.content.Folders(ctx)
	if err != nil {
		return domain.Folder{}, fmt.Errorf("listing folders: %w", err)
	}
	if existing, ok := slices.First(folders, func(f gis.Folder) bool { return f.Title == title }); ok {
		return domain.Folder{ID: existing.ID, Title: existing.Title}, nil
	}

	shorts := domain.GroupUnit{Members: groups}.Short()
	created, err := p.content.CreateFolder(
		ctx, title,
		fmt.Sprintf("Āwhina Welfare Deployment folder for the event: %s. Under CDEM Groups: %s", project, shorts),
		"Āwhina, Welfare",
	)
	if err != nil {
		return domain.Folder{}, fmt.Errorf("creating folder %s: %w", title, err)
	}
	return domain.Folder{ID: created.ID, Title: created.Title}, nil
}

// Move places the items into the folder, all moves concurrent. Every
// move is attempted; any failure fails the call with the joined errors.
// Moves are not compensated.
func (p *Provisioner) Move(ctx context.Context, folder domain.Folder, itemIDs []string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, id := range itemIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := p.content.MoveItem(ctx, id, folder.ID); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("moving item %s: %w", id, err))
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()
	return errors.Join(errs...)
}
