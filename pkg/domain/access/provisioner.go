// Package access provisions access-control groups and shares the
// deployment's items to them.
//
// One group exists per unit and role. A group whose exact title already
// appears among the caller's memberships is reused, so re-deploying the
// same event never duplicates groups. Group titles are the identity;
// they must stay stable across runs.
package access

import (
	"context"
	"fmt"
	"sync"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

type Provisioner struct {
	community gis.CommunityInterface
	content   gis.ContentInterface

	// known guards the caller's membership list. Groups created during
	// a run are appended so a later unit (or a redeploy in the same
	// process) sees them.
	mu    sync.Mutex
	known []gis.Group
}

// New builds a provisioner seeded with the caller's current group
// memberships.
func New(community gis.CommunityInterface, content gis.ContentInterface, memberships []gis.Group) *Provisioner {
	return &Provisioner{
		community: community,
		content:   content,
		known:     append([]gis.Group{}, memberships...),
	}
}

// Provision ensures the group for the unit and role exists and shares
// the items to it.
func (p *Provisioner) Provision(
	ctx context.Context,
	project string,
	unit domain.GroupUnit,
	role domain.WelfareNeed,
	items []string,
) (domain.AccessGroup, error) {
	title := domain.AccessGroupTitle(project, unit, role)

	group, ok := p.lookup(title)
	if !ok {
		created, err := p.community.CreateGroup(ctx, gis.NewGroup{
			Title: title,
			Description: fmt.Sprintf(
				"Āwhina Welfare Deployment %s Group for the event: %s. Under CDEM Group: %s",
				role, project, unit.Short(),
			),
			Tags: fmt.Sprintf("Āwhina, Welfare, %s, %s", role, unit.Short()),
		})
		if err != nil {
			return domain.AccessGroup{}, fmt.Errorf("creating group %s: %w", title, err)
		}
		group = created
		p.remember(created)
	}

	if len(items) > 0 {
		if err := p.content.ShareItems(ctx, items, group.ID); err != nil {
			return domain.AccessGroup{}, fmt.Errorf("sharing to group %s: %w", title, err)
		}
	}

	return domain.AccessGroup{ID: group.ID, Title: group.Title, Items: items}, nil
}

func (p *Provisioner) lookup(title string) (gis.Group, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.First(p.known, func(g gis.Group) bool { return g.Title == title })
}

func (p *Provisioner) remember(g gis.Group) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.known = append(p.known, g)
}

// MemberItems computes the item ids shared to the unit's role group.
//
// A welfare-need role gets that need's view. The full-access role gets
// every view of the unit, the source dataset, the survey form, and the
// unit's dashboard.
func MemberItems(r *domain.DeploymentRecord, unit domain.GroupUnit, role domain.WelfareNeed) []string {
	short := unit.Short()
	if role != domain.Main {
		if v, ok := r.ViewFor(short, role); ok {
			return []string{v.ItemID}
		}
		return nil
	}

	items := []string{}
	for _, v := range r.LayerViews {
		if v.Group == short {
			items = append(items, v.ItemID)
		}
	}
	if r.Source.ID != "" {
		items = append(items, r.Source.ID)
	}
	if r.SurveyFormID != "" {
		items = append(items, r.SurveyFormID)
	}
	if d, ok := r.DashboardFor(short); ok {
		items = append(items, d.ItemID)
	}
	return items
}
