package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

var viewNameSanitizer = regexp.MustCompile(`[^a-z0-9]`)

// ViewName builds the remote service name of a layer view. Service names
// are restricted to lowercase alphanumerics on the platform, so everything
// else collapses to underscores.
func ViewName(project string, unit GroupUnit, need WelfareNeed) string {
	raw := strings.ToLower(fmt.Sprintf("%s_%s_%s", project, unit.Short(), need))
	return viewNameSanitizer.ReplaceAllString(raw, "_")
}

// ViewDescription is the human-readable description set on a layer view item.
func ViewDescription(project string, unit GroupUnit, need WelfareNeed) string {
	return fmt.Sprintf("%s view of the %s Āwhina dataset for %s", need, project, unit.Short())
}

// AccessGroupTitle names the access-control group for one unit and role.
// Group reuse matches on this exact title, so it must be stable.
func AccessGroupTitle(project string, unit GroupUnit, role WelfareNeed) string {
	return fmt.Sprintf("%s - %s - %s", project, unit.Short(), role)
}

// FolderTitle names the container folder of a deployment.
func FolderTitle(project string, groups []CDEMGroup) string {
	return fmt.Sprintf("%s - Āwhina Welfare - %s", project, joinShorts(groups))
}

// DashboardTitle names the operations dashboard of one unit.
func DashboardTitle(project string, unit GroupUnit) string {
	return fmt.Sprintf("%s - %s Āwhina Dashboard", project, unit.Short())
}

func joinShorts(groups []CDEMGroup) string {
	return strings.Join(
		slices.Map(groups, func(g CDEMGroup) string { return g.Short }),
		", ",
	)
}
