package domain

import (
	"fmt"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

// CDEMGroup is an organizational/regional unit. It is the tenant-like
// partition for access and data scoping.
type CDEMGroup struct {
	// ID of the group's admin access-control group in the portal.
	ID string `json:"id" yaml:"id"`

	// Name is the full name, e.g. "Wellington CDEM".
	Name string `json:"name" yaml:"name"`

	// Short is the shorthand regional code, e.g. "WGN".
	Short string `json:"short" yaml:"short"`
}

// Register is the well-known list of CDEM groups, loaded from configuration.
type Register []CDEMGroup

func (r Register) ByName(name string) (CDEMGroup, bool) {
	return slices.First(r, func(g CDEMGroup) bool { return g.Name == name })
}

func (r Register) ByShort(short string) (CDEMGroup, bool) {
	return slices.First(r, func(g CDEMGroup) bool { return g.Short == short })
}

// GroupingMode determines whether multiple CDEM groups share one set of
// layers and access groups ("merged") or each gets its own ("separate").
type GroupingMode string

const (
	Merged   GroupingMode = "merged"
	Separate GroupingMode = "separate"
)

func AsGroupingMode(s string) (GroupingMode, error) {
	switch s {
	case string(Merged):
		return Merged, nil
	case string(Separate):
		return Separate, nil
	default:
		return "", fmt.Errorf("'%s' is not GroupingMode", s)
	}
}

// GroupUnit is the unit provisioning operates on: a single CDEM group,
// or every group of the deployment combined (merged grouping).
type GroupUnit struct {
	Members []CDEMGroup `json:"members"`
}

// Short is the unit's label, e.g. "WGN" or "WGN,AUK" for a merged unit.
// Layer views, dashboards and access groups record this as their owning
// group.
func (u GroupUnit) Short() string {
	return strings.Join(
		slices.Map(u.Members, func(g CDEMGroup) string { return g.Short }),
		",",
	)
}

// FullNames are the members' full names, for group-membership row filters.
func (u GroupUnit) FullNames() []string {
	return slices.Map(u.Members, func(g CDEMGroup) string { return g.Name })
}

// Units splits groups into provisioning units according to mode.
//
// Merged mode always collapses to a single combined unit, however many
// groups there are.
func Units(groups []CDEMGroup, mode GroupingMode) []GroupUnit {
	if mode == Separate {
		return slices.Map(groups, func(g CDEMGroup) GroupUnit {
			return GroupUnit{Members: []CDEMGroup{g}}
		})
	}
	return []GroupUnit{{Members: groups}}
}
