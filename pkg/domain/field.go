package domain

import "github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"

// Subset tags a field can carry besides welfare-need keys.
//
// Fields tagged with one of these always show in the Registration layer.
const (
	SubsetAll       = "all"
	SubsetOverview  = "overview"
	SubsetRequestor = "requestor"
	SubsetNotes     = "notes"
	SubsetSystem    = "system"
)

func registrationSubsets() []string {
	return []string{SubsetOverview, SubsetRequestor, SubsetNotes, SubsetAll, SubsetSystem}
}

// CodedValue is one entry of an enumerated field domain.
type CodedValue struct {
	Name string `json:"name"`
	Code any    `json:"code"`
}

// FieldDomain is the enumerated value set of a field, when it has one.
type FieldDomain struct {
	Type        string       `json:"type,omitempty"`
	Name        string       `json:"name,omitempty"`
	CodedValues []CodedValue `json:"codedValues,omitempty"`
}

// FieldDescriptor reconciles one column of the source dataset: what the
// column is, which layer types it is copied into (IncludeIn) and which
// layer types show it (VisibleIn, a subset of IncludeIn).
//
// Elements of IncludeIn/VisibleIn are welfare-need keys or subset tags.
type FieldDescriptor struct {
	Name      string       `json:"name"`
	Alias     string       `json:"alias,omitempty"`
	Type      string       `json:"type,omitempty"`
	Editable  bool         `json:"editable,omitempty"`
	Nullable  bool         `json:"nullable,omitempty"`
	Length    int          `json:"length,omitempty"`
	Domain    *FieldDomain `json:"domain,omitempty"`
	IncludeIn []string     `json:"includeIn"`
	VisibleIn []string     `json:"visibleIn"`
}

// IncludedFor reports whether the field is copied into views of the given
// layer type.
//
// The MAIN layer carries every field. The Registration layer carries
// fields tagged overview, requestor, notes, system or all. A welfare-need
// layer carries fields tagged with the need's key or all.
func (f FieldDescriptor) IncludedFor(layer WelfareNeed) bool {
	return matchesLayer(f.IncludeIn, layer)
}

// VisibleFor reports whether the field shows by default in views of the
// given layer type. A field can be included but hidden.
func (f FieldDescriptor) VisibleFor(layer WelfareNeed) bool {
	return matchesLayer(f.VisibleIn, layer)
}

func matchesLayer(tags []string, layer WelfareNeed) bool {
	switch layer {
	case Main:
		return true
	case Registration:
		return taggedAny(tags, registrationSubsets())
	default:
		return taggedAny(tags, []string{layer.Key(), SubsetAll})
	}
}

func taggedAny(tags, wanted []string) bool {
	_, ok := slices.First(tags, func(s string) bool {
		return slices.Contains(wanted, s)
	})
	return ok
}
