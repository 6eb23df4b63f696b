package schema

import (
	"fmt"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
)

// ManualResolutionRequired suspends a deployment: the source dataset has
// fields the catalogue does not cover, and an operator must classify them
// before provisioning can continue.
type ManualResolutionRequired struct {
	DeploymentID string
	Fields       []string
}

func (e *ManualResolutionRequired) Error() string {
	return fmt.Sprintf(
		"deployment %s requires manual schema resolution for fields: %s",
		e.DeploymentID, strings.Join(e.Fields, ", "),
	)
}

// Resolution partitions the source dataset's fields by catalogue coverage.
type Resolution struct {
	// Resolved fields, in the dataset's field order, with the service's
	// reported alias and domain folded in where the catalogue is silent.
	Resolved []domain.FieldDescriptor

	// Unresolved names the fields absent from the catalogue.
	Unresolved []string
}

// Resolve matches the dataset's fields against the catalogue.
func Resolve(cat Catalogue, fields []gis.ServiceField) Resolution {
	res := Resolution{}
	for _, f := range fields {
		desc, ok := cat[f.Name]
		if !ok {
			res.Unresolved = append(res.Unresolved, f.Name)
			continue
		}
		if desc.Alias == "" {
			desc.Alias = f.Alias
		}
		if desc.Type == "" {
			desc.Type = f.Type
		}
		if desc.Domain == nil && f.Domain != nil {
			desc.Domain = &domain.FieldDomain{
				Type:        f.Domain.Type,
				Name:        f.Domain.Name,
				CodedValues: codedValues(f.Domain.CodedValues),
			}
		}
		res.Resolved = append(res.Resolved, desc)
	}
	return res
}

func codedValues(vs []gis.CodedValue) []domain.CodedValue {
	out := make([]domain.CodedValue, 0, len(vs))
	for _, v := range vs {
		out = append(out, domain.CodedValue{Name: v.Name, Code: v.Code})
	}
	return out
}

// FieldNotes renders the resolved descriptors as the field list written
// back into the source service's definition, carrying each field's layer
// classification in its description.
func (r Resolution) FieldNotes() []gis.ViewField {
	notes := make([]gis.ViewField, 0, len(r.Resolved))
	for _, f := range r.Resolved {
		notes = append(notes, gis.ViewField{
			Name:    f.Name,
			Alias:   f.Alias,
			Visible: true,
			Description: &gis.FieldNote{
				Value: map[string]any{
					"includeIn": f.IncludeIn,
					"visibleIn": f.VisibleIn,
				},
			},
		})
	}
	return notes
}
