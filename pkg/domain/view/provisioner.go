// Package view provisions hosted feature views: one view per group unit
// and layer type, carved from the deployment's source dataset.
package view

import (
	"context"
	"fmt"
	"time"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/retry"
)

// DefaultAttachRetry bounds retries of the attach step. The platform
// locks the source service while any view attaches to it, so an attach
// racing an attach from another unit can fail transiently.
var DefaultAttachRetry = retry.Policy{
	MaxAttempts: 2,
	Backoff:     retry.StaticBackoff(3 * time.Second),
}

type Provisioner struct {
	services    gis.ServiceInterface
	attachRetry retry.Policy
}

type Option func(*Provisioner)

func WithAttachRetry(p retry.Policy) Option {
	return func(pr *Provisioner) { pr.attachRetry = p }
}

func New(services gis.ServiceInterface, opts ...Option) *Provisioner {
	p := &Provisioner{
		services:    services,
		attachRetry: DefaultAttachRetry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision creates one feature view for the unit and layer type.
//
// Three remote steps in order: create the empty view service, attach the
// source layer (lock conflicts retried per the attach policy), then set
// the row filter and field visibility. Any unrecovered failure aborts
// with no cleanup of the partially created view; the deployment records
// it as failed and the operator tears down.
func (p *Provisioner) Provision(
	ctx context.Context,
	project string,
	unit domain.GroupUnit,
	layer domain.WelfareNeed,
	source domain.SourceDataset,
	fields []domain.FieldDescriptor,
) (domain.LayerView, error) {
	name := domain.ViewName(project, unit, layer)

	svc, err := p.services.CreateView(ctx, name, domain.ViewDescription(project, unit, layer))
	if err != nil {
		return domain.LayerView{}, fmt.Errorf("creating view %s: %w", name, err)
	}

	_, err = retry.Do(ctx, p.attachRetry, func() (struct{}, error) {
		err := p.services.AttachSource(ctx, svc.ServiceURL, gis.SourceLayer{
			ItemID:      source.ID,
			URL:         source.URL,
			Title:       source.Title,
			ServiceName: source.ServiceName,
		})
		if gis.IsLock(err) {
			return struct{}{}, fmt.Errorf("%w: %w", retry.ErrRetry, err)
		}
		return struct{}{}, err
	})
	if err != nil {
		return domain.LayerView{}, fmt.Errorf("attaching source to view %s: %w", name, err)
	}

	def := gis.ViewDefinition{
		ViewDefinitionQuery: layer.RowFilter(unit.FullNames()),
		Fields:              Fields(fields, layer),
	}
	if err := p.services.SetViewDefinition(ctx, svc.ServiceURL, def); err != nil {
		return domain.LayerView{}, fmt.Errorf("defining view %s: %w", name, err)
	}

	return domain.LayerView{
		Need:       layer,
		Group:      unit.Short(),
		ItemID:     svc.ItemID,
		ServiceURL: svc.ServiceURL + "/0",
	}, nil
}

// Fields renders the per-layer field list. Every source field is listed;
// fields outside the layer's subset are carried hidden and stripped of
// their catalogue payload.
func Fields(fields []domain.FieldDescriptor, layer domain.WelfareNeed) []gis.ViewField {
	out := make([]gis.ViewField, 0, len(fields))
	for _, f := range fields {
		if !f.IncludedFor(layer) {
			out = append(out, gis.ViewField{Name: f.Name, Visible: false})
			continue
		}
		vf := gis.ViewField{
			Name:    f.Name,
			Alias:   f.Alias,
			Visible: f.VisibleFor(layer),
			Description: &gis.FieldNote{
				Value: map[string]any{
					"includeIn": f.IncludeIn,
					"visibleIn": f.VisibleIn,
				},
			},
		}
		if f.Domain != nil {
			vf.Domain = &gis.FieldDomain{
				Type:        f.Domain.Type,
				Name:        f.Domain.Name,
				CodedValues: codedValues(f.Domain.CodedValues),
			}
		}
		out = append(out, vf)
	}
	return out
}

func codedValues(vs []domain.CodedValue) []gis.CodedValue {
	out := make([]gis.CodedValue, 0, len(vs))
	for _, v := range vs {
		out = append(out, gis.CodedValue{Name: v.Name, Code: v.Code})
	}
	return out
}
