package mock

import (
	"context"
	"errors"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/record"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/internal/mocks"
)

type Interface struct {
	Impl struct {
		List   func(ctx context.Context) ([]domain.DeploymentRecord, error)
		Get    func(ctx context.Context, deploymentID string) (domain.DeploymentRecord, error)
		Create func(ctx context.Context, r *domain.DeploymentRecord) error
		Update func(ctx context.Context, r *domain.DeploymentRecord) error
		Delete func(ctx context.Context, objectID int) error
	}
	Calls struct {
		List   mocks.CallLog[struct{}]
		Get    mocks.CallLog[struct{ DeploymentID string }]
		Create mocks.CallLog[domain.DeploymentRecord]
		Update mocks.CallLog[domain.DeploymentRecord]
		Delete mocks.CallLog[struct{ ObjectID int }]
	}
}

var _ record.Interface = &Interface{}

func New() *Interface {
	return &Interface{}
}

func (m *Interface) List(ctx context.Context) ([]domain.DeploymentRecord, error) {
	m.Calls.List = append(m.Calls.List, struct{}{})
	if m.Impl.List != nil {
		return m.Impl.List(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (m *Interface) Get(ctx context.Context, deploymentID string) (domain.DeploymentRecord, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ DeploymentID string }{DeploymentID: deploymentID})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, deploymentID)
	}
	panic(errors.New("it should not be called"))
}

func (m *Interface) Create(ctx context.Context, r *domain.DeploymentRecord) error {
	m.Calls.Create = append(m.Calls.Create, *r)
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, r)
	}
	panic(errors.New("it should not be called"))
}

func (m *Interface) Update(ctx context.Context, r *domain.DeploymentRecord) error {
	m.Calls.Update = append(m.Calls.Update, *r)
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, r)
	}
	panic(errors.New("it should not be called"))
}

func (m *Interface) Delete(ctx context.Context, objectID int) error {
	m.Calls.Delete = append(m.Calls.Delete, struct{ ObjectID int }{ObjectID: objectID})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, objectID)
	}
	panic(errors.New("it should not be called"))
}
