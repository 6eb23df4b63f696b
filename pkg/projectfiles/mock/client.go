package mock

import (
	"context"
	"errors"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/internal/mocks"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/projectfiles"
)

type Interface struct {
	Impl struct {
		NewDeploymentID func(ctx context.Context, token string) (string, error)
		CreateProject   func(ctx context.Context, token string, deploymentID string) error
		WriteConfig     func(ctx context.Context, token string, deploymentID string, cfg domain.PortalConfig) error
		UpdateConfig    func(ctx context.Context, token string, deploymentID string, cfg domain.PortalConfig) error
		DeleteProject   func(ctx context.Context, token string, deploymentID string) error
	}
	Calls struct {
		NewDeploymentID mocks.CallLog[struct{ Token string }]
		CreateProject   mocks.CallLog[struct{ Token, DeploymentID string }]
		WriteConfig     mocks.CallLog[struct {
			Token        string
			DeploymentID string
			Config       domain.PortalConfig
		}]
		UpdateConfig mocks.CallLog[struct {
			Token        string
			DeploymentID string
			Config       domain.PortalConfig
		}]
		DeleteProject mocks.CallLog[struct{ Token, DeploymentID string }]
	}
}

var _ projectfiles.Interface = &Interface{}

func New() *Interface {
	return &Interface{}
}

func (m *Interface) NewDeploymentID(ctx context.Context, token string) (string, error) {
	m.Calls.NewDeploymentID = append(m.Calls.NewDeploymentID, struct{ Token string }{Token: token})
	if m.Impl.NewDeploymentID != nil {
		return m.Impl.NewDeploymentID(ctx, token)
	}
	panic(errors.New("it should not be called"))
}

func (m *Interface) CreateProject(ctx context.Context, token string, deploymentID string) error {
	m.Calls.CreateProject = append(m.Calls.CreateProject, struct{ Token, DeploymentID string }{
		Token: token, DeploymentID: deploymentID,
	})
	if m.Impl.CreateProject != nil {
		return m.Impl.CreateProject(ctx, token, deploymentID)
	}
	panic(errors.New("it should not be called"))
}

func (m *Interface) WriteConfig(ctx context.Context, token string, deploymentID string, cfg domain.PortalConfig) error {
	m.Calls.WriteConfig = append(m.Calls.WriteConfig, struct {
		Token        string
		DeploymentID string
		Config       domain.PortalConfig
	}{Token: token, DeploymentID: deploymentID, Config: cfg})
	if m.Impl.WriteConfig != nil {
		return m.Impl.WriteConfig(ctx, token, deploymentID, cfg)
	}
	panic(errors.New("it should not be called"))
}

func (m *Interface) UpdateConfig(ctx context.Context, token string, deploymentID string, cfg domain.PortalConfig) error {
	m.Calls.UpdateConfig = append(m.Calls.UpdateConfig, struct {
		Token        string
		DeploymentID string
		Config       domain.PortalConfig
	}{Token: token, DeploymentID: deploymentID, Config: cfg})
	if m.Impl.UpdateConfig != nil {
		return m.Impl.UpdateConfig(ctx, token, deploymentID, cfg)
	}
	panic(errors.New("it should not be called"))
}

func (m *Interface) DeleteProject(ctx context.Context, token string, deploymentID string) error {
	m.Calls.DeleteProject = append(m.Calls.DeleteProject, struct{ Token, DeploymentID string }{
		Token: token, DeploymentID: deploymentID,
	})
	if m.Impl.DeleteProject != nil {
		return m.Impl.DeleteProject(ctx, token, deploymentID)
	}
	panic(errors.New("it should not be called"))
}
