// Package mock provides hand-written gis.Gateway mocks for tests.
//
// Each method records its call and delegates to the corresponding Impl
// function. Calling a method with no Impl set panics: tests declare
// exactly the remote surface they expect to be touched.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/internal/mocks"
)

type Gateway struct {
	ContentAPI   *ContentInterface
	CommunityAPI *CommunityInterface
	ServicesAPI  *ServiceInterface
	FeaturesAPI  *FeatureInterface
}

var _ gis.Gateway = &Gateway{}

func NewGateway() *Gateway {
	return &Gateway{
		ContentAPI:   &ContentInterface{},
		CommunityAPI: &CommunityInterface{},
		ServicesAPI:  &ServiceInterface{},
		FeaturesAPI:  &FeatureInterface{},
	}
}

func (g *Gateway) Content() gis.ContentInterface     { return g.ContentAPI }
func (g *Gateway) Community() gis.CommunityInterface { return g.CommunityAPI }
func (g *Gateway) Services() gis.ServiceInterface    { return g.ServicesAPI }
func (g *Gateway) Features() gis.FeatureInterface    { return g.FeaturesAPI }

type ContentInterface struct {
	mu sync.Mutex

	Impl struct {
		RelatedItems func(ctx context.Context, itemID string, relationshipType string) ([]gis.RelatedItem, error)
		AddItem      func(ctx context.Context, item gis.NewItem) (gis.Item, error)
		Folders      func(ctx context.Context) ([]gis.Folder, error)
		CreateFolder func(ctx context.Context, title string, description string, tags string) (gis.Folder, error)
		MoveItem     func(ctx context.Context, itemID string, folderID string) error
		ShareItems   func(ctx context.Context, itemIDs []string, groupID string) error
		DeleteItem   func(ctx context.Context, itemID string) error
		DeleteFolder func(ctx context.Context, folderID string) error
	}
	Calls struct {
		RelatedItems mocks.CallLog[struct {
			ItemID           string
			RelationshipType string
		}]
		AddItem      mocks.CallLog[gis.NewItem]
		Folders      mocks.CallLog[struct{}]
		CreateFolder mocks.CallLog[struct {
			Title       string
			Description string
			Tags        string
		}]
		MoveItem mocks.CallLog[struct {
			ItemID   string
			FolderID string
		}]
		ShareItems mocks.CallLog[struct {
			ItemIDs []string
			GroupID string
		}]
		DeleteItem   mocks.CallLog[struct{ ItemID string }]
		DeleteFolder mocks.CallLog[struct{ FolderID string }]
	}
}

var _ gis.ContentInterface = &ContentInterface{}

func (m *ContentInterface) RelatedItems(ctx context.Context, itemID string, relationshipType string) ([]gis.RelatedItem, error) {
	m.mu.Lock()
	m.Calls.RelatedItems = append(m.Calls.RelatedItems, struct {
		ItemID           string
		RelationshipType string
	}{ItemID: itemID, RelationshipType: relationshipType})
	m.mu.Unlock()
	if m.Impl.RelatedItems != nil {
		return m.Impl.RelatedItems(ctx, itemID, relationshipType)
	}
	panic(errors.New("it should not be called"))
}

func (m *ContentInterface) AddItem(ctx context.Context, item gis.NewItem) (gis.Item, error) {
	m.mu.Lock()
	m.Calls.AddItem = append(m.Calls.AddItem, item)
	m.mu.Unlock()
	if m.Impl.AddItem != nil {
		return m.Impl.AddItem(ctx, item)
	}
	panic(errors.New("it should not be called"))
}

func (m *ContentInterface) Folders(ctx context.Context) ([]gis.Folder, error) {
	m.mu.Lock()
	m.Calls.Folders = append(m.Calls.Folders, struct{}{})
	m.mu.Unlock()
	if m.Impl.Folders != nil {
		return m.Impl.Folders(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (m *ContentInterface) CreateFolder(ctx context.Context, title string, description string, tags string) (gis.Folder, error) {
	m.mu.Lock()
	m.Calls.CreateFolder = append(m.Calls.CreateFolder, struct {
		Title       string
		Description string
		Tags        string
	}{Title: title, Description: description, Tags: tags})
	m.mu.Unlock()
	if m.Impl.CreateFolder != nil {
		return m.Impl.CreateFolder(ctx, title, description, tags)
	}
	panic(errors.New("it should not be called"))
}

func (m *ContentInterface) MoveItem(ctx context.Context, itemID string, folderID string) error {
	m.mu.Lock()
	m.Calls.MoveItem = append(m.Calls.MoveItem, struct {
		ItemID   string
		FolderID string
	}{ItemID: itemID, FolderID: folderID})
	m.mu.Unlock()
	if m.Impl.MoveItem != nil {
		return m.Impl.MoveItem(ctx, itemID, folderID)
	}
	panic(errors.New("it should not be called"))
}

func (m *ContentInterface) ShareItems(ctx context.Context, itemIDs []string, groupID string) error {
	m.mu.Lock()
	m.Calls.ShareItems = append(m.Calls.ShareItems, struct {
		ItemIDs []string
		GroupID string
	}{ItemIDs: itemIDs, GroupID: groupID})
	m.mu.Unlock()
	if m.Impl.ShareItems != nil {
		return m.Impl.ShareItems(ctx, itemIDs, groupID)
	}
	panic(errors.New("it should not be called"))
}

func (m *ContentInterface) DeleteItem(ctx context.Context, itemID string) error {
	m.mu.Lock()
	m.Calls.DeleteItem = append(m.Calls.DeleteItem, struct{ ItemID string }{ItemID: itemID})
	m.mu.Unlock()
	if m.Impl.DeleteItem != nil {
		return m.Impl.DeleteItem(ctx, itemID)
	}
	panic(errors.New("it should not be called"))
}

func (m *ContentInterface) DeleteFolder(ctx context.Context, folderID string) error {
	m.mu.Lock()
	m.Calls.DeleteFolder = append(m.Calls.DeleteFolder, struct{ FolderID string }{FolderID: folderID})
	m.mu.Unlock()
	if m.Impl.DeleteFolder != nil {
		return m.Impl.DeleteFolder(ctx, folderID)
	}
	panic(errors.New("it should not be called"))
}

type CommunityInterface struct {
	mu sync.Mutex

	Impl struct {
		Memberships func(ctx context.Context, groupIDs []string) ([]gis.Group, error)
		CreateGroup func(ctx context.Context, group gis.NewGroup) (gis.Group, error)
		DeleteGroup func(ctx context.Context, groupID string) error
	}
	Calls struct {
		Memberships mocks.CallLog[struct{ GroupIDs []string }]
		CreateGroup mocks.CallLog[gis.NewGroup]
		DeleteGroup mocks.CallLog[struct{ GroupID string }]
	}
}

var _ gis.CommunityInterface = &CommunityInterface{}

func (m *CommunityInterface) Memberships(ctx context.Context, groupIDs []string) ([]gis.Group, error) {
	m.mu.Lock()
	m.Calls.Memberships = append(m.Calls.Memberships, struct{ GroupIDs []string }{GroupIDs: groupIDs})
	m.mu.Unlock()
	if m.Impl.Memberships != nil {
		return m.Impl.Memberships(ctx, groupIDs)
	}
	panic(errors.New("it should not be called"))
}

func (m *CommunityInterface) CreateGroup(ctx context.Context, group gis.NewGroup) (gis.Group, error) {
	m.mu.Lock()
	m.Calls.CreateGroup = append(m.Calls.CreateGroup, group)
	m.mu.Unlock()
	if m.Impl.CreateGroup != nil {
		return m.Impl.CreateGroup(ctx, group)
	}
	panic(errors.New("it should not be called"))
}

func (m *CommunityInterface) DeleteGroup(ctx context.Context, groupID string) error {
	m.mu.Lock()
	m.Calls.DeleteGroup = append(m.Calls.DeleteGroup, struct{ GroupID string }{GroupID: groupID})
	m.mu.Unlock()
	if m.Impl.DeleteGroup != nil {
		return m.Impl.DeleteGroup(ctx, groupID)
	}
	panic(errors.New("it should not be called"))
}

type ServiceInterface struct {
	mu sync.Mutex

	Impl struct {
		CreateView        func(ctx context.Context, name string, description string) (gis.ViewService, error)
		AttachSource      func(ctx context.Context, viewServiceURL string, source gis.SourceLayer) error
		SetViewDefinition func(ctx context.Context, viewServiceURL string, def gis.ViewDefinition) error
		SetLimits         func(ctx context.Context, serviceURL string, limits gis.ServiceLimits) error
		SetFieldNotes     func(ctx context.Context, serviceURL string, fields []gis.ViewField) error
		Describe          func(ctx context.Context, serviceURL string) ([]gis.ServiceField, error)
	}
	Calls struct {
		CreateView mocks.CallLog[struct {
			Name        string
			Description string
		}]
		AttachSource mocks.CallLog[struct {
			ViewServiceURL string
			Source         gis.SourceLayer
		}]
		SetViewDefinition mocks.CallLog[struct {
			ViewServiceURL string
			Def            gis.ViewDefinition
		}]
		SetLimits mocks.CallLog[struct {
			ServiceURL string
			Limits     gis.ServiceLimits
		}]
		SetFieldNotes mocks.CallLog[struct {
			ServiceURL string
			Fields     []gis.ViewField
		}]
		Describe mocks.CallLog[struct{ ServiceURL string }]
	}
}

var _ gis.ServiceInterface = &ServiceInterface{}

func (m *ServiceInterface) CreateView(ctx context.Context, name string, description string) (gis.ViewService, error) {
	m.mu.Lock()
	m.Calls.CreateView = append(m.Calls.CreateView, struct {
		Name        string
		Description string
	}{Name: name, Description: description})
	m.mu.Unlock()
	if m.Impl.CreateView != nil {
		return m.Impl.CreateView(ctx, name, description)
	}
	panic(errors.New("it should not be called"))
}

func (m *ServiceInterface) AttachSource(ctx context.Context, viewServiceURL string, source gis.SourceLayer) error {
	m.mu.Lock()
	m.Calls.AttachSource = append(m.Calls.AttachSource, struct {
		ViewServiceURL string
		Source         gis.SourceLayer
	}{ViewServiceURL: viewServiceURL, Source: source})
	m.mu.Unlock()
	if m.Impl.AttachSource != nil {
		return m.Impl.AttachSource(ctx, viewServiceURL, source)
	}
	panic(errors.New("it should not be called"))
}

func (m *ServiceInterface) SetViewDefinition(ctx context.Context, viewServiceURL string, def gis.ViewDefinition) error {
	m.mu.Lock()
	m.Calls.SetViewDefinition = append(m.Calls.SetViewDefinition, struct {
		ViewServiceURL string
		Def            gis.ViewDefinition
	}{ViewServiceURL: viewServiceURL, Def: def})
	m.mu.Unlock()
	if m.Impl.SetViewDefinition != nil {
		return m.Impl.SetViewDefinition(ctx, viewServiceURL, def)
	}
	panic(errors.New("it should not be called"))
}

func (m *ServiceInterface) SetLimits(ctx context.Context, serviceURL string, limits gis.ServiceLimits) error {
	m.mu.Lock()
	m.Calls.SetLimits = append(m.Calls.SetLimits, struct {
		ServiceURL string
		Limits     gis.ServiceLimits
	}{ServiceURL: serviceURL, Limits: limits})
	m.mu.Unlock()
	if m.Impl.SetLimits != nil {
		return m.Impl.SetLimits(ctx, serviceURL, limits)
	}
	panic(errors.New("it should not be called"))
}

func (m *ServiceInterface) SetFieldNotes(ctx context.Context, serviceURL string, fields []gis.ViewField) error {
	m.mu.Lock()
	m.Calls.SetFieldNotes = append(m.Calls.SetFieldNotes, struct {
		ServiceURL string
		Fields     []gis.ViewField
	}{ServiceURL: serviceURL, Fields: fields})
	m.mu.Unlock()
	if m.Impl.SetFieldNotes != nil {
		return m.Impl.SetFieldNotes(ctx, serviceURL, fields)
	}
	panic(errors.New("it should not be called"))
}

func (m *ServiceInterface) Describe(ctx context.Context, serviceURL string) ([]gis.ServiceField, error) {
	m.mu.Lock()
	m.Calls.Describe = append(m.Calls.Describe, struct{ ServiceURL string }{ServiceURL: serviceURL})
	m.mu.Unlock()
	if m.Impl.Describe != nil {
		return m.Impl.Describe(ctx, serviceURL)
	}
	panic(errors.New("it should not be called"))
}

type FeatureInterface struct {
	mu sync.Mutex

	Impl struct {
		Query  func(ctx context.Context, where string, outFields []string) ([]gis.Feature, error)
		Add    func(ctx context.Context, attributes map[string]any) (int, error)
		Update func(ctx context.Context, attributes map[string]any) error
		Delete func(ctx context.Context, objectIDs []int) error
	}
	Calls struct {
		Query mocks.CallLog[struct {
			Where     string
			OutFields []string
		}]
		Add    mocks.CallLog[map[string]any]
		Update mocks.CallLog[map[string]any]
		Delete mocks.CallLog[struct{ ObjectIDs []int }]
	}
}

var _ gis.FeatureInterface = &FeatureInterface{}

func (m *FeatureInterface) Query(ctx context.Context, where string, outFields []string) ([]gis.Feature, error) {
	m.mu.Lock()
	m.Calls.Query = append(m.Calls.Query, struct {
		Where     string
		OutFields []string
	}{Where: where, OutFields: outFields})
	m.mu.Unlock()
	if m.Impl.Query != nil {
		return m.Impl.Query(ctx, where, outFields)
	}
	panic(errors.New("it should not be called"))
}

func (m *FeatureInterface) Add(ctx context.Context, attributes map[string]any) (int, error) {
	m.mu.Lock()
	m.Calls.Add = append(m.Calls.Add, attributes)
	m.mu.Unlock()
	if m.Impl.Add != nil {
		return m.Impl.Add(ctx, attributes)
	}
	panic(errors.New("it should not be called"))
}

func (m *FeatureInterface) Update(ctx context.Context, attributes map[string]any) error {
	m.mu.Lock()
	m.Calls.Update = append(m.Calls.Update, attributes)
	m.mu.Unlock()
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, attributes)
	}
	panic(errors.New("it should not be called"))
}

func (m *FeatureInterface) Delete(ctx context.Context, objectIDs []int) error {
	m.mu.Lock()
	m.Calls.Delete = append(m.Calls.Delete, struct{ ObjectIDs []int }{ObjectIDs: objectIDs})
	m.mu.Unlock()
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, objectIDs)
	}
	panic(errors.New("it should not be called"))
}
