// Package gis abstracts the hosting GIS platform's sharing and admin REST
// APIs behind capability interfaces.
//
// A Gateway is bound to one portal and one caller credential. Every remote
// call is made on the caller's behalf; the platform enforces privileges,
// this package only transports them.
package gis

import "context"

// Credential is an opaque portal access token with the account it was
// issued to. Tokens are never minted or decoded locally.
type Credential struct {
	Username string
	Token    string
}

type Gateway interface {
	// Content accesses the caller's portal items and folders.
	Content() ContentInterface

	// Community accesses access-control groups.
	Community() CommunityInterface

	// Services administers hosted feature services and views.
	Services() ServiceInterface

	// Features edits rows of the deployment record table.
	Features() FeatureInterface
}

// RelatedItem is an item reached through a relationship query, e.g. the
// result dataset behind a survey form.
type RelatedItem struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Name  string `json:"name"`
}

type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Folder struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// NewItem is the payload for adding a text-bodied item (dashboards).
type NewItem struct {
	Type         string
	Title        string
	Description  string
	TypeKeywords string
	Tags         string
	Text         string
}

// NewGroup is the payload for creating a private invitation-only group.
type NewGroup struct {
	Title       string
	Description string
	Tags        string
}

type ContentInterface interface {
	// RelatedItems queries items related to itemID with the given
	// relationship type in the forward direction.
	RelatedItems(ctx context.Context, itemID string, relationshipType string) ([]RelatedItem, error)

	// AddItem adds a new item into the caller's root folder.
	AddItem(ctx context.Context, item NewItem) (Item, error)

	// Folders lists the caller's folders.
	Folders(ctx context.Context) ([]Folder, error)

	CreateFolder(ctx context.Context, title string, description string, tags string) (Folder, error)

	// MoveItem moves an item of the caller into the given folder.
	MoveItem(ctx context.Context, itemID string, folderID string) error

	// ShareItems shares the items to the group, caller's items only,
	// never to everyone.
	ShareItems(ctx context.Context, itemIDs []string, groupID string) error

	DeleteItem(ctx context.Context, itemID string) error

	DeleteFolder(ctx context.Context, folderID string) error
}

type CommunityInterface interface {
	// Memberships are the groups the caller is a member of, scoped to
	// the given group ids, or all of them when groupIDs is empty. The
	// platform verifies membership; a valid response doubles as proof
	// the credential is live.
	Memberships(ctx context.Context, groupIDs []string) ([]Group, error)

	CreateGroup(ctx context.Context, group NewGroup) (Group, error)

	DeleteGroup(ctx context.Context, groupID string) error
}

// ViewService is a created (still empty) hosted feature view service.
type ViewService struct {
	ItemID     string `json:"itemId"`
	ServiceURL string `json:"serviceurl"`
}

// SourceLayer identifies the hosted layer a view is carved from.
type SourceLayer struct {
	ItemID      string
	URL         string
	Title       string
	ServiceName string
}

// ViewField is one field entry of a view's layer definition: whether it
// shows, and the catalogue payload carried in the field description.
type ViewField struct {
	Name        string       `json:"name"`
	Alias       string       `json:"alias,omitempty"`
	Visible     bool         `json:"visible"`
	Description *FieldNote   `json:"description,omitempty"`
	Domain      *FieldDomain `json:"domain,omitempty"`
}

// FieldNote is the structured description attached to a field.
type FieldNote struct {
	FieldValueType string `json:"fieldValueType"`
	Value          any    `json:"value"`
}

type FieldDomain struct {
	Type        string       `json:"type,omitempty"`
	Name        string       `json:"name,omitempty"`
	CodedValues []CodedValue `json:"codedValues,omitempty"`
}

type CodedValue struct {
	Name string `json:"name"`
	Code any    `json:"code"`
}

// ViewDefinition restricts what a view exposes: the row filter and the
// field list with visibility.
type ViewDefinition struct {
	ViewDefinitionQuery string      `json:"viewDefinitionQuery"`
	Fields              []ViewField `json:"fields"`
}

// ServiceLimits are the service-level caps raised on the source service
// before views are carved from it.
type ServiceLimits struct {
	MaxRecordCount int `json:"maxRecordCount"`
	MaxViewsCount  int `json:"maxViewsCount"`
}

// ServiceField is a field as reported by a feature service description.
type ServiceField struct {
	Name   string       `json:"name"`
	Alias  string       `json:"alias"`
	Type   string       `json:"type"`
	Domain *FieldDomain `json:"domain"`
}

type ServiceInterface interface {
	// CreateView creates an empty hosted feature view service under the
	// caller's account.
	CreateView(ctx context.Context, name string, description string) (ViewService, error)

	// AttachSource adds the source layer into the view's definition.
	// The platform locks the source service per attach; concurrent
	// attaches can fail with a lock error (IsLock).
	AttachSource(ctx context.Context, viewServiceURL string, source SourceLayer) error

	// SetViewDefinition sets the row filter and field list of layer 0
	// of the view.
	SetViewDefinition(ctx context.Context, viewServiceURL string, def ViewDefinition) error

	// SetLimits raises the record and view caps of a source service.
	SetLimits(ctx context.Context, serviceURL string, limits ServiceLimits) error

	// SetFieldNotes writes field descriptions back into the source
	// service's definition.
	SetFieldNotes(ctx context.Context, serviceURL string, fields []ViewField) error

	// Describe returns the source service's current field list.
	Describe(ctx context.Context, serviceURL string) ([]ServiceField, error)
}

// Feature is one row of a hosted feature table.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
}

type FeatureInterface interface {
	// Query rows matching the where clause. Pass "1=1" for all rows.
	Query(ctx context.Context, where string, outFields []string) ([]Feature, error)

	// Add inserts one row and returns its object id.
	Add(ctx context.Context, attributes map[string]any) (int, error)

	// Update rewrites one row identified by its objectid attribute.
	Update(ctx context.Context, attributes map[string]any) error

	// Delete removes rows by object id.
	Delete(ctx context.Context, objectIDs []int) error
}
