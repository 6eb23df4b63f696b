// Package dashboard provisions the operations dashboard of each group
// unit from a JSON template.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
)

// SourceToken is the placeholder in the template that is substituted
// with the unit's registration layer URL.
const SourceToken = "FEATURESOURCE"

type Provisioner struct {
	content  gis.ContentInterface
	template []byte
}

func New(content gis.ContentInterface, template []byte) *Provisioner {
	return &Provisioner{content: content, template: template}
}

// Provision renders the template for the unit and adds it as a Dashboard
// item. The unit's registration view feeds every panel.
func (p *Provisioner) Provision(
	ctx context.Context,
	project string,
	unit domain.GroupUnit,
	registrationLayerURL string,
) (domain.DashboardItem, error) {
	body, err := render(p.template, project, registrationLayerURL)
	if err != nil {
		return domain.DashboardItem{}, err
	}

	title := domain.DashboardTitle(project, unit)
	item, err := p.content.AddItem(ctx, gis.NewItem{
		Type:         "Dashboard",
		Title:        title,
		Description:  "Operations Dashboard for " + project,
		TypeKeywords: "Dashboard,Operations Dashboard",
		Tags:         "Āwhina," + project,
		Text:         body,
	})
	if err != nil {
		return domain.DashboardItem{}, fmt.Errorf("creating dashboard %s: %w", title, err)
	}

	return domain.DashboardItem{
		Group:  unit.Short(),
		ItemID: item.ID,
		Title:  title,
	}, nil
}

func render(template []byte, project string, layerURL string) (string, error) {
	doc := map[string]any{}
	if err := json.Unmarshal(template, &doc); err != nil {
		return "", fmt.Errorf("parsing dashboard template: %w", err)
	}
	header, ok := doc["headerPanel"].(map[string]any)
	if !ok {
		header = map[string]any{}
		doc["headerPanel"] = header
	}
	header["title"] = project + " - Āwhina Welfare Needs Assessment Dashboard"

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("rendering dashboard template: %w", err)
	}
	return strings.ReplaceAll(string(body), SourceToken, layerURL), nil
}
