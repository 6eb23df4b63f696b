package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
)

type serviceAPI client

var _ gis.ServiceInterface = (*serviceAPI)(nil)

func (c *serviceAPI) CreateView(ctx context.Context, name string, description string) (gis.ViewService, error) {
	createParams, err := json.Marshal(map[string]any{
		"name":                  name,
		"serviceDescription":    "",
		"description":           description,
		"summary":               "Āwhina Welfare System Layer.",
		"maxRecordCount":        10000,
		"supportedQueryFormats": "JSON",
		"hasStaticData":         false,
		"capabilities":          "Create,Editing,Query,Update,Uploads,Delete,Sync,Extract",
		"allowGeometryUpdates":  true,
	})
	if err != nil {
		return gis.ViewService{}, fmt.Errorf("createView: %w", err)
	}

	resp := gis.ViewService{}
	err = (*client)(c).post(
		ctx, "createView", (*client)(c).userContentURL("createService"),
		url.Values{
			"createParameters": {string(createParams)},
			"isView":           {"true"},
			"outputType":       {"featureService"},
		},
		&resp,
	)
	if err != nil {
		return gis.ViewService{}, err
	}
	return resp, nil
}

func (c *serviceAPI) AttachSource(ctx context.Context, viewServiceURL string, source gis.SourceLayer) error {
	addParams, err := json.Marshal(map[string]any{
		"layers": []map[string]any{{
			"id":                             0,
			"name":                           strings.ReplaceAll(source.Title, " ", "_"),
			"type":                           "Feature Layer",
			"displayField":                   "names",
			"capabilities":                   "Create,Editing,Query,Update,Uploads,Delete,Sync,Extract",
			"supportsApplyEditsWithGlobalIds": true,
			"serviceItemId":                  source.ItemID,
			"sourceSchemaChangesAllowed":     true,
			"isUpdatableView":                true,
			"url":                            source.URL,
			"adminLayerInfo": map[string]any{
				"viewLayerDefinition": map[string]any{
					"sourceServiceName": source.ServiceName,
					"sourceLayerId":     0,
					"sourceLayerFields": "*",
				},
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("attachSource: %w", err)
	}

	return (*client)(c).post(
		ctx, "attachSource", adminURL(viewServiceURL)+"/addToDefinition",
		url.Values{"addToDefinition": {string(addParams)}},
		nil,
	)
}

func (c *serviceAPI) SetViewDefinition(ctx context.Context, viewServiceURL string, def gis.ViewDefinition) error {
	update, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("setViewDefinition: %w", err)
	}
	return (*client)(c).post(
		ctx, "setViewDefinition", adminURL(viewServiceURL)+"/0/updateDefinition",
		url.Values{"updateDefinition": {string(update)}},
		nil,
	)
}

func (c *serviceAPI) SetLimits(ctx context.Context, serviceURL string, limits gis.ServiceLimits) error {
	update, err := json.Marshal(limits)
	if err != nil {
		return fmt.Errorf("setLimits: %w", err)
	}
	return (*client)(c).post(
		ctx, "setLimits", adminURL(serviceRoot(serviceURL))+"/updateDefinition",
		url.Values{"updateDefinition": {string(update)}},
		nil,
	)
}

func (c *serviceAPI) SetFieldNotes(ctx context.Context, serviceURL string, fields []gis.ViewField) error {
	update, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return fmt.Errorf("setFieldNotes: %w", err)
	}
	return (*client)(c).post(
		ctx, "setFieldNotes", adminURL(serviceURL)+"/updateDefinition",
		url.Values{"updateDefinition": {string(update)}},
		nil,
	)
}

func (c *serviceAPI) Describe(ctx context.Context, serviceURL string) ([]gis.ServiceField, error) {
	resp := struct {
		Fields []gis.ServiceField `json:"fields"`
	}{}
	if err := (*client)(c).get(ctx, "describeService", serviceURL, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Fields, nil
}
