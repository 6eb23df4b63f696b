package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

type featureAPI client

var _ gis.FeatureInterface = (*featureAPI)(nil)

type editResult struct {
	ObjectID int                   `json:"objectId"`
	Success  bool                  `json:"success"`
	Error    *platformErrorPayload `json:"error"`
}

func (r editResult) check(op string) error {
	if r.Success {
		return nil
	}
	if r.Error != nil {
		return &gis.PlatformError{
			Op: op, Code: r.Error.Code, Message: r.Error.Message, Details: r.Error.Details,
		}
	}
	return &gis.PlatformError{Op: op, Code: 500, Message: "edit was not applied"}
}

func (c *featureAPI) Query(ctx context.Context, where string, outFields []string) ([]gis.Feature, error) {
	fields := "*"
	if len(outFields) > 0 {
		fields = strings.Join(outFields, ",")
	}
	resp := struct {
		Features []gis.Feature `json:"features"`
	}{}
	err := (*client)(c).get(
		ctx, "queryFeatures", c.recordTableURL+"/query",
		url.Values{
			"where":          {where},
			"outFields":      {fields},
			"returnGeometry": {"false"},
		},
		&resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.Features, nil
}

func (c *featureAPI) Add(ctx context.Context, attributes map[string]any) (int, error) {
	payload, err := json.Marshal([]gis.Feature{{Attributes: attributes}})
	if err != nil {
		return 0, fmt.Errorf("addFeatures: %w", err)
	}
	resp := struct {
		AddResults []editResult `json:"addResults"`
	}{}
	err = (*client)(c).post(
		ctx, "addFeatures", c.recordTableURL+"/addFeatures",
		url.Values{"features": {string(payload)}},
		&resp,
	)
	if err != nil {
		return 0, err
	}
	if len(resp.AddResults) != 1 {
		return 0, &gis.PlatformError{Op: "addFeatures", Code: 500, Message: "no add result returned"}
	}
	if err := resp.AddResults[0].check("addFeatures"); err != nil {
		return 0, err
	}
	return resp.AddResults[0].ObjectID, nil
}

func (c *featureAPI) Update(ctx context.Context, attributes map[string]any) error {
	payload, err := json.Marshal([]gis.Feature{{Attributes: attributes}})
	if err != nil {
		return fmt.Errorf("updateFeatures: %w", err)
	}
	resp := struct {
		UpdateResults []editResult `json:"updateResults"`
	}{}
	err = (*client)(c).post(
		ctx, "updateFeatures", c.recordTableURL+"/updateFeatures",
		url.Values{"features": {string(payload)}},
		&resp,
	)
	if err != nil {
		return err
	}
	if len(resp.UpdateResults) != 1 {
		return &gis.PlatformError{Op: "updateFeatures", Code: 500, Message: "no update result returned"}
	}
	return resp.UpdateResults[0].check("updateFeatures")
}

func (c *featureAPI) Delete(ctx context.Context, objectIDs []int) error {
	ids := slices.Map(objectIDs, strconv.Itoa)
	resp := struct {
		DeleteResults []editResult `json:"deleteResults"`
	}{}
	err := (*client)(c).post(
		ctx, "deleteFeatures", c.recordTableURL+"/deleteFeatures",
		url.Values{"objectIds": {strings.Join(ids, ",")}},
		&resp,
	)
	if err != nil {
		return err
	}
	for _, r := range resp.DeleteResults {
		if err := r.check("deleteFeatures"); err != nil {
			return err
		}
	}
	return nil
}
