package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
)

type contentAPI client

var _ gis.ContentInterface = (*contentAPI)(nil)

func (c *contentAPI) RelatedItems(ctx context.Context, itemID string, relationshipType string) ([]gis.RelatedItem, error) {
	resp := struct {
		RelatedItems []gis.RelatedItem `json:"relatedItems"`
	}{}
	err := (*client)(c).get(
		ctx, "relatedItems",
		fmt.Sprintf("%s/sharing/rest/content/items/%s/relatedItems", c.portalURL, url.PathEscape(itemID)),
		url.Values{
			"relationshipType": {relationshipType},
			"direction":        {"forward"},
		},
		&resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.RelatedItems, nil
}

func (c *contentAPI) AddItem(ctx context.Context, item gis.NewItem) (gis.Item, error) {
	resp := struct {
		ID string `json:"id"`
	}{}
	err := (*client)(c).post(
		ctx, "addItem", (*client)(c).userContentURL("addItem"),
		url.Values{
			"type":            {item.Type},
			"title":           {item.Title},
			"description":     {item.Description},
			"typeKeywords":    {item.TypeKeywords},
			"tags":            {item.Tags},
			"text":            {item.Text},
			"commentsEnabled": {"false"},
		},
		&resp,
	)
	if err != nil {
		return gis.Item{}, err
	}
	return gis.Item{ID: resp.ID, Title: item.Title}, nil
}

func (c *contentAPI) Folders(ctx context.Context) ([]gis.Folder, error) {
	resp := struct {
		Folders []gis.Folder `json:"folders"`
	}{}
	err := (*client)(c).get(ctx, "folders", (*client)(c).userContentURL(), nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

func (c *contentAPI) CreateFolder(ctx context.Context, title string, description string, tags string) (gis.Folder, error) {
	resp := struct {
		Folder gis.Folder `json:"folder"`
	}{}
	err := (*client)(c).post(
		ctx, "createFolder", (*client)(c).userContentURL("createFolder"),
		url.Values{
			"title":       {title},
			"description": {description},
			"tags":        {tags},
		},
		&resp,
	)
	if err != nil {
		return gis.Folder{}, err
	}
	return resp.Folder, nil
}

func (c *contentAPI) MoveItem(ctx context.Context, itemID string, folderID string) error {
	return (*client)(c).post(
		ctx, "moveItem",
		(*client)(c).userContentURL("items", url.PathEscape(itemID), "move"),
		url.Values{"folder": {folderID}},
		nil,
	)
}

func (c *contentAPI) ShareItems(ctx context.Context, itemIDs []string, groupID string) error {
	resp := struct {
		Results []struct {
			ItemID  string `json:"itemId"`
			Success bool   `json:"success"`
		} `json:"results"`
	}{}
	err := (*client)(c).post(
		ctx, "shareItems", (*client)(c).userContentURL("shareItems"),
		url.Values{
			"items":    {strings.Join(itemIDs, ",")},
			"groups":   {groupID},
			"everyone": {strconv.FormatBool(false)},
		},
		&resp,
	)
	if err != nil {
		return err
	}
	for _, r := range resp.Results {
		if !r.Success {
			return &gis.PlatformError{
				Op: "shareItems", Code: 500,
				Message: fmt.Sprintf("item %s was not shared to group %s", r.ItemID, groupID),
			}
		}
	}
	return nil
}

func (c *contentAPI) DeleteItem(ctx context.Context, itemID string) error {
	return (*client)(c).post(
		ctx, "deleteItem",
		(*client)(c).userContentURL("items", url.PathEscape(itemID), "delete"),
		nil, nil,
	)
}

func (c *contentAPI) DeleteFolder(ctx context.Context, folderID string) error {
	return (*client)(c).post(
		ctx, "deleteFolder",
		(*client)(c).userContentURL(url.PathEscape(folderID), "delete"),
		nil, nil,
	)
}
