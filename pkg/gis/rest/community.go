package rest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
)

type communityAPI client

var _ gis.CommunityInterface = (*communityAPI)(nil)

func (c *communityAPI) Memberships(ctx context.Context, groupIDs []string) ([]gis.Group, error) {
	resp := struct {
		Results []gis.Group `json:"results"`
	}{}
	params := url.Values{
		"num":              {"100"},
		"searchUserAccess": {"groupMember"},
	}
	if len(groupIDs) != 0 {
		params.Set("q", "id: "+strings.Join(groupIDs, " OR id: "))
	}
	err := (*client)(c).get(
		ctx, "groupMemberships",
		fmt.Sprintf("%s/sharing/rest/community/groups", c.portalURL),
		params,
		&resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *communityAPI) CreateGroup(ctx context.Context, group gis.NewGroup) (gis.Group, error) {
	resp := struct {
		Group gis.Group `json:"group"`
	}{}
	err := (*client)(c).post(
		ctx, "createGroup",
		fmt.Sprintf("%s/sharing/rest/community/createGroup", c.portalURL),
		url.Values{
			"title":            {group.Title},
			"description":      {group.Description},
			"tags":             {group.Tags},
			"isInvitationOnly": {"true"},
			"access":           {"private"},
		},
		&resp,
	)
	if err != nil {
		return gis.Group{}, err
	}
	return resp.Group, nil
}

func (c *communityAPI) DeleteGroup(ctx context.Context, groupID string) error {
	return (*client)(c).post(
		ctx, "deleteGroup",
		fmt.Sprintf("%s/sharing/rest/community/groups/%s/delete", c.portalURL, url.PathEscape(groupID)),
		nil, nil,
	)
}
