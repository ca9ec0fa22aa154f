package dispatch

import (
	"context"
	"fmt"

	"github.com/bluefunda/backlogr/types"
)

func (d *Dispatcher) wikiHandlers() handlerSet {
	return handlerSet{
		types.ActionList: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "projectIdOrKey") {
				return failure("Please specify a project ID or key"), nil
			}
			projectIDOrKey := stringParam(params, "projectIdOrKey")
			wikis, err := d.api.ListWikis(ctx, projectIDOrKey)
			if err != nil {
				return types.Result{}, err
			}
			if wikis == nil {
				wikis = []types.Wiki{}
			}
			return success(fmt.Sprintf("I found %d wikis in project %s:", len(wikis), projectIDOrKey), data{"wikis": wikis}), nil
		},

		types.ActionGet: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "wikiId") {
				return failure("Please specify a wiki ID"), nil
			}
			wikiID, err := intParam(params, "wikiId")
			if err != nil {
				return failure(err.Error()), nil
			}
			wiki, err := d.api.GetWiki(ctx, wikiID)
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Here's information about wiki %s:", wiki.Name), data{"wiki": wiki}), nil
		},

		types.ActionCreate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectId", "name", "content") {
				return failure("Please provide projectId, name, and content for the wiki"), nil
			}
			projectID, err := intParam(params, "projectId")
			if err != nil {
				return failure(err.Error()), nil
			}
			body := pick(params, "mailNotify")
			body["projectId"] = projectID
			body["name"] = stringParam(params, "name")
			body["content"] = stringParam(params, "content")

			wiki, err := d.api.CreateWiki(ctx, body)
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully created wiki \"%s\"", wiki.Name), data{"wiki": wiki}), nil
		},

		types.ActionUpdate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "wikiId") {
				return failure("Please specify a wiki ID to update"), nil
			}
			wikiID, err := intParam(params, "wikiId")
			if err != nil {
				return failure(err.Error()), nil
			}
			wiki, err := d.api.UpdateWiki(ctx, wikiID, without(params, "wikiId"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully updated wiki \"%s\"", wiki.Name), data{"wiki": wiki}), nil
		},

		types.ActionDelete: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "wikiId") {
				return failure("Please specify a wiki ID to delete"), nil
			}
			wikiID, err := intParam(params, "wikiId")
			if err != nil {
				return failure(err.Error()), nil
			}
			if _, err := d.api.DeleteWiki(ctx, wikiID); err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully deleted wiki %d", wikiID), nil), nil
		},

		types.ActionTags: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "projectIdOrKey") {
				return failure("Please specify a project ID or key to get wiki tags"), nil
			}
			projectIDOrKey := stringParam(params, "projectIdOrKey")
			tags, err := d.api.ListWikiTags(ctx, projectIDOrKey)
			if err != nil {
				return types.Result{}, err
			}
			if tags == nil {
				tags = []types.WikiTag{}
			}
			return success(fmt.Sprintf("I found %d wiki tags in project %s:", len(tags), projectIDOrKey), data{"tags": tags}), nil
		},
	}
}
