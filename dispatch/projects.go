package dispatch

import (
	"context"
	"fmt"

	"github.com/bluefunda/backlogr/types"
)

// defaultPriorityID is the "Normal" priority in Backlog
const defaultPriorityID = 3

func (d *Dispatcher) projectHandlers() handlerSet {
	return handlerSet{
		types.ActionList: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			projects, err := d.api.ListProjects(ctx)
			if err != nil {
				return types.Result{}, err
			}
			if projects == nil {
				projects = []types.Project{}
			}
			return success(fmt.Sprintf("I found %d projects:", len(projects)), data{"projects": projects}), nil
		},

		types.ActionGet: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "projectIdOrKey") {
				return failure("Please specify a project ID or key"), nil
			}
			project, err := d.api.GetProject(ctx, stringParam(params, "projectIdOrKey"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Here's information about project %s:", project.Name), data{"project": project}), nil
		},

		types.ActionCreate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "name", "key") {
				return failure("Please provide a name and key for the project"), nil
			}
			project, err := d.api.CreateProject(ctx, without(params))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully created project \"%s\" with key %s", project.Name, project.ProjectKey),
				data{"project": project}), nil
		},

		types.ActionUpdate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "projectIdOrKey") {
				return failure("Please specify a project ID or key"), nil
			}
			project, err := d.api.UpdateProject(ctx, stringParam(params, "projectIdOrKey"), without(params, "projectIdOrKey"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully updated project \"%s\"", project.Name), data{"project": project}), nil
		},

		types.ActionDelete: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "projectIdOrKey") {
				return failure("Please specify a project ID or key to delete"), nil
			}
			projectIDOrKey := stringParam(params, "projectIdOrKey")
			if _, err := d.api.DeleteProject(ctx, projectIDOrKey); err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully deleted project %s", projectIDOrKey), nil), nil
		},
	}
}
