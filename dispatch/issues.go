package dispatch

import (
	"context"
	"fmt"

	"github.com/bluefunda/backlogr/types"
)

func (d *Dispatcher) issueHandlers() handlerSet {
	return handlerSet{
		types.ActionList:       d.listIssues,
		types.ActionGet:        d.getIssue,
		types.ActionCreate:     d.createIssue,
		types.ActionUpdate:     d.updateIssue,
		types.ActionDelete:     d.deleteIssue,
		types.ActionComments:   d.listIssueComments,
		types.ActionAddComment: d.addIssueComment,
	}
}

// listIssues resolves the project first when one is named, so the result can
// carry the project name and the filter can use the numeric id.
func (d *Dispatcher) listIssues(ctx context.Context, params map[string]interface{}) (types.Result, error) {
	if !present(params, "projectIdOrKey") {
		issues, err := d.api.ListIssues(ctx, nil)
		if err != nil {
			return types.Result{}, err
		}
		if issues == nil {
			issues = []types.Issue{}
		}
		return success(fmt.Sprintf("I found %d issues across all projects:", len(issues)), data{"issues": issues}), nil
	}

	project, err := d.api.GetProject(ctx, stringParam(params, "projectIdOrKey"))
	if err != nil {
		return types.Result{}, err
	}

	issues, err := d.api.ListIssues(ctx, map[string]interface{}{"projectId": []int{project.ID}})
	if err != nil {
		return types.Result{}, err
	}
	if issues == nil {
		issues = []types.Issue{}
	}

	return success(fmt.Sprintf("I found %d issues in project %s:", len(issues), project.Name),
		data{"issues": issues, "projectName": project.Name}), nil
}

func (d *Dispatcher) getIssue(ctx context.Context, params map[string]interface{}) (types.Result, error) {
	if !present(params, "issueIdOrKey") {
		return failure("Please specify an issue ID or key"), nil
	}
	issue, err := d.api.GetIssue(ctx, stringParam(params, "issueIdOrKey"))
	if err != nil {
		return types.Result{}, err
	}
	return success(fmt.Sprintf("Here's information about issue %s:", issue.IssueKey), data{"issue": issue}), nil
}

// createIssue is a compound action: get project, get its issue types, then
// create the issue with the first issue type and the default priority.
func (d *Dispatcher) createIssue(ctx context.Context, params map[string]interface{}) (types.Result, error) {
	if !present(params, "projectIdOrKey") {
		return failure("Please specify a project ID or key"), nil
	}
	if !present(params, "summary") {
		return failure("Please provide a summary for the issue"), nil
	}

	projectIDOrKey := stringParam(params, "projectIdOrKey")

	project, err := d.api.GetProject(ctx, projectIDOrKey)
	if err != nil {
		return types.Result{}, err
	}

	issueTypes, err := d.api.ListIssueTypes(ctx, projectIDOrKey)
	if err != nil {
		return types.Result{}, err
	}
	if len(issueTypes) == 0 {
		return failure("No issue types found for this project"), nil
	}

	issue, err := d.api.CreateIssue(ctx, map[string]interface{}{
		"projectId":   project.ID,
		"summary":     stringParam(params, "summary"),
		"description": stringParam(params, "description"),
		"issueTypeId": issueTypes[0].ID,
		"priorityId":  defaultPriorityID,
	})
	if err != nil {
		return types.Result{}, err
	}

	return success(fmt.Sprintf("Successfully created issue \"%s\" with key %s", issue.Summary, issue.IssueKey),
		data{"issue": issue}), nil
}

func (d *Dispatcher) updateIssue(ctx context.Context, params map[string]interface{}) (types.Result, error) {
	if !present(params, "issueIdOrKey") {
		return failure("Please specify an issue ID or key to update"), nil
	}
	issue, err := d.api.UpdateIssue(ctx, stringParam(params, "issueIdOrKey"), without(params, "issueIdOrKey"))
	if err != nil {
		return types.Result{}, err
	}
	return success(fmt.Sprintf("Successfully updated issue %s", issue.IssueKey), data{"issue": issue}), nil
}

func (d *Dispatcher) deleteIssue(ctx context.Context, params map[string]interface{}) (types.Result, error) {
	if !present(params, "issueIdOrKey") {
		return failure("Please specify an issue ID or key to delete"), nil
	}
	issueIDOrKey := stringParam(params, "issueIdOrKey")
	if _, err := d.api.DeleteIssue(ctx, issueIDOrKey); err != nil {
		return types.Result{}, err
	}
	return success(fmt.Sprintf("Successfully deleted issue %s", issueIDOrKey), nil), nil
}

func (d *Dispatcher) listIssueComments(ctx context.Context, params map[string]interface{}) (types.Result, error) {
	if !present(params, "issueIdOrKey") {
		return failure("Please specify an issue ID or key to get comments"), nil
	}
	issueIDOrKey := stringParam(params, "issueIdOrKey")
	comments, err := d.api.ListIssueComments(ctx, issueIDOrKey)
	if err != nil {
		return types.Result{}, err
	}
	if comments == nil {
		comments = []types.Comment{}
	}
	return success(fmt.Sprintf("I found %d comments for issue %s:", len(comments), issueIDOrKey),
		data{"comments": comments, "issueIdOrKey": issueIDOrKey}), nil
}

func (d *Dispatcher) addIssueComment(ctx context.Context, params map[string]interface{}) (types.Result, error) {
	if !present(params, "issueIdOrKey") {
		return failure("Please specify an issue ID or key to add a comment"), nil
	}
	if !present(params, "content") {
		return failure("Please provide content for the comment"), nil
	}
	issueIDOrKey := stringParam(params, "issueIdOrKey")
	comment, err := d.api.AddIssueComment(ctx, issueIDOrKey, stringParam(params, "content"))
	if err != nil {
		return types.Result{}, err
	}
	return success(fmt.Sprintf("Successfully added comment to issue %s", issueIDOrKey), data{"comment": comment}), nil
}
