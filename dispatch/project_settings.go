package dispatch

import (
	"context"
	"fmt"

	"github.com/bluefunda/backlogr/types"
)

// Handlers for resources nested under a project. Updates and deletes take the
// project id-or-key straight into the path without resolving it first.

func (d *Dispatcher) milestoneHandlers() handlerSet {
	return handlerSet{
		types.ActionList: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "projectIdOrKey") {
				return failure("Please specify a project ID or key"), nil
			}
			projectIDOrKey := stringParam(params, "projectIdOrKey")
			milestones, err := d.api.ListMilestones(ctx, projectIDOrKey)
			if err != nil {
				return types.Result{}, err
			}
			if milestones == nil {
				milestones = []types.Milestone{}
			}
			return success(fmt.Sprintf("I found %d milestones in project %s:", len(milestones), projectIDOrKey),
				data{"milestones": milestones}), nil
		},

		types.ActionCreate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "name") {
				return failure("Please provide a project ID/key and name for the milestone"), nil
			}
			milestone, err := d.api.CreateMilestone(ctx, stringParam(params, "projectIdOrKey"),
				pick(params, "name", "description", "startDate", "releaseDueDate"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully created milestone \"%s\"", milestone.Name), data{"milestone": milestone}), nil
		},

		types.ActionUpdate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "versionId") {
				return failure("Please specify a project ID/key and version ID to update"), nil
			}
			versionID, err := intParam(params, "versionId")
			if err != nil {
				return failure(err.Error()), nil
			}
			milestone, err := d.api.UpdateMilestone(ctx, stringParam(params, "projectIdOrKey"), versionID,
				without(params, "projectIdOrKey", "versionId"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully updated milestone \"%s\"", milestone.Name), data{"milestone": milestone}), nil
		},

		types.ActionDelete: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "versionId") {
				return failure("Please specify a project ID/key and version ID to delete"), nil
			}
			versionID, err := intParam(params, "versionId")
			if err != nil {
				return failure(err.Error()), nil
			}
			if _, err := d.api.DeleteMilestone(ctx, stringParam(params, "projectIdOrKey"), versionID); err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully deleted milestone with ID %d", versionID), nil), nil
		},
	}
}

func (d *Dispatcher) categoryHandlers() handlerSet {
	return handlerSet{
		types.ActionList: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "projectIdOrKey") {
				return failure("Please specify a project ID or key"), nil
			}
			projectIDOrKey := stringParam(params, "projectIdOrKey")
			categories, err := d.api.ListCategories(ctx, projectIDOrKey)
			if err != nil {
				return types.Result{}, err
			}
			if categories == nil {
				categories = []types.Category{}
			}
			return success(fmt.Sprintf("I found %d categories in project %s:", len(categories), projectIDOrKey),
				data{"categories": categories}), nil
		},

		types.ActionCreate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "name") {
				return failure("Please provide a project ID/key and name for the category"), nil
			}
			category, err := d.api.CreateCategory(ctx, stringParam(params, "projectIdOrKey"), stringParam(params, "name"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully created category \"%s\"", category.Name), data{"category": category}), nil
		},

		types.ActionUpdate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "categoryId", "name") {
				return failure("Please specify a project ID/key, category ID, and new name"), nil
			}
			categoryID, err := intParam(params, "categoryId")
			if err != nil {
				return failure(err.Error()), nil
			}
			category, err := d.api.UpdateCategory(ctx, stringParam(params, "projectIdOrKey"), categoryID, stringParam(params, "name"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully updated category to \"%s\"", category.Name), data{"category": category}), nil
		},

		types.ActionDelete: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "categoryId") {
				return failure("Please specify a project ID/key and category ID to delete"), nil
			}
			categoryID, err := intParam(params, "categoryId")
			if err != nil {
				return failure(err.Error()), nil
			}
			if _, err := d.api.DeleteCategory(ctx, stringParam(params, "projectIdOrKey"), categoryID); err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully deleted category with ID %d", categoryID), nil), nil
		},
	}
}

func (d *Dispatcher) issueTypeHandlers() handlerSet {
	return handlerSet{
		types.ActionList: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "projectIdOrKey") {
				return failure("Please specify a project ID or key"), nil
			}
			projectIDOrKey := stringParam(params, "projectIdOrKey")
			issueTypes, err := d.api.ListIssueTypes(ctx, projectIDOrKey)
			if err != nil {
				return types.Result{}, err
			}
			if issueTypes == nil {
				issueTypes = []types.IssueType{}
			}
			return success(fmt.Sprintf("I found %d issue types in project %s:", len(issueTypes), projectIDOrKey),
				data{"issueTypes": issueTypes}), nil
		},

		types.ActionCreate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "name", "color") {
				return failure("Please provide a project ID/key, name, and color for the issue type"), nil
			}
			issueType, err := d.api.CreateIssueType(ctx, stringParam(params, "projectIdOrKey"), pick(params, "name", "color"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully created issue type \"%s\"", issueType.Name), data{"issueType": issueType}), nil
		},

		types.ActionUpdate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "issueTypeId") {
				return failure("Please specify a project ID/key and issue type ID"), nil
			}
			issueTypeID, err := intParam(params, "issueTypeId")
			if err != nil {
				return failure(err.Error()), nil
			}
			issueType, err := d.api.UpdateIssueType(ctx, stringParam(params, "projectIdOrKey"), issueTypeID,
				without(params, "projectIdOrKey", "issueTypeId"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully updated issue type to \"%s\"", issueType.Name), data{"issueType": issueType}), nil
		},

		types.ActionDelete: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "issueTypeId", "substituteIssueTypeId") {
				return failure("Please specify a project ID/key, issue type ID to delete, and substitute issue type ID"), nil
			}
			ids, err := ints(params, "issueTypeId", "substituteIssueTypeId")
			if err != nil {
				return failure(err.Error()), nil
			}
			if _, err := d.api.DeleteIssueType(ctx, stringParam(params, "projectIdOrKey"), ids[0], ids[1]); err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully deleted issue type with ID %d", ids[0]), nil), nil
		},
	}
}

func (d *Dispatcher) customFieldHandlers() handlerSet {
	return handlerSet{
		types.ActionList: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "projectIdOrKey") {
				return failure("Please specify a project ID or key"), nil
			}
			projectIDOrKey := stringParam(params, "projectIdOrKey")
			customFields, err := d.api.ListCustomFields(ctx, projectIDOrKey)
			if err != nil {
				return types.Result{}, err
			}
			if customFields == nil {
				customFields = []types.CustomField{}
			}
			return success(fmt.Sprintf("I found %d custom fields in project %s:", len(customFields), projectIDOrKey),
				data{"customFields": customFields}), nil
		},

		types.ActionCreate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "typeId", "name") {
				return failure("Please provide a project ID/key, type ID, and name for the custom field"), nil
			}
			typeID, err := intParam(params, "typeId")
			if err != nil {
				return failure(err.Error()), nil
			}
			body := without(params, "projectIdOrKey")
			body["typeId"] = typeID

			customField, err := d.api.CreateCustomField(ctx, stringParam(params, "projectIdOrKey"), body)
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully created custom field \"%s\"", customField.Name), data{"customField": customField}), nil
		},

		types.ActionUpdate: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "customFieldId") {
				return failure("Please specify a project ID/key and custom field ID"), nil
			}
			customFieldID, err := intParam(params, "customFieldId")
			if err != nil {
				return failure(err.Error()), nil
			}
			customField, err := d.api.UpdateCustomField(ctx, stringParam(params, "projectIdOrKey"), customFieldID,
				without(params, "projectIdOrKey", "customFieldId"))
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully updated custom field \"%s\"", customField.Name), data{"customField": customField}), nil
		},

		types.ActionDelete: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !presentAll(params, "projectIdOrKey", "customFieldId") {
				return failure("Please specify a project ID/key and custom field ID to delete"), nil
			}
			customFieldID, err := intParam(params, "customFieldId")
			if err != nil {
				return failure(err.Error()), nil
			}
			if _, err := d.api.DeleteCustomField(ctx, stringParam(params, "projectIdOrKey"), customFieldID); err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Successfully deleted custom field with ID %d", customFieldID), nil), nil
		},
	}
}
