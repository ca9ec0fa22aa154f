package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bluefunda/backlogr/backlog"
	"github.com/bluefunda/backlogr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allActions = []types.Action{
	types.ActionList, types.ActionGet, types.ActionCreate, types.ActionUpdate, types.ActionDelete,
	types.ActionComments, types.ActionAddComment, types.ActionActivities, types.ActionTags,
	types.ActionNotification, types.ActionUpdateNotification, "frobnicate",
}

func dispatch(t *testing.T, api *fakeAPI, entityType types.EntityType, action types.Action, params map[string]interface{}) types.Result {
	t.Helper()
	return New(api, nil).Dispatch(context.Background(), types.Intent{Type: entityType, Action: action, Params: params})
}

func TestHandlerTableMatchesCatalog(t *testing.T) {
	t.Parallel()

	d := New(newFakeAPI(), nil)

	inCatalog := map[types.EntityType]map[types.Action]bool{}
	for _, entry := range types.Commands {
		assert.Truef(t, d.Supports(entry.Type, entry.Action), "missing handler for %s:%s", entry.Type, entry.Action)
		if inCatalog[entry.Type] == nil {
			inCatalog[entry.Type] = map[types.Action]bool{}
		}
		inCatalog[entry.Type][entry.Action] = true
	}

	for entityType, set := range d.handlers {
		catalogType := entityType
		if entityType == types.EntityVersions {
			catalogType = types.EntityMilestones
		}
		for action := range set {
			assert.Truef(t, inCatalog[catalogType][action], "handler %s:%s is not in the catalog", entityType, action)
		}
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	t.Parallel()

	d := New(newFakeAPI(), nil)
	for entityType := range d.handlers {
		for _, action := range allActions {
			if d.Supports(entityType, action) {
				continue
			}
			api := newFakeAPI()
			res := dispatch(t, api, entityType, action, map[string]interface{}{})
			assert.False(t, res.Success)
			assert.Equal(t, fmt.Sprintf("I don't know how to %s %s.", action, entityType), res.Message)
			assert.Empty(t, api.methods())
		}
	}
}

func TestDispatchUnknownType(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	res := dispatch(t, api, "unknown", types.ActionList, nil)

	assert.False(t, res.Success)
	assert.Equal(t, "I don't know how to handle 'unknown' commands.", res.Message)
	assert.Empty(t, api.methods())
}

func TestDispatchNotConfigured(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.configured = false

	intents := []types.Intent{{Type: "unknown", Action: "list"}}
	for _, entry := range types.Commands {
		params := map[string]interface{}{}
		for _, k := range entry.Required {
			params[k] = "1"
		}
		intents = append(intents, types.Intent{Type: entry.Type, Action: entry.Action, Params: params})
	}

	d := New(api, nil)
	for _, intent := range intents {
		res := d.Dispatch(context.Background(), intent)
		assert.Equal(t, types.Result{Success: false, Message: NotConfiguredMessage}, res)
	}
	assert.Empty(t, api.methods())
}

func TestDispatchMissingRequiredParams(t *testing.T) {
	t.Parallel()

	for _, entry := range types.Commands {
		if len(entry.Required) == 0 {
			continue
		}
		entry := entry
		t.Run(fmt.Sprintf("%s_%s", entry.Type, entry.Action), func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI()
			res := dispatch(t, api, entry.Type, entry.Action, map[string]interface{}{})

			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Message)
			assert.Empty(t, api.methods())
		})
	}
}

func TestDispatchProjectsGetWithoutKey(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	res := dispatch(t, api, types.EntityProjects, types.ActionGet, map[string]interface{}{})

	assert.Equal(t, types.Result{Success: false, Message: "Please specify a project ID or key"}, res)
	assert.Empty(t, api.methods())
}

func TestDispatchProjectsListEmpty(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	res := dispatch(t, api, types.EntityProjects, types.ActionList, map[string]interface{}{})

	assert.True(t, res.Success)
	assert.Equal(t, "I found 0 projects:", res.Message)
	assert.Equal(t, data{"projects": []types.Project{}}, res.Data)
}

func TestDispatchIssueGet(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.issue = &types.Issue{ID: 10, IssueKey: "TEST-1", Summary: "Broken"}

	res := dispatch(t, api, types.EntityIssues, types.ActionGet, map[string]interface{}{"issueIdOrKey": "TEST-1"})

	require.Len(t, api.calls, 1)
	assert.Equal(t, apiCall{Method: "GetIssue", Args: []interface{}{"TEST-1"}}, api.calls[0])
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "TEST-1")
}

func TestDispatchIssueCreateCompound(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.project = &types.Project{ID: 7, ProjectKey: "DEF", Name: "Default"}
	api.issueTypes = []types.IssueType{{ID: 5, Name: "Bug"}, {ID: 6, Name: "Task"}}
	api.issue = &types.Issue{ID: 99, IssueKey: "DEF-1", Summary: "Fix bug"}

	res := dispatch(t, api, types.EntityIssues, types.ActionCreate, map[string]interface{}{
		"projectIdOrKey": "DEF",
		"summary":        "Fix bug",
	})

	assert.Equal(t, []string{"GetProject", "ListIssueTypes", "CreateIssue"}, api.methods())
	assert.Equal(t, []interface{}{"DEF"}, api.calls[0].Args)
	assert.Equal(t, []interface{}{"DEF"}, api.calls[1].Args)
	assert.Equal(t, map[string]interface{}{
		"projectId":   7,
		"summary":     "Fix bug",
		"description": "",
		"issueTypeId": 5,
		"priorityId":  defaultPriorityID,
	}, api.calls[2].Args[0])

	assert.True(t, res.Success)
	assert.Equal(t, `Successfully created issue "Fix bug" with key DEF-1`, res.Message)
}

func TestDispatchIssueCreateWithoutIssueTypes(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	res := dispatch(t, api, types.EntityIssues, types.ActionCreate, map[string]interface{}{
		"projectIdOrKey": "DEF",
		"summary":        "Fix bug",
	})

	assert.Equal(t, types.Result{Success: false, Message: "No issue types found for this project"}, res)
	assert.Equal(t, []string{"GetProject", "ListIssueTypes"}, api.methods())
}

func TestDispatchIssueListByProject(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.project = &types.Project{ID: 7, ProjectKey: "DEF", Name: "Default"}
	api.issues = []types.Issue{{ID: 1, IssueKey: "DEF-1"}, {ID: 2, IssueKey: "DEF-2"}}

	res := dispatch(t, api, types.EntityIssues, types.ActionList, map[string]interface{}{"projectIdOrKey": "DEF"})

	assert.Equal(t, []string{"GetProject", "ListIssues"}, api.methods())
	assert.Equal(t, map[string]interface{}{"projectId": []int{7}}, api.calls[1].Args[0])
	assert.Equal(t, "I found 2 issues in project Default:", res.Message)
	assert.Equal(t, "Default", res.Data.(data)["projectName"])
}

func TestDispatchIssueListAllProjects(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	res := dispatch(t, api, types.EntityIssues, types.ActionList, nil)

	assert.Equal(t, []string{"ListIssues"}, api.methods())
	assert.Equal(t, "I found 0 issues across all projects:", res.Message)
}

func TestDispatchUpstreamError(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.err = errors.New("API error")

	res := dispatch(t, api, types.EntityProjects, types.ActionList, nil)

	assert.Equal(t, types.Result{Success: false, Message: "Error executing command: API error"}, res)
}

func TestDispatchNotConfiguredFromClient(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.err = fmt.Errorf("request: %w", backlog.ErrNotConfigured)

	res := dispatch(t, api, types.EntitySpace, types.ActionGet, nil)

	assert.Equal(t, NotConfiguredMessage, res.Message)
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.project = nil

	res := dispatch(t, api, types.EntityProjects, types.ActionGet, map[string]interface{}{"projectIdOrKey": "DEF"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Error executing command: ")
}

func TestDispatchNumericCoercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value interface{}
		want  int
	}{
		{"string", "42", 42},
		{"json number", float64(42), 42},
		{"int", 42, 42},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI()
			res := dispatch(t, api, types.EntityUsers, types.ActionGet, map[string]interface{}{"userId": tt.value})

			require.True(t, res.Success)
			assert.Equal(t, []interface{}{tt.want}, api.calls[0].Args)
		})
	}
}

func TestDispatchInvalidNumber(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	res := dispatch(t, api, types.EntityUsers, types.ActionGet, map[string]interface{}{"userId": "abc"})

	assert.Equal(t, types.Result{Success: false, Message: `userId must be a number, got "abc"`}, res)
	assert.Empty(t, api.methods())
}

func TestDispatchZeroIDIsMissing(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	res := dispatch(t, api, types.EntityUsers, types.ActionGet, map[string]interface{}{"userId": float64(0)})

	assert.Equal(t, "Please specify a user ID", res.Message)
	assert.Empty(t, api.methods())
}

func TestDispatchDoesNotMutateParams(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	params := map[string]interface{}{"issueIdOrKey": "PRJ-1", "summary": "New summary"}

	res := dispatch(t, api, types.EntityIssues, types.ActionUpdate, params)

	require.True(t, res.Success)
	assert.Equal(t, map[string]interface{}{"issueIdOrKey": "PRJ-1", "summary": "New summary"}, params)
	assert.Equal(t, []interface{}{"PRJ-1", map[string]interface{}{"summary": "New summary"}}, api.calls[0].Args)
}

func TestDispatchVersionsAlias(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.milestones = []types.Milestone{{ID: 1, Name: "v1"}}

	res := dispatch(t, api, types.EntityVersions, types.ActionList, map[string]interface{}{"projectIdOrKey": "DEF"})

	assert.Equal(t, "I found 1 milestones in project DEF:", res.Message)
	assert.Equal(t, []string{"ListMilestones"}, api.methods())
}

func TestDispatchSubResourceCalls(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		entityType  types.EntityType
		action      types.Action
		params      map[string]interface{}
		wantCall    apiCall
		wantMessage string
	}{
		{
			name:        "delete milestone",
			entityType:  types.EntityMilestones,
			action:      types.ActionDelete,
			params:      map[string]interface{}{"projectIdOrKey": "DEF", "versionId": "3"},
			wantCall:    apiCall{Method: "DeleteMilestone", Args: []interface{}{"DEF", 3}},
			wantMessage: "Successfully deleted milestone with ID 3",
		},
		{
			name:        "rename category",
			entityType:  types.EntityCategories,
			action:      types.ActionUpdate,
			params:      map[string]interface{}{"projectIdOrKey": "DEF", "categoryId": float64(4), "name": "Backend"},
			wantCall:    apiCall{Method: "UpdateCategory", Args: []interface{}{"DEF", 4, "Backend"}},
			wantMessage: `Successfully updated category to "Category"`,
		},
		{
			name:       "delete issue type",
			entityType: types.EntityIssueTypes,
			action:     types.ActionDelete,
			params: map[string]interface{}{
				"projectIdOrKey": "DEF", "issueTypeId": "5", "substituteIssueTypeId": "6",
			},
			wantCall:    apiCall{Method: "DeleteIssueType", Args: []interface{}{"DEF", 5, 6}},
			wantMessage: "Successfully deleted issue type with ID 5",
		},
		{
			name:       "create custom field",
			entityType: types.EntityCustomFields,
			action:     types.ActionCreate,
			params:     map[string]interface{}{"projectIdOrKey": "DEF", "typeId": "1", "name": "Severity"},
			wantCall: apiCall{Method: "CreateCustomField", Args: []interface{}{
				"DEF", map[string]interface{}{"typeId": 1, "name": "Severity"},
			}},
			wantMessage: `Successfully created custom field "Field"`,
		},
		{
			name:       "create wiki",
			entityType: types.EntityWikis,
			action:     types.ActionCreate,
			params:     map[string]interface{}{"projectId": "7", "name": "Home", "content": "Welcome"},
			wantCall: apiCall{Method: "CreateWiki", Args: []interface{}{
				map[string]interface{}{"projectId": 7, "name": "Home", "content": "Welcome"},
			}},
			wantMessage: `Successfully created wiki "Wiki"`,
		},
		{
			name:        "add comment",
			entityType:  types.EntityIssues,
			action:      types.ActionAddComment,
			params:      map[string]interface{}{"issueIdOrKey": "DEF-1", "content": "Looks good"},
			wantCall:    apiCall{Method: "AddIssueComment", Args: []interface{}{"DEF-1", "Looks good"}},
			wantMessage: "Successfully added comment to issue DEF-1",
		},
		{
			name:        "update notification",
			entityType:  types.EntitySpace,
			action:      types.ActionUpdateNotification,
			params:      map[string]interface{}{"content": "Maintenance tonight"},
			wantCall:    apiCall{Method: "UpdateSpaceNotification", Args: []interface{}{"Maintenance tonight"}},
			wantMessage: "Successfully updated space notification",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI()
			res := dispatch(t, api, tt.entityType, tt.action, tt.params)

			require.True(t, res.Success, res.Message)
			require.Len(t, api.calls, 1)
			assert.Equal(t, tt.wantCall, api.calls[0])
			assert.Equal(t, tt.wantMessage, res.Message)
		})
	}
}
