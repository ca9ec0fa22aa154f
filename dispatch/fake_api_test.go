package dispatch

import (
	"context"
	"sync"

	"github.com/bluefunda/backlogr/types"
)

type apiCall struct {
	Method string
	Args   []interface{}
}

// fakeAPI records calls and answers from its fields
type fakeAPI struct {
	mu         sync.Mutex
	configured bool
	calls      []apiCall
	err        error

	projects     []types.Project
	project      *types.Project
	issues       []types.Issue
	issue        *types.Issue
	comments     []types.Comment
	comment      *types.Comment
	users        []types.User
	user         *types.User
	activities   []types.Activity
	wikis        []types.Wiki
	wiki         *types.Wiki
	wikiTags     []types.WikiTag
	milestones   []types.Milestone
	milestone    *types.Milestone
	categories   []types.Category
	category     *types.Category
	issueTypes   []types.IssueType
	issueType    *types.IssueType
	customFields []types.CustomField
	customField  *types.CustomField
	space        *types.Space
	notification *types.SpaceNotification
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		configured:   true,
		project:      &types.Project{ID: 1, ProjectKey: "PRJ", Name: "Project"},
		issue:        &types.Issue{ID: 1, IssueKey: "PRJ-1", Summary: "Issue"},
		comment:      &types.Comment{ID: 1, Content: "comment"},
		user:         &types.User{ID: 1, Name: "User"},
		wiki:         &types.Wiki{ID: 1, Name: "Wiki"},
		milestone:    &types.Milestone{ID: 1, Name: "Milestone"},
		category:     &types.Category{ID: 1, Name: "Category"},
		issueType:    &types.IssueType{ID: 1, Name: "Bug"},
		customField:  &types.CustomField{ID: 1, Name: "Field"},
		space:        &types.Space{SpaceKey: "space", Name: "Space"},
		notification: &types.SpaceNotification{Content: "hello"},
	}
}

func (f *fakeAPI) record(method string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{Method: method, Args: args})
	return f.err
}

func (f *fakeAPI) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method)
	}
	return out
}

func (f *fakeAPI) IsConfigured() bool { return f.configured }

func (f *fakeAPI) ListProjects(ctx context.Context) ([]types.Project, error) {
	return f.projects, f.record("ListProjects")
}

func (f *fakeAPI) GetProject(ctx context.Context, projectIDOrKey string) (*types.Project, error) {
	return f.project, f.record("GetProject", projectIDOrKey)
}

func (f *fakeAPI) CreateProject(ctx context.Context, params map[string]interface{}) (*types.Project, error) {
	return f.project, f.record("CreateProject", params)
}

func (f *fakeAPI) UpdateProject(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*types.Project, error) {
	return f.project, f.record("UpdateProject", projectIDOrKey, params)
}

func (f *fakeAPI) DeleteProject(ctx context.Context, projectIDOrKey string) (*types.Project, error) {
	return f.project, f.record("DeleteProject", projectIDOrKey)
}

func (f *fakeAPI) ListIssues(ctx context.Context, params map[string]interface{}) ([]types.Issue, error) {
	return f.issues, f.record("ListIssues", params)
}

func (f *fakeAPI) GetIssue(ctx context.Context, issueIDOrKey string) (*types.Issue, error) {
	return f.issue, f.record("GetIssue", issueIDOrKey)
}

func (f *fakeAPI) CreateIssue(ctx context.Context, params map[string]interface{}) (*types.Issue, error) {
	return f.issue, f.record("CreateIssue", params)
}

func (f *fakeAPI) UpdateIssue(ctx context.Context, issueIDOrKey string, params map[string]interface{}) (*types.Issue, error) {
	return f.issue, f.record("UpdateIssue", issueIDOrKey, params)
}

func (f *fakeAPI) DeleteIssue(ctx context.Context, issueIDOrKey string) (*types.Issue, error) {
	return f.issue, f.record("DeleteIssue", issueIDOrKey)
}

func (f *fakeAPI) ListIssueComments(ctx context.Context, issueIDOrKey string) ([]types.Comment, error) {
	return f.comments, f.record("ListIssueComments", issueIDOrKey)
}

func (f *fakeAPI) AddIssueComment(ctx context.Context, issueIDOrKey, content string) (*types.Comment, error) {
	return f.comment, f.record("AddIssueComment", issueIDOrKey, content)
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]types.User, error) {
	return f.users, f.record("ListUsers")
}

func (f *fakeAPI) GetUser(ctx context.Context, userID int) (*types.User, error) {
	return f.user, f.record("GetUser", userID)
}

func (f *fakeAPI) ListUserActivities(ctx context.Context, userID int) ([]types.Activity, error) {
	return f.activities, f.record("ListUserActivities", userID)
}

func (f *fakeAPI) ListWikis(ctx context.Context, projectIDOrKey string) ([]types.Wiki, error) {
	return f.wikis, f.record("ListWikis", projectIDOrKey)
}

func (f *fakeAPI) GetWiki(ctx context.Context, wikiID int) (*types.Wiki, error) {
	return f.wiki, f.record("GetWiki", wikiID)
}

func (f *fakeAPI) CreateWiki(ctx context.Context, params map[string]interface{}) (*types.Wiki, error) {
	return f.wiki, f.record("CreateWiki", params)
}

func (f *fakeAPI) UpdateWiki(ctx context.Context, wikiID int, params map[string]interface{}) (*types.Wiki, error) {
	return f.wiki, f.record("UpdateWiki", wikiID, params)
}

func (f *fakeAPI) DeleteWiki(ctx context.Context, wikiID int) (*types.Wiki, error) {
	return f.wiki, f.record("DeleteWiki", wikiID)
}

func (f *fakeAPI) ListWikiTags(ctx context.Context, projectIDOrKey string) ([]types.WikiTag, error) {
	return f.wikiTags, f.record("ListWikiTags", projectIDOrKey)
}

func (f *fakeAPI) ListMilestones(ctx context.Context, projectIDOrKey string) ([]types.Milestone, error) {
	return f.milestones, f.record("ListMilestones", projectIDOrKey)
}

func (f *fakeAPI) CreateMilestone(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*types.Milestone, error) {
	return f.milestone, f.record("CreateMilestone", projectIDOrKey, params)
}

func (f *fakeAPI) UpdateMilestone(ctx context.Context, projectIDOrKey string, versionID int, params map[string]interface{}) (*types.Milestone, error) {
	return f.milestone, f.record("UpdateMilestone", projectIDOrKey, versionID, params)
}

func (f *fakeAPI) DeleteMilestone(ctx context.Context, projectIDOrKey string, versionID int) (*types.Milestone, error) {
	return f.milestone, f.record("DeleteMilestone", projectIDOrKey, versionID)
}

func (f *fakeAPI) ListCategories(ctx context.Context, projectIDOrKey string) ([]types.Category, error) {
	return f.categories, f.record("ListCategories", projectIDOrKey)
}

func (f *fakeAPI) CreateCategory(ctx context.Context, projectIDOrKey, name string) (*types.Category, error) {
	return f.category, f.record("CreateCategory", projectIDOrKey, name)
}

func (f *fakeAPI) UpdateCategory(ctx context.Context, projectIDOrKey string, categoryID int, name string) (*types.Category, error) {
	return f.category, f.record("UpdateCategory", projectIDOrKey, categoryID, name)
}

func (f *fakeAPI) DeleteCategory(ctx context.Context, projectIDOrKey string, categoryID int) (*types.Category, error) {
	return f.category, f.record("DeleteCategory", projectIDOrKey, categoryID)
}

func (f *fakeAPI) ListIssueTypes(ctx context.Context, projectIDOrKey string) ([]types.IssueType, error) {
	return f.issueTypes, f.record("ListIssueTypes", projectIDOrKey)
}

func (f *fakeAPI) CreateIssueType(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*types.IssueType, error) {
	return f.issueType, f.record("CreateIssueType", projectIDOrKey, params)
}

func (f *fakeAPI) UpdateIssueType(ctx context.Context, projectIDOrKey string, issueTypeID int, params map[string]interface{}) (*types.IssueType, error) {
	return f.issueType, f.record("UpdateIssueType", projectIDOrKey, issueTypeID, params)
}

func (f *fakeAPI) DeleteIssueType(ctx context.Context, projectIDOrKey string, issueTypeID, substituteIssueTypeID int) (*types.IssueType, error) {
	return f.issueType, f.record("DeleteIssueType", projectIDOrKey, issueTypeID, substituteIssueTypeID)
}

func (f *fakeAPI) ListCustomFields(ctx context.Context, projectIDOrKey string) ([]types.CustomField, error) {
	return f.customFields, f.record("ListCustomFields", projectIDOrKey)
}

func (f *fakeAPI) CreateCustomField(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*types.CustomField, error) {
	return f.customField, f.record("CreateCustomField", projectIDOrKey, params)
}

func (f *fakeAPI) UpdateCustomField(ctx context.Context, projectIDOrKey string, customFieldID int, params map[string]interface{}) (*types.CustomField, error) {
	return f.customField, f.record("UpdateCustomField", projectIDOrKey, customFieldID, params)
}

func (f *fakeAPI) DeleteCustomField(ctx context.Context, projectIDOrKey string, customFieldID int) (*types.CustomField, error) {
	return f.customField, f.record("DeleteCustomField", projectIDOrKey, customFieldID)
}

func (f *fakeAPI) GetSpace(ctx context.Context) (*types.Space, error) {
	return f.space, f.record("GetSpace")
}

func (f *fakeAPI) ListSpaceActivities(ctx context.Context, params map[string]interface{}) ([]types.Activity, error) {
	return f.activities, f.record("ListSpaceActivities", params)
}

func (f *fakeAPI) GetSpaceNotification(ctx context.Context) (*types.SpaceNotification, error) {
	return f.notification, f.record("GetSpaceNotification")
}

func (f *fakeAPI) UpdateSpaceNotification(ctx context.Context, content string) (*types.SpaceNotification, error) {
	return f.notification, f.record("UpdateSpaceNotification", content)
}

var _ types.BacklogAPI = (*fakeAPI)(nil)
