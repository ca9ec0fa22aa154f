package backlog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bluefunda/backlogr/types"
	"go.uber.org/zap"
)

// Backlog API v2 resource paths, relative to the gateway base URL
const (
	SpacePath             = "/space"
	SpaceActivitiesPath   = "/space/activities"
	SpaceNotificationPath = "/space/notification"
	ProjectsPath          = "/projects"
	IssuesPath            = "/issues"
	UsersPath             = "/users"
	WikisPath             = "/wikis"
	WikiTagsPath          = "/wikis/tags"
)

func projectPath(projectIDOrKey string) string {
	return ProjectsPath + "/" + url.PathEscape(projectIDOrKey)
}

func projectResourcePath(projectIDOrKey, resource string) string {
	return projectPath(projectIDOrKey) + "/" + resource
}

func projectResourceItemPath(projectIDOrKey, resource string, id int) string {
	return fmt.Sprintf("%s/%d", projectResourcePath(projectIDOrKey, resource), id)
}

func issuePath(issueIDOrKey string) string {
	return IssuesPath + "/" + url.PathEscape(issueIDOrKey)
}

// Space

func (c *Client) GetSpace(ctx context.Context) (*types.Space, error) {
	return callOne[types.Space](ctx, c, http.MethodGet, SpacePath, nil)
}

func (c *Client) ListSpaceActivities(ctx context.Context, params map[string]interface{}) ([]types.Activity, error) {
	return call[[]types.Activity](ctx, c, http.MethodGet, SpaceActivitiesPath, params)
}

func (c *Client) GetSpaceNotification(ctx context.Context) (*types.SpaceNotification, error) {
	return callOne[types.SpaceNotification](ctx, c, http.MethodGet, SpaceNotificationPath, nil)
}

func (c *Client) UpdateSpaceNotification(ctx context.Context, content string) (*types.SpaceNotification, error) {
	c.logger.Info("Updating space notification", zap.Int("content_length", len(content)))
	return callOne[types.SpaceNotification](ctx, c, http.MethodPut, SpaceNotificationPath,
		map[string]interface{}{"content": content})
}

// Projects

func (c *Client) ListProjects(ctx context.Context) ([]types.Project, error) {
	return call[[]types.Project](ctx, c, http.MethodGet, ProjectsPath, nil)
}

func (c *Client) GetProject(ctx context.Context, projectIDOrKey string) (*types.Project, error) {
	return callOne[types.Project](ctx, c, http.MethodGet, projectPath(projectIDOrKey), nil)
}

func (c *Client) CreateProject(ctx context.Context, params map[string]interface{}) (*types.Project, error) {
	c.logger.Info("Creating project", zap.Any("key", params["key"]))
	return callOne[types.Project](ctx, c, http.MethodPost, ProjectsPath, params)
}

func (c *Client) UpdateProject(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*types.Project, error) {
	c.logger.Info("Updating project", zap.String("project", projectIDOrKey))
	return callOne[types.Project](ctx, c, http.MethodPatch, projectPath(projectIDOrKey), params)
}

func (c *Client) DeleteProject(ctx context.Context, projectIDOrKey string) (*types.Project, error) {
	c.logger.Info("Deleting project", zap.String("project", projectIDOrKey))
	return call[*types.Project](ctx, c, http.MethodDelete, projectPath(projectIDOrKey), nil)
}

// Issues

func (c *Client) ListIssues(ctx context.Context, params map[string]interface{}) ([]types.Issue, error) {
	return call[[]types.Issue](ctx, c, http.MethodGet, IssuesPath, params)
}

func (c *Client) GetIssue(ctx context.Context, issueIDOrKey string) (*types.Issue, error) {
	return callOne[types.Issue](ctx, c, http.MethodGet, issuePath(issueIDOrKey), nil)
}

func (c *Client) CreateIssue(ctx context.Context, params map[string]interface{}) (*types.Issue, error) {
	c.logger.Info("Creating issue", zap.Any("project_id", params["projectId"]))
	return callOne[types.Issue](ctx, c, http.MethodPost, IssuesPath, params)
}

func (c *Client) UpdateIssue(ctx context.Context, issueIDOrKey string, params map[string]interface{}) (*types.Issue, error) {
	c.logger.Info("Updating issue", zap.String("issue", issueIDOrKey))
	return callOne[types.Issue](ctx, c, http.MethodPatch, issuePath(issueIDOrKey), params)
}

func (c *Client) DeleteIssue(ctx context.Context, issueIDOrKey string) (*types.Issue, error) {
	c.logger.Info("Deleting issue", zap.String("issue", issueIDOrKey))
	return call[*types.Issue](ctx, c, http.MethodDelete, issuePath(issueIDOrKey), nil)
}

func (c *Client) ListIssueComments(ctx context.Context, issueIDOrKey string) ([]types.Comment, error) {
	return call[[]types.Comment](ctx, c, http.MethodGet, issuePath(issueIDOrKey)+"/comments", nil)
}

func (c *Client) AddIssueComment(ctx context.Context, issueIDOrKey, content string) (*types.Comment, error) {
	c.logger.Info("Adding issue comment", zap.String("issue", issueIDOrKey))
	return callOne[types.Comment](ctx, c, http.MethodPost, issuePath(issueIDOrKey)+"/comments",
		map[string]interface{}{"content": content})
}

// Users

func (c *Client) ListUsers(ctx context.Context) ([]types.User, error) {
	return call[[]types.User](ctx, c, http.MethodGet, UsersPath, nil)
}

func (c *Client) GetUser(ctx context.Context, userID int) (*types.User, error) {
	return callOne[types.User](ctx, c, http.MethodGet, fmt.Sprintf("%s/%d", UsersPath, userID), nil)
}

func (c *Client) ListUserActivities(ctx context.Context, userID int) ([]types.Activity, error) {
	return call[[]types.Activity](ctx, c, http.MethodGet, fmt.Sprintf("%s/%d/activities", UsersPath, userID), nil)
}

// Wikis

func (c *Client) ListWikis(ctx context.Context, projectIDOrKey string) ([]types.Wiki, error) {
	return call[[]types.Wiki](ctx, c, http.MethodGet, WikisPath,
		map[string]interface{}{"projectIdOrKey": projectIDOrKey})
}

func (c *Client) GetWiki(ctx context.Context, wikiID int) (*types.Wiki, error) {
	return callOne[types.Wiki](ctx, c, http.MethodGet, fmt.Sprintf("%s/%d", WikisPath, wikiID), nil)
}

func (c *Client) CreateWiki(ctx context.Context, params map[string]interface{}) (*types.Wiki, error) {
	c.logger.Info("Creating wiki page", zap.Any("name", params["name"]))
	return callOne[types.Wiki](ctx, c, http.MethodPost, WikisPath, params)
}

func (c *Client) UpdateWiki(ctx context.Context, wikiID int, params map[string]interface{}) (*types.Wiki, error) {
	c.logger.Info("Updating wiki page", zap.Int("wiki_id", wikiID))
	return callOne[types.Wiki](ctx, c, http.MethodPatch, fmt.Sprintf("%s/%d", WikisPath, wikiID), params)
}

func (c *Client) DeleteWiki(ctx context.Context, wikiID int) (*types.Wiki, error) {
	c.logger.Info("Deleting wiki page", zap.Int("wiki_id", wikiID))
	return call[*types.Wiki](ctx, c, http.MethodDelete, fmt.Sprintf("%s/%d", WikisPath, wikiID), nil)
}

func (c *Client) ListWikiTags(ctx context.Context, projectIDOrKey string) ([]types.WikiTag, error) {
	return call[[]types.WikiTag](ctx, c, http.MethodGet, WikiTagsPath,
		map[string]interface{}{"projectIdOrKey": projectIDOrKey})
}

// Milestones (versions)

func (c *Client) ListMilestones(ctx context.Context, projectIDOrKey string) ([]types.Milestone, error) {
	return call[[]types.Milestone](ctx, c, http.MethodGet, projectResourcePath(projectIDOrKey, "versions"), nil)
}

func (c *Client) CreateMilestone(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*types.Milestone, error) {
	c.logger.Info("Creating milestone", zap.String("project", projectIDOrKey))
	return callOne[types.Milestone](ctx, c, http.MethodPost, projectResourcePath(projectIDOrKey, "versions"), params)
}

func (c *Client) UpdateMilestone(ctx context.Context, projectIDOrKey string, versionID int, params map[string]interface{}) (*types.Milestone, error) {
	c.logger.Info("Updating milestone", zap.String("project", projectIDOrKey), zap.Int("version_id", versionID))
	return callOne[types.Milestone](ctx, c, http.MethodPut, projectResourceItemPath(projectIDOrKey, "versions", versionID), params)
}

func (c *Client) DeleteMilestone(ctx context.Context, projectIDOrKey string, versionID int) (*types.Milestone, error) {
	c.logger.Info("Deleting milestone", zap.String("project", projectIDOrKey), zap.Int("version_id", versionID))
	return call[*types.Milestone](ctx, c, http.MethodDelete, projectResourceItemPath(projectIDOrKey, "versions", versionID), nil)
}

// Categories

func (c *Client) ListCategories(ctx context.Context, projectIDOrKey string) ([]types.Category, error) {
	return call[[]types.Category](ctx, c, http.MethodGet, projectResourcePath(projectIDOrKey, "categories"), nil)
}

func (c *Client) CreateCategory(ctx context.Context, projectIDOrKey, name string) (*types.Category, error) {
	c.logger.Info("Creating category", zap.String("project", projectIDOrKey), zap.String("name", name))
	return callOne[types.Category](ctx, c, http.MethodPost, projectResourcePath(projectIDOrKey, "categories"),
		map[string]interface{}{"name": name})
}

func (c *Client) UpdateCategory(ctx context.Context, projectIDOrKey string, categoryID int, name string) (*types.Category, error) {
	c.logger.Info("Updating category", zap.String("project", projectIDOrKey), zap.Int("category_id", categoryID))
	return callOne[types.Category](ctx, c, http.MethodPut, projectResourceItemPath(projectIDOrKey, "categories", categoryID),
		map[string]interface{}{"name": name})
}

func (c *Client) DeleteCategory(ctx context.Context, projectIDOrKey string, categoryID int) (*types.Category, error) {
	c.logger.Info("Deleting category", zap.String("project", projectIDOrKey), zap.Int("category_id", categoryID))
	return call[*types.Category](ctx, c, http.MethodDelete, projectResourceItemPath(projectIDOrKey, "categories", categoryID), nil)
}

// Issue types

func (c *Client) ListIssueTypes(ctx context.Context, projectIDOrKey string) ([]types.IssueType, error) {
	return call[[]types.IssueType](ctx, c, http.MethodGet, projectResourcePath(projectIDOrKey, "issueTypes"), nil)
}

func (c *Client) CreateIssueType(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*types.IssueType, error) {
	c.logger.Info("Creating issue type", zap.String("project", projectIDOrKey))
	return callOne[types.IssueType](ctx, c, http.MethodPost, projectResourcePath(projectIDOrKey, "issueTypes"), params)
}

func (c *Client) UpdateIssueType(ctx context.Context, projectIDOrKey string, issueTypeID int, params map[string]interface{}) (*types.IssueType, error) {
	c.logger.Info("Updating issue type", zap.String("project", projectIDOrKey), zap.Int("issue_type_id", issueTypeID))
	return callOne[types.IssueType](ctx, c, http.MethodPut, projectResourceItemPath(projectIDOrKey, "issueTypes", issueTypeID), params)
}

func (c *Client) DeleteIssueType(ctx context.Context, projectIDOrKey string, issueTypeID, substituteIssueTypeID int) (*types.IssueType, error) {
	c.logger.Info("Deleting issue type",
		zap.String("project", projectIDOrKey),
		zap.Int("issue_type_id", issueTypeID),
		zap.Int("substitute_issue_type_id", substituteIssueTypeID))
	return call[*types.IssueType](ctx, c, http.MethodDelete, projectResourceItemPath(projectIDOrKey, "issueTypes", issueTypeID),
		map[string]interface{}{"substituteIssueTypeId": substituteIssueTypeID})
}

// Custom fields

func (c *Client) ListCustomFields(ctx context.Context, projectIDOrKey string) ([]types.CustomField, error) {
	return call[[]types.CustomField](ctx, c, http.MethodGet, projectResourcePath(projectIDOrKey, "customFields"), nil)
}

func (c *Client) CreateCustomField(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*types.CustomField, error) {
	c.logger.Info("Creating custom field", zap.String("project", projectIDOrKey))
	return callOne[types.CustomField](ctx, c, http.MethodPost, projectResourcePath(projectIDOrKey, "customFields"), params)
}

func (c *Client) UpdateCustomField(ctx context.Context, projectIDOrKey string, customFieldID int, params map[string]interface{}) (*types.CustomField, error) {
	c.logger.Info("Updating custom field", zap.String("project", projectIDOrKey), zap.Int("custom_field_id", customFieldID))
	return callOne[types.CustomField](ctx, c, http.MethodPatch, projectResourceItemPath(projectIDOrKey, "customFields", customFieldID), params)
}

func (c *Client) DeleteCustomField(ctx context.Context, projectIDOrKey string, customFieldID int) (*types.CustomField, error) {
	c.logger.Info("Deleting custom field", zap.String("project", projectIDOrKey), zap.Int("custom_field_id", customFieldID))
	return call[*types.CustomField](ctx, c, http.MethodDelete, projectResourceItemPath(projectIDOrKey, "customFields", customFieldID), nil)
}

var _ types.BacklogAPI = (*Client)(nil)
