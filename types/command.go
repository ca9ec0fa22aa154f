package types

import "context"

// EntityType names the group of handlers an intent is routed to
type EntityType string

const (
	EntityProjects     EntityType = "projects"
	EntityIssues       EntityType = "issues"
	EntityUsers        EntityType = "users"
	EntityWikis        EntityType = "wikis"
	EntityMilestones   EntityType = "milestones"
	EntityVersions     EntityType = "versions" // alias of milestones
	EntityCategories   EntityType = "categories"
	EntityIssueTypes   EntityType = "issueTypes"
	EntityCustomFields EntityType = "customFields"
	EntitySpace        EntityType = "space"
)

// Action names an operation within an entity type
type Action string

const (
	ActionList               Action = "list"
	ActionGet                Action = "get"
	ActionCreate             Action = "create"
	ActionUpdate             Action = "update"
	ActionDelete             Action = "delete"
	ActionComments           Action = "comments"
	ActionAddComment         Action = "addComment"
	ActionActivities         Action = "activities"
	ActionTags               Action = "tags"
	ActionNotification       Action = "notification"
	ActionUpdateNotification Action = "updateNotification"
)

// Intent is the structured form of one user command
type Intent struct {
	Type    EntityType             `json:"type"`
	Action  Action                 `json:"action"`
	Params  map[string]interface{} `json:"params,omitempty"`
	RawText string                 `json:"rawCommand,omitempty"`
}

// Result is the uniform outcome of dispatching an intent
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CommandSpec describes one supported type/action pair
type CommandSpec struct {
	Type        EntityType `json:"type"`
	Action      Action     `json:"action"`
	Required    []string   `json:"required,omitempty"`
	Optional    []string   `json:"optional,omitempty"`
	Description string     `json:"description"`
}

// Commands is the catalog of every supported command. The dispatcher table,
// the intent parser prompt and the REST command listing are all derived from it.
var Commands = []CommandSpec{
	{EntityProjects, ActionList, nil, nil, "List all projects"},
	{EntityProjects, ActionGet, []string{"projectIdOrKey"}, nil, "Get a specific project"},
	{EntityProjects, ActionCreate, []string{"name", "key"}, []string{"chartEnabled", "subtaskingEnabled", "textFormattingRule"}, "Create a new project"},
	{EntityProjects, ActionUpdate, []string{"projectIdOrKey"}, []string{"name", "key", "archived"}, "Update a project"},
	{EntityProjects, ActionDelete, []string{"projectIdOrKey"}, nil, "Delete a project"},

	{EntityIssues, ActionList, nil, []string{"projectIdOrKey"}, "List issues, optionally for one project"},
	{EntityIssues, ActionGet, []string{"issueIdOrKey"}, nil, "Get a specific issue"},
	{EntityIssues, ActionCreate, []string{"projectIdOrKey", "summary"}, []string{"description"}, "Create a new issue"},
	{EntityIssues, ActionUpdate, []string{"issueIdOrKey"}, []string{"summary", "description", "statusId", "assigneeId"}, "Update an issue"},
	{EntityIssues, ActionDelete, []string{"issueIdOrKey"}, nil, "Delete an issue"},
	{EntityIssues, ActionComments, []string{"issueIdOrKey"}, nil, "List comments of an issue"},
	{EntityIssues, ActionAddComment, []string{"issueIdOrKey", "content"}, nil, "Add a comment to an issue"},

	{EntityUsers, ActionList, nil, nil, "List all users"},
	{EntityUsers, ActionGet, []string{"userId"}, nil, "Get a specific user"},
	{EntityUsers, ActionActivities, []string{"userId"}, nil, "List recent activities of a user"},

	{EntityWikis, ActionList, []string{"projectIdOrKey"}, nil, "List wiki pages of a project"},
	{EntityWikis, ActionGet, []string{"wikiId"}, nil, "Get a specific wiki page"},
	{EntityWikis, ActionCreate, []string{"projectId", "name", "content"}, []string{"mailNotify"}, "Create a wiki page"},
	{EntityWikis, ActionUpdate, []string{"wikiId"}, []string{"name", "content", "mailNotify"}, "Update a wiki page"},
	{EntityWikis, ActionDelete, []string{"wikiId"}, nil, "Delete a wiki page"},
	{EntityWikis, ActionTags, []string{"projectIdOrKey"}, nil, "List wiki tags of a project"},

	{EntityMilestones, ActionList, []string{"projectIdOrKey"}, nil, "List milestones of a project"},
	{EntityMilestones, ActionCreate, []string{"projectIdOrKey", "name"}, []string{"description", "startDate", "releaseDueDate"}, "Create a milestone"},
	{EntityMilestones, ActionUpdate, []string{"projectIdOrKey", "versionId"}, []string{"name", "description", "startDate", "releaseDueDate", "archived"}, "Update a milestone"},
	{EntityMilestones, ActionDelete, []string{"projectIdOrKey", "versionId"}, nil, "Delete a milestone"},

	{EntityCategories, ActionList, []string{"projectIdOrKey"}, nil, "List categories of a project"},
	{EntityCategories, ActionCreate, []string{"projectIdOrKey", "name"}, nil, "Create a category"},
	{EntityCategories, ActionUpdate, []string{"projectIdOrKey", "categoryId", "name"}, nil, "Rename a category"},
	{EntityCategories, ActionDelete, []string{"projectIdOrKey", "categoryId"}, nil, "Delete a category"},

	{EntityIssueTypes, ActionList, []string{"projectIdOrKey"}, nil, "List issue types of a project"},
	{EntityIssueTypes, ActionCreate, []string{"projectIdOrKey", "name", "color"}, nil, "Create an issue type"},
	{EntityIssueTypes, ActionUpdate, []string{"projectIdOrKey", "issueTypeId"}, []string{"name", "color"}, "Update an issue type"},
	{EntityIssueTypes, ActionDelete, []string{"projectIdOrKey", "issueTypeId", "substituteIssueTypeId"}, nil, "Delete an issue type, moving its issues to a substitute"},

	{EntityCustomFields, ActionList, []string{"projectIdOrKey"}, nil, "List custom fields of a project"},
	{EntityCustomFields, ActionCreate, []string{"projectIdOrKey", "typeId", "name"}, []string{"description", "required"}, "Create a custom field"},
	{EntityCustomFields, ActionUpdate, []string{"projectIdOrKey", "customFieldId"}, []string{"name", "description", "required"}, "Update a custom field"},
	{EntityCustomFields, ActionDelete, []string{"projectIdOrKey", "customFieldId"}, nil, "Delete a custom field"},

	{EntitySpace, ActionGet, nil, nil, "Get information about the space"},
	{EntitySpace, ActionActivities, nil, []string{"count"}, "List recent activities in the space"},
	{EntitySpace, ActionNotification, nil, nil, "Get the space notification"},
	{EntitySpace, ActionUpdateNotification, []string{"content"}, nil, "Update the space notification"},
}

// BacklogAPI is the contract the dispatcher needs from an API client
type BacklogAPI interface {
	IsConfigured() bool

	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, projectIDOrKey string) (*Project, error)
	CreateProject(ctx context.Context, params map[string]interface{}) (*Project, error)
	UpdateProject(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*Project, error)
	DeleteProject(ctx context.Context, projectIDOrKey string) (*Project, error)

	ListIssues(ctx context.Context, params map[string]interface{}) ([]Issue, error)
	GetIssue(ctx context.Context, issueIDOrKey string) (*Issue, error)
	CreateIssue(ctx context.Context, params map[string]interface{}) (*Issue, error)
	UpdateIssue(ctx context.Context, issueIDOrKey string, params map[string]interface{}) (*Issue, error)
	DeleteIssue(ctx context.Context, issueIDOrKey string) (*Issue, error)
	ListIssueComments(ctx context.Context, issueIDOrKey string) ([]Comment, error)
	AddIssueComment(ctx context.Context, issueIDOrKey, content string) (*Comment, error)

	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, userID int) (*User, error)
	ListUserActivities(ctx context.Context, userID int) ([]Activity, error)

	ListWikis(ctx context.Context, projectIDOrKey string) ([]Wiki, error)
	GetWiki(ctx context.Context, wikiID int) (*Wiki, error)
	CreateWiki(ctx context.Context, params map[string]interface{}) (*Wiki, error)
	UpdateWiki(ctx context.Context, wikiID int, params map[string]interface{}) (*Wiki, error)
	DeleteWiki(ctx context.Context, wikiID int) (*Wiki, error)
	ListWikiTags(ctx context.Context, projectIDOrKey string) ([]WikiTag, error)

	ListMilestones(ctx context.Context, projectIDOrKey string) ([]Milestone, error)
	CreateMilestone(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*Milestone, error)
	UpdateMilestone(ctx context.Context, projectIDOrKey string, versionID int, params map[string]interface{}) (*Milestone, error)
	DeleteMilestone(ctx context.Context, projectIDOrKey string, versionID int) (*Milestone, error)

	ListCategories(ctx context.Context, projectIDOrKey string) ([]Category, error)
	CreateCategory(ctx context.Context, projectIDOrKey, name string) (*Category, error)
	UpdateCategory(ctx context.Context, projectIDOrKey string, categoryID int, name string) (*Category, error)
	DeleteCategory(ctx context.Context, projectIDOrKey string, categoryID int) (*Category, error)

	ListIssueTypes(ctx context.Context, projectIDOrKey string) ([]IssueType, error)
	CreateIssueType(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*IssueType, error)
	UpdateIssueType(ctx context.Context, projectIDOrKey string, issueTypeID int, params map[string]interface{}) (*IssueType, error)
	DeleteIssueType(ctx context.Context, projectIDOrKey string, issueTypeID, substituteIssueTypeID int) (*IssueType, error)

	ListCustomFields(ctx context.Context, projectIDOrKey string) ([]CustomField, error)
	CreateCustomField(ctx context.Context, projectIDOrKey string, params map[string]interface{}) (*CustomField, error)
	UpdateCustomField(ctx context.Context, projectIDOrKey string, customFieldID int, params map[string]interface{}) (*CustomField, error)
	DeleteCustomField(ctx context.Context, projectIDOrKey string, customFieldID int) (*CustomField, error)

	GetSpace(ctx context.Context) (*Space, error)
	ListSpaceActivities(ctx context.Context, params map[string]interface{}) ([]Activity, error)
	GetSpaceNotification(ctx context.Context) (*SpaceNotification, error)
	UpdateSpaceNotification(ctx context.Context, content string) (*SpaceNotification, error)
}
