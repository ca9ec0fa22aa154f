package types

// Backlog response structures - shared between CLI, REST server and dispatcher

type Project struct {
	ID                 int    `json:"id"`
	ProjectKey         string `json:"projectKey"`
	Name               string `json:"name"`
	ChartEnabled       bool   `json:"chartEnabled,omitempty"`
	SubtaskingEnabled  bool   `json:"subtaskingEnabled,omitempty"`
	TextFormattingRule string `json:"textFormattingRule,omitempty"`
	Archived           bool   `json:"archived"`
}

type User struct {
	ID          int    `json:"id"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	RoleType    int    `json:"roleType,omitempty"`
	Lang        string `json:"lang,omitempty"`
	MailAddress string `json:"mailAddress,omitempty"`
}

type IssueType struct {
	ID           int    `json:"id"`
	ProjectID    int    `json:"projectId"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	DisplayOrder int    `json:"displayOrder"`
}

type Priority struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Status struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Issue struct {
	ID          int        `json:"id"`
	ProjectID   int        `json:"projectId"`
	IssueKey    string     `json:"issueKey"`
	KeyID       int        `json:"keyId"`
	IssueType   *IssueType `json:"issueType,omitempty"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Priority    *Priority  `json:"priority,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Assignee    *User      `json:"assignee,omitempty"`
	StartDate   string     `json:"startDate,omitempty"`
	DueDate     string     `json:"dueDate,omitempty"`
	CreatedUser *User      `json:"createdUser,omitempty"`
	Created     string     `json:"created,omitempty"`
	Updated     string     `json:"updated,omitempty"`
}

type Comment struct {
	ID          int    `json:"id"`
	Content     string `json:"content"`
	CreatedUser *User  `json:"createdUser,omitempty"`
	Created     string `json:"created,omitempty"`
	Updated     string `json:"updated,omitempty"`
}

type WikiTag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Wiki struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"projectId"`
	Name        string    `json:"name"`
	Content     string    `json:"content,omitempty"`
	Tags        []WikiTag `json:"tags,omitempty"`
	CreatedUser *User     `json:"createdUser,omitempty"`
	Created     string    `json:"created,omitempty"`
	Updated     string    `json:"updated,omitempty"`
}

// Milestone is called "version" by the Backlog API
type Milestone struct {
	ID             int    `json:"id"`
	ProjectID      int    `json:"projectId"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	StartDate      string `json:"startDate,omitempty"`
	ReleaseDueDate string `json:"releaseDueDate,omitempty"`
	Archived       bool   `json:"archived"`
	DisplayOrder   int    `json:"displayOrder"`
}

type Category struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"displayOrder"`
}

type CustomField struct {
	ID          int    `json:"id"`
	TypeID      int    `json:"typeId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

type Space struct {
	SpaceKey           string `json:"spaceKey"`
	Name               string `json:"name"`
	OwnerID            int    `json:"ownerId"`
	Lang               string `json:"lang,omitempty"`
	Timezone           string `json:"timezone,omitempty"`
	TextFormattingRule string `json:"textFormattingRule,omitempty"`
	Created            string `json:"created,omitempty"`
	Updated            string `json:"updated,omitempty"`
}

type SpaceNotification struct {
	Content string `json:"content"`
	Updated string `json:"updated,omitempty"`
}

// Activity content varies per activity type, so it is kept raw
type Activity struct {
	ID          int                    `json:"id"`
	Project     *Project               `json:"project,omitempty"`
	Type        int                    `json:"type"`
	Content     map[string]interface{} `json:"content,omitempty"`
	CreatedUser *User                  `json:"createdUser,omitempty"`
	Created     string                 `json:"created,omitempty"`
}

// Config is the connection configuration of one API client
type Config struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	SpaceID string `json:"space_id" yaml:"space_id"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}
