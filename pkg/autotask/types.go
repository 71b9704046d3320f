package autotask

import "time"

// PageDetails describes the paging state of a query response.
type PageDetails struct {
	Count        int     `json:"count" yaml:"count"`
	RequestCount int     `json:"requestCount" yaml:"requestCount"`
	PrevPageURL  *string `json:"prevPageUrl,omitempty" yaml:"prevPageUrl,omitempty"`
	NextPageURL  *string `json:"nextPageUrl,omitempty" yaml:"nextPageUrl,omitempty"`
}

// ItemResponse is the single-record envelope: {"item": {...}}.
type ItemResponse[T any] struct {
	Item T `json:"item" yaml:"item"`
}

// ListResponse is the query envelope: {"items": [...], "pageDetails"}.
type ListResponse[T any] struct {
	Items       []T         `json:"items" yaml:"items"`
	PageDetails PageDetails `json:"pageDetails" yaml:"pageDetails"`
}

// HasNextPage reports whether the server advertised another page.
func (r *ListResponse[T]) HasNextPage() bool {
	return r != nil && r.PageDetails.NextPageURL != nil && *r.PageDetails.NextPageURL != ""
}

// ZoneInfo is the response of the global zoneInformation endpoint.
type ZoneInfo struct {
	ZoneName string `json:"zoneName" yaml:"zoneName"`
	URL      string `json:"url" yaml:"url"`
	WebURL   string `json:"webUrl" yaml:"webUrl"`
	CI       int    `json:"ci" yaml:"ci"`
}

// UserDefinedField is a name/value pair attached to most entities.
type UserDefinedField struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Ticket is a service desk ticket.
type Ticket struct {
	ID                 int64              `json:"id" yaml:"id"`
	TicketNumber       string             `json:"ticketNumber,omitempty" yaml:"ticketNumber,omitempty"`
	Title              string             `json:"title" yaml:"title"`
	Description        string             `json:"description,omitempty" yaml:"description,omitempty"`
	Status             int                `json:"status" yaml:"status"`
	Priority           int                `json:"priority,omitempty" yaml:"priority,omitempty"`
	QueueID            int64              `json:"queueID,omitempty" yaml:"queueID,omitempty"`
	CompanyID          int64              `json:"companyID,omitempty" yaml:"companyID,omitempty"`
	ContactID          int64              `json:"contactID,omitempty" yaml:"contactID,omitempty"`
	AssignedResourceID int64              `json:"assignedResourceID,omitempty" yaml:"assignedResourceID,omitempty"`
	CreateDate         *time.Time         `json:"createDate,omitempty" yaml:"createDate,omitempty"`
	LastActivityDate   *time.Time         `json:"lastActivityDate,omitempty" yaml:"lastActivityDate,omitempty"`
	DueDateTime        *time.Time         `json:"dueDateTime,omitempty" yaml:"dueDateTime,omitempty"`
	UserDefinedFields  []UserDefinedField `json:"userDefinedFields,omitempty" yaml:"userDefinedFields,omitempty"`
}

// TicketNote is a note attached to a ticket.
type TicketNote struct {
	ID                int64      `json:"id" yaml:"id"`
	TicketID          int64      `json:"ticketID" yaml:"ticketID"`
	Title             string     `json:"title,omitempty" yaml:"title,omitempty"`
	Description       string     `json:"description" yaml:"description"`
	NoteType          int        `json:"noteType" yaml:"noteType"`
	CreatorResourceID int64      `json:"creatorResourceID,omitempty" yaml:"creatorResourceID,omitempty"`
	CreateDateTime    *time.Time `json:"createDateTime,omitempty" yaml:"createDateTime,omitempty"`
}

// Company is an account record.
type Company struct {
	ID                int64              `json:"id" yaml:"id"`
	CompanyName       string             `json:"companyName" yaml:"companyName"`
	CompanyType       int                `json:"companyType,omitempty" yaml:"companyType,omitempty"`
	Phone             string             `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address1          string             `json:"address1,omitempty" yaml:"address1,omitempty"`
	City              string             `json:"city,omitempty" yaml:"city,omitempty"`
	State             string             `json:"state,omitempty" yaml:"state,omitempty"`
	PostalCode        string             `json:"postalCode,omitempty" yaml:"postalCode,omitempty"`
	Country           string             `json:"country,omitempty" yaml:"country,omitempty"`
	OwnerResourceID   int64              `json:"ownerResourceID,omitempty" yaml:"ownerResourceID,omitempty"`
	IsActive          bool               `json:"isActive" yaml:"isActive"`
	UserDefinedFields []UserDefinedField `json:"userDefinedFields,omitempty" yaml:"userDefinedFields,omitempty"`
}

// Contact is a person at a company.
type Contact struct {
	ID           int64  `json:"id" yaml:"id"`
	CompanyID    int64  `json:"companyID" yaml:"companyID"`
	FirstName    string `json:"firstName" yaml:"firstName"`
	LastName     string `json:"lastName" yaml:"lastName"`
	EmailAddress string `json:"emailAddress,omitempty" yaml:"emailAddress,omitempty"`
	Phone        string `json:"phone,omitempty" yaml:"phone,omitempty"`
	IsActive     int    `json:"isActive" yaml:"isActive"`
}

// Project is a project record.
type Project struct {
	ID                    int64      `json:"id" yaml:"id"`
	ProjectName           string     `json:"projectName" yaml:"projectName"`
	CompanyID             int64      `json:"companyID" yaml:"companyID"`
	ProjectType           int        `json:"projectType,omitempty" yaml:"projectType,omitempty"`
	Status                int        `json:"status" yaml:"status"`
	StartDateTime         *time.Time `json:"startDateTime,omitempty" yaml:"startDateTime,omitempty"`
	EndDateTime           *time.Time `json:"endDateTime,omitempty" yaml:"endDateTime,omitempty"`
	ProjectLeadResourceID int64      `json:"projectLeadResourceID,omitempty" yaml:"projectLeadResourceID,omitempty"`
}

// Task is a project task.
type Task struct {
	ID                 int64      `json:"id" yaml:"id"`
	ProjectID          int64      `json:"projectID" yaml:"projectID"`
	Title              string     `json:"title" yaml:"title"`
	Description        string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status             int        `json:"status" yaml:"status"`
	AssignedResourceID int64      `json:"assignedResourceID,omitempty" yaml:"assignedResourceID,omitempty"`
	StartDateTime      *time.Time `json:"startDateTime,omitempty" yaml:"startDateTime,omitempty"`
	EndDateTime        *time.Time `json:"endDateTime,omitempty" yaml:"endDateTime,omitempty"`
}

// TimeEntry is logged work against a ticket or task.
type TimeEntry struct {
	ID            int64      `json:"id" yaml:"id"`
	TicketID      int64      `json:"ticketID,omitempty" yaml:"ticketID,omitempty"`
	TaskID        int64      `json:"taskID,omitempty" yaml:"taskID,omitempty"`
	ResourceID    int64      `json:"resourceID" yaml:"resourceID"`
	DateWorked    *time.Time `json:"dateWorked,omitempty" yaml:"dateWorked,omitempty"`
	StartDateTime *time.Time `json:"startDateTime,omitempty" yaml:"startDateTime,omitempty"`
	EndDateTime   *time.Time `json:"endDateTime,omitempty" yaml:"endDateTime,omitempty"`
	HoursWorked   float64    `json:"hoursWorked" yaml:"hoursWorked"`
	SummaryNotes  string     `json:"summaryNotes,omitempty" yaml:"summaryNotes,omitempty"`
}

// ConfigurationItem is a managed asset.
type ConfigurationItem struct {
	ID                    int64      `json:"id" yaml:"id"`
	CompanyID             int64      `json:"companyID" yaml:"companyID"`
	ConfigurationItemType int        `json:"configurationItemType,omitempty" yaml:"configurationItemType,omitempty"`
	ReferenceTitle        string     `json:"referenceTitle,omitempty" yaml:"referenceTitle,omitempty"`
	SerialNumber          string     `json:"serialNumber,omitempty" yaml:"serialNumber,omitempty"`
	InstallDate           *time.Time `json:"installDate,omitempty" yaml:"installDate,omitempty"`
	ProductID             int64      `json:"productID,omitempty" yaml:"productID,omitempty"`
	IsActive              bool       `json:"isActive" yaml:"isActive"`
}
