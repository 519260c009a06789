package models

// Sort directions accepted by the appointment listing.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// AppointmentQuery carries the optional, AND-combined filters plus
// sort/pagination parameters for the appointment listing. Zero values mean
// "not filtered".
type AppointmentQuery struct {
	CustomerID      string `form:"customerId" json:"customerId,omitempty"`
	ServiceCenterID string `form:"serviceCenterId" json:"serviceCenterId,omitempty"`
	Status          string `form:"status" json:"status,omitempty"`
	StartDate       string `form:"startDate" json:"startDate,omitempty"` // inclusive, "2006-01-02"
	EndDate         string `form:"endDate" json:"endDate,omitempty"`     // inclusive
	Priority        *bool  `form:"priority" json:"priority,omitempty"`
	Source          string `form:"source" json:"source,omitempty"`
	SearchTerm      string `form:"searchTerm" json:"searchTerm,omitempty"`
	SortBy          string `form:"sortBy" json:"sortBy,omitempty"`
	SortOrder       string `form:"sortOrder" json:"sortOrder,omitempty"`
	Page            int    `form:"page" json:"page"`
	PageSize        int    `form:"pageSize" json:"pageSize"`
}

// AppointmentPage is one page of listing results.
type AppointmentPage struct {
	Items      []Appointment `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}
