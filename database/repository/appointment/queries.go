// File: database/repository/appointment/queries.go
package appointmentRepo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"servicecenter/models"
)

// Fields the listing may sort by. Anything else falls back to the default
// in the query engine before it reaches this package.
var sortFields = map[string]string{
	"appointmentDate": "appointmentDate",
	"createdAt":       "createdAt",
	"status":          "status",
	"customerId":      "customerId",
}

// BuildQueryFilter translates the AND-combined listing filters into a Mongo
// filter document. Exported so the filter semantics are testable without a
// running Mongo instance.
func BuildQueryFilter(q models.AppointmentQuery) bson.M {
	filter := bson.M{}

	if q.CustomerID != "" {
		filter["customerId"] = q.CustomerID
	}
	if q.ServiceCenterID != "" {
		filter["serviceCenterId"] = q.ServiceCenterID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Priority != nil {
		filter["priority"] = *q.Priority
	}
	if q.Source != "" {
		filter["source"] = q.Source
	}

	// Inclusive calendar-date range on AppointmentDate.
	dateRange := bson.M{}
	if q.StartDate != "" {
		dateRange["$gte"] = q.StartDate
	}
	if q.EndDate != "" {
		dateRange["$lte"] = q.EndDate
	}
	if len(dateRange) > 0 {
		filter["appointmentDate"] = dateRange
	}

	// Case-insensitive free-text match against customer name and notes.
	if q.SearchTerm != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.SearchTerm), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"customerName": pattern},
			bson.M{"notes": pattern},
		}
	}

	return filter
}

// BuildQuerySort returns the sort document: the requested field and order,
// with AppointmentId ascending as a deterministic tie-break.
func BuildQuerySort(q models.AppointmentQuery) bson.D {
	field, ok := sortFields[q.SortBy]
	if !ok {
		field = "appointmentDate"
	}
	order := 1
	if q.SortOrder == models.SortOrderDesc {
		order = -1
	}
	return bson.D{{Key: field, Value: order}, {Key: "id", Value: 1}}
}
