// Package catalog holds the built-in data-source descriptors for the staff
// reports backend. Descriptors are reference data: fetched once by clients
// at session start and treated as immutable for the session.
package catalog

import (
	"sort"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

var sources = map[string]domain.DataSource{
	"services": {
		Key:           "services",
		DisplayName:   "Services",
		Description:   "Provider service listings with category, pricing and status",
		Icon:          "briefcase",
		DefaultFields: []string{"title", "category_name", "provider_name", "base_price", "is_active", "created_at"},
		Fields: map[string]domain.Field{
			"title":         {Label: "Title", Type: domain.TypeString},
			"description":   {Label: "Description", Type: domain.TypeText},
			"category_name": {Label: "Category", Type: domain.TypeEnum, Options: []string{"home_cleaning", "plumbing", "electrical", "gardening", "tutoring", "beauty"}},
			"provider_name": {Label: "Provider", Type: domain.TypeString},
			"base_price":    {Label: "Base Price", Type: domain.TypeDecimal},
			"rating":        {Label: "Rating", Type: domain.TypeDecimal},
			"views_count":   {Label: "Views", Type: domain.TypeInteger},
			"is_active":     {Label: "Active", Type: domain.TypeBoolean},
			"created_at":    {Label: "Created At", Type: domain.TypeDatetime},
		},
	},
	"bookings": {
		Key:           "bookings",
		DisplayName:   "Bookings",
		Description:   "Customer bookings with status, amounts and dates",
		Icon:          "calendar",
		DefaultFields: []string{"service_title", "customer_name", "status", "total_amount", "booking_date", "created_at"},
		Fields: map[string]domain.Field{
			"service_title": {Label: "Service", Type: domain.TypeString},
			"customer_name": {Label: "Customer", Type: domain.TypeString},
			"provider_name": {Label: "Provider", Type: domain.TypeString},
			"status":        {Label: "Status", Type: domain.TypeEnum, Options: []string{"pending", "confirmed", "in_progress", "completed", "cancelled_by_client", "cancelled_by_provider"}},
			"total_amount":  {Label: "Total Amount", Type: domain.TypeDecimal},
			"booking_date":  {Label: "Booking Date", Type: domain.TypeDate},
			"notes":         {Label: "Notes", Type: domain.TypeText},
			"created_at":    {Label: "Created At", Type: domain.TypeDatetime},
		},
	},
	"providers": {
		Key:           "providers",
		DisplayName:   "Providers",
		Description:   "Registered service providers and verification state",
		Icon:          "users",
		DefaultFields: []string{"name", "email", "is_verified", "services_count", "created_at"},
		Fields: map[string]domain.Field{
			"name":           {Label: "Name", Type: domain.TypeString},
			"email":          {Label: "Email", Type: domain.TypeString},
			"bio":            {Label: "Bio", Type: domain.TypeText},
			"is_verified":    {Label: "Verified", Type: domain.TypeBoolean},
			"services_count": {Label: "Services", Type: domain.TypeInteger},
			"rating":         {Label: "Rating", Type: domain.TypeDecimal},
			"created_at":     {Label: "Joined At", Type: domain.TypeDatetime},
		},
	},
	"categories": {
		Key:           "categories",
		DisplayName:   "Service Categories",
		Description:   "Service category taxonomy managed by staff",
		Icon:          "tag",
		DefaultFields: []string{"name", "services_count", "is_active", "created_at"},
		Fields: map[string]domain.Field{
			"name":           {Label: "Name", Type: domain.TypeString},
			"description":    {Label: "Description", Type: domain.TypeText},
			"services_count": {Label: "Services", Type: domain.TypeInteger},
			"is_active":      {Label: "Active", Type: domain.TypeBoolean},
			"created_at":     {Label: "Created At", Type: domain.TypeDatetime},
		},
	},
}

// All returns every descriptor keyed by source key.
func All() map[string]domain.DataSource {
	out := make(map[string]domain.DataSource, len(sources))
	for k, v := range sources {
		out[k] = v
	}
	return out
}

// Get looks up one descriptor.
func Get(key string) (domain.DataSource, bool) {
	d, ok := sources[key]
	return d, ok
}

// Keys returns the source keys sorted for stable listings.
func Keys() []string {
	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
