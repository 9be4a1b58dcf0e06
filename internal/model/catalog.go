package model

// Category groups related services for browsing, e.g. "Hair" or
// "Nails". Categories are reference data: the booking flow reads them
// but never writes them.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  Description – optional longer text.
//  Slug        – URL-friendly unique identifier.
type Category struct {
	ID          uint64  // categories.id
	Name        string  // categories.name
	Description *string // categories.description (nullable)
	Slug        string  // categories.slug
}

// Service is a bookable offering with a fixed price and duration.
// Price is stored in cents to avoid floating point money, and the
// duration in whole minutes. Services are immutable as far as the
// booking flow is concerned, but an appointment's totals are always
// recomputed from the current rows, so a price change here is
// reflected in every appointment that references the service.
//
// Fields:
//  ID          – primary key identifier.
//  CategoryID  – owning category.
//  Name        – display name.
//  Description – optional longer text.
//  PriceCents  – price in cents.
//  DurationMin – duration in minutes.
//  Slug        – URL-friendly unique identifier.
type Service struct {
	ID          uint64  // services.id
	CategoryID  uint64  // services.category_id
	Name        string  // services.name
	Description *string // services.description (nullable)
	PriceCents  uint32  // services.price_cents
	DurationMin uint32  // services.duration_min
	Slug        string  // services.slug
}
