// Package services implements the business logic layer of the ODI analytics
// service. It sits between the HTTP handlers (and the export CLI) and the
// dataset, entities and analytics packages.
//
// # Services
//
//	- DashboardService: entity lists, overview, view dispatch, exports and
//	  dataset reloads over the cached snapshot
//	- HealthService: health, readiness, liveness and version reporting
//
// # Views
//
// Every view is selected by an api.ViewRequest and answered with a
// ViewResult: the rows, a chart projection, warnings and metadata about the
// snapshot it was computed from. A request never mutates shared state; the
// resolver and engine built for a snapshot are reused until the snapshot
// changes.
//
// # Error Handling
//
// Unknown single-entity filters return *entities.InvalidFilterError. Missing
// data or absent optional columns do not fail a view: the result is marked
// degraded, carries zero rows and explains itself in Warnings.
package services
