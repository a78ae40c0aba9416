// Package http implements the HTTP handlers of the ODI analytics service.
// Handlers stay thin: they parse requests, call a service interface and
// format the response.
//
// # Routes
//
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//	GET  /api/overview
//	GET  /api/entities/{kind}
//	GET  /api/entities/teams/{team}/opponents
//	GET  /api/phases
//	GET  /api/views/{view}
//	POST /api/views
//	GET  /api/views/{view}/export?format=csv|xlsx
//	GET  /api/dataset
//	GET  /api/dataset/files
//	POST /api/dataset/reload
//	GET  /metrics
//
// # Responses
//
// Successful JSON responses use one envelope:
//
//	{"status": "success", "data": ..., "count": 3}
//
// Errors follow RFC 7807 Problem Details with content type
// application/problem+json:
//
//	{
//	    "type": "/errors/invalid-filter",
//	    "title": "Invalid Filter",
//	    "status": 400,
//	    "detail": "invalid bowler: \"Nobody\" is not a known value",
//	    "instance": "/api/views/economy-distribution",
//	    "field": "bowler",
//	    "value": "Nobody"
//	}
//
// # Query Filters
//
// Multi-select filters accept repeated keys or comma separated values
// (teams=India,Pakistan). Venue names contain commas, so venues are only
// split on repeated keys (venues=A&venues=B).
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces.
package http
