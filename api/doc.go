// Package api provides the HTTP API layer for the NewHackers service.
// It uses the Huma framework to provide automatic OpenAPI documentation,
// request validation, and a clean handler interface.
//
// # Architecture
//
// - server.go: Huma API configuration and setup
// - handlers/: HTTP request handlers
// - middleware/: request logging, rate limiting and upstream request logging
//
// # Routes
//
//	GET  /stories              front page
//	GET  /stories/{page}       later listing page, by the cursor in "more"
//	GET  /ask                  first Ask HN page
//	GET  /ask/{page}           later Ask HN page
//	GET  /comments/{item_id}   story with its comments
//	POST /get_token            {"user": "...", "password": "..."} -> {"token": "..."}
//	POST /vote                 {"token": "...", "direction": "up", "item": "..."} -> {"vote": "Success"}
//
// Trailing slashes are ignored. The OpenAPI document is served at /openapi.json
// and the interactive docs at /docs.
//
// # Usage Example
//
//	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
//	    Logger:     logger,
//	    RateLimit:  100,
//	    RateWindow: time.Minute,
//	})
//	handlers.NewStoriesHandler(storiesService).RegisterRoutes(humaAPI)
//	http.ListenAndServe(":8000", router)
//
// # Error Handling
//
// Errors use the RFC 7807 format produced by Huma. Domain errors map to
// status codes as follows: not found 404, validation 400, rejected user
// action 403, unusable upstream page 502, anything else 500.
package api
