// Package core contains the business logic for the NewHackers API.
// It is designed to be framework-agnostic and can be used independently
// of any web framework or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: story, comment and cache models
// - parser: turns listing and item pages into domain records
// - fetcher: retrieves upstream pages and classifies error bodies
// - freshness: "/updated" timestamps and staleness checks
// - lock: store-backed refresh lock with leases and orphan repair
// - stories: cache-aside reads and background refresh of pages
// - workers: bounded pool that runs scheduled refreshes
// - auth, votes: login token acquisition and voting
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (store, HTTP, logger)
//
// # Design Principles
//
// - No external framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
//
// # Usage Example
//
//	deps := interfaces.Dependencies{
//	    Store:      store,      // implements interfaces.Store
//	    HTTPClient: httpClient, // implements interfaces.HTTPClient
//	    Logger:     logger,     // implements interfaces.Logger
//	}
//
//	service := stories.NewService(deps, stories.Options{
//	    Fetcher: fetcher.NewFetcher("https://news.ycombinator.com/", deps),
//	})
//	page, err := service.GetStories(ctx, stories.FrontPage)
package core
