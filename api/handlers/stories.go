// ABOUTME: Story and comment handlers for the Huma API
// ABOUTME: Serves cached listing pages and item pages with their comments

package handlers

import (
	"context"
	"net/http"

	"newhackers-api/core/domain"
	"newhackers-api/core/stories"

	"github.com/danielgtaylor/huma/v2"
)

// StoryService defines the methods needed from the cache-aside orchestrator
type StoryService interface {
	GetStories(ctx context.Context, pageID string) (*domain.StoryPage, error)
	GetItem(ctx context.Context, itemID string) (*domain.ItemDetail, error)
}

// StoriesHandler handles story listing and comment requests
type StoriesHandler struct {
	service StoryService
}

// NewStoriesHandler creates a new stories handler
func NewStoriesHandler(service StoryService) *StoriesHandler {
	return &StoriesHandler{service: service}
}

// RegisterRoutes registers all story-related routes
func (h *StoriesHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getFrontPage",
		Method:      http.MethodGet,
		Path:        "/stories",
		Summary:     "Get the front page",
		Tags:        []string{"Stories"},
	}, h.GetFrontPage)

	huma.Register(api, huma.Operation{
		OperationID: "getStoriesPage",
		Method:      http.MethodGet,
		Path:        "/stories/{page}",
		Summary:     "Get a page of stories",
		Description: "Returns the listing page identified by the cursor found in the previous page's `more` field",
		Tags:        []string{"Stories"},
	}, h.GetStoriesPage)

	huma.Register(api, huma.Operation{
		OperationID: "getAskPage",
		Method:      http.MethodGet,
		Path:        "/ask",
		Summary:     "Get the first Ask HN page",
		Tags:        []string{"Stories"},
	}, h.GetAskPage)

	huma.Register(api, huma.Operation{
		OperationID: "getAskStoriesPage",
		Method:      http.MethodGet,
		Path:        "/ask/{page}",
		Summary:     "Get a page of Ask HN stories",
		Tags:        []string{"Stories"},
	}, h.GetStoriesPage)

	huma.Register(api, huma.Operation{
		OperationID: "getComments",
		Method:      http.MethodGet,
		Path:        "/comments/{item_id}",
		Summary:     "Get a story with its comments",
		Tags:        []string{"Comments"},
	}, h.GetComments)
}

// StoryPageOutput wraps a listing page
type StoryPageOutput struct {
	Body *domain.StoryPage
}

// PageInput names a listing page by its cursor
type PageInput struct {
	Page string `path:"page" maxLength:"64" doc:"Page cursor"`
}

// CommentsInput names an item
type CommentsInput struct {
	ItemID string `path:"item_id" maxLength:"20" doc:"Numeric item id"`
}

// CommentsOutput wraps an item with its comments
type CommentsOutput struct {
	Body *domain.ItemDetail
}

// GetFrontPage handles GET /stories
func (h *StoriesHandler) GetFrontPage(ctx context.Context, _ *struct{}) (*StoryPageOutput, error) {
	return h.page(ctx, stories.FrontPage)
}

// GetAskPage handles GET /ask
func (h *StoriesHandler) GetAskPage(ctx context.Context, _ *struct{}) (*StoryPageOutput, error) {
	return h.page(ctx, stories.AskPage)
}

// GetStoriesPage handles GET /stories/{page} and GET /ask/{page}. Later
// pages of both listings share one cursor namespace upstream.
func (h *StoriesHandler) GetStoriesPage(ctx context.Context, input *PageInput) (*StoryPageOutput, error) {
	return h.page(ctx, input.Page)
}

func (h *StoriesHandler) page(ctx context.Context, pageID string) (*StoryPageOutput, error) {
	page, err := h.service.GetStories(ctx, pageID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &StoryPageOutput{Body: page}, nil
}

// GetComments handles GET /comments/{item_id}
func (h *StoriesHandler) GetComments(ctx context.Context, input *CommentsInput) (*CommentsOutput, error) {
	item, err := h.service.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &CommentsOutput{Body: item}, nil
}
