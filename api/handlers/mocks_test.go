package handlers

import (
	"context"

	"newhackers-api/core/domain"
)

type mockStoryService struct {
	getStoriesFunc func(ctx context.Context, pageID string) (*domain.StoryPage, error)
	getItemFunc    func(ctx context.Context, itemID string) (*domain.ItemDetail, error)
}

func (m *mockStoryService) GetStories(ctx context.Context, pageID string) (*domain.StoryPage, error) {
	if m.getStoriesFunc != nil {
		return m.getStoriesFunc(ctx, pageID)
	}
	return &domain.StoryPage{Stories: []domain.StoryRecord{}}, nil
}

func (m *mockStoryService) GetItem(ctx context.Context, itemID string) (*domain.ItemDetail, error) {
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, itemID)
	}
	return &domain.ItemDetail{Comments: []domain.CommentRecord{}}, nil
}

type mockTokenService struct {
	getTokenFunc func(ctx context.Context, user, password string) (string, error)
}

func (m *mockTokenService) GetToken(ctx context.Context, user, password string) (string, error) {
	if m.getTokenFunc != nil {
		return m.getTokenFunc(ctx, user, password)
	}
	return "", nil
}

type mockVoteService struct {
	voteFunc func(ctx context.Context, token, direction, item string) (bool, error)
}

func (m *mockVoteService) Vote(ctx context.Context, token, direction, item string) (bool, error) {
	if m.voteFunc != nil {
		return m.voteFunc(ctx, token, direction, item)
	}
	return false, nil
}
