package api

import (
	"context"
	"fmt"
	"net/http"

	"connectwork/internal/models"
)

// Feed fetches the post feed, most recent first.
func (c *Client) Feed(ctx context.Context) ([]models.Post, error) {
	var out struct {
		Posts []models.Post `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, "/post/posts", nil, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

// CreatePost publishes a new post and returns it.
func (c *Client) CreatePost(ctx context.Context, content string) (models.Post, error) {
	body := map[string]string{"content": content}
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/post/posts", body, &post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// LikePost registers a like on the post.
func (c *Client) LikePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/post/posts/%d/like", id), nil, nil)
}

// UnlikePost removes the caller's like from the post.
func (c *Client) UnlikePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/post/posts/%d/like", id), nil, nil)
}

// CommentPost adds a comment to the post and returns it.
func (c *Client) CommentPost(ctx context.Context, id int64, content string) (models.Comment, error) {
	body := map[string]string{"content": content}
	var comment models.Comment
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/post/posts/%d/comments", id), body, &comment); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}
