// Package content_client fetches game content (topic metadata and item
// lists) from the game backend before a session starts. A session cannot run
// without this data, so a failed or timed-out fetch is surfaced once and the
// screen exits; there is no retry loop here.
package content_client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/nameit/clients"
	"github.com/mcdev12/nameit/internal/models"
)

type ContentClient struct {
	*clients.BaseClient
}

func NewContentClient(baseURL string) *ContentClient {
	return &ContentClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}
}

type topicResponse struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	SpriteSize    int    `json:"spriteSize"`
	SpritesPerRow int    `json:"spritesPerRow"`
	SortField     string `json:"sortField"`
}

type itemResponse struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	CorrectAnswers []string `json:"correctAnswers"`
	Attributes     struct {
		Order int `json:"order"`
	} `json:"attributes"`
}

// GetTopic fetches board metadata for a topic.
func (c *ContentClient) GetTopic(ctx context.Context, topicID int) (*models.Topic, error) {
	body, err := c.Get(ctx, fmt.Sprintf(TopicEndpoint, topicID))
	if err != nil {
		return nil, fmt.Errorf("fetch topic %d: %w", topicID, err)
	}

	var resp topicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal topic response: %w", err)
	}

	return &models.Topic{
		ID:            resp.ID,
		Name:          resp.Name,
		SpriteSize:    resp.SpriteSize,
		SpritesPerRow: resp.SpritesPerRow,
		SortField:     resp.SortField,
	}, nil
}

// GetTopicItems fetches the item list for a topic. Solve status starts clean;
// only server events mark items solved.
func (c *ContentClient) GetTopicItems(ctx context.Context, topicID int) ([]*models.Item, error) {
	body, err := c.Get(ctx, fmt.Sprintf(TopicItemsEndpoint, topicID))
	if err != nil {
		return nil, fmt.Errorf("fetch items for topic %d: %w", topicID, err)
	}

	var resp []itemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal items response: %w", err)
	}

	items := make([]*models.Item, 0, len(resp))
	for _, r := range resp {
		items = append(items, &models.Item{
			ID:             r.ID,
			Name:           r.Name,
			CorrectAnswers: r.CorrectAnswers,
			Order:          r.Attributes.Order,
		})
	}
	return items, nil
}
