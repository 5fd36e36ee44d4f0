package rewards

import (
	"context"
	"fmt"

	"github.com/gymkeyapp/gymkey-server/internal/docstore"
	"github.com/gymkeyapp/gymkey-server/internal/models"
)

const rewardsCollection = "rewards"

// Catalog reads the studio-class reward documents. The catalog is read-only
// from this service's point of view; rewards are loaded into the store out
// of band.
type Catalog struct {
	docs docstore.Store
}

// NewCatalog creates a new reward catalog
func NewCatalog(docs docstore.Store) *Catalog {
	return &Catalog{docs: docs}
}

// List returns all rewards in the catalog
func (c *Catalog) List(ctx context.Context) ([]models.Reward, error) {
	docs, err := c.docs.List(ctx, rewardsCollection)
	if err != nil {
		return nil, fmt.Errorf("error listing rewards: %w", err)
	}

	rewards := make([]models.Reward, 0, len(docs))
	for _, doc := range docs {
		var reward models.Reward
		if err := doc.Decode(&reward); err != nil {
			return nil, fmt.Errorf("error decoding reward: %w", err)
		}
		rewards = append(rewards, reward)
	}

	return rewards, nil
}

// Get returns one reward by id. docstore.ErrNotFound is passed through when
// the reward does not exist.
func (c *Catalog) Get(ctx context.Context, rewardID string) (*models.Reward, error) {
	doc, err := c.docs.Get(ctx, rewardsCollection, rewardID)
	if err != nil {
		return nil, err
	}

	var reward models.Reward
	if err := doc.Decode(&reward); err != nil {
		return nil, fmt.Errorf("error decoding reward: %w", err)
	}
	reward.ID = rewardID

	return &reward, nil
}
