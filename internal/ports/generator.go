package ports

import (
	"context"

	"pixery/internal/domain"
)

// Generator produces an image for a prompt. Implementations wrap one
// provider API; execution time and cost reporting vary by provider.
type Generator interface {
	Generate(ctx context.Context, params domain.GenerateParams) (*domain.GenerationOutput, error)
}

// Notifier delivers out-of-band change notifications ("a record was added
// externally"). Subscribers treat a notification as a trigger to refresh
// cached state; it carries no payload.
type Notifier interface {
	// Subscribe registers fn to run on every notification. The returned
	// cancel func removes the subscription.
	Subscribe(fn func()) (cancel func())
}
