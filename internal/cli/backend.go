package cli

import (
	"context"
	"fmt"

	"tasktree/internal/backend/googletasks"
	"tasktree/internal/config"
	"tasktree/internal/service"
)

// GoogleTasks is the production ServiceFactory. It reports missing
// credential files before touching the network.
func GoogleTasks(ctx context.Context, cfg *config.Config) (service.Service, error) {
	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("%w: oauth_client.json not found in %s", ErrNotAuthenticated, cfg.Dir)
	}
	if !cfg.HasToken() {
		return nil, fmt.Errorf("%w: not logged in (run: tasktree login)", ErrNotAuthenticated)
	}
	return googletasks.New(ctx, cfg)
}
