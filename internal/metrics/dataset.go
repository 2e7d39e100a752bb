package metrics

import (
	"context"
	"fmt"
	"log/slog"

	httpclient "github.com/gridironlab/ffreport/internal/platform/client"
)

// fetchDataset retrieves one external metrics dataset. Providers whose
// dataset URL is unset cannot run live; their saved file is the only source.
func fetchDataset(ctx context.Context, url string, logger *slog.Logger) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("no dataset URL configured")
	}
	c := httpclient.New(url, 60, nil, logger)
	return c.Get(ctx, "", nil)
}
