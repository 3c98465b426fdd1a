package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driving"
)

// LoadItems lists the platform's resources and normalizes each record.
// When a page fails upstream, listing stops and the items gathered so far are
// returned; partial results are still useful to the caller.
func (s *integrationService) LoadItems(ctx context.Context, req driving.LoadItemsRequest) ([]*domain.IntegrationItem, error) {
	adapter, err := s.platforms.Get(req.Platform)
	if err != nil {
		return nil, err
	}

	cred, err := domain.ParseCredential([]byte(req.Credentials))
	if err != nil {
		return nil, err
	}

	items := make([]*domain.IntegrationItem, 0)
	skipped := 0
	for raw, err := range adapter.ListResources(ctx, cred) {
		if err != nil {
			if errors.Is(err, domain.ErrUpstreamFetchFailed) {
				s.logger.Warn("listing stopped early",
					"platform", req.Platform,
					"items", len(items),
					"error", err,
				)
				break
			}
			return nil, fmt.Errorf("list resources: %w", err)
		}

		item, err := s.normalisers.Normalise(raw)
		if err != nil {
			skipped++
			s.logger.Warn("skipping record",
				"platform", req.Platform,
				"type", raw.Type,
				"error", err,
			)
			continue
		}
		items = append(items, item)
	}

	s.logger.Info("items loaded",
		"platform", req.Platform,
		"items", len(items),
		"skipped", skipped,
	)

	return items, nil
}
