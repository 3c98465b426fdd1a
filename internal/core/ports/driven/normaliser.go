package driven

import "github.com/custodia-labs/sercha-bridge/internal/core/domain"

// ItemNormaliser maps one platform's raw records to IntegrationItems.
type ItemNormaliser interface {
	// Platform returns the platform whose records this normaliser understands.
	Platform() domain.PlatformType

	// Normalise converts a raw record. Malformed individual fields degrade to
	// nil values; an error is returned only when the record cannot be decoded at all.
	Normalise(raw RawRecord) (*domain.IntegrationItem, error)
}

// NormaliserRegistry dispatches raw records to the normaliser for their platform.
type NormaliserRegistry interface {
	// Normalise converts a raw record using the normaliser registered for raw.Platform.
	Normalise(raw RawRecord) (*domain.IntegrationItem, error)

	// Register registers a normaliser, replacing any previous one for the same platform.
	Register(normaliser ItemNormaliser)
}
