package services

import (
	"fmt"

	"g2p-curation/config"
	"g2p-curation/providers"
	"g2p-curation/providers/europepmc"
	"g2p-curation/providers/pubmed"

	"go.uber.org/zap"
)

// NewLiteratureProvider returns the literature service selected by LITERATURE_PROVIDER.
func NewLiteratureProvider(cfg *config.Config, logger *zap.Logger) (providers.LiteratureProvider, error) {
	switch cfg.LiteratureProvider {
	case "europepmc":
		return europepmc.NewFetcher(cfg, logger), nil
	case "pubmed":
		return pubmed.NewFetcher(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown literature provider %q", cfg.LiteratureProvider)
	}
}
