package pipeline

import (
	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/ledger"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
)

// OpenResolver builds the output-state resolver selected by cfg.State. The
// returned close function must be called when the resolver is no longer
// used.
func OpenResolver(cfg *config.Config) (outputstate.Resolver, func() error, error) {
	onDisk := &outputstate.PrefixResolver{
		Dir:    cfg.Paths.Output,
		Naming: outputstate.NewNaming(cfg.Prefixes, cfg.Paths.OutputExt),
	}
	if cfg.State.Backend == config.StateBackendPrefix {
		return onDisk, func() error { return nil }, nil
	}

	store, err := ledger.Open(cfg.State.Ledger)
	if err != nil {
		return nil, nil, err
	}
	return &outputstate.Layered{Primary: store, Fallback: onDisk}, store.Close, nil
}
