package main

import (
	"encoding/json"
	"fmt"
	"io"

	"cbthelper/internal/engine"
	"cbthelper/internal/logging"
	"cbthelper/internal/store"
)

// openEngine opens the configured store and builds an engine on it. The
// caller closes the store.
func openEngine() (*engine.Engine, store.Store, error) {
	st, err := store.New(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	eng, err := engine.New(cfg.EngineConfig(), engine.WithBackend(st))
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	logging.New("cli").Debug("engine ready", "store", cfg.Store.Driver, "path", cfg.Store.Path)
	return eng, st, nil
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		logging.New("cli").Warn("close store", "error", err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
