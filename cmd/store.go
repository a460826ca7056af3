package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	_ "github.com/krizmartin/profile-matcher/internal/casestore/file"
	_ "github.com/krizmartin/profile-matcher/internal/casestore/mysql"
	_ "github.com/krizmartin/profile-matcher/internal/casestore/postgres"
	"github.com/krizmartin/profile-matcher/internal/config"
)

// openStore opens the case store, letting the persistent flags win over the
// environment. --data-dir alone retargets the default file backend as well.
// Callers must Close the returned store.
func openStore(ctx context.Context, cfg *config.Config) (casestore.Store, error) {
	if dataDir != "" {
		cfg.Store.DataDir = dataDir
		if storeURI == "" && os.Getenv("STORE_URI") == "" {
			cfg.Store.URI = "file://" + dataDir
		}
	}
	if storeURI != "" {
		cfg.Store.URI = storeURI
	}

	st, err := casestore.Open(ctx, cfg.Store.URI, casestore.Options{
		DataDir:      cfg.Store.DataDir,
		MaxOpenConns: cfg.Store.MaxOpenConns,
		MaxIdleConns: cfg.Store.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open store: %w", err)
	}
	return st, nil
}

// selectCases resolves the case set named on the command line: one slug
// argument, or every stored case with --all.
func selectCases(ctx context.Context, st casestore.Store, args []string, all bool) ([]casestore.PersonCase, error) {
	if all {
		cases, err := st.ListCases(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not list cases: %w", err)
		}
		if len(cases) == 0 {
			return nil, errors.New("the store has no cases yet, add one with 'case add'")
		}
		return cases, nil
	}

	if len(args) == 0 {
		return nil, errors.New("pass a case slug or use --all")
	}
	person, err := st.GetCase(ctx, args[0])
	if err != nil {
		return nil, fmt.Errorf("could not load case %s: %w", args[0], err)
	}
	return []casestore.PersonCase{*person}, nil
}
