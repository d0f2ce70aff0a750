package main

import (
	"encoding/json"
	"fmt"
	"os"

	"rwa-ledger/internal/bond"
	"rwa-ledger/internal/carbon"
	"rwa-ledger/internal/oil"
)

// assetsDocument is the instantiation file: the three aggregate seeds plus
// optional initial token balances per asset. Seeding happens only when an
// aggregate store reports NotInitialized, so restarts never reset totals.
type assetsDocument struct {
	Bond struct {
		Info            bond.Info         `json:"info"`
		InitialBalances map[string]uint64 `json:"initial_balances"`
	} `json:"bond"`
	Carbon struct {
		Info            carbon.ProjectInfo `json:"info"`
		InitialBalances map[string]uint64  `json:"initial_balances"`
	} `json:"carbon"`
	Oil struct {
		Info            oil.ReserveInfo   `json:"info"`
		InitialBalances map[string]uint64 `json:"initial_balances"`
	} `json:"oil"`
}

func loadAssetsDocument(path string) (assetsDocument, error) {
	var doc assetsDocument
	payload, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read assets file %s: %w", path, err)
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return doc, fmt.Errorf("parse assets file %s: %w", path, err)
	}
	return doc, nil
}
