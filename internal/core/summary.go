package core

import "github.com/shopspring/decimal"

// NetWorth aggregates asset balances. DEBT balances are liabilities.
type NetWorth struct {
	TotalAssets      decimal.Decimal               `json:"totalAssets"`
	TotalLiabilities decimal.Decimal               `json:"totalLiabilities"`
	NetWorth         decimal.Decimal               `json:"netWorth"`
	ByType           map[AssetType]decimal.Decimal `json:"byType"`
}

// ComputeNetWorth sums balances per type and nets debts against the rest.
func ComputeNetWorth(assets []Asset) NetWorth {
	nw := NetWorth{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		ByType:           make(map[AssetType]decimal.Decimal),
	}
	for _, a := range assets {
		if a.Type == Debt {
			nw.TotalLiabilities = nw.TotalLiabilities.Add(a.Balance)
		} else {
			nw.TotalAssets = nw.TotalAssets.Add(a.Balance)
		}
		nw.ByType[a.Type] = nw.ByType[a.Type].Add(a.Balance)
	}
	nw.NetWorth = nw.TotalAssets.Sub(nw.TotalLiabilities)
	return nw
}

// ApplySummary is the result of a materialization pass.
type ApplySummary struct {
	AppliedCount        int `json:"appliedCount"`
	ExpiredDeletedCount int `json:"expiredDeletedCount"`
}
