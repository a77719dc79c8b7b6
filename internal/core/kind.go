package core

// EffectiveKind resolves how an entry in category c moves money. The
// savings/investment category moves value between assets like a transfer
// whatever its declared type.
func EffectiveKind(c Category) CategoryType {
	if c.Type == Transfer || c.Name == SavingsInvestmentCategory {
		return Transfer
	}
	return c.Type
}

// UsesDefaultAsset reports whether entries of kind k fall back to the default
// asset when no source is given. Transfers always need explicit assets.
func UsesDefaultAsset(k CategoryType) bool {
	return k == Income || k == Expense
}
