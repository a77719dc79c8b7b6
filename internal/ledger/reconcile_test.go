package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
)

func won(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func asset(id int64, balance int64) *core.Asset {
	return &core.Asset{ID: id, Type: core.Cash, Name: "asset", Balance: won(balance)}
}

func TestApply(t *testing.T) {
	t.Run("income adds to source", func(t *testing.T) {
		src := asset(1, 1000)
		out := Apply(Effect{Kind: core.Income, Source: src, Amount: won(250)})
		assert.False(t, out.Skipped)
		assert.Equal(t, "1250", src.Balance.String())
		assert.Equal(t, 1, len(out.Touched))
	})

	t.Run("expense subtracts from source", func(t *testing.T) {
		src := asset(1, 100000)
		Apply(Effect{Kind: core.Expense, Source: src, Amount: won(20000)})
		assert.Equal(t, "80000", src.Balance.String())
	})

	t.Run("transfer moves value between assets", func(t *testing.T) {
		x, y := asset(1, 1000), asset(2, 500)
		out := Apply(Effect{Kind: core.Transfer, Source: x, Dest: y, Amount: won(5000)})
		assert.Equal(t, "-4000", x.Balance.String())
		assert.Equal(t, "5500", y.Balance.String())
		assert.Equal(t, 2, len(out.Touched))
	})

	t.Run("transfer without destination only debits source", func(t *testing.T) {
		x := asset(1, 1000)
		Apply(Effect{Kind: core.Transfer, Source: x, Amount: won(300)})
		assert.Equal(t, "700", x.Balance.String())
	})

	t.Run("missing source skips the whole effect", func(t *testing.T) {
		y := asset(2, 500)
		out := Apply(Effect{Kind: core.Transfer, Dest: y, Amount: won(5000)})
		assert.True(t, out.Skipped)
		assert.Equal(t, "500", y.Balance.String())
		assert.Zero(t, out.Touched)
	})
}

func TestReverseIsExactInverse(t *testing.T) {
	amounts := []string{"0", "1", "20000", "0.01", "123456789.987654321"}
	kinds := []core.CategoryType{core.Income, core.Expense, core.Transfer}
	for _, k := range kinds {
		for _, a := range amounts {
			t.Run(string(k)+"/"+a, func(t *testing.T) {
				src := &core.Asset{Balance: decimal.RequireFromString("1000.10")}
				dst := &core.Asset{Balance: decimal.RequireFromString("-3.333")}
				e := Effect{Kind: k, Source: src, Dest: dst, Amount: decimal.RequireFromString(a)}

				Apply(e)
				Reverse(e)
				assert.True(t, src.Balance.Equal(decimal.RequireFromString("1000.10")), "source %s", src.Balance)
				assert.True(t, dst.Balance.Equal(decimal.RequireFromString("-3.333")), "dest %s", dst.Balance)

				Reverse(e)
				Apply(e)
				assert.True(t, src.Balance.Equal(decimal.RequireFromString("1000.10")), "source %s", src.Balance)
				assert.True(t, dst.Balance.Equal(decimal.RequireFromString("-3.333")), "dest %s", dst.Balance)
			})
		}
	}
}

func TestReverse(t *testing.T) {
	src := asset(1, 80000)
	Reverse(Effect{Kind: core.Expense, Source: src, Amount: won(20000)})
	assert.Equal(t, "100000", src.Balance.String())
}

func TestResolveSource(t *testing.T) {
	explicit, def := asset(1, 0), asset(2, 0)

	assert.Equal(t, explicit, ResolveSource(core.Expense, explicit, def))
	assert.Equal(t, def, ResolveSource(core.Expense, nil, def))
	assert.Equal(t, def, ResolveSource(core.Income, nil, def))
	assert.Zero(t, ResolveSource(core.Transfer, nil, def))
	assert.Equal(t, explicit, ResolveSource(core.Transfer, explicit, def))
	assert.Zero(t, ResolveSource(core.Expense, nil, nil))
}
