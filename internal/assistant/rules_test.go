package assistant

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/recicla-soft/recicla/internal/report"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func snapshot() Snapshot {
	return Snapshot{
		AccountName: "Maria",
		Month:       "2026-03",
		Stock: []report.StockRow{
			{MaterialID: 1, Material: "PET", TotalQuantity: dec("12.5"), TotalValue: dec("-31.25")},
			{MaterialID: 2, Material: "Vidro", TotalQuantity: dec("3"), TotalValue: dec("-1.50")},
		},
		Summary: report.Summary{
			SalesCount:    2,
			Revenue:       dec("20.00"),
			TotalExpenses: dec("32.75"),
			LargestSale:   &report.SaleHighlight{Material: "PET", Amount: dec("12.00")},
		},
	}
}

func TestReplyStock(t *testing.T) {
	reply := Reply("quanto tenho em estoque?", snapshot())
	require.Contains(t, reply, "PET")
	require.Contains(t, reply, "2 materiais")
}

func TestReplyStockEmpty(t *testing.T) {
	reply := Reply("estoque", Snapshot{})
	require.Contains(t, reply, "vazio")
}

func TestReplySummary(t *testing.T) {
	reply := Reply("me mostra o resumo", snapshot())
	require.Contains(t, reply, "2026-03")
	require.Contains(t, reply, "2 vendas")
}

func TestReplyLargestSale(t *testing.T) {
	reply := Reply("qual foi a maior venda?", snapshot())
	require.Contains(t, reply, "PET")
	require.Contains(t, reply, "12,00")
}

func TestReplyNoSales(t *testing.T) {
	reply := Reply("vendas", Snapshot{})
	require.Contains(t, reply, "Nenhuma venda")
}

func TestReplyProfit(t *testing.T) {
	reply := Reply("qual meu lucro?", snapshot())
	require.Contains(t, reply, "negativo")
	require.Contains(t, reply, "12,75")
}

func TestReplyGreetingUsesName(t *testing.T) {
	reply := Reply("Olá!", snapshot())
	require.Contains(t, reply, "Maria")
}

func TestReplyFallback(t *testing.T) {
	reply := Reply("xyzzy", snapshot())
	require.Contains(t, reply, "ajuda")

	require.Equal(t, reply, Reply("   ", snapshot()))
}

func TestReplyIsPure(t *testing.T) {
	snap := snapshot()
	first := Reply("estoque", snap)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Reply("estoque", snap))
	}
}

func TestRuleOrderMattersForOverlappingKeywords(t *testing.T) {
	// "resumo de vendas" matches both the summary and the sales rules;
	// the summary rule is listed first and must win.
	reply := Reply("resumo de vendas", snapshot())
	require.True(t, strings.Contains(reply, "receita"))
}
