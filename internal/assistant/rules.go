package assistant

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/recicla-soft/recicla/internal/report"
)

// Snapshot is the request-scoped data a reply may quote. It is recomputed per
// request, never cached between requests.
type Snapshot struct {
	AccountName string
	Stock       []report.StockRow
	Summary     report.Summary
	Month       string
}

// rule maps a set of keywords to a reply builder. Rules are evaluated in
// order; the first rule whose keyword appears in the normalised text wins.
type rule struct {
	keywords []string
	reply    func(p *message.Printer, snap Snapshot) string
}

var ptBR = language.MustParse("pt-BR")

var rules = []rule{
	{
		keywords: []string{"estoque", "stock"},
		reply: func(p *message.Printer, snap Snapshot) string {
			if len(snap.Stock) == 0 {
				return "Seu estoque está vazio. Registre uma aquisição para começar."
			}
			top := snap.Stock[0]
			qty, _ := top.TotalQuantity.Float64()
			return p.Sprintf("Você tem %d materiais em estoque. O maior é %s, com %.1f kg.", len(snap.Stock), top.Material, qty)
		},
	},
	{
		keywords: []string{"resumo", "mês", "mes", "summary"},
		reply: func(p *message.Printer, snap Snapshot) string {
			revenue, _ := snap.Summary.Revenue.Float64()
			expenses, _ := snap.Summary.TotalExpenses.Float64()
			return p.Sprintf("Em %s: %d vendas, receita de R$ %.2f e despesas de R$ %.2f.",
				snap.Month, snap.Summary.SalesCount, revenue, expenses)
		},
	},
	{
		keywords: []string{"venda", "vendas", "sale"},
		reply: func(p *message.Printer, snap Snapshot) string {
			if snap.Summary.LargestSale == nil {
				return "Nenhuma venda registrada neste mês."
			}
			amount, _ := snap.Summary.LargestSale.Amount.Float64()
			return p.Sprintf("Sua maior venda do mês foi de %s, no valor de R$ %.2f.",
				snap.Summary.LargestSale.Material, amount)
		},
	},
	{
		keywords: []string{"lucro", "profit"},
		reply: func(p *message.Printer, snap Snapshot) string {
			profit, _ := snap.Summary.Revenue.Sub(snap.Summary.TotalExpenses).Float64()
			if profit < 0 {
				return p.Sprintf("Seu resultado do mês está negativo em R$ %.2f.", -profit)
			}
			return p.Sprintf("Seu lucro do mês é de R$ %.2f.", profit)
		},
	},
	{
		keywords: []string{"olá", "ola", "oi", "bom dia", "boa tarde", "boa noite"},
		reply: func(p *message.Printer, snap Snapshot) string {
			if snap.AccountName != "" {
				return p.Sprintf("Olá, %s! Pergunte sobre estoque, vendas, lucro ou o resumo do mês.", snap.AccountName)
			}
			return "Olá! Pergunte sobre estoque, vendas, lucro ou o resumo do mês."
		},
	},
	{
		keywords: []string{"ajuda", "help"},
		reply: func(p *message.Printer, snap Snapshot) string {
			return "Posso responder sobre: estoque, vendas, lucro e o resumo do mês."
		},
	},
}

const fallback = "Não entendi. Digite \"ajuda\" para ver o que posso responder."

// Reply evaluates the ordered rule list against the text and renders the
// first match with pt-BR number formatting. It is a pure function of its
// inputs.
func Reply(text string, snap Snapshot) string {
	normalised := strings.ToLower(strings.TrimSpace(text))
	if normalised == "" {
		return fallback
	}
	p := message.NewPrinter(ptBR)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(normalised, kw) {
				return r.reply(p, snap)
			}
		}
	}
	return fallback
}
