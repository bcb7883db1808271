package bot

import (
	"fmt"
	"strings"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/compare"
	"github.com/Deborah-9/PaperPilot/internal/telegramutil"
	"github.com/Deborah-9/PaperPilot/search"
)

const abstractPreviewRunes = 500

func escapeMD(s string) string { return telegramutil.EscapeMarkdownV2(s) }

// formatPaper renders one result card in MarkdownV2.
func formatPaper(p *arxiv.Paper, position, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", telegramutil.EscapeMarkdownV2(p.Title))

	authors := strings.Join(p.Authors, ", ")
	if len(p.Authors) > 5 {
		authors = strings.Join(p.Authors[:5], ", ") + " et al."
	}
	fmt.Fprintf(&b, "👤 %s\n", telegramutil.EscapeMarkdownV2(authors))
	if !p.Published.IsZero() {
		fmt.Fprintf(&b, "📅 %s\n", telegramutil.EscapeMarkdownV2(p.Published.Format("2006-01-02")))
	}
	if p.PrimaryCategory != "" {
		fmt.Fprintf(&b, "🏷 %s\n", telegramutil.EscapeMarkdownV2(p.PrimaryCategory))
	}

	abstract := p.Abstract
	if runes := []rune(abstract); len(runes) > abstractPreviewRunes {
		abstract = string(runes[:abstractPreviewRunes]) + "…"
	}
	fmt.Fprintf(&b, "\n%s\n", telegramutil.EscapeMarkdownV2(abstract))
	fmt.Fprintf(&b, "\n[arXiv](%s)", p.AbsURL)
	if total > 0 {
		fmt.Fprintf(&b, "\n\n_%d of %d_", position, total)
	}
	return b.String()
}

// formatFilterSummary renders the advanced-search menu header.
func formatFilterSummary(m *search.Machine) string {
	f := m.Filters()
	var lines []string
	lines = append(lines, "*Advanced search*")
	if !f.Dates.IsZero() {
		lines = append(lines, fmt.Sprintf("📅 Dates: %s – %s",
			telegramutil.EscapeMarkdownV2(f.Dates.From.Format("2006-01-02")),
			telegramutil.EscapeMarkdownV2(f.Dates.To.Format("2006-01-02"))))
	}
	if f.Author != "" {
		lines = append(lines, "👤 Author: "+telegramutil.EscapeMarkdownV2(f.Author))
	}
	if len(f.Categories) > 0 {
		lines = append(lines, "🏷 Categories: "+telegramutil.EscapeMarkdownV2(strings.Join(f.Categories, ", ")))
	}
	if f.MinCitations > 0 {
		lines = append(lines, fmt.Sprintf("📈 Min citations: %d", f.MinCitations))
	}
	if len(lines) == 1 {
		lines = append(lines, "_No filters set yet\\._")
	}
	lines = append(lines, "", "Pick a filter to edit, then run the search\\.")
	return strings.Join(lines, "\n")
}

// formatComparisonReport renders similarity scores, shared terms and
// the model's analysis.
func formatComparisonReport(rep *compare.Report) string {
	var b strings.Builder
	b.WriteString("*Comparison*\n\n")
	for i, p := range rep.Papers {
		fmt.Fprintf(&b, "%d\\. %s\n", i+1, telegramutil.EscapeMarkdownV2(p.Title))
	}

	index := func(id string) int {
		for i, p := range rep.Papers {
			if p.ID == id {
				return i + 1
			}
		}
		return 0
	}
	b.WriteString("\n*Abstract similarity*\n")
	for _, s := range rep.Similarities {
		fmt.Fprintf(&b, "%d ↔ %d: %s%%\n", index(s.A), index(s.B),
			telegramutil.EscapeMarkdownV2(fmt.Sprintf("%.0f", s.Score*100)))
	}
	if len(rep.CommonTerms) > 0 {
		b.WriteString("\n*Shared terms:* " + telegramutil.EscapeMarkdownV2(strings.Join(rep.CommonTerms, ", ")) + "\n")
	}
	if rep.Analysis != "" {
		b.WriteString("\n" + telegramutil.EscapeMarkdownV2(rep.Analysis))
	}
	return b.String()
}

// formatDigest renders a notification digest.
func formatDigest(papers []arxiv.Paper) string {
	var b strings.Builder
	b.WriteString("*New papers for you*\n")
	for _, p := range papers {
		fmt.Fprintf(&b, "\n• [%s](%s)\n  %s\n",
			telegramutil.EscapeMarkdownV2(p.Title), p.AbsURL,
			telegramutil.EscapeMarkdownV2(p.Published.Format("2006-01-02")))
	}
	return b.String()
}
