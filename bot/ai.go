package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/docextract"
	"github.com/Deborah-9/PaperPilot/internal/telegramutil"
	"github.com/Deborah-9/PaperPilot/llm"
	"github.com/Deborah-9/PaperPilot/session"
)

// promptTextRunes bounds how much document text goes into one prompt.
const promptTextRunes = 12000

func (b *Bot) summarizePaper(ctx context.Context, s *session.Session, id string) error {
	p, err := b.paperForAction(ctx, s, id)
	if err != nil {
		return err
	}
	b.sendPlain(ctx, s.ChatID, "Summarizing…")

	res, err := b.llm.Chat(ctx, llm.Request{
		Model: b.model,
		Messages: []llm.Message{
			llm.System("You are a research assistant. Summarize the paper for a graduate student: problem, approach, key findings, significance. Keep it under 250 words."),
			llm.User(fmt.Sprintf("Title: %s\nAuthors: %s\nAbstract: %s",
				p.Title, strings.Join(p.Authors, ", "), p.Abstract)),
		},
	})
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	s.Paper = p
	s.Input = session.InputPaperQuestion
	text := "*" + escapeMD(p.Title) + "*\n\n" + escapeMD(res.Text) +
		"\n\n_Ask me anything about this paper, or send a command to move on\\._"
	return b.sendMarkdown(ctx, s.ChatID, text, nil)
}

// paperQuestionMessages builds an abstract-grounded prompt for a
// question about a summarized paper.
func paperQuestionMessages(p *arxiv.Paper, question string) []llm.Message {
	return []llm.Message{
		llm.System("Answer the user's question about the paper below using only its title, authors and abstract. Say so when the abstract doesn't contain the answer.\n\n" +
			fmt.Sprintf("Title: %s\nAuthors: %s\nAbstract: %s",
				p.Title, strings.Join(p.Authors, ", "), p.Abstract)),
		llm.User(question),
	}
}

func (b *Bot) answerPaperQuestion(ctx context.Context, s *session.Session, question string) error {
	if s.Paper == nil {
		s.Input = session.InputNone
		return b.runSearch(ctx, s, question, arxiv.SortRelevance)
	}
	res, err := b.llm.Chat(ctx, llm.Request{
		Model:    b.model,
		Messages: paperQuestionMessages(s.Paper, question),
	})
	if err != nil {
		return fmt.Errorf("paper question: %w", err)
	}
	return b.sendMarkdown(ctx, s.ChatID, escapeMD(res.Text), nil)
}

func (b *Bot) sendPaperPDF(ctx context.Context, s *session.Session, id string) error {
	p, err := b.paperForAction(ctx, s, id)
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(s.ChatID, tgbotapi.FileURL(p.PDFURL))
	doc.Caption = p.Title
	err = b.send(ctx, doc)
	if err == nil {
		return nil
	}
	// Telegram refuses some remote files; fetch the bytes ourselves.
	b.logger.Warn("pdf_upload_failed", "chat_id", s.ChatID, "paper_id", p.ID, "error", err.Error())

	var buf bytes.Buffer
	dlCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()
	if _, err := b.search.DownloadPDF(dlCtx, p, &buf); err != nil {
		b.logger.Warn("pdf_download_failed", "chat_id", s.ChatID, "paper_id", p.ID, "error", err.Error())
		b.sendPlain(ctx, s.ChatID, "Couldn't attach the PDF, here is the link: "+p.PDFURL)
		return nil
	}
	upload := tgbotapi.NewDocument(s.ChatID, tgbotapi.FileBytes{Name: p.ID + ".pdf", Bytes: buf.Bytes()})
	upload.Caption = p.Title
	if err := b.send(ctx, upload); err != nil {
		b.logger.Warn("pdf_upload_failed", "chat_id", s.ChatID, "paper_id", p.ID, "error", err.Error())
		b.sendPlain(ctx, s.ChatID, "Couldn't attach the PDF, here is the link: "+p.PDFURL)
	}
	return nil
}

var docPrompts = map[ActionKind]string{
	ActionDocSummary:   "Summarize this document in under 200 words.",
	ActionDocDetailed:  "Write a detailed summary of this document: goals, methods, findings, limitations. Use short sections.",
	ActionDocKeyPoints: "List the key points of this document as a bullet list.",
	ActionDocRelated:   "Suggest related research directions and papers a reader of this document should look at. Name concrete topics and search terms.",
	ActionDocGaps:      "Identify research gaps and open questions this document leaves. Be specific.",
}

func (b *Bot) analyzeDocument(ctx context.Context, s *session.Session, kind ActionKind) error {
	if s.Document == nil {
		b.sendPlain(ctx, s.ChatID, "Send me a PDF or TXT file first.")
		return nil
	}
	prompt, ok := docPrompts[kind]
	if !ok {
		return nil
	}
	b.sendPlain(ctx, s.ChatID, "Analyzing…")

	res, err := b.llm.Chat(ctx, llm.Request{
		Model: b.model,
		Messages: []llm.Message{
			llm.System("You are a research assistant analyzing a document for the user. " + prompt),
			llm.User(docextract.Truncate(s.Document.Text, promptTextRunes)),
		},
	})
	if err != nil {
		return fmt.Errorf("document analysis: %w", err)
	}
	return b.sendMarkdown(ctx, s.ChatID, escapeMD(res.Text), ptr(documentKeyboard()))
}

func (b *Bot) answerDocumentQuestion(ctx context.Context, s *session.Session, question string) error {
	if s.Document == nil {
		b.sendPlain(ctx, s.ChatID, "Send me a PDF or TXT file first.")
		return nil
	}
	res, err := b.llm.Chat(ctx, llm.Request{
		Model: b.model,
		Messages: []llm.Message{
			llm.System("Answer the user's question using only the document below. Say so when the document doesn't contain the answer.\n\n" +
				docextract.Truncate(s.Document.Text, promptTextRunes)),
			llm.User(question),
		},
	})
	if err != nil {
		return fmt.Errorf("document question: %w", err)
	}
	return b.sendMarkdown(ctx, s.ChatID, telegramutil.EscapeMarkdownV2(res.Text), ptr(documentKeyboard()))
}
