package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/Deborah-9/PaperPilot/docextract"
	"github.com/Deborah-9/PaperPilot/session"
)

// downloadTimeout bounds fetching an uploaded file from Telegram.
const downloadTimeout = 30 * time.Second

func (b *Bot) handleDocument(ctx context.Context, s *session.Session, msg *tgbotapi.Message) error {
	doc := msg.Document
	if int64(doc.FileSize) > docextract.MaxFileSize {
		b.sendPlain(ctx, s.ChatID, "That file is over 20 MB, which is more than I can handle.")
		return nil
	}
	b.logger.Info("document_received", "chat_id", s.ChatID, "file_name", doc.FileName, "size", doc.FileSize)

	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return fmt.Errorf("resolve file: %w", err)
	}

	dlCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(dlCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download document: unexpected status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if b.docCache != "" {
		path, f, err := b.spoolUpload(doc.FileName, resp.Body)
		if err != nil {
			return fmt.Errorf("spool document: %w", err)
		}
		defer f.Close()
		body = f
		b.logger.Debug("document_cached", "chat_id", s.ChatID, "path", path)
	}

	extracted, err := docextract.Extract(doc.FileName, body, int64(doc.FileSize))
	switch {
	case errors.Is(err, docextract.ErrUnsupported):
		b.sendPlain(ctx, s.ChatID, "I can only read PDF and TXT files.")
		return nil
	case errors.Is(err, docextract.ErrTooLarge):
		b.sendPlain(ctx, s.ChatID, "That file is over 20 MB, which is more than I can handle.")
		return nil
	case errors.Is(err, docextract.ErrEmpty):
		b.sendPlain(ctx, s.ChatID, "I couldn't find any text in that file.")
		return nil
	case err != nil:
		return fmt.Errorf("extract document: %w", err)
	}

	s.Document = extracted
	s.Input = session.InputNone

	note := "Got it."
	if extracted.Academic {
		note = "Looks like a research paper."
	}
	text := escapeMD(note) + " What should I do with *" + escapeMD(doc.FileName) + "*?"
	return b.sendMarkdown(ctx, s.ChatID, text, ptr(documentKeyboard()))
}

// spoolUpload writes the download into the cache directory under a
// random name and returns the file positioned at the start. The prune
// loop removes spooled files later.
func (b *Bot) spoolUpload(fileName string, r io.Reader) (string, *os.File, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	path := filepath.Join(b.docCache, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(f, io.LimitReader(r, docextract.MaxFileSize+1)); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, err
	}
	return path, f, nil
}
