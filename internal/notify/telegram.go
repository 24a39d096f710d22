package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/backoffice/internal/archive"
	"gitlab.com/yelinaung/backoffice/internal/logger"
	"gitlab.com/yelinaung/backoffice/internal/report"
)

// TelegramNotifier sends an HTML summary of each pass to admin chats and,
// when an archive was written, its CSV export.
type TelegramNotifier struct {
	api     TelegramAPI
	chatIDs []int64
}

// NewTelegramNotifier creates a notifier over an existing client.
func NewTelegramNotifier(api TelegramAPI, chatIDs []int64) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatIDs: chatIDs}
}

// DialTelegram creates a Telegram client for the token and wraps it.
func DialTelegram(token string, chatIDs []int64) (*TelegramNotifier, error) {
	b, err := tgbot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewTelegramNotifier(b, chatIDs), nil
}

// NotifyArchive sends the summary to every admin chat. A failing chat does
// not stop the others.
func (n *TelegramNotifier) NotifyArchive(ctx context.Context, result *archive.Result) error {
	text := FormatArchiveMessage(result)

	var csvData []byte
	if result.Archive != nil {
		data, err := report.ArchiveCSV(result.Archive)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to build archive CSV for telegram")
		} else {
			csvData = data
		}
	}

	var errs []error
	for _, chatID := range n.chatIDs {
		_, err := n.api.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to send archive summary")
			errs = append(errs, fmt.Errorf("failed to notify chat: %w", err))
			continue
		}

		if csvData == nil {
			continue
		}
		filename := report.ArchiveFilename(result.Archive.Month, result.Archive.Year, "csv")
		_, err = n.api.SendDocument(ctx, &tgbot.SendDocumentParams{
			ChatID:    chatID,
			Document:  &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(csvData)},
			Caption:   fmt.Sprintf("📄 %s", filename),
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to send archive CSV")
			errs = append(errs, fmt.Errorf("failed to send archive CSV: %w", err))
		}
	}
	return errors.Join(errs...)
}

// FormatArchiveMessage renders a pass result as Telegram HTML.
func FormatArchiveMessage(r *archive.Result) string {
	var b strings.Builder
	period := fmt.Sprintf("%s/%d", report.MonthName(r.Period.Month), r.Period.Year)

	switch r.Status {
	case archive.StatusArchived:
		fmt.Fprintf(&b, "✅ <b>Arquivo mensal %s concluído</b>\n", period)
	case archive.StatusPartial:
		fmt.Fprintf(&b, "⚠️ <b>Arquivo mensal %s gravado, limpeza incompleta</b>\n", period)
	case archive.StatusAlreadyArchived:
		fmt.Fprintf(&b, "ℹ️ <b>%s já estava arquivado</b>\n", period)
	default:
		fmt.Fprintf(&b, "❌ <b>Falha no arquivo mensal %s</b> (etapa %s)\n", period, r.Step)
	}

	if a := r.Archive; a != nil {
		fmt.Fprintf(&b, "\nReceitas: <code>%s</code>\n", report.FormatBRL(a.TotalRevenue))
		fmt.Fprintf(&b, "Despesas: <code>%s</code>\n", report.FormatBRL(a.TotalExpenses))
		fmt.Fprintf(&b, "Lucro líquido: <code>%s</code>\n", report.FormatBRL(a.NetProfit))
		fmt.Fprintf(&b, "\n%d faturas, %d despesas arquivadas\n", len(a.Invoices), len(a.Expenses))
		fmt.Fprintf(&b, "Removidas: %d faturas, %d despesas\n", r.InvoicesPruned, r.ExpensesPruned)
	}

	if r.Err != nil {
		fmt.Fprintf(&b, "\nErro: <code>%s</code>\n", html.EscapeString(r.Err.Error()))
	}
	for _, err := range r.PruneErrors {
		fmt.Fprintf(&b, "Erro na limpeza: <code>%s</code>\n", html.EscapeString(err.Error()))
	}
	fmt.Fprintf(&b, "\n<i>%s</i>", time.Now().Format("02/01/2006 15:04"))
	return b.String()
}
