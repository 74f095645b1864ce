package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jolanboyev/ehson-backend/internal/config"
	"github.com/jolanboyev/ehson-backend/internal/models"
	"github.com/jolanboyev/ehson-backend/internal/notify"
	"github.com/jolanboyev/ehson-backend/internal/service"
)

const (
	buttonDonate  = "💝 Xayriya Qilish"
	buttonHistory = "📜 To'lovlar Tarixi"
)

// webSections are keyboard entries whose content lives in the mini-app.
var webSections = []string{"E'lonlar", "Biz haqimizda", "Loyiha Jamoasi", "Aloqa", "Maxfiylik"}

type Bot struct {
	cfg      config.Config
	api      *tgbotapi.BotAPI
	log      *slog.Logger
	users    *service.UserService
	payments *service.PaymentService
	notices  <-chan notify.Notice
}

func NewBot(cfg config.Config, api *tgbotapi.BotAPI, log *slog.Logger, users *service.UserService, payments *service.PaymentService, notices <-chan notify.Notice) *Bot {
	return &Bot{
		cfg:      cfg,
		api:      api,
		log:      log,
		users:    users,
		payments: payments,
		notices:  notices,
	}
}

// Run polls Telegram updates and consumes payment notices until ctx is done.
// This loop is the sole consumer of the notice channel.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("telegram bot started")

	for {
		select {
		case update := <-updates:
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		case notice := <-b.notices:
			b.sendConfirmation(notice)
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	switch msg.Text {
	case buttonDonate:
		b.sendWithMarkup(msg.Chat.ID, "Xayriya qilish uchun platformani oching:", b.webAppKeyboard())
	case buttonHistory:
		b.handleHistory(ctx, msg)
	default:
		for _, section := range webSections {
			if msg.Text == section {
				b.sendWithMarkup(msg.Chat.ID, fmt.Sprintf("%s bo'limi web platformada mavjud.", section), b.webAppKeyboard())
				return
			}
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		if err := b.users.Register(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName); err != nil {
			b.log.Error("register user", "err", err)
			b.sendText(msg.Chat.ID, "Xatolik yuz berdi. Iltimos, qayta urinib ko'ring.")
			return
		}
		b.sendWithMarkup(msg.Chat.ID, "E-Ehson Professional ga xush kelibsiz!", b.mainKeyboard())
		b.sendWithMarkup(msg.Chat.ID, "Platformani oching:", b.webAppKeyboard())
	case "test_payment":
		b.handleTestPayment(ctx, msg)
	default:
		b.sendText(msg.Chat.ID, "Noma'lum buyruq. /start dan foydalaning.")
	}
}

func (b *Bot) handleHistory(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)
	payments, err := b.payments.History(ctx, userID)
	if err != nil {
		b.log.Error("payment history", "user", userID, "err", err)
		b.sendText(msg.Chat.ID, "Tarixni ko'rishda xatolik yuz berdi.")
		return
	}
	if len(payments) == 0 {
		b.sendText(msg.Chat.ID, "Hech qanday to'lov topilmadi.")
		return
	}

	var sb strings.Builder
	sb.WriteString("To'lovlar tarixi:\n")
	for _, p := range payments {
		fmt.Fprintf(&sb, "Miqdor: %.0f so'm, Status: %s, Vaqt: %s\n",
			p.Amount, p.Status, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	b.sendText(msg.Chat.ID, sb.String())
}

// handleTestPayment injects a synthetic successful payment. Manual
// verification aid, not reachable from the gateway.
func (b *Bot) handleTestPayment(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)
	if _, err := b.payments.RecordTestPayment(ctx, userID, 15000); err != nil {
		b.log.Error("test payment", "user", userID, "err", err)
		b.sendText(msg.Chat.ID, "Test to'lovi qo'shishda xatolik yuz berdi.")
		return
	}
	b.sendText(msg.Chat.ID, "Test to'lovi muvaffaqiyatli qo'shildi!")
}

// sendConfirmation delivers one payment confirmation. Best effort: a blocked
// bot or closed chat is logged and forgotten.
func (b *Bot) sendConfirmation(n notify.Notice) {
	statusLine := "❌ Bekor qilingan"
	if n.Status == models.PaymentSuccess {
		statusLine = "✅ Muvaffaqiyatli"
	}
	text := fmt.Sprintf("Siz %.0f so'm to'lov qildingiz. Status: %s", n.Amount, statusLine)
	if _, err := b.api.Send(tgbotapi.NewMessage(n.UserID, text)); err != nil {
		b.log.Error("send confirmation", "user", n.UserID, "err", err)
		return
	}
	b.log.Info("confirmation sent", "user", n.UserID)
}

func (b *Bot) mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		{
			tgbotapi.NewKeyboardButton(buttonDonate),
			tgbotapi.NewKeyboardButton(buttonHistory),
		},
	}
	for i := 0; i < len(webSections); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(webSections[i])}
		if i+1 < len(webSections) {
			row = append(row, tgbotapi.NewKeyboardButton(webSections[i+1]))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// webAppKeyboard links into the mini-app. The pinned bot library predates
// web_app buttons, so this is a plain URL button; Telegram still opens the
// page in its in-app browser.
func (b *Bot) webAppKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🌐 Veb Platformani Ochish", b.cfg.BaseURL+"/webapp"),
		),
	)
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("send message", "chat", chatID, "err", err)
	}
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat", chatID, "err", err)
	}
}
