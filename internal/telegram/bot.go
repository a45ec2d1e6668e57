package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-trip-planner/internal/app"
	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/ghost"
	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/logger"
	"ai-trip-planner/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
)

const (
	planTimeout         = 3 * time.Minute
	maxMessageLength    = 4000
	promptTokenAlertMax = 6000
	draftCallbackPrefix = "draft|"
)

// TripService is what the bot needs from the application.
type TripService interface {
	PlanTrip(ctx context.Context, userID string, req itinerary.TripRequest, opts app.PlanOptions) (app.PlanOutcome, error)
	LastPlan(ctx context.Context, userID string) (itinerary.StoredPlan, error)
	PublishStored(ctx context.Context, userID, runID string, live bool) (*ghost.Post, error)
	Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
	Health() metrics.SysHealth
}

// sender is the subset of tgbotapi.BotAPI used by the bot.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API and the trip planner.
type Bot struct {
	api     sender
	service TripService
	cfg     *config.Config
	log     *logger.Logger
}

// NewBot initializes the Telegram Bot and sets the webhook.
func NewBot(cfg *config.Config, service TripService, log *logger.Logger) (*Bot, error) {
	if log == nil {
		log = logger.Nop()
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info("authorized on telegram", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Info("webhook set", "description", resp.Description)

	return newBot(api, service, cfg, log), nil
}

func newBot(api sender, service TripService, cfg *config.Config, log *logger.Logger) *Bot {
	return &Bot{api: api, service: service, cfg: cfg, log: log.With("component", "TelegramBot")}
}

// RegisterRoutes registers the webhook and health endpoints on router.
func (b *Bot) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/webhook", b.handleWebhook).Methods(http.MethodPost)
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.log.Warn("error parsing update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	switch {
	case update.CallbackQuery != nil:
		if update.CallbackQuery.From == nil || !b.isAllowed(update.CallbackQuery.From.ID) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil && update.Message.Chat != nil:
		if !b.isAllowed(update.Message.From.ID) {
			b.log.Warn("unauthorized access attempt", "user_id", update.Message.From.ID, "username", update.Message.From.UserName)
			return
		}
		go b.processMessage(update.Message)
	}
}

func (b *Bot) isAllowed(userID int64) bool {
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), planTimeout)
	defer cancel()

	text := strings.TrimSpace(msg.Text)
	switch command(text) {
	case "start", "help":
		b.sendMarkdown(msg.Chat.ID, helpText)
	case "last":
		b.handleLastPlan(ctx, msg)
	case "metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
			return
		}
		b.handleMetricsCommand(ctx, msg.Chat.ID)
	case "":
		b.handlePlanRequest(ctx, msg)
	default:
		b.sendMarkdown(msg.Chat.ID, "🤔 Unknown command.\n\n"+helpText)
	}
}

// command returns the bot command in text without the slash or @botname,
// or "" when text is not a command.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0][1:]
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}

const helpText = "🧭 *Trip Planner*\n\n" +
	"Send a trip request as JSON with `preferences`, `attractions` and `research` to get a day-by-day itinerary.\n\n" +
	"/last - show your most recent itinerary\n" +
	"/metrics - usage report (admin)"

func (b *Bot) handlePlanRequest(ctx context.Context, msg *tgbotapi.Message) {
	req, err := parseTripRequest(msg.Text)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, fmt.Sprintf("❌ *Could not read the trip request:* %s\n\n%s", escapeMarkdown(err.Error()), helpText))
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, "🧭 *Planning...*\n(Scheduling stops and checking routes)")
	reply.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(reply)
	if err != nil {
		b.log.Error("failed to send initial reply", "error", err)
		return
	}

	userID := strconv.FormatInt(msg.From.ID, 10)
	out, err := b.service.PlanTrip(ctx, userID, req, app.PlanOptions{Save: true})
	if err != nil {
		b.log.Error("planning failed", "user_id", userID, "error", err)
		b.edit(msg.Chat.ID, sent.MessageID, fmt.Sprintf("❌ *Error planning trip:*\n```\n%s\n```", strings.ReplaceAll(err.Error(), "`", "'")), nil)
		return
	}

	b.alertOnGeneration(out.Result)

	title := itinerary.Title(req.Preferences, len(out.Result.Days))
	var keyboard *tgbotapi.InlineKeyboardMarkup
	if len(out.SideEffectErrors) == 0 && out.Result.Meta.RunID != "" {
		k := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Save as blog draft", draftCallbackPrefix+out.Result.Meta.RunID),
		))
		keyboard = &k
	}
	b.edit(msg.Chat.ID, sent.MessageID, formatItineraryMarkdown(title, out.Result), keyboard)
}

func parseTripRequest(text string) (itinerary.TripRequest, error) {
	var req itinerary.TripRequest
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(strings.TrimSuffix(text, "```"), "```json")
	text = strings.TrimPrefix(text, "```")
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		return req, errors.New("expected a JSON object")
	}
	if err := json.Unmarshal([]byte(text), &req); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	if req.Preferences.DestinationCity.String() == "" && len(req.Attractions) == 0 {
		return req, errors.New("missing destination_city and attractions")
	}
	return req, nil
}

func (b *Bot) handleLastPlan(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)
	plan, err := b.service.LastPlan(ctx, userID)
	if errors.Is(err, itinerary.ErrPlanNotFound) {
		b.sendMarkdown(msg.Chat.ID, "🗒 No itineraries yet. Send a trip request to get started.")
		return
	}
	if err != nil {
		b.log.Error("failed to load last plan", "user_id", userID, "error", err)
		b.sendMarkdown(msg.Chat.ID, "❌ Error loading your last itinerary.")
		return
	}
	title := itinerary.Title(plan.Request.Preferences, len(plan.Result.Days))
	b.sendMarkdown(msg.Chat.ID, formatItineraryMarkdown(title, plan.Result))
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warn("failed to answer callback", "error", err)
	}
	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	runID, ok := strings.CutPrefix(query.Data, draftCallbackPrefix)
	if !ok || runID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	userID := strconv.FormatInt(query.From.ID, 10)
	post, err := b.service.PublishStored(ctx, userID, runID, false)
	if err != nil {
		b.log.Error("failed to create draft", "user_id", userID, "run_id", runID, "error", err)
		b.sendMarkdown(query.Message.Chat.ID, fmt.Sprintf("❌ *Could not save the draft:* %s", escapeMarkdown(err.Error())))
		return
	}
	text := fmt.Sprintf("✅ *Draft saved!*\n\n*Title:* %s", escapeMarkdown(post.Title))
	if post.URL != "" {
		text += "\n*URL:* " + post.URL
	}
	b.sendMarkdown(query.Message.Chat.ID, text)
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	usage, err := b.service.Usage(ctx, 7)
	if err != nil {
		b.log.Error("failed to fetch metrics", "error", err)
		b.sendMarkdown(chatID, "❌ Error fetching metrics.")
		return
	}
	b.sendMarkdown(chatID, formatMetricsMarkdown(usage, b.service.Health()))
}

func formatMetricsMarkdown(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Planning Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d runs, %d fallback)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.FallbackRuns)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataSize)
	return sb.String()
}

// alertOnGeneration tells the admin about unavailable generation and
// oversized prompts.
func (b *Bot) alertOnGeneration(result itinerary.Result) {
	if result.Meta.LLMError != "" {
		b.sendAdminAlert(fmt.Sprintf("⚠️ *Generation unavailable*\nRun: `%s`\n%s", result.Meta.RunID, escapeMarkdown(result.Meta.LLMError)))
	}
	if u := result.Generation.Usage; u.PromptTokens > promptTokenAlertMax {
		b.sendAdminAlert(fmt.Sprintf("⚠️ *Context Bloat Alert*\nAgent: %s\nModel: %s\nPrompt Tokens: %d",
			result.Generation.AgentName, escapeMarkdown(u.Model), u.PromptTokens))
	}
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.sendMarkdown(b.cfg.AdminTelegramID, text)
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, truncate(text))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, truncate(text))
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.log.Warn("failed to edit message", "chat_id", chatID, "error", err)
	}
}
