package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casamira/internal/events"
	"casamira/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the part of the Telegram bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// StaffNotifier forwards booking and feedback events to the staff Telegram
// chat. Events are queued and sent from a single worker goroutine with
// exponential backoff, so a slow Telegram API never blocks request handling.
type StaffNotifier struct {
	bot    Sender
	chatID int64
	retry  RetryPolicy
	queue  chan string
	logger *zerolog.Logger
}

func NewStaffNotifier(bot Sender, chatID int64, retry RetryPolicy, logger *zerolog.Logger) *StaffNotifier {
	retry = retry.withDefaults()

	return &StaffNotifier{
		bot:    bot,
		chatID: chatID,
		retry:  retry,
		queue:  make(chan string, models.NotifyQueueSize),
		logger: logger,
	}
}

// Subscribe attaches the notifier to the event bus.
func (n *StaffNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleBookingEvent("New booking request"))
	bus.Subscribe(events.EventBookingStatusChanged, n.handleBookingEvent("Booking status changed"))
	bus.Subscribe(events.EventBookingDeleted, n.handleBookingEvent("Booking deleted"))
	bus.Subscribe(events.EventFeedbackReceived, n.handleFeedbackEvent)
}

// Start drains the queue until the context is cancelled.
func (n *StaffNotifier) Start(ctx context.Context) {
	n.logger.Info().Int64("chat_id", n.chatID).Msg("staff notifier started")
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-n.queue:
			n.sendWithRetry(ctx, text)
		}
	}
}

func (n *StaffNotifier) handleBookingEvent(title string) events.EventHandler {
	return func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}

		text := fmt.Sprintf("%s #%d\nGuest: %s\nRoom: %s, %d guest(s)\nDates: %s – %s\nStatus: %s",
			title, payload.BookingID, payload.GuestName, payload.RoomType,
			payload.Guests, payload.CheckIn, payload.CheckOut, payload.Status)
		if payload.ChangedBy != "" {
			text += fmt.Sprintf("\nBy: %s", payload.ChangedBy)
		}

		n.enqueue(text)
		return nil
	}
}

func (n *StaffNotifier) handleFeedbackEvent(event *events.Event) error {
	var payload events.FeedbackEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	n.enqueue(fmt.Sprintf("New feedback #%d from %s (%s):\n%s",
		payload.FeedbackID, payload.Name, payload.Email, payload.Message))
	return nil
}

// enqueue drops the message when the queue is full rather than blocking the
// request path.
func (n *StaffNotifier) enqueue(text string) {
	select {
	case n.queue <- text:
	default:
		n.logger.Warn().Msg("notification queue full, dropping message")
	}
}

func (n *StaffNotifier) sendWithRetry(ctx context.Context, text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)

	var lastErr error
	for attempt := 1; attempt <= n.retry.MaxRetries; attempt++ {
		if _, lastErr = n.bot.Send(msg); lastErr == nil {
			return
		}

		n.logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("telegram send failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(n.retry.NextDelay(attempt)):
		}
	}

	n.logger.Error().Err(lastErr).Msg("notification dropped after retries")
}
