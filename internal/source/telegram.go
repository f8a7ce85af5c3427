package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-matrixgram/internal/imaging"
)

// ErrSourceClosed is returned by Next once the update stream has ended.
var ErrSourceClosed = errors.New("message source closed")

// TelegramConfig configures the bot-backed source.
type TelegramConfig struct {
	Token string
	// OwnerID receives startup info and forwarded private messages; 0 disables both.
	OwnerID int64
	// MaxPayloadBytes caps a single download. Defaults to 8 MiB.
	MaxPayloadBytes int64
	// PollTimeout is the long-poll window in seconds. Defaults to 120.
	PollTimeout int
}

// Telegram long-polls a bot for stickers and photos and yields their image
// payloads. Non-animated stickers arrive as WebP, photos as JPEG.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	cfg     TelegramConfig
	log     zerolog.Logger
	updates tgbotapi.UpdatesChannel
	client  *http.Client
}

// NewTelegram authenticates the bot and starts receiving updates.
func NewTelegram(cfg TelegramConfig, log zerolog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = 8 << 20
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 120
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.PollTimeout

	t := &Telegram{
		bot:     bot,
		cfg:     cfg,
		log:     log.With().Str("source", "telegram").Logger(),
		updates: bot.GetUpdatesChan(u),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	t.log.Info().Str("bot", bot.Self.UserName).Msg("connected")
	t.notifyOwner(fmt.Sprintf("online as @%s, send a sticker or photo to display it", bot.Self.UserName))
	return t, nil
}

// Next blocks until a displayable payload arrives. Messages that carry no
// image (commands, text) are handled inline and skipped.
func (t *Telegram) Next(ctx context.Context) (Payload, error) {
	for {
		select {
		case <-ctx.Done():
			return Payload{}, ctx.Err()
		case upd, ok := <-t.updates:
			if !ok {
				return Payload{}, ErrSourceClosed
			}
			p, ok, err := t.handle(ctx, upd)
			if err != nil {
				t.log.Warn().Err(err).Msg("update handling failed")
				continue
			}
			if ok {
				return p, nil
			}
		}
	}
}

// Close stops the update stream.
func (t *Telegram) Close() {
	t.bot.StopReceivingUpdates()
}

func (t *Telegram) handle(ctx context.Context, upd tgbotapi.Update) (Payload, bool, error) {
	msg := upd.Message
	if msg == nil {
		return Payload{}, false, nil
	}
	t.log.Debug().Int("message_id", msg.MessageID).Int64("chat", msg.Chat.ID).Msg("update")

	if t.cfg.OwnerID != 0 && msg.Chat.IsPrivate() && msg.Chat.ID != t.cfg.OwnerID {
		fwd := tgbotapi.NewForward(t.cfg.OwnerID, msg.Chat.ID, msg.MessageID)
		if _, err := t.bot.Send(fwd); err != nil {
			t.log.Debug().Err(err).Msg("forward to owner failed")
		}
	}

	switch msg.Command() {
	case "start", "help":
		t.reply(msg.Chat.ID, "Hello! Send a sticker or a photo to display it on the panel")
		return Payload{}, false, nil
	}

	if msg.Sticker != nil && (msg.Sticker.IsAnimated || msg.Sticker.IsVideo) {
		t.reply(msg.Chat.ID, "Animated stickers are not supported!")
		return Payload{}, false, nil
	}

	fileID, format, ok := classify(msg)
	if !ok {
		return Payload{}, false, nil
	}

	t.chatAction(msg.Chat.ID)
	data, err := t.download(ctx, fileID)
	if err != nil {
		return Payload{}, false, fmt.Errorf("download %s: %w", fileID, err)
	}
	t.log.Info().Int("bytes", len(data)).Stringer("format", format).Msg("payload received")
	return Payload{Data: data, Format: format, Caption: msg.Caption}, true, nil
}

// classify picks the file to fetch from a message and its container format.
// Stickers prefer the smaller thumbnail; photos use the largest rendition.
func classify(msg *tgbotapi.Message) (fileID string, format imaging.Format, ok bool) {
	if s := msg.Sticker; s != nil {
		if s.Thumbnail != nil {
			return s.Thumbnail.FileID, imaging.FormatWebP, true
		}
		return s.FileID, imaging.FormatWebP, true
	}
	if len(msg.Photo) > 0 {
		best := msg.Photo[0]
		for _, ps := range msg.Photo[1:] {
			if ps.Width*ps.Height > best.Width*best.Height {
				best = ps
			}
		}
		return best.FileID, imaging.FormatJPEG, true
	}
	return "", 0, false
}

func (t *Telegram) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, t.cfg.MaxPayloadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > t.cfg.MaxPayloadBytes {
		return nil, fmt.Errorf("payload exceeds %d byte cap", t.cfg.MaxPayloadBytes)
	}
	return data, nil
}

func (t *Telegram) reply(chatID int64, text string) {
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		t.log.Debug().Err(err).Msg("reply failed")
	}
}

func (t *Telegram) chatAction(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatUploadPhoto)
	if _, err := t.bot.Request(action); err != nil {
		t.log.Debug().Err(err).Msg("chat action failed")
	}
}

func (t *Telegram) notifyOwner(text string) {
	if t.cfg.OwnerID == 0 {
		return
	}
	t.reply(t.cfg.OwnerID, text)
}
