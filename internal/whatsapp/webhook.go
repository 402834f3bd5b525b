package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Webhook terminates the platform's webhook calls: subscription
// verification on GET, signed event delivery on POST. Signature checking
// is the adapter's job; the bot behind it never sees raw payloads.
type Webhook struct {
	bot         *Bot
	verifyToken string
	appSecret   string
}

func NewWebhook(bot *Bot, verifyToken, appSecret string) *Webhook {
	return &Webhook{bot: bot, verifyToken: verifyToken, appSecret: appSecret}
}

// Verify answers the platform's subscription handshake: echo hub.challenge
// when the verify token matches, 403 otherwise.
func (wh *Webhook) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == wh.verifyToken {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	w.WriteHeader(http.StatusForbidden)
}

// Receive handles inbound event deliveries. Handling failures are logged,
// not returned: the platform retries non-200 responses, and replaying a
// checkout is worse than dropping a reply.
func (wh *Webhook) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !wh.validSignature(body, r.Header.Get("X-Hub-Signature-256")) {
		slog.WarnContext(r.Context(), "webhook signature mismatch")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.WarnContext(r.Context(), "webhook payload unparseable", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, msg := range payload.messages() {
		if err := wh.dispatch(r, msg); err != nil {
			slog.ErrorContext(r.Context(), "webhook event failed",
				"from", msg.From, "type", msg.Type, "error", err)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (wh *Webhook) dispatch(r *http.Request, msg inboundMessage) error {
	ctx := r.Context()
	switch {
	case msg.Type == "text" && msg.Text != nil:
		return wh.bot.HandleText(ctx, msg.From, msg.Text.Body)
	case msg.Type == "interactive" && msg.Interactive != nil && msg.Interactive.ButtonReply != nil:
		return wh.bot.HandleButton(ctx, msg.From, msg.Interactive.ButtonReply.ID)
	case msg.Type == "interactive" && msg.Interactive != nil && msg.Interactive.ProductAction != nil:
		return wh.bot.HandleProductSelected(ctx, msg.From, msg.Interactive.ProductAction.ProductRetailerID)
	default:
		slog.InfoContext(ctx, "ignoring webhook event", "from", msg.From, "type", msg.Type)
		return nil
	}
}

// validSignature checks X-Hub-Signature-256 ("sha256=<hex>") against an
// HMAC-SHA256 of the raw body keyed with the app secret. Constant-time
// compare, and an empty configured secret disables the check (local dev).
func (wh *Webhook) validSignature(body []byte, header string) bool {
	if wh.appSecret == "" {
		return true
	}
	provided, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	mac := hmac.New(sha256.New, []byte(wh.appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(provided))
}

// Inbound payload shapes, trimmed to the fields the bot consumes.

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

func (p webhookPayload) messages() []inboundMessage {
	var out []inboundMessage
	for _, e := range p.Entry {
		for _, c := range e.Changes {
			out = append(out, c.Value.Messages...)
		}
	}
	return out
}

type inboundMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply,omitempty"`
		ProductAction *struct {
			ProductRetailerID string `json:"product_retailer_id"`
		} `json:"product_action,omitempty"`
	} `json:"interactive,omitempty"`
}
