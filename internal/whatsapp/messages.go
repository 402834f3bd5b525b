package whatsapp

// Outbound replies are a closed set of tagged variants constructed by the
// adapter. The core never builds channel payloads; it returns orders and
// typed errors, and the bot renders them into one of these.

// Reply is a message the bot can send back over the chat channel. The
// unexported payload method seals the set to the variants defined here.
type Reply interface {
	payload() map[string]any
}

// TextReply is a plain text message.
type TextReply struct {
	Body string
}

func (r TextReply) payload() map[string]any {
	return map[string]any{
		"type": "text",
		"text": map[string]any{"body": r.Body},
	}
}

// Button is one reply button of a ButtonMenuReply.
type Button struct {
	ID    string
	Title string
}

// ButtonMenuReply is an interactive message with up to three reply buttons.
type ButtonMenuReply struct {
	Body    string
	Footer  string
	Buttons []Button
}

func (r ButtonMenuReply) payload() map[string]any {
	buttons := make([]map[string]any, 0, len(r.Buttons))
	for _, b := range r.Buttons {
		buttons = append(buttons, map[string]any{
			"type":  "reply",
			"reply": map[string]any{"id": b.ID, "title": b.Title},
		})
	}
	interactive := map[string]any{
		"type":   "button",
		"body":   map[string]any{"text": r.Body},
		"action": map[string]any{"buttons": buttons},
	}
	if r.Footer != "" {
		interactive["footer"] = map[string]any{"text": r.Footer}
	}
	return map[string]any{
		"type":        "interactive",
		"interactive": interactive,
	}
}

// ProductListReply is an interactive catalog message. RetailerIDs are the
// catalog item identifiers of the products to show.
type ProductListReply struct {
	Header      string
	Body        string
	Footer      string
	CatalogID   string
	RetailerIDs []string
}

func (r ProductListReply) payload() map[string]any {
	items := make([]map[string]any, 0, len(r.RetailerIDs))
	for _, id := range r.RetailerIDs {
		items = append(items, map[string]any{"product_retailer_id": id})
	}
	return map[string]any{
		"type": "interactive",
		"interactive": map[string]any{
			"type":   "product_list",
			"header": map[string]any{"type": "text", "text": r.Header},
			"body":   map[string]any{"text": r.Body},
			"footer": map[string]any{"text": r.Footer},
			"action": map[string]any{
				"catalog_id": r.CatalogID,
				"sections": []map[string]any{
					{"title": "All Items", "product_items": items},
				},
			},
		},
	}
}
