package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rloza/tiendapos/internal/cart"
	"github.com/rloza/tiendapos/internal/catalog"
	"github.com/rloza/tiendapos/internal/checkout"
	"github.com/rloza/tiendapos/internal/order"
)

// Button ids the bot understands.
const (
	buttonViewCatalog = "view_catalog"
	buttonCheckout    = "checkout"
)

const codFooter = "We offer Cash on Delivery."

// Bot drives the conversation: browse the catalog, build a cart, check
// out. It owns no business rules beyond rendering; stock validation and
// commits belong to the checkout engine.
type Bot struct {
	sender    Sender
	products  catalog.Repository
	carts     cart.Store
	engine    *checkout.Engine
	catalogID string
}

func NewBot(sender Sender, products catalog.Repository, carts cart.Store, engine *checkout.Engine, catalogID string) *Bot {
	return &Bot{
		sender:    sender,
		products:  products,
		carts:     carts,
		engine:    engine,
		catalogID: catalogID,
	}
}

// HandleText responds to a free-form text message.
func (b *Bot) HandleText(ctx context.Context, from, text string) error {
	if containsGreeting(text) {
		return b.sender.Send(ctx, from, ButtonMenuReply{
			Body: "Hello! Welcome to our store. How can I help you?",
			Buttons: []Button{
				{ID: buttonViewCatalog, Title: "View Catalog"},
			},
		})
	}
	return b.sender.Send(ctx, from, TextReply{
		Body: "Sorry, I didn't understand that. Please type 'hi' to start.",
	})
}

// HandleButton responds to a tapped reply button.
func (b *Bot) HandleButton(ctx context.Context, from, buttonID string) error {
	switch buttonID {
	case buttonViewCatalog:
		return b.sendCatalog(ctx, from)
	case buttonCheckout:
		return b.checkout(ctx, from)
	default:
		slog.WarnContext(ctx, "unknown button", "button_id", buttonID, "from", from)
		return nil
	}
}

// HandleProductSelected adds a catalog selection to the sender's cart.
func (b *Bot) HandleProductSelected(ctx context.Context, from, retailerID string) error {
	p, err := b.products.FindByRetailerID(ctx, retailerID)
	if err != nil {
		slog.WarnContext(ctx, "selected product not in catalog", "retailer_id", retailerID, "from", from)
		return b.sender.Send(ctx, from, TextReply{
			Body: "Sorry, that item is no longer available.",
		})
	}
	if err := b.carts.Add(ctx, from, p.ID, 1); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return b.sender.Send(ctx, from, ButtonMenuReply{
		Body:   "Item added to your cart. Ready to checkout?",
		Footer: codFooter,
		Buttons: []Button{
			{ID: buttonCheckout, Title: "Proceed to Checkout"},
		},
	})
}

func (b *Bot) sendCatalog(ctx context.Context, from string) error {
	products, err := b.products.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	if len(products) == 0 {
		return b.sender.Send(ctx, from, TextReply{
			Body: "Sorry, our catalog is empty right now. Please check back later.",
		})
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.RetailerID)
	}
	return b.sender.Send(ctx, from, ProductListReply{
		Header:      "Our Menu",
		Body:        "Select your favorite items to add to cart.",
		Footer:      codFooter,
		CatalogID:   b.catalogID,
		RetailerIDs: ids,
	})
}

// checkout converts the sender's cart into a checkout request. The cart is
// cleared only after the engine confirms the commit; on rejection it stays
// intact so the customer can adjust it.
func (b *Bot) checkout(ctx context.Context, from string) error {
	entries, err := b.carts.Get(ctx, from)
	if err != nil {
		return fmt.Errorf("read cart: %w", err)
	}
	if len(entries) == 0 {
		return b.sender.Send(ctx, from, TextReply{
			Body: "Your cart is empty. Please add items to checkout.",
		})
	}

	items := make([]checkout.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, checkout.Item{ProductID: e.ProductID, Quantity: e.Quantity})
	}
	o, err := b.engine.Checkout(ctx, checkout.Request{
		Items:       items,
		CustomerRef: from,
		Channel:     order.ChannelChat,
	})
	if err != nil {
		return b.sender.Send(ctx, from, TextReply{Body: b.rejectionText(ctx, err)})
	}

	if err := b.carts.Clear(ctx, from); err != nil {
		// The order is committed; a leftover cart is annoying but harmless.
		slog.ErrorContext(ctx, "clear cart after checkout", "from", from, "error", err)
	}
	return b.sender.Send(ctx, from, TextReply{
		Body: fmt.Sprintf("Thank you for your order! Your total is ₹%.2f. Your order will be delivered with Cash on Delivery.", o.TotalPrice),
	})
}

// rejectionText renders a checkout failure as a customer-facing message.
// The bot never retries on its own.
func (b *Bot) rejectionText(ctx context.Context, err error) string {
	var insufficient *checkout.InsufficientStockError
	if errors.As(err, &insufficient) {
		name := insufficient.ProductID
		if p, lookupErr := b.products.FindByID(ctx, insufficient.ProductID); lookupErr == nil {
			name = p.Name
		}
		if insufficient.Available == 0 {
			return fmt.Sprintf("Sorry, %s just sold out. Please remove it from your cart and try again.", name)
		}
		return fmt.Sprintf("Sorry, only %d of %s left (you asked for %d). Please adjust your cart and try again.",
			insufficient.Available, name, insufficient.Requested)
	}
	var notFound *checkout.NotFoundError
	if errors.As(err, &notFound) {
		return "Sorry, an item in your cart is no longer available. Please start a new cart."
	}
	if checkout.IsRejection(err) {
		return "Your cart is empty. Please add items to checkout."
	}
	slog.ErrorContext(ctx, "checkout failed", "error", err)
	return "Sorry, something went wrong placing your order. Please try again in a moment."
}

func containsGreeting(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "hi") || strings.Contains(lower, "hello")
}
