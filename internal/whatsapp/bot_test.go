package whatsapp_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rloza/tiendapos/internal/cart"
	"github.com/rloza/tiendapos/internal/catalog"
	"github.com/rloza/tiendapos/internal/checkout"
	"github.com/rloza/tiendapos/internal/storage/sqlite"
	"github.com/rloza/tiendapos/internal/whatsapp"
)

// recorder captures outbound replies instead of hitting the Graph API.
type recorder struct {
	to      []string
	replies []whatsapp.Reply
}

func (r *recorder) Send(ctx context.Context, to string, reply whatsapp.Reply) error {
	r.to = append(r.to, to)
	r.replies = append(r.replies, reply)
	return nil
}

var _ whatsapp.Sender = (*recorder)(nil)

func (r *recorder) last(t *testing.T) whatsapp.Reply {
	t.Helper()
	require.NotEmpty(t, r.replies)
	return r.replies[len(r.replies)-1]
}

type botFixture struct {
	bot      *whatsapp.Bot
	sent     *recorder
	products *sqlite.ProductRepo
	carts    cart.Store
	svc      *catalog.Service
}

func setupBot(t *testing.T) *botFixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	products := sqlite.NewProductRepo(store)
	carts := cart.NewMemoryStore(time.Hour)
	sent := &recorder{}
	bot := whatsapp.NewBot(sent, products, carts, checkout.NewEngine(store), "catalog-1")
	return &botFixture{
		bot:      bot,
		sent:     sent,
		products: products,
		carts:    carts,
		svc:      catalog.NewService(products),
	}
}

func (f *botFixture) addProduct(t *testing.T, name string, price float64, quantity int64) *catalog.Product {
	t.Helper()
	p, err := f.svc.Create(context.Background(), catalog.Product{
		Name: name, SKU: "SKU-" + name, Price: price, Quantity: quantity,
	})
	require.NoError(t, err)
	return p
}

func TestGreetingShowsCatalogButton(t *testing.T) {
	ctx := context.Background()
	f := setupBot(t)

	require.NoError(t, f.bot.HandleText(ctx, "555-0100", "Hi there"))

	menu, ok := f.sent.last(t).(whatsapp.ButtonMenuReply)
	require.True(t, ok, "expected a button menu, got %T", f.sent.last(t))
	require.Len(t, menu.Buttons, 1)
	require.Equal(t, "view_catalog", menu.Buttons[0].ID)
}

func TestUnknownTextGetsFallback(t *testing.T) {
	ctx := context.Background()
	f := setupBot(t)

	require.NoError(t, f.bot.HandleText(ctx, "555-0100", "what?"))

	text, ok := f.sent.last(t).(whatsapp.TextReply)
	require.True(t, ok)
	require.Contains(t, text.Body, "didn't understand")
}

func TestViewCatalogListsProducts(t *testing.T) {
	ctx := context.Background()
	f := setupBot(t)
	p := f.addProduct(t, "Masala Chai", 10, 5)

	require.NoError(t, f.bot.HandleButton(ctx, "555-0100", "view_catalog"))

	list, ok := f.sent.last(t).(whatsapp.ProductListReply)
	require.True(t, ok, "expected a product list, got %T", f.sent.last(t))
	require.Equal(t, "catalog-1", list.CatalogID)
	require.Equal(t, []string{p.RetailerID}, list.RetailerIDs)
}

func TestViewCatalogEmpty(t *testing.T) {
	ctx := context.Background()
	f := setupBot(t)

	require.NoError(t, f.bot.HandleButton(ctx, "555-0100", "view_catalog"))

	text, ok := f.sent.last(t).(whatsapp.TextReply)
	require.True(t, ok)
	require.Contains(t, text.Body, "catalog is empty")
}

func TestProductSelectionFillsCart(t *testing.T) {
	ctx := context.Background()
	f := setupBot(t)
	p := f.addProduct(t, "Masala Chai", 10, 5)

	require.NoError(t, f.bot.HandleProductSelected(ctx, "555-0100", p.RetailerID))
	require.NoError(t, f.bot.HandleProductSelected(ctx, "555-0100", p.RetailerID))

	entries, err := f.carts.Get(ctx, "555-0100")
	require.NoError(t, err)
	require.Equal(t, []cart.Entry{{ProductID: p.ID, Quantity: 2}}, entries)

	menu, ok := f.sent.last(t).(whatsapp.ButtonMenuReply)
	require.True(t, ok)
	require.Equal(t, "checkout", menu.Buttons[0].ID)
}

func TestCheckoutFromCartCommitsAndClears(t *testing.T) {
	ctx := context.Background()
	f := setupBot(t)
	p := f.addProduct(t, "Masala Chai", 10, 5)
	require.NoError(t, f.carts.Add(ctx, "555-0100", p.ID, 3))

	require.NoError(t, f.bot.HandleButton(ctx, "555-0100", "checkout"))

	text, ok := f.sent.last(t).(whatsapp.TextReply)
	require.True(t, ok)
	require.Contains(t, text.Body, "30.00")

	left, err := f.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), left.Quantity)

	entries, err := f.carts.Get(ctx, "555-0100")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := setupBot(t)

	require.NoError(t, f.bot.HandleButton(ctx, "555-0100", "checkout"))

	text, ok := f.sent.last(t).(whatsapp.TextReply)
	require.True(t, ok)
	require.Contains(t, text.Body, "cart is empty")
}

func TestCheckoutInsufficientStockKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := setupBot(t)
	p := f.addProduct(t, "Masala Chai", 10, 2)
	require.NoError(t, f.carts.Add(ctx, "555-0100", p.ID, 3))

	require.NoError(t, f.bot.HandleButton(ctx, "555-0100", "checkout"))

	text, ok := f.sent.last(t).(whatsapp.TextReply)
	require.True(t, ok)
	require.Contains(t, text.Body, "Masala Chai")
	require.True(t, strings.Contains(text.Body, "only 2"), "got: %s", text.Body)

	// Stock untouched, cart kept for the customer to adjust.
	left, err := f.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), left.Quantity)
	entries, err := f.carts.Get(ctx, "555-0100")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCheckoutStaleCartProductGone(t *testing.T) {
	ctx := context.Background()
	f := setupBot(t)
	p := f.addProduct(t, "Masala Chai", 10, 5)
	require.NoError(t, f.carts.Add(ctx, "555-0100", p.ID, 1))
	require.NoError(t, f.products.Delete(ctx, p.ID))

	require.NoError(t, f.bot.HandleButton(ctx, "555-0100", "checkout"))

	text, ok := f.sent.last(t).(whatsapp.TextReply)
	require.True(t, ok)
	require.Contains(t, text.Body, "no longer available")
}
