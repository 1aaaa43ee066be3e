package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	storerouter "boutique/internal/adapters/in/http/store"
	storeHandler "boutique/internal/adapters/in/http/store/handler"
	pgrepo "boutique/internal/adapters/out/db"
	erpout "boutique/internal/adapters/out/dolibarr"
	fsrepo "boutique/internal/adapters/out/firestore"
	gcsout "boutique/internal/adapters/out/gcs"
	"boutique/internal/adapters/out/localstore"
	usecase "boutique/internal/application/usecase"
	cartdom "boutique/internal/domain/cart"
	"boutique/internal/infra/database"
	erp "boutique/internal/infra/dolibarr"
	"boutique/internal/infra/mail"
	"boutique/internal/platform/di/shared"
)

// Container wires the storefront service: shared infra, the ERP client and
// the usecases behind every shopper-facing route.
type Container struct {
	Infra *shared.Infra

	ERP *erp.Client
	DB  *database.DB // nil unless CART_BACKEND=postgres

	CartEngine *usecase.CartEngine
	Catalog    *usecase.CatalogService
	Wishlist   *usecase.WishlistUsecase // nil when Firestore is unavailable
	Checkout   *usecase.CheckoutFlow
}

// NewContainer builds the full dependency graph.
func NewContainer(ctx context.Context) (*Container, error) {
	inf, err := shared.NewInfra(ctx)
	if err != nil {
		return nil, err
	}

	c := &Container{Infra: inf}
	cfg := inf.Config

	// ERP client: catalog source + stock source
	c.ERP = erp.NewClient(inf.DolibarrBaseURL, inf.DolibarrAPIKey)
	stockReader := erpout.NewStockReader(c.ERP)

	// Cart persistence backend
	cartRepo, err := c.buildCartRepository()
	if err != nil {
		_ = inf.Close()
		return nil, err
	}

	c.CartEngine = usecase.NewCartEngine(cartRepo, stockReader)

	// Catalog (photo fallback only when GCS is up)
	if inf.GCS != nil && inf.PhotoBucket != "" {
		c.Catalog = usecase.NewCatalogServiceWithPhotos(c.ERP, gcsout.NewPhotoResolver(inf.GCS, inf.PhotoBucket))
	} else {
		c.Catalog = usecase.NewCatalogService(c.ERP)
	}

	// Wishlist rides on Firestore regardless of the cart backend
	if inf.Firestore != nil {
		c.Wishlist = usecase.NewWishlistUsecase(fsrepo.NewWishlistRepositoryFS(inf.Firestore))
	} else {
		log.Printf("[di] wishlist disabled (no Firestore client)")
	}

	// Checkout mail is best-effort; the flow works without a mailer
	var mailer usecase.Mailer
	if strings.TrimSpace(cfg.SendGridAPIKey) != "" && strings.TrimSpace(cfg.SenderEmail) != "" {
		mailer = mail.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SenderEmail)
		log.Printf("[di] SendGrid mailer initialized sender=%s", cfg.SenderEmail)
	} else {
		log.Printf("[di] SendGrid mailer not configured (confirmation mail disabled)")
	}
	c.Checkout = usecase.NewCheckoutFlow(c.CartEngine, mailer)

	return c, nil
}

func (c *Container) buildCartRepository() (cartdom.Repository, error) {
	cfg := c.Infra.Config

	switch strings.ToLower(strings.TrimSpace(cfg.CartBackend)) {
	case "", "firestore":
		if c.Infra.Firestore == nil {
			return nil, errors.New("di: cart backend firestore requires a Firestore client")
		}
		log.Printf("[di] cart backend: firestore")
		return fsrepo.NewCartRepositoryFS(c.Infra.Firestore), nil

	case "postgres":
		conn, err := database.NewConnection(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("di: cart backend postgres: %w", err)
		}
		c.DB = conn
		log.Printf("[di] cart backend: postgres host=%s db=%s", cfg.DBHost, cfg.DBName)
		return pgrepo.NewCartRepositoryPG(conn.Client), nil

	case "file":
		log.Printf("[di] cart backend: file path=%s", cfg.CartStorePath)
		return localstore.NewCartRepositoryFile(cfg.CartStorePath), nil

	default:
		return nil, fmt.Errorf("di: unknown cart backend %q", cfg.CartBackend)
	}
}

// Routes registers every shopper-facing route onto mux.
func (c *Container) Routes(mux *http.ServeMux) {
	deps := storerouter.Deps{
		Catalog:  storeHandler.NewCatalogHandler(c.Catalog),
		Cart:     storeHandler.NewCartHandler(c.CartEngine),
		Checkout: storeHandler.NewCheckoutHandler(c.Checkout),
	}
	if c.Wishlist != nil {
		deps.Wishlist = storeHandler.NewWishlistHandler(c.Wishlist)
	}
	storerouter.Register(mux, deps)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.Infra != nil {
		_ = c.Infra.Close()
	}
	return nil
}
