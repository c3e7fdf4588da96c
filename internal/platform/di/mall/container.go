package mall

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/middleware"
	"firstpick/internal/adapters/in/http/router"
	"firstpick/internal/adapters/out/cache"
	outdb "firstpick/internal/adapters/out/db"
	outfs "firstpick/internal/adapters/out/firestore"
	gcso "firstpick/internal/adapters/out/gcs"
	usecase "firstpick/internal/application/usecase"
	cartdom "firstpick/internal/domain/cart"
	contactdom "firstpick/internal/domain/contact"
	orderdom "firstpick/internal/domain/order"
	productdom "firstpick/internal/domain/product"
	userdom "firstpick/internal/domain/user"
	appcfg "firstpick/internal/infra/config"
	shared "firstpick/internal/platform/di/shared"
)

// Container holds everything the HTTP server needs.
type Container struct {
	Infra *shared.Infra

	Catalog  productdom.Repository
	Carts    cartdom.Repository
	Orders   orderdom.Repository
	Contacts contactdom.Repository
	Users    userdom.Repository

	CartUC     *usecase.CartUsecase
	CheckoutUC *usecase.CheckoutUsecase
	OrderUC    *usecase.OrderUsecase
	ProductUC  *usecase.ProductUsecase
	ContactUC  *usecase.ContactUsecase
	ProfileUC  *usecase.ProfileUsecase
}

func NewContainer(ctx context.Context, cfg *appcfg.Config, log *zap.Logger) (*Container, error) {
	inf, err := shared.NewInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return Wire(inf), nil
}

// Wire builds repositories and usecases on top of already opened infra.
func Wire(inf *shared.Infra) *Container {
	cfg, log := inf.Config, inf.Log
	fs := inf.Firestore.Client
	c := &Container{Infra: inf}

	// ------------------------------------------------------------
	// Outbound adapters
	// ------------------------------------------------------------
	var catalog productdom.Repository = outfs.NewProductRepositoryFS(fs)
	if inf.Redis != nil {
		catalog = cache.NewCachedCatalog(catalog, inf.Redis, cfg.CatalogCacheTTL, log.Named("catalog_cache"))
	}
	c.Catalog = catalog
	c.Carts = outfs.NewCartRepositoryFS(fs)
	c.Contacts = outfs.NewContactRepositoryFS(fs)
	c.Users = outfs.NewUserRepositoryFS(fs)

	switch cfg.OrderStore {
	case appcfg.OrderStorePostgres:
		c.Orders = outdb.NewOrderRepositoryPG(inf.Postgres.Client)
	default:
		c.Orders = outfs.NewOrderRepositoryFS(fs)
	}
	log.Info("order store selected", zap.String("order_store", cfg.OrderStore))

	var images productdom.ImageStore
	if inf.GCS != nil {
		images = gcso.NewProductImageRepositoryGCS(inf.GCS, cfg.GCSBucket)
	}

	// ------------------------------------------------------------
	// Usecases
	// ------------------------------------------------------------
	identity := usecase.ContextIdentity{}
	c.CartUC = usecase.NewCartUsecase(c.Carts, c.Catalog, identity, log.Named("cart"))
	c.CheckoutUC = usecase.NewCheckoutUsecase(c.Orders, c.CartUC, c.Catalog, identity, log.Named("checkout"))
	c.OrderUC = usecase.NewOrderUsecase(c.Orders, identity, cfg.OrderStrictTransitions, log.Named("order"))
	c.ProductUC = usecase.NewProductUsecase(c.Catalog, images, identity, log.Named("product"))
	c.ContactUC = usecase.NewContactUsecase(c.Contacts, identity, log.Named("contact"))
	c.ProfileUC = usecase.NewProfileUsecase(c.Users, identity, log.Named("profile"))

	return c
}

// Handler returns the root HTTP handler.
func (c *Container) Handler() http.Handler {
	cfg, log := c.Infra.Config, c.Infra.Log

	var verifier middleware.TokenVerifier
	if c.Infra.FirebaseAuth != nil {
		verifier = c.Infra.FirebaseAuth
	}

	return router.NewRouter(router.RouterDeps{
		CartUC:        c.CartUC,
		CheckoutUC:    c.CheckoutUC,
		OrderUC:       c.OrderUC,
		ProductUC:     c.ProductUC,
		ContactUC:     c.ContactUC,
		ProfileUC:     c.ProfileUC,
		Auth:          middleware.NewAuthMiddleware(verifier, cfg.AdminUIDs, log.Named("auth")),
		AllowedOrigin: cfg.CORSAllowedOrigin,
		Log:           log.Named("http"),
		Ready: func(r *http.Request) error {
			return c.Infra.Ping(r.Context())
		},
	})
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	return c.Infra.Close()
}
