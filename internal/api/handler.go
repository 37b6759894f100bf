package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"medware/m/domain"
	"medware/m/internal/auth"
	"medware/m/internal/reports"
	"medware/m/internal/stock"
	"medware/m/internal/store"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	medicines    *store.MedicineStore
	suppliers    *store.SupplierStore
	users        *store.UserStore
	transactions *store.TransactionStore
	alerts       *store.AlertStore
	audit        *store.AuditStore
	engine       *stock.Engine
	reports      *reports.Service
	auth         *auth.Service
	validate     *validator.Validate
	secret       string
	tokenTTL     time.Duration
	log          zerolog.Logger
}

// Deps collects everything the API surface consumes.
type Deps struct {
	Medicines    *store.MedicineStore
	Suppliers    *store.SupplierStore
	Users        *store.UserStore
	Transactions *store.TransactionStore
	Alerts       *store.AlertStore
	Audit        *store.AuditStore
	Engine       *stock.Engine
	Reports      *reports.Service
	Auth         *auth.Service
	Secret       string
	TokenTTL     time.Duration
	Log          zerolog.Logger
}

// New constructs a Handler.
func New(d Deps) *Handler {
	ttl := d.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handler{
		medicines:    d.Medicines,
		suppliers:    d.Suppliers,
		users:        d.Users,
		transactions: d.Transactions,
		alerts:       d.Alerts,
		audit:        d.Audit,
		engine:       d.Engine,
		reports:      d.Reports,
		auth:         d.Auth,
		validate:     validator.New(),
		secret:       d.Secret,
		tokenTTL:     ttl,
		log:          d.Log,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.listMedicines)
			r.Post("/", h.createMedicine)
			r.Get("/search", h.searchMedicines)
			r.Get("/low-stock", h.lowStockMedicines)
			r.Get("/expired", h.expiredMedicines)
			r.Get("/{id}", h.getMedicine)
			r.Patch("/{id}", h.updateMedicine)
			r.Post("/{id}/stock", h.updateStock)
			r.Get("/{id}/transactions", h.medicineTransactions)
			r.Get("/{id}/audit", h.medicineAudit)
		})

		pr.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.listSuppliers)
			r.Post("/", h.createSupplier)
			r.Get("/{id}", h.getSupplier)
			r.Patch("/{id}", h.updateSupplier)
			r.Delete("/{id}", h.deactivateSupplier)
			r.Get("/{id}/medicines", h.supplierMedicines)
		})

		pr.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Patch("/{id}", h.updateUser)
			r.Delete("/{id}", h.deactivateUser)
		})

		pr.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.listAlerts)
			r.Post("/{id}/resolve", h.resolveAlert)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/stock", h.stockReport)
			r.Get("/transactions", h.transactionReport)
			r.Get("/financial-summary", h.financialSummary)
			r.Get("/sales/monthly", h.monthlySales)
			r.Get("/sales/monthly/detailed", h.detailedMonthlySales)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// canWriteStock limits stock and catalog mutations to warehouse roles.
func canWriteStock(role string) bool {
	return role == domain.RoleAdmin || role == domain.RoleWarehouseWorker
}

// canReadReports limits the reporting surface to finance-facing roles.
func canReadReports(role string) bool {
	return role == domain.RoleAdmin || role == domain.RoleAccountant
}
