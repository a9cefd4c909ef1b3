package routes

import (
	"net/http"
	"strings"

	"github.com/Rakhulsr/techstore-api/app/configs"
	"github.com/Rakhulsr/techstore-api/app/handlers"
	"github.com/Rakhulsr/techstore-api/app/handlers/admin"
	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/middlewares"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/Rakhulsr/techstore-api/app/utils/renderer"
	gh "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// maxBodyBytes leaves room for a 2 MiB image plus the form fields.
const maxBodyBytes = 4 << 20

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Interface("panic", v).Msg("recovered from panic")
}

// noDirListing hides directory indexes of the public storage disk.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func NewRouter(db *gorm.DB, reg *services.Registry, env configs.ENV, logger zerolog.Logger) http.Handler {
	rnd := renderer.New(!env.IsProduction())
	validate := helpers.NewValidator()

	homeHandler := handlers.NewHomeHandler(rnd, db)
	authHandler := handlers.NewAuthHandler(rnd, reg.Accounts, validate)
	profileHandler := handlers.NewProfileHandler(rnd, reg.Accounts, reg.Orders, reg.Files, validate)
	productHandler := handlers.NewProductHandler(rnd, reg.Catalog, reg.Files, validate, env.AppURL)
	categoryHandler := handlers.NewCategoryHandler(rnd, reg.Catalog, validate)
	adminHandler := admin.NewAdminHandler(rnd, validate, reg.Admin, reg.Orders, reg.Files)

	authMw := middlewares.AuthMiddleware(reg.Creds, rnd)
	adminMw := middlewares.AdminMiddleware(rnd)
	optionalAuth := middlewares.OptionalAuthMiddleware(reg.Creds)
	limiter := middlewares.NewRateLimiter(env.LoginRatePerMinute, rnd)

	protected := func(h http.HandlerFunc) http.Handler { return authMw(h) }
	adminOnly := func(h http.HandlerFunc) http.Handler { return authMw(adminMw(h)) }

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.RenderMessage(rnd, w, http.StatusNotFound, "Not Found.")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.RenderMessage(rnd, w, http.StatusMethodNotAllowed, "Method Not Allowed.")
	})

	router.PathPrefix("/storage/").Handler(http.StripPrefix("/storage/", noDirListing(http.FileServer(http.Dir(env.StorageDir))))).Methods("GET", "HEAD")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", homeHandler.Health).Methods("GET")

	api.Handle("/register", limiter.Middleware(http.HandlerFunc(authHandler.Register))).Methods("POST")
	api.Handle("/login", limiter.Middleware(http.HandlerFunc(authHandler.Login))).Methods("POST")
	api.Handle("/logout", protected(authHandler.Logout)).Methods("POST")
	api.Handle("/user", protected(authHandler.User)).Methods("GET")

	api.Handle("/user/profile", protected(profileHandler.UpdateProfile)).Methods("PUT")
	api.Handle("/user/password", protected(profileHandler.UpdatePassword)).Methods("PUT")
	api.Handle("/user/orders", protected(profileHandler.Orders)).Methods("GET")

	api.HandleFunc("/categories", categoryHandler.Index).Methods("GET")
	api.HandleFunc("/categories/{id}", categoryHandler.Show).Methods("GET")
	api.Handle("/products", optionalAuth(http.HandlerFunc(productHandler.Index))).Methods("GET")
	api.HandleFunc("/products/{id}", productHandler.Show).Methods("GET")

	adm := api.PathPrefix("/admin").Subrouter()

	// catalog writes are reachable both at the top level and under /admin
	for _, sub := range []*mux.Router{api, adm} {
		sub.Handle("/products", adminOnly(productHandler.Store)).Methods("POST")
		sub.Handle("/products/{id}", adminOnly(productHandler.Update)).Methods("PUT", "PATCH")
		sub.Handle("/products/{id}", adminOnly(productHandler.Destroy)).Methods("DELETE")
		sub.Handle("/categories", adminOnly(categoryHandler.Store)).Methods("POST")
		sub.Handle("/categories/{id}", adminOnly(categoryHandler.Update)).Methods("PUT", "PATCH")
		sub.Handle("/categories/{id}", adminOnly(categoryHandler.Destroy)).Methods("DELETE")
	}

	adm.Handle("/stats", adminOnly(adminHandler.Stats)).Methods("GET")
	adm.Handle("/users", adminOnly(adminHandler.ListUsers)).Methods("GET")
	adm.Handle("/users", adminOnly(adminHandler.CreateUser)).Methods("POST")
	adm.Handle("/users/{id}", adminOnly(adminHandler.UpdateUser)).Methods("PUT", "PATCH")
	adm.Handle("/users/{id}", adminOnly(adminHandler.DeleteUser)).Methods("DELETE")
	adm.Handle("/users/{id}/orders", adminOnly(adminHandler.UserOrders)).Methods("GET")
	adm.Handle("/orders", adminOnly(adminHandler.ListOrders)).Methods("GET")
	adm.Handle("/orders/{id}/status", adminOnly(adminHandler.UpdateOrderStatus)).Methods("PATCH", "PUT")

	var handler http.Handler = middlewares.MethodOverrideMiddleware(router)
	handler = middlewares.BodyLimitMiddleware(maxBodyBytes, rnd)(handler)
	handler = gh.CORS(
		gh.AllowedOrigins(env.CORSOrigins),
		gh.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gh.AllowedHeaders([]string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-HTTP-Method-Override"}),
		gh.AllowCredentials(),
	)(handler)

	chain := middlewares.RequestLogger(logger)
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	handler = middlewares.TrustedProxyHeaders(env.TrustedProxies)(handler)
	return gh.RecoveryHandler(
		gh.RecoveryLogger(recoveryLogger{logger: logger}),
		gh.PrintRecoveryStack(!env.IsProduction()),
	)(handler)
}
