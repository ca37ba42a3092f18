// Package httpapi is the thin authorization and marshalling layer over the
// content store: public reads, admin CRUD behind bearer auth, the cron
// publish trigger and a read-only debug surface.
package httpapi

import (
	"net/http"
	"strings"

	contentstore "github.com/MoonrakerAI/dt-exotics-las-vegas-sub003"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/utils"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
)

type Server struct {
	blog    *contentstore.Blog
	fleet   *contentstore.Fleet
	rentals *contentstore.Rentals
	store   kv.Store
	auth    contentstore.Verifier
	log     utils.Logger

	// cronToken optionally protects the scheduler trigger; empty means
	// the trigger is open, which the deployment may choose for a
	// platform-invoked cron.
	cronToken string
	// counts gates the category/tag count endpoints; off when the
	// backing store for counts is not configured.
	counts bool

	principals *lru.Cache[string, contentstore.Principal]
}

type Config struct {
	Blog          *contentstore.Blog
	Fleet         *contentstore.Fleet
	Rentals       *contentstore.Rentals
	Store         kv.Store
	Auth          contentstore.Verifier
	Log           utils.Logger
	CronToken     string
	CountsEnabled bool
}

func NewServer(cfg Config) *Server {
	cache, _ := lru.New[string, contentstore.Principal](1024)
	return &Server{
		blog:       cfg.Blog,
		fleet:      cfg.Fleet,
		rentals:    cfg.Rentals,
		store:      cfg.Store,
		auth:       cfg.Auth,
		log:        cfg.Log,
		cronToken:  cfg.CronToken,
		counts:     cfg.CountsEnabled,
		principals: cache,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestArgs)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// public blog surface
	r.HandleFunc("/api/blog/posts", s.listPublished).Methods("GET")
	r.HandleFunc("/api/blog/posts/search", s.searchPublished).Methods("GET")
	r.HandleFunc("/api/blog/posts/{id}", s.getPublishedPost).Methods("GET")
	r.HandleFunc("/api/blog/categories", s.listCategories).Methods("GET")
	r.HandleFunc("/api/blog/categories/{id}/posts", s.postsByCategory).Methods("GET")
	r.HandleFunc("/api/blog/tags", s.listTags).Methods("GET")
	r.HandleFunc("/api/blog/tags/{id}/posts", s.postsByTag).Methods("GET")
	r.HandleFunc("/api/blog/categories/counts", s.categoryCounts).Methods("GET")
	r.HandleFunc("/api/blog/tags/counts", s.tagCounts).Methods("GET")

	// public fleet surface
	r.HandleFunc("/api/cars", s.listAvailableCars).Methods("GET")
	r.HandleFunc("/api/cars/search", s.searchCars).Methods("GET")
	r.HandleFunc("/api/cars/{id}", s.getCar).Methods("GET")

	// scheduler trigger
	r.HandleFunc("/api/cron/publish-scheduled", s.publishScheduled).Methods("POST")

	// admin surface
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(s.requireAdmin)

	admin.HandleFunc("/blog/posts", s.adminListPosts).Methods("GET")
	admin.HandleFunc("/blog/posts", s.adminCreatePost).Methods("POST")
	admin.HandleFunc("/blog/posts/{id}", s.adminGetPost).Methods("GET")
	admin.HandleFunc("/blog/posts/{id}", s.adminUpdatePost).Methods("PUT")
	admin.HandleFunc("/blog/posts/{id}", s.adminDeletePost).Methods("DELETE")

	admin.HandleFunc("/blog/categories", s.adminCreateCategory).Methods("POST")
	admin.HandleFunc("/blog/categories/{id}", s.adminRenameCategory).Methods("PUT")
	admin.HandleFunc("/blog/categories/{id}", s.adminDeleteCategory).Methods("DELETE")
	admin.HandleFunc("/blog/tags", s.adminCreateTag).Methods("POST")
	admin.HandleFunc("/blog/tags/{id}", s.adminRenameTag).Methods("PUT")
	admin.HandleFunc("/blog/tags/{id}", s.adminDeleteTag).Methods("DELETE")

	admin.HandleFunc("/blog/stats", s.adminBlogStats).Methods("GET")
	admin.HandleFunc("/blog/recount", s.adminRecount).Methods("POST")

	admin.HandleFunc("/cars", s.adminListCars).Methods("GET")
	admin.HandleFunc("/cars", s.adminCreateCar).Methods("POST")
	admin.HandleFunc("/cars/{id}", s.adminUpdateCar).Methods("PUT")
	admin.HandleFunc("/cars/{id}", s.adminDeleteCar).Methods("DELETE")

	admin.HandleFunc("/rentals", s.adminListRentals).Methods("GET")
	admin.HandleFunc("/rentals", s.adminCreateRental).Methods("POST")
	admin.HandleFunc("/rentals/{id}", s.adminRentalDetail).Methods("GET")
	admin.HandleFunc("/rentals/{id}", s.adminUpdateRental).Methods("PUT")
	admin.HandleFunc("/rentals/{id}", s.adminDeleteRental).Methods("DELETE")
	admin.HandleFunc("/rentals/{id}/invoices", s.adminInvoicesForRental).Methods("GET")

	admin.HandleFunc("/invoices", s.adminCreateInvoice).Methods("POST")
	admin.HandleFunc("/invoices/{id}", s.adminGetInvoice).Methods("GET")
	admin.HandleFunc("/invoices/{id}/status", s.adminSetInvoiceStatus).Methods("PUT")
	admin.HandleFunc("/invoices/{id}", s.adminDeleteInvoice).Methods("DELETE")

	admin.HandleFunc("/debug/keys", s.debugKeys).Methods("GET")
	admin.HandleFunc("/debug/sets/{set}", s.debugSet).Methods("GET")

	return r
}

// requestArgs attaches the request's method and path to the context so
// every consistency warning logged under this request names its origin.
func (s *Server) requestArgs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := utils.WithDefaultArgs(r.Context(), "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		principal, ok := s.principals.Get(token)
		if !ok {
			var err error
			principal, err = s.auth.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			s.principals.Add(token, principal)
		}
		if !principal.Admin {
			writeError(w, http.StatusUnauthorized, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
