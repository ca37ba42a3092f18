package httpapi

import (
	"net/http"
	"time"

	contentstore "github.com/MoonrakerAI/dt-exotics-las-vegas-sub003"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/record"
	"github.com/gorilla/mux"
)

func (s *Server) listPublished(w http.ResponseWriter, r *http.Request) {
	page, err := s.blog.Published(r.Context(), pageFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONCached(w, r, page)
}

func (s *Server) getPublishedPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.blog.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if post.Status != record.StatusPublished {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSONCached(w, r, post)
}

// searchPublished applies the published filter here: the store's search
// scans every status by design and leaves filtering to the caller.
func (s *Server) searchPublished(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	posts, err := s.blog.SearchPosts(r.Context(), term)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	published := make([]*record.Post, 0, len(posts))
	for _, p := range posts {
		if p.Status == record.StatusPublished {
			published = append(published, p)
		}
	}
	writeJSONCached(w, r, contentstore.Paginate(published, pageFrom(r)))
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.blog.Categories(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONCached(w, r, cats)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.blog.Tags(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONCached(w, r, tags)
}

func (s *Server) postsByCategory(w http.ResponseWriter, r *http.Request) {
	page, err := s.blog.ByCategory(r.Context(), mux.Vars(r)["id"], pageFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONCached(w, r, page)
}

func (s *Server) postsByTag(w http.ResponseWriter, r *http.Request) {
	page, err := s.blog.ByTag(r.Context(), mux.Vars(r)["id"], pageFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONCached(w, r, page)
}

func (s *Server) categoryCounts(w http.ResponseWriter, r *http.Request) {
	if !s.counts {
		writeError(w, http.StatusServiceUnavailable, "counts backend not configured")
		return
	}
	stats, err := s.blog.Stats(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.PerCategory)
}

func (s *Server) tagCounts(w http.ResponseWriter, r *http.Request) {
	if !s.counts {
		writeError(w, http.StatusServiceUnavailable, "counts backend not configured")
		return
	}
	stats, err := s.blog.Stats(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.PerTag)
}

func (s *Server) listAvailableCars(w http.ResponseWriter, r *http.Request) {
	page, err := s.fleet.Available(r.Context(), pageFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONCached(w, r, page)
}

func (s *Server) searchCars(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	page, err := s.fleet.SearchCars(r.Context(), term, pageFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONCached(w, r, page)
}

func (s *Server) getCar(w http.ResponseWriter, r *http.Request) {
	car, err := s.fleet.GetCar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONCached(w, r, car)
}

// publishScheduled is the external cron trigger. Idempotent: a repeated
// call finds nothing left to transition. Partial failures are reported
// per item, never rolled back.
func (s *Server) publishScheduled(w http.ResponseWriter, r *http.Request) {
	if s.cronToken != "" && bearerToken(r) != s.cronToken {
		writeError(w, http.StatusUnauthorized, "invalid cron token")
		return
	}
	result, err := s.blog.PublishScheduled(r.Context(), time.Now())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
