package httpapi

import (
	"net/http"
	"strings"

	contentstore "github.com/MoonrakerAI/dt-exotics-las-vegas-sub003"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/record"
	"github.com/gorilla/mux"
)

func (s *Server) adminListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := s.blog.AllPosts(r.Context(), pageFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) adminCreatePost(w http.ResponseWriter, r *http.Request) {
	var post record.Post
	if err := decodeBody(r, &post); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	created, err := s.blog.CreatePost(r.Context(), &post)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) adminGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.blog.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) adminUpdatePost(w http.ResponseWriter, r *http.Request) {
	var patch contentstore.PostPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	post, err := s.blog.UpdatePost(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) adminDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.blog.DeletePost(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var cat record.Category
	if err := decodeBody(r, &cat); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	created, err := s.blog.CreateCategory(r.Context(), &cat)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) adminRenameCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	cat, err := s.blog.RenameCategory(r.Context(), mux.Vars(r)["id"], body.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) adminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.blog.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminCreateTag(w http.ResponseWriter, r *http.Request) {
	var tag record.Tag
	if err := decodeBody(r, &tag); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	created, err := s.blog.CreateTag(r.Context(), &tag)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) adminRenameTag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	tag, err := s.blog.RenameTag(r.Context(), mux.Vars(r)["id"], body.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (s *Server) adminDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.blog.DeleteTag(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminBlogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.blog.Stats(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// adminRecount runs the idempotent counter resync for categories and tags.
func (s *Server) adminRecount(w http.ResponseWriter, r *http.Request) {
	if err := s.blog.UpdateCategoryCounts(r.Context()); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.blog.UpdateTagCounts(r.Context()); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminListCars(w http.ResponseWriter, r *http.Request) {
	page, err := s.fleet.AllCars(r.Context(), pageFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) adminCreateCar(w http.ResponseWriter, r *http.Request) {
	var car record.Car
	if err := decodeBody(r, &car); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	created, err := s.fleet.CreateCar(r.Context(), &car)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) adminUpdateCar(w http.ResponseWriter, r *http.Request) {
	var patch contentstore.CarPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	car, err := s.fleet.UpdateCar(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *Server) adminDeleteCar(w http.ResponseWriter, r *http.Request) {
	if err := s.fleet.DeleteCar(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminListRentals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pageFrom(r)
	if status := r.URL.Query().Get("status"); status != "" {
		result, err := s.rentals.RentalsByStatus(ctx, record.RentalStatus(status), page)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}
	if carID := r.URL.Query().Get("car"); carID != "" {
		result, err := s.rentals.RentalsByCar(ctx, carID, page)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}
	result, err := s.rentals.AllRentals(ctx, page)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) adminCreateRental(w http.ResponseWriter, r *http.Request) {
	var rental record.Rental
	if err := decodeBody(r, &rental); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	created, err := s.rentals.CreateRental(r.Context(), &rental)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) adminRentalDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.rentals.Detail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) adminUpdateRental(w http.ResponseWriter, r *http.Request) {
	var patch contentstore.RentalPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	rental, err := s.rentals.UpdateRental(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *Server) adminDeleteRental(w http.ResponseWriter, r *http.Request) {
	if err := s.rentals.DeleteRental(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminInvoicesForRental(w http.ResponseWriter, r *http.Request) {
	page, err := s.rentals.InvoicesForRental(r.Context(), mux.Vars(r)["id"], pageFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) adminCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv record.Invoice
	if err := decodeBody(r, &inv); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	created, err := s.rentals.CreateInvoice(r.Context(), &inv)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) adminGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.rentals.GetInvoice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) adminSetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status record.InvoiceStatus `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	inv, err := s.rentals.SetInvoiceStatus(r.Context(), mux.Vars(r)["id"], body.Status)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) adminDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.rentals.DeleteInvoice(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) debugKeys(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}
	var buf strings.Builder
	if err := contentstore.Dump(r.Context(), s.store, &buf, pattern); err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(buf.String()))
}

func (s *Server) debugSet(w http.ResponseWriter, r *http.Request) {
	var buf strings.Builder
	if err := contentstore.DumpSet(r.Context(), s.store, &buf, mux.Vars(r)["set"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(buf.String()))
}
