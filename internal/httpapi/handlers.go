package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/service"
)

func dateRange(r *http.Request) (audit.DateRange, error) {
	q := r.URL.Query()
	return audit.ParseDateRange(q.Get("from"), q.Get("to"))
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, raw, service.ErrInvalidInput)
	}
	return id, nil
}

func (s *Server) why(r *http.Request) (any, error) {
	dr, err := dateRange(r)
	if err != nil {
		return nil, err
	}
	return s.svc.Why(r.Context(), dr)
}

func (s *Server) how(r *http.Request) (any, error) {
	dr, err := dateRange(r)
	if err != nil {
		return nil, err
	}
	return s.svc.How(r.Context(), dr)
}

func (s *Server) where(r *http.Request) (any, error) {
	dr, err := dateRange(r)
	if err != nil {
		return nil, err
	}
	return s.svc.Where(r.Context(), dr)
}

func (s *Server) history(r *http.Request) (any, error) {
	dr, err := dateRange(r)
	if err != nil {
		return nil, err
	}
	return s.svc.History(r.Context(), audit.Kind(chi.URLParam(r, "kind")), dr)
}

func (s *Server) summary(r *http.Request) (any, error) {
	dr, err := dateRange(r)
	if err != nil {
		return nil, err
	}
	return s.svc.Summary(r.Context(), dr)
}

func (s *Server) lineage(r *http.Request) (any, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	return s.svc.Lineage(r.Context(), id)
}

func (s *Server) trace(r *http.Request) (any, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	narrative, _ := strconv.ParseBool(r.URL.Query().Get("narrative"))
	return s.svc.Trace(r.Context(), audit.Kind(chi.URLParam(r, "kind")), id, narrative)
}
