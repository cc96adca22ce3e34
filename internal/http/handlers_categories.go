package http

import (
	"net/http"

	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/log"
	"github.com/jfprgin/home-budget/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, u core.User) {
	q := r.URL.Query()
	page, ok := parsePage(q, s.pageSize, s.maxPageSize)
	if !ok {
		ErrorResponse(http.StatusNotFound, detailInvalidPage).Write(w)
		return
	}

	cats, err := s.svc.Categories.List(r.Context(), u.ProfileID, parseCategoryQuery(q))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if pageOutOfRange(page, len(cats)) {
		ErrorResponse(http.StatusNotFound, detailInvalidPage).Write(w)
		return
	}
	lo, hi := page.Slice(len(cats))
	NewJSONResponse().Body(paginated(r, page, len(cats), newCategoryList(cats[lo:hi]))).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request, u core.User) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError().Write(w)
		return
	}
	c, err := s.svc.Categories.Get(r.Context(), u.ProfileID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newCategoryJSON(c)).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, u core.User) {
	p, err := s.parseBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name, err := categoryName(p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.svc.Categories.Create(r.Context(), u.ProfileID, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.countWrite(&s.appMetrics.categoriesCreated)
	ledgerLog(r).LogLedgerWrite(r.Context(), log.OpCreate, "category", c.ID, u.ID, u.ProfileID)
	NewJSONResponse().Status(http.StatusCreated).Body(newCategoryJSON(c)).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, u core.User) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError().Write(w)
		return
	}
	p, err := s.parseBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name, err := categoryName(p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.svc.Categories.Update(r.Context(), u.ProfileID, id, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ledgerLog(r).LogLedgerWrite(r.Context(), log.OpUpdate, "category", c.ID, u.ID, u.ProfileID)
	NewJSONResponse().Body(newCategoryJSON(c)).Write(w)
}

func (s *Server) handlePatchCategory(w http.ResponseWriter, r *http.Request, u core.User) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError().Write(w)
		return
	}
	p, err := s.parseBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch services.CategoryPatch
	if p.Has("name") {
		name, err := categoryName(p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.Name = &name
	}

	c, err := s.svc.Categories.Patch(r.Context(), u.ProfileID, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ledgerLog(r).LogLedgerWrite(r.Context(), log.OpUpdate, "category", c.ID, u.ID, u.ProfileID)
	NewJSONResponse().Body(newCategoryJSON(c)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, u core.User) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError().Write(w)
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), u.ProfileID, id); err != nil {
		writeError(w, r, err)
		return
	}
	ledgerLog(r).LogLedgerWrite(r.Context(), log.OpDelete, "category", id, u.ID, u.ProfileID)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// categoryName reads the name field; length and blank checks are left to
// the service.
func categoryName(p *RequestBodyParser) (string, error) {
	verr := &core.ValidationError{}
	switch {
	case !p.Has("name"):
		verr.Add("name", core.MsgRequired)
	case p.IsNull("name"):
		verr.Add("name", msgNull)
	case !p.Scalar("name"):
		verr.Add("name", msgNotAString)
	}
	if err := verr.OrNil(); err != nil {
		return "", err
	}
	return p.Get("name"), nil
}
