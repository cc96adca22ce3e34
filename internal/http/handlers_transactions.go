package http

import (
	"net/http"

	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, u core.User) {
	q := r.URL.Query()
	f, err := parseFilter(q, s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, ok := parsePage(q, s.pageSize, s.maxPageSize)
	if !ok {
		ErrorResponse(http.StatusNotFound, detailInvalidPage).Write(w)
		return
	}

	txs, total, err := s.svc.Transactions.List(r.Context(), u.ProfileID, f, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if pageOutOfRange(page, total) {
		ErrorResponse(http.StatusNotFound, detailInvalidPage).Write(w)
		return
	}
	NewJSONResponse().Body(paginated(r, page, total, newTransactionList(txs))).Write(w)
}

// handleListByType serves the unpaginated expense and income lists.
func (s *Server) handleListByType(typ core.TransactionType) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, u core.User) {
		f, err := parseFilter(r.URL.Query(), s.loc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		txs, err := s.svc.Transactions.ListByType(r.Context(), u.ProfileID, typ, f)
		if err != nil {
			writeError(w, r, err)
			return
		}
		NewJSONResponse().Body(newTransactionList(txs)).Write(w)
	}
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, u core.User) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError().Write(w)
		return
	}
	t, err := s.svc.Transactions.Get(r.Context(), u.ProfileID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newTransactionJSON(t)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, u core.User) {
	p, err := s.parseBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := parseTransactionBody(p, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.svc.Transactions.Create(r.Context(), u.ProfileID, transactionInput(patch))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.countWrite(&s.appMetrics.transactionsCreated)
	ledgerLog(r).LogLedgerWrite(r.Context(), log.OpCreate, "transaction", t.ID, u.ID, u.ProfileID)
	NewJSONResponse().Status(http.StatusCreated).Body(newTransactionJSON(t)).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, u core.User) {
	s.writeTransaction(w, r, u, false)
}

func (s *Server) handlePatchTransaction(w http.ResponseWriter, r *http.Request, u core.User) {
	s.writeTransaction(w, r, u, true)
}

// writeTransaction serves PUT and PATCH. PUT requires amount and type;
// optional fields left out of either keep their stored value.
func (s *Server) writeTransaction(w http.ResponseWriter, r *http.Request, u core.User, partial bool) {
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
	patch, err := parseTransactionBody(p, partial)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.svc.Transactions.Patch(r.Context(), u.ProfileID, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ledgerLog(r).LogLedgerWrite(r.Context(), log.OpUpdate, "transaction", t.ID, u.ID, u.ProfileID)
	NewJSONResponse().Body(newTransactionJSON(t)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, u core.User) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError().Write(w)
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), u.ProfileID, id); err != nil {
		writeError(w, r, err)
		return
	}
	ledgerLog(r).LogLedgerWrite(r.Context(), log.OpDelete, "transaction", id, u.ID, u.ProfileID)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleSummary(period core.Period) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, u core.User) {
		sum, err := s.svc.Summaries.ForPeriod(r.Context(), u.ProfileID, period)
		if err != nil {
			writeError(w, r, err)
			return
		}
		NewJSONResponse().Body(sum).Write(w)
	}
}

func (s *Server) handleCustomSummary(w http.ResponseWriter, r *http.Request, u core.User) {
	start, end, err := parseCustomDates(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.svc.Summaries.Custom(r.Context(), u.ProfileID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(sum).Write(w)
}
