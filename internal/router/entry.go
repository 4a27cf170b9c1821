package router

import (
	"net/http"

	"github.com/karen-369/spark/internal/usecase/entry"
)

type EntryRouter interface {
	GetDraft(w http.ResponseWriter, r *http.Request)
	ResetDraft(w http.ResponseWriter, r *http.Request)
}

type entryRouterImpl struct {
	usecase entry.EntryUseCase
}

func NewEntryRouter(usecase entry.EntryUseCase) EntryRouter {
	return &entryRouterImpl{usecase: usecase}
}

func (er *entryRouterImpl) GetDraft(w http.ResponseWriter, r *http.Request) {
	wallet, ok := requireWallet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, er.usecase.GetDraft(r.Context(), wallet))
}

func (er *entryRouterImpl) ResetDraft(w http.ResponseWriter, r *http.Request) {
	wallet, ok := requireWallet(w, r)
	if !ok {
		return
	}
	er.usecase.ResetDraft(r.Context(), wallet)
	w.WriteHeader(http.StatusNoContent)
}
