package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/adapters/daostore"
	"github.com/trebuchet-org/treb-gov/internal/adapters/httpapi"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/governance"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

const testSafe = "0x1111111111111111111111111111111111111111"

type staticDAOs []*models.DAO

func (d staticDAOs) Run(context.Context) []*models.DAO { return d }

type fakeLister struct {
	result *usecase.ProposalListResult
	err    error
	params []usecase.ListProposalsParams
}

func (f *fakeLister) Run(_ context.Context, params usecase.ListProposalsParams) (*usecase.ProposalListResult, error) {
	f.params = append(f.params, params)
	return f.result, f.err
}

// fakeFinder resolves ids against the lister's result, then against extra
type fakeFinder struct {
	lister *fakeLister
	extra  map[string]*usecase.ProposalEntry
	params []usecase.ShowProposalParams
}

func (f *fakeFinder) Run(ctx context.Context, params usecase.ShowProposalParams) (*usecase.ProposalEntry, bool, error) {
	f.params = append(f.params, params)
	result, err := f.lister.Run(ctx, usecase.ListProposalsParams{DAO: params.DAO})
	if err != nil {
		return nil, false, err
	}
	if entry, viaRejection, ok := result.Find(params.ID); ok {
		return entry, viaRejection, nil
	}
	if entry, ok := f.extra[params.ID]; ok {
		return entry, false, nil
	}
	return nil, false, fmt.Errorf("%w: proposal %s", domain.ErrNotFound, params.ID)
}

type fakeFreeze struct {
	err error
}

func (f fakeFreeze) Run(_ context.Context, dao *models.DAO) (*usecase.FreezeStatusResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.FreezeStatusResult{DAO: dao, Status: governance.FreezeStatus{CanVote: true}}, nil
}

func testServer(lister *fakeLister, freeze fakeFreeze) (http.Handler, *models.DAO) {
	h, dao, _ := testServerWithStore(lister, &fakeFinder{lister: lister}, freeze)
	return h, dao
}

func testServerWithStore(lister *fakeLister, finder *fakeFinder, freeze fakeFreeze) (http.Handler, *models.DAO, *daostore.Store) {
	dao := &models.DAO{Name: "treasury", ChainID: 1, Safe: testSafe, Key: models.NewDAOKey(1, testSafe)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := daostore.NewStore()
	s := httpapi.NewServerWith(&config.RuntimeConfig{}, staticDAOs{dao}, lister, finder, freeze, store, log)
	return s.Handler(), dao, store
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func listing(dao *models.DAO) *usecase.ProposalListResult {
	primary := &models.Proposal{ID: "0xaa", Kind: models.ProposalKindMultisig, State: models.ProposalStateExecuted,
		Multisig: &models.MultisigPayload{Nonce: 3}}
	reject := &models.Proposal{ID: "0xrr", Kind: models.ProposalKindMultisig, State: models.ProposalStateRejected,
		Multisig: &models.MultisigPayload{Nonce: 3}}
	primary.Multisig.Rejection = reject
	none := models.ExecutionAction{Kind: models.ActionNone}
	return &usecase.ProposalListResult{
		DAO: dao,
		Entries: []usecase.ProposalEntry{
			{Proposal: primary, Action: none, RejectionAction: &none},
		},
		Summary: usecase.ProposalSummary{Total: 1},
	}
}

func TestServer(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		h, _ := testServer(&fakeLister{}, fakeFreeze{})
		rec, body := get(t, h, "/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("lists DAOs", func(t *testing.T) {
		h, _ := testServer(&fakeLister{}, fakeFreeze{})
		rec, body := get(t, h, "/daos")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, body["daos"], 1)
		assert.Empty(t, body["loaded"])
	})

	t.Run("reports DAOs with loaded state", func(t *testing.T) {
		lister := &fakeLister{}
		h, dao, store := testServerWithStore(lister, &fakeFinder{lister: lister}, fakeFreeze{})
		updated := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
		store.Put(&models.DAOState{
			DAO:       dao,
			Proposals: []*models.Proposal{{ID: "0xaa"}, {ID: "0xbb"}},
			UpdatedAt: updated,
		})

		_, body := get(t, h, "/daos")
		loaded := body["loaded"].([]any)
		require.Len(t, loaded, 1)
		entry := loaded[0].(map[string]any)
		assert.Equal(t, string(dao.Key), entry["key"])
		assert.Equal(t, "treasury", entry["name"])
		assert.Equal(t, float64(2), entry["proposals"])
		assert.Equal(t, "2026-05-01T09:00:00Z", entry["updatedAt"])
	})

	t.Run("lists proposals with filter", func(t *testing.T) {
		lister := &fakeLister{}
		h, dao := testServer(lister, fakeFreeze{})
		lister.result = listing(dao)

		rec, body := get(t, h, "/daos/treasury/proposals?state=executed&actionable=true")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, body["proposals"], 1)

		require.Len(t, lister.params, 1)
		assert.Equal(t, []models.ProposalState{models.ProposalStateExecuted}, lister.params[0].Filter.States)
		assert.True(t, lister.params[0].Filter.Actionable)
		assert.Same(t, dao, lister.params[0].DAO)
	})

	t.Run("DAO key resolves too", func(t *testing.T) {
		lister := &fakeLister{}
		h, dao := testServer(lister, fakeFreeze{})
		lister.result = listing(dao)

		rec, _ := get(t, h, "/daos/"+string(dao.Key)+"/proposals")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown state is a bad request", func(t *testing.T) {
		h, _ := testServer(&fakeLister{}, fakeFreeze{})
		rec, body := get(t, h, "/daos/treasury/proposals?state=bogus")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, body["error"], "bogus")
	})

	t.Run("shows a proposal and its rejection", func(t *testing.T) {
		lister := &fakeLister{}
		h, dao := testServer(lister, fakeFreeze{})
		lister.result = listing(dao)

		rec, body := get(t, h, "/daos/treasury/proposals/0xaa")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0xaa", body["proposal"].(map[string]any)["id"])

		_, body = get(t, h, "/daos/treasury/proposals/0xrr")
		assert.Equal(t, "REJECTED", body["proposal"].(map[string]any)["state"])
	})

	t.Run("shows a proposal outside the listing", func(t *testing.T) {
		lister := &fakeLister{}
		old := &models.Proposal{ID: "0xold", Kind: models.ProposalKindMultisig, State: models.ProposalStateExecuted,
			Multisig: &models.MultisigPayload{Nonce: 1}}
		finder := &fakeFinder{lister: lister, extra: map[string]*usecase.ProposalEntry{
			"0xold": {Proposal: old, Action: models.ExecutionAction{Kind: models.ActionNone}},
		}}
		h, dao, _ := testServerWithStore(lister, finder, fakeFreeze{})
		lister.result = listing(dao)

		rec, body := get(t, h, "/daos/treasury/proposals/0xold")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "EXECUTED", body["proposal"].(map[string]any)["state"])
		require.Len(t, finder.params, 1)
		assert.Equal(t, "0xold", finder.params[0].ID)
		assert.Same(t, dao, finder.params[0].DAO)
	})

	t.Run("missing proposal is 404", func(t *testing.T) {
		lister := &fakeLister{}
		h, dao := testServer(lister, fakeFreeze{})
		lister.result = listing(dao)

		rec, _ := get(t, h, "/daos/treasury/proposals/0xnope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown DAO is 404", func(t *testing.T) {
		h, _ := testServer(&fakeLister{}, fakeFreeze{})
		rec, _ := get(t, h, "/daos/other/proposals")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("backend failure is 500", func(t *testing.T) {
		h, _ := testServer(&fakeLister{err: errors.New("service down")}, fakeFreeze{})
		rec, body := get(t, h, "/daos/treasury/proposals")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "service down", body["error"])
	})

	t.Run("freeze status", func(t *testing.T) {
		h, _ := testServer(&fakeLister{}, fakeFreeze{})
		rec, body := get(t, h, "/daos/treasury/freeze")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["status"].(map[string]any)["canVote"])
	})

	t.Run("freeze status without guard is 404", func(t *testing.T) {
		h, _ := testServer(&fakeLister{}, fakeFreeze{err: domain.ErrNotFound})
		rec, _ := get(t, h, "/daos/treasury/freeze")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
