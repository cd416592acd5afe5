package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JudgmentScanner/internal/domain"
)

type fakeReader struct {
	cases    []domain.StoredCase
	judges   []domain.StoredJudge
	circuits []domain.Reference
	types    []domain.Reference
	err      error

	lastFilters map[string]int
}

func (f *fakeReader) ListCases(context.Context) ([]domain.StoredCase, error) {
	return f.cases, f.err
}

func (f *fakeReader) CaseByNumber(_ context.Context, caseNo string) (*domain.StoredCase, error) {
	for _, c := range f.cases {
		if c.CaseNo == caseNo {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReader) ListJudges(_ context.Context, filters map[string]int) ([]domain.StoredJudge, error) {
	f.lastFilters = filters
	var out []domain.StoredJudge
	for _, j := range f.judges {
		if id, ok := filters["circuit_id"]; ok && (j.CircuitID == nil || *j.CircuitID != id) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeReader) JudgeByID(_ context.Context, id int) (*domain.StoredJudge, error) {
	for _, j := range f.judges {
		if j.ID == id {
			return &j, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReader) ListCircuits(context.Context) ([]domain.Reference, error) {
	return f.circuits, nil
}

func (f *fakeReader) ListJudgeTypes(context.Context) ([]domain.Reference, error) {
	return f.types, nil
}

func newReader() *fakeReader {
	circuit := 2
	return &fakeReader{
		cases: []domain.StoredCase{{
			CaseNo:  "CL-2023-000873",
			Title:   "Acme v Widget",
			JudgeID: 7,
			Verdict: "claimant",
			Summary: "A dispute over widgets.",
			Date:    time.Date(2024, time.March, 22, 0, 0, 0, 0, time.UTC),
		}},
		judges: []domain.StoredJudge{
			{ID: 7, Name: "HENSHAW", Gender: domain.GenderMale},
			{ID: 9, Name: "PEARCE", Gender: domain.GenderMale, CircuitID: &circuit},
		},
		circuits: []domain.Reference{{ID: 2, Name: "North Eastern"}},
		types:    []domain.Reference{{ID: 1, Name: "Circuit Judge"}},
	}
}

func serve(t *testing.T, reader *fakeReader, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	srv := NewServer(reader, 0, nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := serve(t, newReader(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"ok"`, string(body["status"]))
}

func TestListCases(t *testing.T) {
	rec, body := serve(t, newReader(), "/cases")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var cases []domain.StoredCase
	require.NoError(t, json.Unmarshal(body["cases"], &cases))
	require.Len(t, cases, 1)
	assert.Equal(t, "CL-2023-000873", cases[0].CaseNo)
}

func TestListCases_Empty(t *testing.T) {
	rec, body := serve(t, &fakeReader{}, "/cases")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `"No cases found"`, string(body["message"]))
}

func TestListCases_ReaderError(t *testing.T) {
	rec, _ := serve(t, &fakeReader{err: errors.New("db down")}, "/cases")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetCase(t *testing.T) {
	rec, body := serve(t, newReader(), "/cases/CL-2023-000873")
	assert.Equal(t, http.StatusOK, rec.Code)

	var c domain.StoredCase
	require.NoError(t, json.Unmarshal(body["case"], &c))
	assert.Equal(t, "Acme v Widget", c.Title)

	rec, _ = serve(t, newReader(), "/cases/CL-1999-000000")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListJudges(t *testing.T) {
	reader := newReader()
	rec, body := serve(t, reader, "/judges?circuit_id=2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int{"circuit_id": 2}, reader.lastFilters)

	var judges []domain.StoredJudge
	require.NoError(t, json.Unmarshal(body["judges"], &judges))
	require.Len(t, judges, 1)
	assert.Equal(t, "PEARCE", judges[0].Name)
}

func TestListJudges_BadFilters(t *testing.T) {
	rec, _ := serve(t, newReader(), "/judges?gender=F")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, newReader(), "/judges?circuit_id=north")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListJudges_NoMatch(t *testing.T) {
	rec, _ := serve(t, newReader(), "/judges?circuit_id=99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJudge(t *testing.T) {
	rec, body := serve(t, newReader(), "/judges/7")
	assert.Equal(t, http.StatusOK, rec.Code)

	var judge domain.StoredJudge
	require.NoError(t, json.Unmarshal(body["judge"], &judge))
	assert.Equal(t, "HENSHAW", judge.Name)

	rec, _ = serve(t, newReader(), "/judges/seven")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, newReader(), "/judges/404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReferenceLists(t *testing.T) {
	rec, body := serve(t, newReader(), "/circuits")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body["circuits"]), "North Eastern")

	rec, body = serve(t, newReader(), "/judge_types")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body["judge_types"]), "Circuit Judge")

	rec, _ = serve(t, &fakeReader{}, "/circuits")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
