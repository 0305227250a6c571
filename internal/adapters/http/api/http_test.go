package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fightsight/engine/internal/adapters/http/api"
	"github.com/fightsight/engine/internal/adapters/repository"
	service "github.com/fightsight/engine/internal/app"
	"github.com/fightsight/engine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeDeps backs the handlers with canned data.
type fakeDeps struct {
	sessions  map[uuid.UUID]model.AnalysisSession
	fighters  map[uuid.UUID][]model.SessionFighter
	strikes   map[uuid.UUID][]model.StrikeEvent
	submitErr error
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		sessions: make(map[uuid.UUID]model.AnalysisSession),
		fighters: make(map[uuid.UUID][]model.SessionFighter),
		strikes:  make(map[uuid.UUID][]model.StrikeEvent),
	}
}

func (f *fakeDeps) Submit(_ context.Context, req api.SubmitRequest) (model.AnalysisSession, error) {
	if f.submitErr != nil {
		return model.AnalysisSession{}, f.submitErr
	}
	sess := model.AnalysisSession{
		ID:     uuid.New(),
		Sport:  req.Sport,
		Rounds: req.Rounds,
		Status: model.StatusPending,
	}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeDeps) Session(_ context.Context, id uuid.UUID) (model.AnalysisSession, []model.SessionFighter, error) {
	sess, ok := f.sessions[id]
	if !ok {
		return model.AnalysisSession{}, nil, repository.ErrNotFound
	}
	return sess, f.fighters[id], nil
}

func (f *fakeDeps) Strikes(_ context.Context, id uuid.UUID) ([]model.StrikeEvent, error) {
	return f.strikes[id], nil
}

func (f *fakeDeps) Combinations(_ context.Context, id uuid.UUID) ([]model.Combination, error) {
	return nil, nil
}

func (f *fakeDeps) DeleteSession(_ context.Context, id uuid.UUID) error {
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

type statsStub map[string]interface{}

func (s statsStub) GetStats() map[string]interface{} { return s }

func newTestMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, statsStub{"started": true}).Register(context.Background(), mux)
	return mux
}

func TestSessionsAPI(t *testing.T) {
	Convey("Given the API over fake dependencies", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)

		Convey("When posting a valid session", func() {
			body := `{"sport":"boxing","rounds":3,"poses_path":"/data/poses.jsonl"}`
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body)))

			Convey("Then it is accepted with a pending session", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				var resp map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["status"], ShouldEqual, "pending")
				So(resp["sport"], ShouldEqual, "boxing")
				So(resp["id"], ShouldNotBeEmpty)
			})
		})

		Convey("When posting an unknown sport", func() {
			body := `{"sport":"chess","rounds":3,"poses_path":"p"}`
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body)))

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting malformed JSON", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("{")))

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = service.ErrQueueFull
			body := `{"sport":"mma","rounds":1,"poses_path":"p"}`
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body)))

			Convey("Then backpressure surfaces as 429", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("When reading an existing session", func() {
			id := uuid.New()
			deps.sessions[id] = model.AnalysisSession{
				ID: id, Sport: model.SportBoxing, Rounds: 3,
				Status: model.StatusCompleted, Progress: 100, TotalStrikes: 7,
			}
			deps.fighters[id] = []model.SessionFighter{
				{Label: model.FighterA, Stance: model.StanceOrthodox, StrikesThrown: 4},
				{Label: model.FighterB, Stance: model.StanceSouthpaw, StrikesThrown: 3},
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id.String(), nil))

			Convey("Then the session and fighters come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["status"], ShouldEqual, "completed")
				So(resp["total_strikes"], ShouldEqual, 7.0)
				fighters := resp["fighters"].([]any)
				So(len(fighters), ShouldEqual, 2)
			})
		})

		Convey("When reading a session's strikes", func() {
			id := uuid.New()
			deps.strikes[id] = []model.StrikeEvent{
				{ID: uuid.New(), SessionID: id, Technique: "jab", Outcome: model.OutcomeLanded},
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id.String()+"/strikes", nil))

			Convey("Then the strike list comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var strikes []map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &strikes), ShouldBeNil)
				So(len(strikes), ShouldEqual, 1)
				So(strikes[0]["technique"], ShouldEqual, "jab")
			})
		})

		Convey("When reading an unknown session", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+uuid.NewString(), nil))

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the session id is not a UUID", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid", nil))

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When deleting a session", func() {
			id := uuid.New()
			deps.sessions[id] = model.AnalysisSession{ID: id}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/"+id.String(), nil))

			Convey("Then it is gone", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)
				So(deps.sessions, ShouldNotContainKey, id)
			})
		})

		Convey("When requesting stats", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then the snapshot is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "started")
			})
		})
	})
}
