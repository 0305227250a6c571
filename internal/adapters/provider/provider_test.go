package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fightsight/engine/internal/adapters/provider"
	"github.com/fightsight/engine/internal/domain/classify"
	"github.com/fightsight/engine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func classifierServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/classify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifierClient(t *testing.T) {
	ctx := context.Background()
	req := classify.Request{
		SessionID: "4f2c3e70-0000-0000-0000-000000000001",
		Thrower:   model.FighterA,
		Frames:    [3]int{10, 11, 12},
		Timestamp: 1.2,
		Limb:      model.LimbLeftHand,
		Sport:     model.SportBoxing,
	}

	Convey("Given a classifier provider", t, func() {
		Convey("When the provider confirms a strike", func() {
			srv := classifierServer(t, http.StatusOK, `{
				"strike_detected": true,
				"stance": "orthodox",
				"category": "punch",
				"technique": "jab",
				"target_zone": "head",
				"outcome": "landed",
				"confidence": 0.91,
				"reasoning": "clear extension toward the head",
				"cost": 0.002
			}`)
			c := provider.NewClassifierClient(srv.URL, "test-key")

			res, err := c.Classify(ctx, req)

			Convey("Then the verdict and cost come back intact", func() {
				So(err, ShouldBeNil)
				So(res.StrikeDetected, ShouldBeTrue)
				So(res.Technique, ShouldEqual, "jab")
				So(res.Outcome, ShouldEqual, model.OutcomeLanded)
				So(res.Cost, ShouldAlmostEqual, 0.002, 1e-9)
			})
		})

		Convey("When the provider rejects the candidate as a false positive", func() {
			srv := classifierServer(t, http.StatusOK, `{"strike_detected": false, "cost": 0.002}`)
			c := provider.NewClassifierClient(srv.URL, "test-key")

			res, err := c.Classify(ctx, req)

			Convey("Then no strike is reported but cost still is", func() {
				So(err, ShouldBeNil)
				So(res.StrikeDetected, ShouldBeFalse)
				So(res.Cost, ShouldAlmostEqual, 0.002, 1e-9)
			})
		})

		Convey("When the provider throttles the call", func() {
			srv := classifierServer(t, http.StatusTooManyRequests, `{"error":"slow down"}`)
			c := provider.NewClassifierClient(srv.URL, "test-key")

			_, err := c.Classify(ctx, req)

			Convey("Then the error is transient", func() {
				So(classify.Transient(err), ShouldBeTrue)
				So(classify.Fatal(err), ShouldBeFalse)
			})
		})

		Convey("When the provider has a server fault", func() {
			srv := classifierServer(t, http.StatusBadGateway, ``)
			c := provider.NewClassifierClient(srv.URL, "test-key")

			_, err := c.Classify(ctx, req)

			Convey("Then the error is transient", func() {
				So(classify.Transient(err), ShouldBeTrue)
			})
		})

		Convey("When authentication is rejected", func() {
			srv := classifierServer(t, http.StatusUnauthorized, ``)
			c := provider.NewClassifierClient(srv.URL, "test-key")

			_, err := c.Classify(ctx, req)

			Convey("Then the error is fatal", func() {
				So(classify.Fatal(err), ShouldBeTrue)
				So(classify.Transient(err), ShouldBeFalse)
			})
		})

		Convey("When the quota is exhausted", func() {
			srv := classifierServer(t, http.StatusPaymentRequired, ``)
			c := provider.NewClassifierClient(srv.URL, "test-key")

			_, err := c.Classify(ctx, req)

			Convey("Then the error is fatal", func() {
				So(classify.Fatal(err), ShouldBeTrue)
			})
		})

		Convey("When the response body is malformed", func() {
			srv := classifierServer(t, http.StatusOK, `{"strike_detected": tru`)
			c := provider.NewClassifierClient(srv.URL, "test-key")

			_, err := c.Classify(ctx, req)

			Convey("Then the error is fatal", func() {
				So(classify.Fatal(err), ShouldBeTrue)
			})
		})

		Convey("When the provider is unreachable", func() {
			c := provider.NewClassifierClient("http://127.0.0.1:1", "test-key")

			_, err := c.Classify(ctx, req)

			Convey("Then the error is transient", func() {
				So(classify.Transient(err), ShouldBeTrue)
			})
		})
	})
}

func TestReportClient(t *testing.T) {
	ctx := context.Background()

	Convey("Given a report provider", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/report" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var in model.ReportInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				t.Errorf("decode report input: %v", err)
			}
			_ = json.NewEncoder(w).Encode(model.GeneratedReport{
				Narrative:   "fighter_a controlled the pace behind the jab",
				KeyInsights: []string{"high jab volume"},
				Cost:        0.01,
			})
		}))
		defer srv.Close()

		c := provider.NewReportClient(srv.URL, "test-key")

		Convey("When generating a report from the session summary", func() {
			report, err := c.Generate(ctx, model.ReportInput{
				Sport:        model.SportBoxing,
				Rounds:       3,
				TotalStrikes: 40,
			})

			Convey("Then the narrative and cost come back", func() {
				So(err, ShouldBeNil)
				So(report.Narrative, ShouldContainSubstring, "jab")
				So(report.KeyInsights, ShouldResemble, []string{"high jab volume"})
				So(report.Cost, ShouldAlmostEqual, 0.01, 1e-9)
			})
		})
	})
}
