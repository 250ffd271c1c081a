package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/okian/obesiscope/internal/adapters/backend"
	"github.com/okian/obesiscope/internal/adapters/backend/backendtest"
	"github.com/okian/obesiscope/internal/domain/prediction"
	"github.com/smartystreets/goconvey/convey"
)

func validRequest() prediction.Request {
	return prediction.Request{
		Age: 30, Gender: "Male", Height: 1.75, Weight: 82, FAF: 1,
		Smoke: "no", FAVC: "yes", FamilyHistory: "yes", CAEC: "Sometimes", CALC: "Never", MTRANS: "Public_Transportation",
	}
}

func TestPredict(t *testing.T) {
	convey.Convey("Given a running prediction service", t, func() {
		srv := backendtest.New()
		defer srv.Close()
		c := backend.New(srv.URL + "/")
		ctx := context.Background()

		convey.Convey("When a request is submitted", func() {
			res, err := c.Predict(ctx, validRequest()).Unwrap()

			convey.Convey("Then the category and id are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Prediction, convey.ShouldEqual, "Overweight_Level_I")
				convey.So(res.PredictionID, convey.ShouldEqual, prediction.ID("665f1c2e9b"))
			})

			convey.Convey("And the wire body uses the service field names", func() {
				var body map[string]any
				convey.So(json.Unmarshal(srv.LastBody(), &body), convey.ShouldBeNil)
				convey.So(body["Age"], convey.ShouldEqual, 30.0)
				convey.So(body["SMOKE"], convey.ShouldEqual, "no")
				convey.So(body["family_history_with_overweight"], convey.ShouldEqual, "yes")
				convey.So(body["MTRANS"], convey.ShouldEqual, "Public_Transportation")
			})
		})

		convey.Convey("When the id is numeric", func() {
			srv.Respond(backend.EndpointPredict, http.StatusOK, `{"prediction": "Normal_Weight", "prediction_id": 17}`)
			res, err := c.Predict(ctx, validRequest()).Unwrap()
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.PredictionID, convey.ShouldEqual, prediction.ID("17"))
		})

		convey.Convey("When the service rejects with a message", func() {
			srv.Fail(backend.EndpointPredict, "Modelo indisponível")
			r := c.Predict(ctx, validRequest())

			convey.Convey("Then the message is surfaced as a ServerError", func() {
				convey.So(r.OK(), convey.ShouldBeFalse)
				var se *backend.ServerError
				convey.So(errors.As(r.Err, &se), convey.ShouldBeTrue)
				convey.So(se.Status, convey.ShouldEqual, http.StatusInternalServerError)
				convey.So(r.Err.Error(), convey.ShouldEqual, "Modelo indisponível")
				convey.So(errors.Is(r.Err, backend.ErrServer), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the service rejects without a message", func() {
			srv.Respond(backend.EndpointPredict, http.StatusBadRequest, `not json`)
			r := c.Predict(ctx, validRequest())
			convey.So(r.Err.Error(), convey.ShouldEqual, backend.GenericServerMessage)
		})

		convey.Convey("When the success body is malformed", func() {
			srv.Respond(backend.EndpointPredict, http.StatusOK, `{"prediction": `)
			r := c.Predict(ctx, validRequest())
			convey.So(errors.Is(r.Err, backend.ErrDecode), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given an unreachable service", t, func() {
		srv := backendtest.New()
		url := srv.URL
		srv.Close()
		c := backend.New(url, backend.WithTimeout(time.Second))

		r := c.Predict(context.Background(), validRequest())
		convey.So(errors.Is(r.Err, backend.ErrNetwork), convey.ShouldBeTrue)
		convey.So(errors.Is(r.Err, backend.ErrServer), convey.ShouldBeFalse)
	})
}

func TestStatsEndpoints(t *testing.T) {
	convey.Convey("Given a running prediction service", t, func() {
		srv := backendtest.New()
		defer srv.Close()
		c := backend.New(srv.URL, backend.WithHTTPClient(srv.Client()))
		ctx := context.Background()

		convey.Convey("Total reads total_predictions", func() {
			n, err := c.Total(ctx).Unwrap()
			convey.So(err, convey.ShouldBeNil)
			convey.So(n, convey.ShouldEqual, 49)
		})

		convey.Convey("Total fails when the field is absent", func() {
			srv.Respond(backend.EndpointTotal, http.StatusOK, `{}`)
			convey.So(errors.Is(c.Total(ctx).Err, backend.ErrDecode), convey.ShouldBeTrue)
		})

		convey.Convey("Distribution keeps document order", func() {
			d, err := c.Distribution(ctx).Unwrap()
			convey.So(err, convey.ShouldBeNil)
			convey.So(d.Keys(), convey.ShouldResemble, []string{"Obesity_Type_I", "Normal_Weight", "Overweight_Level_I"})
		})

		convey.Convey("GenderStats indexes by gender", func() {
			g, err := c.GenderStats(ctx).Unwrap()
			convey.So(err, convey.ShouldBeNil)
			convey.So(g.Count("Female", "Overweight_Level_I"), convey.ShouldEqual, 7)
		})

		convey.Convey("AgeStats and ActivityStats decode their lists", func() {
			age, err := c.AgeStats(ctx).Unwrap()
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(age), convey.ShouldEqual, 3)
			convey.So(age[1].AvgWeight, convey.ShouldEqual, 72.1)

			act, err := c.ActivityStats(ctx).Unwrap()
			convey.So(err, convey.ShouldBeNil)
			convey.So(act[0].ActivityLevel, convey.ShouldEqual, "Sedentário")
		})

		convey.Convey("Features describes the model inputs", func() {
			f, err := c.Features(ctx).Unwrap()
			convey.So(err, convey.ShouldBeNil)
			convey.So(f.FeatureOrder[0], convey.ShouldEqual, "Gender")
			convey.So(f.RequiredFields, convey.ShouldContainKey, "Age")
		})

		convey.Convey("History honours the limit", func() {
			h, err := c.History(ctx, 1).Unwrap()
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(h), convey.ShouldEqual, 1)
			convey.So(h[0].ID, convey.ShouldEqual, "a1")

			all, _ := c.History(ctx, 0).Unwrap()
			convey.So(len(all), convey.ShouldEqual, 2)
		})

		convey.Convey("A malformed distribution is a decode error", func() {
			srv.Respond(backend.EndpointDistribution, http.StatusOK, `[1,2,3]`)
			convey.So(errors.Is(c.Distribution(ctx).Err, backend.ErrDecode), convey.ShouldBeTrue)
		})
	})
}

func TestFetchSnapshot(t *testing.T) {
	convey.Convey("Given a running prediction service", t, func() {
		srv := backendtest.New()
		defer srv.Close()
		c := backend.New(srv.URL)
		ctx := context.Background()

		convey.Convey("When every endpoint succeeds", func() {
			snap, err := c.FetchSnapshot(ctx)

			convey.Convey("Then the snapshot bundles all five documents", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(snap.Total, convey.ShouldEqual, 49)
				convey.So(snap.Distribution.Len(), convey.ShouldEqual, 3)
				convey.So(snap.Gender.Count("Male", "Normal_Weight"), convey.ShouldEqual, 14)
				convey.So(len(snap.Age), convey.ShouldEqual, 3)
				convey.So(len(snap.Activity), convey.ShouldEqual, 2)
				convey.So(snap.FetchedAt.IsZero(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When one of the five fails", func() {
			srv.Fail(backend.EndpointAgeStats, "")
			snap, err := c.FetchSnapshot(ctx)

			convey.Convey("Then the whole fetch fails naming that endpoint", func() {
				var fe *backend.FetchError
				convey.So(errors.As(err, &fe), convey.ShouldBeTrue)
				convey.So(fe.Endpoint, convey.ShouldEqual, backend.EndpointAgeStats)
				convey.So(errors.Is(err, backend.ErrFetch), convey.ShouldBeTrue)
				convey.So(errors.Is(err, backend.ErrServer), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldStartWith, "Erro ao buscar /predictions/age-stats")
				convey.So(snap.Distribution.Len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := c.FetchSnapshot(cctx)
			convey.So(errors.Is(err, backend.ErrFetch), convey.ShouldBeTrue)
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}
