package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	service "github.com/okian/silentdrop/internal/app"
	"github.com/okian/silentdrop/internal/domain/model"
	"github.com/okian/silentdrop/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type failingAssessor struct{}

func (failingAssessor) Assess(context.Context, string, model.PatientMetrics) (model.Assessment, error) {
	return model.Assessment{}, errors.New("scorer offline")
}

func (failingAssessor) Reject(_ context.Context, _ string, err error) error { return err }

var today = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func newSiteMux(deps Assessor) *http.ServeMux {
	mux := http.NewServeMux()
	Register(context.Background(), mux, deps, WithClock(func() time.Time { return today }))
	return mux
}

func startedService() *service.Service {
	svc := service.New()
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func postForm(mux http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func formValues(gap, refill, contact, labs, late string) url.Values {
	return url.Values{
		"last_follow_up":          {"2026-09-01"},
		"expected_gap_days":       {gap},
		"refill_delay_days":       {refill},
		"days_since_last_contact": {contact},
		"missed_lab_tests":        {labs},
		"days_late_follow_up":     {late},
	}
}

func TestFormHandler_Get(t *testing.T) {
	Convey("Given the form shell", t, func() {
		svc := startedService()
		defer svc.Stop()
		mux := newSiteMux(svc)

		Convey("When requesting the root page", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			body := w.Body.String()

			Convey("Then it should render an empty form", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(body, ShouldContainSubstring, Title)
				So(body, ShouldContainSubstring, `value="2026-10-18"`)
				So(body, ShouldContainSubstring, "Expected Gap Between Visits (days)")
				So(body, ShouldContainSubstring, "Days Late for Follow-Up")
				So(body, ShouldContainSubstring, `min="0"`)
				So(body, ShouldContainSubstring, "Predict Risk")
				So(body, ShouldNotContainSubstring, "Prediction Complete")
			})
		})

		Convey("When requesting another path", func() {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When using an unsupported method", func() {
			req := httptest.NewRequest(http.MethodDelete, "/", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should be method not allowed", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldContainSubstring, "POST")
			})
		})
	})
}

func TestFormHandler_Post(t *testing.T) {
	Convey("Given the form shell", t, func() {
		svc := startedService()
		defer svc.Stop()
		mux := newSiteMux(svc)

		Convey("When submitting a high-risk patient", func() {
			w := postForm(mux, formValues("60", "60", "60", "10", "30"))
			body := w.Body.String()

			Convey("Then it should render the result", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "Prediction Complete")
				So(body, ShouldContainSubstring, "100.00")
				So(body, ShouldContainSubstring, "HIGH")
				So(body, ShouldContainSubstring, "High silent dropout risk: immediate intervention required.")
				So(body, ShouldContainSubstring, `value="2026-09-01"`)
			})
		})

		Convey("When submitting all zeros", func() {
			w := postForm(mux, formValues("0", "0", "0", "0", "0"))
			body := w.Body.String()

			Convey("Then it should render a LOW result", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "0.00")
				So(body, ShouldContainSubstring, "Low risk: patient engagement is healthy.")
			})
		})

		Convey("When submitting a negative value", func() {
			w := postForm(mux, formValues("10", "-5", "0", "0", "0"))
			body := w.Body.String()

			Convey("Then it should show the validation message and keep the values", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(body, ShouldContainSubstring, "refill_delay_days must be non-negative")
				So(body, ShouldContainSubstring, `value="-5"`)
				So(body, ShouldContainSubstring, `value="10"`)
				So(body, ShouldNotContainSubstring, "Prediction Complete")
				So(svc.GetStats()["rejected"], ShouldEqual, int64(1))
			})
		})

		Convey("When a field is left empty", func() {
			w := postForm(mux, formValues("1", "1", "", "1", "1"))

			Convey("Then it should report the missing field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "days_since_last_contact is required")
				So(svc.GetStats()["rejected"], ShouldEqual, int64(1))
				So(svc.GetStats()["assessments"], ShouldEqual, int64(0))
			})
		})

		Convey("When a field is not a number", func() {
			w := postForm(mux, formValues("1", "1", "1", "two", "1"))

			Convey("Then it should report the bad value", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "missed_lab_tests must be a number")
				So(svc.GetStats()["rejected"], ShouldEqual, int64(1))
			})
		})

		Convey("When the date is omitted", func() {
			values := formValues("0", "0", "0", "0", "0")
			values.Del("last_follow_up")
			w := postForm(mux, values)

			Convey("Then it should default to today", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `value="2026-10-18"`)
			})
		})
	})

	Convey("Given a form shell whose scorer fails", t, func() {
		mux := newSiteMux(failingAssessor{})

		Convey("When submitting valid values", func() {
			w := postForm(mux, formValues("0", "0", "0", "0", "0"))

			Convey("Then it should render a generic error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "could not be computed")
				So(w.Body.String(), ShouldNotContainSubstring, "scorer offline")
			})
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		ctx := context.Background()

		Convey("When registering the site handler", func() {
			Convey("Then it should panic", func() {
				So(func() {
					Register(ctx, nil, failingAssessor{})
				}, ShouldPanic)
			})
		})
	})
}
