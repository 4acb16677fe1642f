package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitwiki.app/server/internal/http/handler"
)

var _ = Describe("AchievementHandler", func() {
	var (
		router *gin.Engine
		svc    *mockAchievementService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockAchievementService{}
		h := handler.NewAchievementHandler(svc)
		router.GET("/achievements/:username", h.Counters)
		router.POST("/achievements/:username/increment", h.Increment)
	})

	It("increments a metric and returns the new value", func() {
		svc.incrementFn = func(_ context.Context, username, metric string) (int64, error) {
			Expect(username).To(Equal("alice"))
			Expect(metric).To(Equal("edits"))
			return 7, nil
		}

		body, _ := json.Marshal(map[string]string{"metric": "edits"})
		req := httptest.NewRequest(http.MethodPost, "/achievements/alice/increment", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["value"]).To(BeEquivalentTo(7))
		Expect(resp["username"]).To(Equal("alice"))
	})

	It("rejects an increment without a metric", func() {
		req := httptest.NewRequest(http.MethodPost, "/achievements/alice/increment", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns the stored counters", func() {
		svc.countersFn = func(_ context.Context, username string) (map[string]int64, error) {
			return map[string]int64{"edits": 3, "reviews": 1}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/achievements/alice", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"edits":3`))
	})

	It("maps provider failures to 502", func() {
		svc.incrementFn = func(_ context.Context, _, _ string) (int64, error) {
			return 0, errors.New("issue store down")
		}

		body, _ := json.Marshal(map[string]string{"metric": "edits"})
		req := httptest.NewRequest(http.MethodPost, "/achievements/alice/increment", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadGateway))
	})
})
