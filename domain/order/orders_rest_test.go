package order_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"orderhub/authority"
	"orderhub/bizerror"
	"orderhub/common"
	"orderhub/domain"
	"orderhub/domain/order"
	"orderhub/session"
	"orderhub/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("OrdersRestAPI", func() {
	var (
		router *gin.Engine
	)

	BeforeEach(func() {
		router = gin.Default()
		secCtx := testinfra.BuildSecCtx(10, authority.RoleEditor)
		order.RegisterOrdersRestAPI(router, bizerror.ErrorHandling(), testinfra.AuthedRoute(secCtx))
	})
	AfterEach(func() {
		order.QueryOrdersFunc = order.QueryOrders
		order.DetailOrderFunc = order.DetailOrder
		order.ClaimOrderFunc = order.ClaimOrder
		order.CompleteOrderFunc = order.CompleteOrder
		order.ReleaseOrderFunc = order.ReleaseOrder
		order.FailOrderFunc = order.FailOrder
		order.QueryOrderStatsFunc = order.QueryOrderStats
	})

	Describe("handleQueryOrders", func() {
		It("should serve the query with bound parameters and the session", func() {
			var gotQuery *domain.OrderQuery
			var gotSec *session.Context
			orders := []domain.Order{
				{ID: 100, ClientName: "Asha", Requirement: "Logo: brand refresh", Price: 15000,
					Source: domain.SourceSheet, Status: domain.StatusAvailable},
				{ID: 101, ClientName: "Ravi", Requirement: "Video: product teaser", Price: 40000,
					Source: domain.SourceSheet, Status: domain.StatusTaken, AssigneeID: 10},
			}
			order.QueryOrdersFunc = func(query *domain.OrderQuery, sec *session.Context) (*[]domain.Order, error) {
				gotQuery, gotSec = query, sec
				return &orders, nil
			}

			req := httptest.NewRequest(http.MethodGet, order.PathOrders+"?status=taken&mine=true", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(gotQuery.Status).To(Equal(domain.StatusTaken))
			Expect(gotQuery.Mine).To(BeTrue())
			Expect(gotSec.Identity.ID).To(Equal(types.ID(10)))

			expected, err := json.Marshal(&common.PagedBody{List: &orders, Total: 2})
			Expect(err).To(BeNil())
			Expect(body).To(MatchJSON(expected))
		})

		It("should return 500 when query failed", func() {
			order.QueryOrdersFunc = func(query *domain.OrderQuery, sec *session.Context) (*[]domain.Order, error) {
				return nil, errors.New("a mocked error")
			}
			req := httptest.NewRequest(http.MethodGet, order.PathOrders, nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusInternalServerError))
			Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"a mocked error","data":null}`))
		})
	})

	Describe("handleDetailOrder", func() {
		It("should reject an unparsable id", func() {
			req := httptest.NewRequest(http.MethodGet, order.PathOrders+"/abc", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'abc'","data":null}`))
		})

		It("should map a missing record to 404", func() {
			order.DetailOrderFunc = func(id types.ID, sec *session.Context) (*domain.Order, error) {
				return nil, gorm.ErrRecordNotFound
			}
			req := httptest.NewRequest(http.MethodGet, order.PathOrders+"/404", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNotFound))
			Expect(body).To(MatchJSON(`{"code":"common.record_not_found","message":"record not found","data":null}`))
		})
	})

	Describe("handleClaimOrder", func() {
		It("should return the claimed order", func() {
			claimed := domain.Order{ID: 100, ClientName: "Asha", Status: domain.StatusTaken, AssigneeID: 10}
			order.ClaimOrderFunc = func(id types.ID, sec *session.Context) (*domain.Order, error) {
				Expect(id).To(Equal(types.ID(100)))
				return &claimed, nil
			}
			req := httptest.NewRequest(http.MethodPost, order.PathOrders+"/100/claim", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))

			expected, err := json.Marshal(&claimed)
			Expect(err).To(BeNil())
			Expect(body).To(MatchJSON(expected))
		})

		It("should map a lost claim race to 409", func() {
			order.ClaimOrderFunc = func(id types.ID, sec *session.Context) (*domain.Order, error) {
				return nil, bizerror.ErrOrderNotAvailable
			}
			req := httptest.NewRequest(http.MethodPost, order.PathOrders+"/100/claim", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusConflict))
			Expect(body).To(MatchJSON(`{"code":"order.not_available","message":"order was already taken","data":null}`))
		})
	})

	Describe("handleCompleteOrder", func() {
		It("should return 400 when body bind failed", func() {
			req := httptest.NewRequest(http.MethodPost, order.PathOrders+"/100/complete", bytes.NewReader([]byte(`bad json`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid character 'b' looking for beginning of value","data":null}`))
		})

		It("should return 400 when the deliverable is missing", func() {
			req := httptest.NewRequest(http.MethodPost, order.PathOrders+"/100/complete", bytes.NewReader([]byte(`{}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"Key: 'OrderCompletion.Deliverable' ` +
				`Error:Field validation for 'Deliverable' failed on the 'required' tag","data":null}`))
		})

		It("should map completion by a non-assignee to 403", func() {
			order.CompleteOrderFunc = func(id types.ID, c *domain.OrderCompletion, sec *session.Context) (*domain.Order, error) {
				return nil, bizerror.ErrNotAssignee
			}
			req := httptest.NewRequest(http.MethodPost, order.PathOrders+"/100/complete",
				bytes.NewReader([]byte(`{"deliverable":"https://files.example.com/logo.zip"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(body).To(MatchJSON(`{"code":"order.not_assignee","message":"order is assigned to someone else","data":null}`))
		})

		It("should return the completed order", func() {
			var gotCompletion *domain.OrderCompletion
			completed := domain.Order{ID: 100, Status: domain.StatusCompleted, AssigneeID: 10,
				Deliverable: "https://files.example.com/logo.zip", ActualAmount: 18000}
			order.CompleteOrderFunc = func(id types.ID, c *domain.OrderCompletion, sec *session.Context) (*domain.Order, error) {
				gotCompletion = c
				return &completed, nil
			}
			req := httptest.NewRequest(http.MethodPost, order.PathOrders+"/100/complete",
				bytes.NewReader([]byte(`{"deliverable":"https://files.example.com/logo.zip","actualAmount":18000,"feedback":"great client"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(gotCompletion.Deliverable).To(Equal("https://files.example.com/logo.zip"))
			Expect(gotCompletion.ActualAmount).To(Equal(int64(18000)))
			Expect(gotCompletion.Feedback).To(Equal("great client"))

			expected, err := json.Marshal(&completed)
			Expect(err).To(BeNil())
			Expect(body).To(MatchJSON(expected))
		})
	})

	Describe("handleReleaseOrder", func() {
		It("should map releasing a non-taken order to 409", func() {
			order.ReleaseOrderFunc = func(id types.ID, sec *session.Context) (*domain.Order, error) {
				return nil, bizerror.ErrOrderNotTaken
			}
			req := httptest.NewRequest(http.MethodPost, order.PathOrders+"/100/release", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusConflict))
			Expect(body).To(MatchJSON(`{"code":"order.not_taken","message":"order is not in taken status","data":null}`))
		})
	})

	Describe("handleFailOrder", func() {
		It("should return the abandoned order with the failed marker", func() {
			failed := domain.Order{ID: 100, Status: domain.StatusCompleted, AssigneeID: 10, Deliverable: domain.DeliverableFailed}
			order.FailOrderFunc = func(id types.ID, sec *session.Context) (*domain.Order, error) {
				return &failed, nil
			}
			req := httptest.NewRequest(http.MethodPost, order.PathOrders+"/100/fail", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))

			expected, err := json.Marshal(&failed)
			Expect(err).To(BeNil())
			Expect(body).To(MatchJSON(expected))
		})
	})

	Describe("handleQueryOrderStats", func() {
		It("should map a non-admin caller to 403", func() {
			order.QueryOrderStatsFunc = func(sec *session.Context) (*domain.OrderStats, error) {
				return nil, bizerror.ErrForbidden
			}
			req := httptest.NewRequest(http.MethodGet, order.PathOrderStats, nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"access forbidden","data":null}`))
		})

		It("should return the aggregated stats", func() {
			stats := domain.OrderStats{
				ByStatus: []domain.StatusStat{
					{Status: domain.StatusAvailable, Count: 3, TotalPrice: 45000},
					{Status: domain.StatusCompleted, Count: 1, TotalPrice: 20000},
				},
				ByEditor: []domain.EditorStat{
					{AssigneeID: 10, AssigneeName: "user-10", CompletedCount: 1, TotalActualAmount: 18000},
				},
			}
			order.QueryOrderStatsFunc = func(sec *session.Context) (*domain.OrderStats, error) {
				return &stats, nil
			}
			req := httptest.NewRequest(http.MethodGet, order.PathOrderStats, nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))

			expected, err := json.Marshal(&stats)
			Expect(err).To(BeNil())
			Expect(body).To(MatchJSON(expected))
		})
	})
})
