package sessions_test

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"time"

	"orderhub/account"
	"orderhub/authority"
	"orderhub/bizerror"
	"orderhub/persistence"
	"orderhub/session"
	"orderhub/sessions"
	"orderhub/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/patrickmn/go-cache"
)

var _ = Describe("SessionsRestApi", func() {
	var (
		router       *gin.Engine
		testDatabase *testinfra.TestDatabase
	)
	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		sessions.RegisterSessionsHandler(router)
		session.TokenCache.Flush()
		testDatabase = testinfra.StartMysqlTestDatabase("orderhub")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB().AutoMigrate(&account.User{}).Error).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("SimpleLoginHandler", func() {
		It("should be able to login successfully", func() {
			Expect(testDatabase.DS.GormDB().Save(&account.User{ID: 2, Name: "ann", Nickname: "Ann",
				Secret: account.HashSha256("abc123"), Role: authority.RoleEditor}).Error).To(BeNil())

			begin := time.Now()
			time.Sleep(1 * time.Millisecond)
			req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte(`{"name": "ann", "password":"abc123"}`)))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			resp := w.Result()
			defer func() {
				_ = resp.Body.Close()
			}()
			bodyBytes, _ := ioutil.ReadAll(resp.Body)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			token := ""
			for k := range session.TokenCache.Items() {
				token = k
				break
			}
			Expect(string(bodyBytes)).To(MatchJSON(`{"identity":{"id":"2","name":"ann","nickname":"Ann"},"token":"` + token +
				`","perms":["editor"]}`))
			Expect(resp.Cookies()[0].Name).To(Equal(session.KeySecToken))
			Expect(resp.Cookies()[0].Value).ToNot(BeEmpty())

			securityContextValue, found := session.TokenCache.Get(resp.Cookies()[0].Value)
			Expect(found).To(BeTrue())
			secCtx, ok := securityContextValue.(*session.Context)
			Expect(ok).To(BeTrue())
			Expect(secCtx.SigningTime.After(begin) && secCtx.SigningTime.Before(time.Now())).To(BeTrue())
			Expect(secCtx.Identity).To(Equal(session.Identity{ID: 2, Name: "ann", Nickname: "Ann"}))
			Expect(secCtx.Perms.HasRole(authority.RoleEditor)).To(BeTrue())
		})

		It("should return 401 when user not exist", func() {
			req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte(`{"name": "ann", "password":"abc123"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusUnauthorized))
			Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated","data":null}`))
		})

		It("should return 401 when user password is not correct", func() {
			Expect(testDatabase.DS.GormDB().Save(&account.User{ID: 1, Name: "ann",
				Secret: account.HashSha256("abc123"), Role: authority.RoleEditor}).Error).To(BeNil())

			req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte(`{"name": "ann", "password":"bad pass"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusUnauthorized))
			Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated","data":null}`))
		})

		It("should return 400 when bind failed", func() {
			req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte(`bad json`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid character 'b' looking for beginning of value","data":null}`))
		})
	})

	Describe("SimpleLogoutHandler", func() {
		It("should return 204 and drop the cached token", func() {
			Expect(session.TokenCache.Add("test_token", &session.Context{}, cache.DefaultExpiration)).To(BeNil())

			req := httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil)
			req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "test_token"})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			resp := w.Result()
			defer func() {
				_ = resp.Body.Close()
			}()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(len(resp.Cookies())).To(Equal(1))
			cookie := resp.Cookies()[0]
			Expect(cookie.Name).To(Equal(session.KeySecToken))
			Expect(cookie.Value).To(BeEmpty())
			Expect(cookie.MaxAge).To(Equal(-1))

			_, found := session.TokenCache.Get("test_token")
			Expect(found).To(BeFalse())
		})

		It("should return 204 when request carries no token", func() {
			Expect(session.TokenCache.Add("test_token", &session.Context{}, cache.DefaultExpiration)).To(BeNil())

			req := httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNoContent))

			_, found := session.TokenCache.Get("test_token")
			Expect(found).To(BeTrue())
		})
	})
})
