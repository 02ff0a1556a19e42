package testinfra

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"orderhub/authority"
	"orderhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx build security context
func BuildSecCtx(uid types.ID, roles ...string) *session.Context {
	return &session.Context{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "user-" + uid.String()},
		Perms:    authority.Permissions(roles),
	}
}

// AuthedRoute injects the given security context before the handlers under test.
func AuthedRoute(secCtx *session.Context) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session.SaveSecurityContext(ctx, secCtx)
		ctx.Next()
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, error) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}
