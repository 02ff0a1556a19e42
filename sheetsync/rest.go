package sheetsync

import (
	"net/http"
	"time"

	"orderhub/bizerror"
	"orderhub/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"golang.org/x/time/rate"
)

var (
	PathSheetSync = "/v1/sheet-sync"

	// SyncRateLimiter throttles the trigger endpoint.
	SyncRateLimiter = rate.NewLimiter(rate.Every(10*time.Second), 2)
)

func RegisterSheetSyncRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	// preflight stays outside the auth middlewares
	r.OPTIONS(PathSheetSync, handleSyncPreflight)

	// CORS headers go on ahead of auth so browsers can read rejections too
	g := r.Group(PathSheetSync, corsHeaders())
	g.Use(middleWares...)
	g.POST("", handleTriggerSync)
	g.GET("", handleLastRun)
}

type SyncResponse struct {
	Ok        bool `json:"ok"`
	Inserted  int  `json:"inserted"`
	Updated   int  `json:"updated"`
	Purged    int  `json:"purged"`
	TotalRows int  `json:"totalRows"`
}

func handleSyncPreflight(c *gin.Context) {
	writeCorsHeaders(c)
	c.Status(http.StatusNoContent)
}

func handleTriggerSync(c *gin.Context) {
	sec := session.FindSecurityContext(c)
	if sec == nil || !sec.IsAdmin() {
		panic(bizerror.ErrForbidden)
	}
	if !SyncRateLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "too many sync requests"})
		return
	}

	req := SyncRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
	}

	report, err := SyncRunFunc(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, &SyncResponse{Ok: true, Inserted: report.Inserted, Updated: report.Updated,
		Purged: report.Purged, TotalRows: report.TotalRows})
}

func handleLastRun(c *gin.Context) {
	sec := session.FindSecurityContext(c)
	if sec == nil || !sec.IsAdmin() {
		panic(bizerror.ErrForbidden)
	}
	record := LastRun()
	if record == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, record)
}

func corsHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		writeCorsHeaders(c)
		c.Next()
	}
}

func writeCorsHeaders(c *gin.Context) {
	allowed := "*"
	if ActiveFeedConfig != nil && len(ActiveFeedConfig.AllowedOrigins) > 0 {
		allowed = ActiveFeedConfig.AllowedOrigins[0]
		origin := c.GetHeader("Origin")
		for _, candidate := range ActiveFeedConfig.AllowedOrigins {
			if candidate == "*" || candidate == origin {
				allowed = candidate
				break
			}
		}
	}
	c.Header("Access-Control-Allow-Origin", allowed)
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
