package order

import (
	"errors"
	"net/http"

	"orderhub/bizerror"
	"orderhub/common"
	"orderhub/domain"
	"orderhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	PathOrders     = "/v1/orders"
	PathOrderStats = "/v1/order-stats"

	ordersValidator = validator.New()
)

func RegisterOrdersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathOrders, middleWares...)
	g.GET("", handleQueryOrders)
	g.GET(":id", handleDetailOrder)
	g.POST(":id/claim", handleClaimOrder)
	g.POST(":id/complete", handleCompleteOrder)
	g.POST(":id/release", handleReleaseOrder)
	g.POST(":id/fail", handleFailOrder)

	s := r.Group(PathOrderStats, middleWares...)
	s.GET("", handleQueryOrderStats)
}

func handleQueryOrders(c *gin.Context) {
	query := domain.OrderQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	orders, err := QueryOrdersFunc(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &common.PagedBody{List: orders, Total: uint64(len(*orders))})
}

func handleDetailOrder(c *gin.Context) {
	o, err := DetailOrderFunc(parseOrderId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, o)
}

func handleClaimOrder(c *gin.Context) {
	o, err := ClaimOrderFunc(parseOrderId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, o)
}

func handleCompleteOrder(c *gin.Context) {
	completion := domain.OrderCompletion{}
	if err := c.ShouldBindBodyWith(&completion, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := ordersValidator.Struct(completion); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	o, err := CompleteOrderFunc(parseOrderId(c), &completion, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, o)
}

func handleReleaseOrder(c *gin.Context) {
	o, err := ReleaseOrderFunc(parseOrderId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, o)
}

func handleFailOrder(c *gin.Context) {
	o, err := FailOrderFunc(parseOrderId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, o)
}

func handleQueryOrderStats(c *gin.Context) {
	stats, err := QueryOrderStatsFunc(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stats)
}

func parseOrderId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}
