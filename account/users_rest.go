package account

import (
	"net/http"
	"orderhub/bizerror"
	"orderhub/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	PathUsers = "/v1/users"

	usersValidator = validator.New()
)

func RegisterUsersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathUsers, middleWares...)
	g.GET("", handleQueryUsers)
	g.POST("", handleCreateUser)
	g.PUT("me/secret", handleUpdateSecret)
}

func handleQueryUsers(c *gin.Context) {
	users, err := QueryUsersFunc(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, users)
}

func handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := usersValidator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	info, err := CreateUserFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, info)
}

func handleUpdateSecret(c *gin.Context) {
	updating := BasicAuthUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := usersValidator.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateBasicAuthSecret(&updating, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
