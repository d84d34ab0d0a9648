package handler

import (
	"errors"
	"fmt"
	"net/http"

	"derma-detect/backend/common"
	"derma-detect/backend/model"
	"derma-detect/backend/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type RegisterRequestPayload struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"display_name" validate:"omitempty,max=50"`
}

func Register(c *gin.Context) {
	var payload RegisterRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := common.Validate.Struct(&payload); err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, validationMessage(err))
		return
	}
	if model.IsEmailAlreadyTaken(payload.Email) {
		common.RespErrorStr(c, http.StatusBadRequest, "email is already registered")
		return
	}

	user := &model.User{
		Email:       payload.Email,
		Password:    payload.Password,
		DisplayName: payload.DisplayName,
		Role:        model.RoleCommonUser,
		Status:      model.UserStatusEnabled,
	}
	if user.DisplayName == "" {
		user.DisplayName = payload.Email
	}
	if err := user.Insert(); err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to create account", err)
		return
	}

	user.Password = ""
	c.JSON(http.StatusCreated, common.APIResponse{
		Success: true,
		Message: "account created",
		Data:    user,
	})
}

type LoginRequestPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Login(c *gin.Context) {
	var payload LoginRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := common.Validate.Struct(&payload); err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	user := &model.User{Email: payload.Email, Password: payload.Password}
	if err := user.ValidateAndFill(); err != nil {
		common.RespErrorStr(c, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := service.GenerateToken(user)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	refreshToken, err := service.GenerateRefreshToken(user)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to issue refresh token", err)
		return
	}

	session := sessions.Default(c)
	session.Set("id", user.ID)
	session.Set("email", user.Email)
	session.Set("role", user.Role)
	if err := session.Save(); err != nil {
		common.SysError("failed to save session: " + err.Error())
	}

	user.Password = ""
	common.RespSuccess(c, gin.H{
		"token":         token,
		"refresh_token": refreshToken,
		"user":          user,
	})
}

type RefreshRequestPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func RefreshToken(c *gin.Context) {
	var payload RefreshRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := common.Validate.Struct(&payload); err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	claims, err := service.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		common.RespErrorStr(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	user, err := model.GetUserById(claims.UserID)
	if err != nil || user.Status != model.UserStatusEnabled {
		common.RespErrorStr(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	token, err := service.GenerateToken(user)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	common.RespSuccess(c, gin.H{"token": token})
}

func Logout(c *gin.Context) {
	if token := c.GetString("token"); token != "" {
		if err := service.BlacklistToken(c, token); err != nil {
			common.SysError("failed to blacklist token: " + err.Error())
		}
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		common.SysError("failed to clear session: " + err.Error())
	}

	common.RespSuccessStr(c, "logged out")
}

func GetSelf(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		common.RespErrorStr(c, http.StatusInternalServerError, "user not found in context")
		return
	}
	common.RespSuccess(c, user)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0]
		return fmt.Sprintf("invalid field %s (%s)", field.Field(), field.Tag())
	}
	return err.Error()
}
