package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/payetonkawa/catalog-service/internal/account/domain"
	"github.com/payetonkawa/catalog-service/internal/account/service"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

// Response bodies are bare JSON strings, as clients of the API expect.
const (
	MsgRegistered         = "Un e-mail contenant un QR Code a été envoyé à l'adresse %s."
	MsgAccountExists      = "Cet e-mail est déjà utilisé."
	MsgInvalidCredentials = "L'e-mail ou le mot de passe est incorrect."
	MsgInvalidRequest     = "Requête invalide : %s"
	MsgInternalError      = "Une erreur est survenue."
	MsgPasswordTooLong    = "le mot de passe ne doit pas dépasser 72 octets."
)

type AccountHandler struct {
	authService service.AuthService
}

func NewAccountHandler(as service.AuthService) *AccountHandler {
	return &AccountHandler{authService: as}
}

// RegisterRoutes mounts the credential endpoints. Extra handlers, such as a
// rate limiter, run before each of them.
func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup, extra ...gin.HandlerFunc) {
	router.POST("/inscription", append(extra, h.Register)...)
	router.POST("/authentification", append(extra, h.Login)...)
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Register: bad request", "error", err)
		c.JSON(http.StatusBadRequest, fmt.Sprintf(MsgInvalidRequest, "accountId (e-mail) et password sont requis."))
		return
	}

	cred, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountAlreadyExists):
			c.JSON(http.StatusBadRequest, MsgAccountExists)
		case errors.Is(err, service.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, fmt.Sprintf(MsgInvalidRequest, MsgPasswordTooLong))
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, fmt.Sprintf(MsgInvalidRequest, "accountId (e-mail) et password sont requis."))
		default:
			logger.Error("Register: service error", err)
			c.JSON(http.StatusInternalServerError, MsgInternalError)
		}
		return
	}

	c.JSON(http.StatusOK, fmt.Sprintf(MsgRegistered, cred.AccountID))
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Login: bad request", "error", err)
		c.JSON(http.StatusBadRequest, fmt.Sprintf(MsgInvalidRequest, "accountId et password sont requis."))
		return
	}

	response, err := h.authService.Authenticate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, MsgInvalidCredentials)
			return
		}
		logger.Error("Login: service error", err)
		c.JSON(http.StatusInternalServerError, MsgInternalError)
		return
	}

	c.JSON(http.StatusOK, response)
}
