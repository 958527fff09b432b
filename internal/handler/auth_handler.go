package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huddl/internal/domain"
	"huddl/internal/port"
	"huddl/internal/service"
)

// AuthHandler handles the social sign-in endpoints.
type AuthHandler struct {
	socialAuthService service.SocialAuthService
	includeUser       bool
}

// NewAuthHandler creates a new AuthHandler. includeUser controls whether
// successful responses carry the user object; it is a deployment-level
// configuration switch.
func NewAuthHandler(socialAuthService service.SocialAuthService, includeUser bool) *AuthHandler {
	return &AuthHandler{socialAuthService: socialAuthService, includeUser: includeUser}
}

type googleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type appleSignInRequest struct {
	IdentityToken string           `json:"identity_token" binding:"required"`
	User          *appleUserObject `json:"user"`
}

// appleUserObject is the profile Apple clients forward on the user's first
// authorization only.
type appleUserObject struct {
	Name *struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
	Email string `json:"email"`
}

func (r *appleSignInRequest) profile() *port.AppleProfile {
	if r.User == nil {
		return nil
	}
	p := &port.AppleProfile{Email: r.User.Email}
	if r.User.Name != nil {
		p.FirstName = r.User.Name.FirstName
		p.LastName = r.User.Name.LastName
	}
	return p
}

// GoogleSignIn handles POST /auth/google/
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req googleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	h.signIn(c, service.SocialSignInInput{
		Provider: domain.AuthProviderGoogle,
		RawToken: req.IDToken,
	})
}

// AppleSignIn handles POST /auth/apple/
func (h *AuthHandler) AppleSignIn(c *gin.Context) {
	var req appleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	h.signIn(c, service.SocialSignInInput{
		Provider: domain.AuthProviderApple,
		RawToken: req.IdentityToken,
		Profile:  req.profile(),
	})
}

func (h *AuthHandler) signIn(c *gin.Context, input service.SocialSignInInput) {
	output, err := h.socialAuthService.SignIn(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	body := SignInBody{
		Access:  output.Tokens.AccessToken,
		Refresh: output.Tokens.RefreshToken,
	}
	if h.includeUser {
		body.User = NewUserObject(output.User)
	}
	c.JSON(http.StatusOK, body)
}
