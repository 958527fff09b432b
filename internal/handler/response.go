package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"huddl/internal/domain"
)

// ErrorBody is the wire shape for every error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// SignInBody is the wire shape for a successful social sign-in.
type SignInBody struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    *UserObject `json:"user,omitempty"`
}

// UserObject is the user representation exposed over the wire. UserID mirrors
// ID; older clients read the former, newer ones the latter.
type UserObject struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Role        domain.UserRole `json:"role"`
	UserUID     string          `json:"user_uid"`
	PhoneNumber string          `json:"phone_number"`
	MediaData   json.RawMessage `json:"media_data"`
	OtherData   json.RawMessage `json:"other_data"`
	UserData    json.RawMessage `json:"user_data"`
}

// NewUserObject maps a domain user onto the wire representation.
func NewUserObject(u *domain.User) *UserObject {
	return &UserObject{
		ID:          u.ID,
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		UserUID:     u.UserUID,
		PhoneNumber: u.PhoneNumber,
		MediaData:   u.MediaData,
		OtherData:   u.OtherData,
		UserData:    u.UserData,
	}
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, errCode, detail string) {
	c.JSON(status, ErrorBody{Error: errCode, Detail: detail})
}

// HandleError maps a domain error and sends the appropriate error response.
// Which specific verification check failed is logged but never sent to the
// caller.
func HandleError(c *gin.Context, err error) {
	requestID, _ := c.Get("request_id")

	switch {
	case domain.IsVerificationError(err):
		log.Printf("[%s] token rejected: %v", requestID, err)
		RespondError(c, http.StatusUnauthorized, "invalid_token", "")
	case errors.Is(err, domain.ErrUnsupportedProvider):
		RespondError(c, http.StatusNotFound, "unsupported_provider", "")
	case errors.Is(err, domain.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", "")
	case errors.Is(err, domain.ErrKeyFetchFailed), errors.Is(err, context.DeadlineExceeded):
		log.Printf("[%s] transient failure: %v", requestID, err)
		RespondError(c, http.StatusServiceUnavailable, "provider_unavailable", "temporary failure, retry the request")
	default:
		log.Printf("[%s] internal error: %v", requestID, err)
		RespondError(c, http.StatusInternalServerError, "internal_error", "")
	}
}
