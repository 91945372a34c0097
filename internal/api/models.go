package api

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "appointments/internal/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	httpErr := apperrors.FromDomain(err)
	writeJSON(w, httpErr.Code, httpErr)
}

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ErrBadRequest("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			var fields []string
			for _, fe := range fieldErrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return apperrors.ErrBadRequest("Invalid or missing fields: " + strings.Join(fields, ", "))
		}
		return apperrors.ErrBadRequest("Invalid request")
	}
	return nil
}
