package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"sprockets/internal/apierror"
	"sprockets/internal/inventory"
	"sprockets/internal/repository"
	"sprockets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// On failure it writes the error response and returns false; the caller
// returns without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if !bindJSON(c, req) {
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			_ = c.Error(err)
			return false
		}
		fields := make([]apierror.FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = apierror.FieldError{Field: fe.Field(), Message: fe.Tag()}
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation("Please include all fields", fields))
		return false
	}
	return true
}

// bindJSON only decodes; inventory payloads are checked by the domain rules.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// respondError maps service errors onto HTTP responses. Anything it does not
// recognise is attached to the context for ErrorHandler to log as a 500.
func respondError(c *gin.Context, err error) {
	var verr *inventory.ValidationError
	var nf *inventory.NotFoundError
	switch {
	case errors.As(err, &verr):
		fields := make([]apierror.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = apierror.FieldError{Field: f.Field, Message: f.Message}
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(verr.Error(), fields))
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, apierror.New(nf.Error()))
	case errors.Is(err, inventory.ErrInvalidID),
		errors.Is(err, inventory.ErrProductHasParts),
		errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, apierror.New("User not found"))
	default:
		_ = c.Error(err)
	}
}
