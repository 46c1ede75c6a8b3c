package apiHttp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/quepay/backend/pkg/logger"
)

type messageResponse struct {
	Message string `json:"message"`
} // @name MessageResponse

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
} // @name LoginResponse

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
} // @name StatusResponse

type statisticsResponse struct {
	Success    bool       `json:"success"`
	Statistics statistics `json:"statistics"`
} // @name StatisticsResponse

type statistics struct {
	ProjectName   string `json:"projectName"`
	OtherCoolInfo string `json:"otherCoolInfo"`
	Website       string `json:"website"`
}

type ValidationErrorStruct struct {
	Message string            `json:"message"`
	Errors  []ValidationError `json:"validation_errors"`
}

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

func messageOK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, messageResponse{Message: message})
}

// internalErrorResponse logs the real cause and answers with a generic body.
// Raw collaborator errors never reach the caller.
func internalErrorResponse(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, messageResponse{Message: "internal server error"})
}

func bindErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		out := make([]ValidationError, len(verr))
		for i, ferr := range verr {
			out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorStruct{
			Message: "Validation error",
			Errors:  out,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, messageResponse{Message: "invalid request body"})
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %v", value)
	case "max":
		return fmt.Sprintf("Maximum length is %v", value)
	case "phonenumber":
		return "Phone number must be in international format"
	}
	return tag
}
