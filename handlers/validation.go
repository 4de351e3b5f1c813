package handlers

import (
	"errors"
	"fmt"

	"Restore/problem"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindProblem turns a binding error into a validation problem response.
func bindProblem(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		problem.Validation(c, map[string][]string{"body": {err.Error()}})
		return
	}

	errs := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		errs[fe.Field()] = append(errs[fe.Field()], fieldMessage(fe))
	}
	problem.Validation(c, errs)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s.", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must be at most %s.", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("The %s field is not a valid e-mail address.", fe.Field())
	default:
		return fmt.Sprintf("The %s field is invalid (%s).", fe.Field(), fe.Tag())
	}
}
