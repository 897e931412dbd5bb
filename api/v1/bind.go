package v1

import (
	"net/http"

	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// newValidator returns the validator used on top of gin's binding. Field
// rules live in binding tags; cross-field rules are registered here at the
// struct level.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(placeOrderStructValidation, placeOrderRequest{})
	return v
}

// placeOrderStructValidation rejects payloads whose own numbers disagree:
// when the client sends a total, it must equal its claimed
// subtotal + charges - discount. The server recomputes everything anyway;
// this just fails obviously broken requests before any product lookup.
func placeOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(placeOrderRequest)
	if req.TotalPayable.IsZero() {
		return
	}
	claimed := req.Subtotal.
		Add(req.DeliveryCharge).
		Add(req.AdditionalCharge).
		Sub(req.Discount)
	if !claimed.Equal(req.TotalPayable) {
		sl.ReportError(req.TotalPayable, "totalPayable", "TotalPayable", "total_match_parts", "")
	}
}

// BindAndValidate binds the JSON body into out and runs struct-level
// validation. On failure it writes the 400 response and returns false so the
// handler can return immediately.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    e.INVALID_PARAMS,
			"message": err.Error(),
		})
		return false
	}
	if err := v.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    e.INVALID_PARAMS,
			"message": validationMessage(err),
		})
		return false
	}
	return true
}

func validationMessage(err error) string {
	if ve, ok := err.(validatorv10.ValidationErrors); ok && len(ve) > 0 {
		fe := ve[0]
		if fe.Tag() == "total_match_parts" {
			return "totalPayable does not match subtotal + charges - discount"
		}
		return fe.Error()
	}
	return err.Error()
}
