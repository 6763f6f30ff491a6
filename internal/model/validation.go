package model

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var timeslotRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// timeslot validates the HH:MM strings used for appointment slots and clinic
// opening hours.
func timeslot(fl validator.FieldLevel) bool {
	return timeslotRe.MatchString(fl.Field().String())
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("timeslot", timeslot)
	}
}
