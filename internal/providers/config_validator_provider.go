package providers

import (
	"errors"
	"socialstats/internal/structures"
	"time"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}
	if cv.conf.Daemon && cv.conf.Schedule.Interval < time.Second {
		return errors.New("schedule.interval must be at least 1s in daemon mode")
	}
	return nil
}
