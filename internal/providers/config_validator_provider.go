package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"divelog/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the config against the struct tags. The first failing rule
// is returned as the error.
func (v *CnfValidator) Validate() error {
	val := validate.Struct(v.conf)
	if !val.Validate() {
		return fmt.Errorf("invalid config: %s", val.Errors.One())
	}
	return nil
}
