package api

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/fsdevblog/splitledger/internal/domain"
)

var registerOnce sync.Once

// validateMaxBytes в отличии от тэга max который проверяет длину рун, - проверят длину байт в поле.
func validateMaxBytes(fl validator.FieldLevel) bool {
	param := fl.Param() // получаем значение из тега
	maxBytes, err := strconv.Atoi(param)
	if err != nil {
		return false
	}

	// нужно убедится что значение поля - строка.
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return len([]byte(str)) <= maxBytes
}

// validateSplitType пропускает только известные политики деления.
func validateSplitType(fl validator.FieldLevel) bool {
	return domain.SplitType(fl.Field().String()).Valid()
}

func registerValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("validator registration: unexpected engine %T", binding.Validator.Engine())
			return
		}
		if regErr := v.RegisterValidation("max_bytes", validateMaxBytes); regErr != nil {
			err = fmt.Errorf("validator registration: %s", regErr.Error())
			return
		}
		if regErr := v.RegisterValidation("split_type", validateSplitType); regErr != nil {
			err = fmt.Errorf("validator registration: %s", regErr.Error())
		}
	})
	return err
}
