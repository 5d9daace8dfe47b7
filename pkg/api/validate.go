package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	"github.com/joeydtaylor/terakoya-core/pkg/booking"
)

const (
	msgRequired     = "必須項目が入力されていません。"
	msgEmail        = "メールアドレスの形式が正しくありません。"
	msgDate         = "日付はYYYY-MM-DD形式で指定して下さい。"
	msgUUID         = "ユーザーIDの形式が正しくありません。"
	msgInvalid      = "入力内容が正しくありません。"
	msgUUIDMismatch = "パスとリクエストボディのユーザーIDが一致しません。"
)

const (
	tagDate     = "datetime=" + booking.DateLayout
	tagUserUUID = "user_uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Cognito subs are UUIDs; uuid.Parse accepts every form Cognito emits.
	_ = v.RegisterValidation(tagUserUUID, func(fl validator.FieldLevel) bool {
		_, err := uuid.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// messages maps a failed tag to the detail shown to the client.
var messages = map[string]string{
	"required":  msgRequired,
	"email":     msgEmail,
	"datetime":  msgDate,
	tagUserUUID: msgUUID,
}

func invalid(msg string) error { return apperr.New(apperr.KindValidationFailed, msg) }

// fromValidator turns the first failed rule into a ValidationFailed error.
func fromValidator(err error) error {
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		if msg, ok := messages[fields[0].Tag()]; ok {
			return invalid(msg)
		}
	}
	return invalid(msgInvalid)
}

func checkStruct(v any) error { return fromValidator(validate.Struct(v)) }

func checkVar(v any, tag string) error { return fromValidator(validate.Var(v, tag)) }
