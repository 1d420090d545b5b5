package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/repository"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TxRunner runs fn against repositories bound to one transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(repository.Repos) error) error
}

// validateInput maps validator failures onto appErrors.ErrBadRequest.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.BadRequest("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return appErrors.BadRequest("%s", strings.Join(msgs, "; "))
}

