package controller

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MoveRequest accepts either coordinates or algebraic squares for each end
// of the move; coordinates win when both are present.
type MoveRequest struct {
	From       *model.Position `json:"from" validate:"required_without=FromSquare"`
	To         *model.Position `json:"to" validate:"required_without=ToSquare"`
	FromSquare string          `json:"fromSquare" validate:"omitempty,len=2"`
	ToSquare   string          `json:"toSquare" validate:"omitempty,len=2"`
}

// Move resolves the request into board coordinates.
func (r MoveRequest) Move() (model.SimpleMove, error) {
	from, err := resolveSquare(r.From, r.FromSquare)
	if err != nil {
		return model.SimpleMove{}, err
	}
	to, err := resolveSquare(r.To, r.ToSquare)
	if err != nil {
		return model.SimpleMove{}, err
	}
	return model.SimpleMove{From: from, To: to}, nil
}

func resolveSquare(pos *model.Position, square string) (model.Position, error) {
	if pos != nil {
		return *pos, nil
	}
	return model.ParsePosition(square)
}

// validationDetails flattens validator errors into one readable line.
func validationDetails(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	var details strings.Builder
	for _, fe := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required", "required_without":
			details.WriteString(fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			details.WriteString(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			details.WriteString(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "len":
			if fe.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must have length %s", fe.Field(), fe.Param()))
			}
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return details.String()
}
