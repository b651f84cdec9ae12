package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"lotto/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64,excludes=:"`
	Password string `json:"password" validate:"required,max=128"`
}

type cartItemRequest struct {
	Num   string `json:"num" validate:"max=32"`
	Bet   int64  `json:"bet" validate:"lte=1000000000"`
	Label string `json:"label" validate:"max=64"`
}

type placePlayRequest struct {
	Items []cartItemRequest `json:"items" validate:"max=200,dive"`
}

type playKeyRequest struct {
	PlayTime string `json:"play_time" validate:"required"`
	Draw     string `json:"draw" validate:"required,len=4,numeric"`
}

type editItemRequest struct {
	RowID  int64  `json:"db_id"`
	NumRaw string `json:"num_raw" validate:"max=32"`
	Bet    int64  `json:"bet" validate:"gte=0,lte=1000000000"`
	Label  string `json:"label" validate:"max=64"`
}

type editPlayRequest struct {
	playKeyRequest
	TotalBet *int64           `json:"total_bet" validate:"omitempty,gte=0,lte=200000000000"`
	Items    []editItemRequest `json:"items" validate:"max=200,dive"`
}

func (p playKeyRequest) key(username string) (models.PlayKey, error) {
	playTime, err := models.ParsePlayTime(p.PlayTime)
	if err != nil {
		return models.PlayKey{}, err
	}
	return models.PlayKey{Username: username, PlayTime: playTime, Draw: p.Draw}, nil
}

func (r placePlayRequest) cart() []models.CartItem {
	items := make([]models.CartItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, models.CartItem{Num: item.Num, Bet: item.Bet, Label: item.Label})
	}
	return items
}

func (r editPlayRequest) editRequest(key models.PlayKey) models.EditRequest {
	req := models.EditRequest{Key: key, TotalBet: r.TotalBet}
	for _, item := range r.Items {
		req.Items = append(req.Items, models.EditItem{
			RowID:  item.RowID,
			NumRaw: item.NumRaw,
			Bet:    item.Bet,
			Label:  item.Label,
		})
	}
	return req
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// On failure it writes the 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, reasonBadRequest, "invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, reasonBadRequest, formatValidationError(err)...)
		return false
	}
	return true
}

func formatValidationError(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	var errs []string
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Sprintf("%s is required", field))
		case "max":
			errs = append(errs, fmt.Sprintf("%s must have maximum length %s", field, e.Param()))
		case "len":
			errs = append(errs, fmt.Sprintf("%s must have length %s", field, e.Param()))
		case "numeric":
			errs = append(errs, fmt.Sprintf("%s must be numeric", field))
		case "gte":
			errs = append(errs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "lte":
			errs = append(errs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		case "excludes":
			errs = append(errs, fmt.Sprintf("%s must not contain %q", field, e.Param()))
		default:
			errs = append(errs, fmt.Sprintf("%s is invalid (%s)", field, e.Tag()))
		}
	}
	return errs
}
