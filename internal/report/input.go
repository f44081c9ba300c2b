package report

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/branch-digest/internal/common"
)

// ValidationMessage is the single user-facing message shown for any invalid entry.
const ValidationMessage = "please enter all values correctly"

// Form is the raw text a user typed into the entry form.
type Form struct {
	Qty          string `json:"qty" validate:"required,number"`
	Amount       string `json:"amt" validate:"required,numeric"`
	Transactions string `json:"trans" validate:"required,number"`
}

// Input is a validated sales entry.
type Input struct {
	Qty          int64
	Amount       decimal.Decimal
	Transactions int64

	// Text is the trimmed form text the values were parsed from. It is empty for inputs
	// rebuilt from stored reports.
	Text Form
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ParseForm validates raw entry text. Empty, non-numeric, fractional counts and negative
// values are rejected with a single VALIDATION_FAILED AppError whose details name the
// offending fields.
func ParseForm(f Form) (Input, error) {
	f = Form{
		Qty:          strings.TrimSpace(f.Qty),
		Amount:       strings.TrimSpace(f.Amount),
		Transactions: strings.TrimSpace(f.Transactions),
	}
	fields := map[string]string{}
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Input{}, validationError(map[string]string{"form": err.Error()})
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}

	in := Input{Text: f}
	if _, bad := fields["qty"]; !bad {
		qty, err := strconv.ParseInt(f.Qty, 10, 64)
		if err != nil {
			fields["qty"] = "range"
		}
		in.Qty = qty
	}
	if _, bad := fields["trans"]; !bad {
		trans, err := strconv.ParseInt(f.Transactions, 10, 64)
		if err != nil {
			fields["trans"] = "range"
		}
		in.Transactions = trans
	}
	if _, bad := fields["amt"]; !bad {
		amt, err := decimal.NewFromString(f.Amount)
		switch {
		case err != nil:
			fields["amt"] = "numeric"
		case amt.IsNegative():
			fields["amt"] = "gte"
		}
		in.Amount = amt
	}

	if len(fields) > 0 {
		return Input{}, validationError(fields)
	}
	return in, nil
}

func validationError(fields map[string]string) *common.AppError {
	appErr := common.NewAppError("VALIDATION_FAILED", ValidationMessage, http.StatusBadRequest, nil)
	appErr.Details = fields
	return appErr
}
