package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
)

const maxBodySize = 1 << 20

type createCaseFromTransactionRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=10000"`
	Priority      string `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
}

type createCaseFromAlertRequest struct {
	AlertID     string `json:"alertId" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Priority    string `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
}

type assignRequest struct {
	InvestigatorID   string `json:"investigatorId" validate:"required"`
	ExpectedAssignee string `json:"expectedAssignee" validate:"max=128"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=5000"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type evidenceRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	FileURL     string `json:"fileUrl" validate:"required,url"`
	Description string `json:"description" validate:"max=5000"`
}

type closeRequest struct {
	Resolution string `json:"resolution" validate:"max=5000"`
}

type transactionRequest struct {
	AccountID string  `json:"accountId" validate:"max=128"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"omitempty,len=3"`
	Country   string  `json:"country" validate:"required,max=64"`
	Merchant  string  `json:"merchant" validate:"max=256"`
}

type systemMessageRequest struct {
	Message   string `json:"message" validate:"required,max=2000"`
	Room      string `json:"room" validate:"max=128"`
	Recipient string `json:"recipient" validate:"max=128"`
}

type ruleRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Condition   string `json:"condition" validate:"required,max=1000"`
	Score       int    `json:"score" validate:"gte=0,lte=100"`
	Description string `json:"description" validate:"max=5000"`
	Enabled     *bool  `json:"enabled"`
}

type announcementRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Content     string     `json:"content" validate:"required,max=10000"`
	Type        string     `json:"type" validate:"omitempty,oneof=meeting alert update reminder general"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	TargetRoles []string   `json:"targetRoles" validate:"dive,oneof=admin compliance investigator auditor"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	IsActive    *bool      `json:"isActive"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into v and validates it. Every failure is an
// ErrValidation.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	return s.decodeBody(w, r, v, false)
}

// decodeOptional is decode for routes whose body may be omitted. An empty
// body validates the zero request.
func (s *Server) decodeOptional(w http.ResponseWriter, r *http.Request, v any) error {
	return s.decodeBody(w, r, v, true)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !(optional && errors.Is(err, io.EOF)) {
		return goerr.Wrap(model.ErrValidation, "invalid JSON body", goerr.V("cause", err.Error()))
	}

	if err := s.validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return goerr.Wrap(model.ErrValidation, "invalid field "+fe.Field(),
				goerr.V("field", fe.Field()),
				goerr.V("rule", fe.Tag()),
			)
		}
		return goerr.Wrap(model.ErrValidation, "invalid request", goerr.V("cause", err.Error()))
	}
	return nil
}
