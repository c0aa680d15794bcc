package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"go.uber.org/zap"
)

// envelope is the generic top-level JSON shape every non-error response
// wraps its payload in, matching the teacher's own controllers.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, data envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrorEnvelope(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"error": map[string]string{
		"code":    http.StatusText(status),
		"message": message,
	}})
}

func (api *journeysAPI) badRequestResponse(w http.ResponseWriter, err error) {
	api.log.Warn("bad request", zap.Error(err))
	writeErrorEnvelope(w, http.StatusBadRequest, err.Error())
}

func (api *journeysAPI) internalErrorResponse(w http.ResponseWriter, err error) {
	api.log.Error("internal error", zap.Error(err))
	writeErrorEnvelope(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// decodeAndValidate reads r's JSON body into dst and runs
// go-playground/validator over it, translating field errors into
// English the same way the teacher's hub.go does for websocket
// requests.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(dst); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		return fmt.Errorf("validation error: %v", translateError(err, trans))
	}
	return nil
}

func translateError(err error, trans ut.Translator) []error {
	if err == nil {
		return nil
	}
	validatorErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []error{err}
	}
	var errs []error
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf(e.Translate(trans)))
	}
	return errs
}
