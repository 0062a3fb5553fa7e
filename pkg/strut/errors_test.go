package strut

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpError_Error(t *testing.T) {
	err := NewHttpError(404, "User not found")
	assert.Equal(t, "HTTP 404: User not found", err.Error())
}

func TestHttpError_Constructors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrBadRequest("x").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, ErrUnauthorized("x").StatusCode)
	assert.Equal(t, http.StatusForbidden, ErrForbidden("x").StatusCode)
	assert.Equal(t, http.StatusNotFound, ErrNotFound("x").StatusCode)
	assert.Equal(t, http.StatusConflict, ErrConflict("x").StatusCode)
	assert.Equal(t, http.StatusUnprocessableEntity, ErrUnprocessableEntity("x").StatusCode)
	assert.Equal(t, http.StatusInternalServerError, ErrInternalServerError("x").StatusCode)
}

func TestHttpError_WithDetails(t *testing.T) {
	err := NewHttpErrorWithDetails(409, "conflict", map[string]string{"field": "name"})
	assert.Equal(t, map[string]string{"field": "name"}, err.Details)
}

type validatedBody struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=1"`
}

func TestNewValidationError_FieldDetail(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())
	cause := v.Struct(validatedBody{})
	require.Error(t, cause)

	verr := NewValidationError(cause)
	detail, ok := verr.Detail.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, detail, "Name")
	assert.Contains(t, detail, "Count")

	// validator.ValidationErrors is a slice, so assert the chain with As
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, verr, &verrs)
	assert.Equal(t, cause, verr.Unwrap())
}

func TestNewValidationError_PlainCause(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	verr := NewValidationError(cause)

	assert.Equal(t, "unexpected end of JSON input", verr.Detail)
	assert.ErrorIs(t, verr, cause)
}

func TestStartupError_Error(t *testing.T) {
	assert.Equal(t, "bad config", (&StartupError{Message: "bad config"}).Error())
	assert.Equal(t, "controller UserController: bad config",
		(&StartupError{Controller: "UserController", Message: "bad config"}).Error())
	assert.Equal(t, "controller UserController, endpoint GetUser: bad config",
		(&StartupError{Controller: "UserController", Endpoint: "GetUser", Message: "bad config"}).Error())
}

func TestTranslator_ValidationError(t *testing.T) {
	tr := NewTranslator(testLogger())
	c := newStubContext()

	tr.Translate(c, NewValidationError(errors.New("bad body")))

	assert.Equal(t, http.StatusBadRequest, c.status)
	assert.Equal(t, map[string]any{"error": "bad body"}, c.jsonBody)
}

func TestTranslator_HttpError(t *testing.T) {
	tr := NewTranslator(testLogger())
	c := newStubContext()
	herr := ErrForbidden("not yours")

	tr.Translate(c, herr)

	assert.Equal(t, http.StatusForbidden, c.status)
	assert.Equal(t, herr, c.jsonBody)
}

func TestTranslator_WrappedHttpError(t *testing.T) {
	tr := NewTranslator(testLogger())
	c := newStubContext()

	tr.Translate(c, errors.Join(errors.New("outer"), ErrConflict("taken")))

	assert.Equal(t, http.StatusConflict, c.status)
}

func TestTranslator_UnclassifiedError(t *testing.T) {
	tr := NewTranslator(testLogger())
	c := newStubContext()

	tr.Translate(c, errors.New("database exploded"))

	assert.Equal(t, http.StatusInternalServerError, c.status)
	assert.Equal(t, map[string]any{"error": "database exploded"}, c.jsonBody)
}

func TestTranslator_Sanitize(t *testing.T) {
	tr := NewTranslator(testLogger())
	tr.Sanitize = func(error) any { return map[string]string{"error": "internal error"} }
	c := newStubContext()

	tr.Translate(c, errors.New("secret detail"))

	assert.Equal(t, http.StatusInternalServerError, c.status)
	assert.Equal(t, map[string]string{"error": "internal error"}, c.jsonBody)
}

func TestTranslator_SkipsCommittedResponse(t *testing.T) {
	tr := NewTranslator(testLogger())
	c := newStubContext()
	c.written = true

	tr.Translate(c, errors.New("too late"))

	assert.Equal(t, 0, c.status)
	assert.Nil(t, c.jsonBody)
}

func TestTranslator_NotFoundHandler(t *testing.T) {
	tr := NewTranslator(testLogger())
	c := newStubContext()

	err := tr.NotFoundHandler()(c)
	require.Error(t, err)
	tr.Translate(c, err)

	assert.Equal(t, http.StatusNotFound, c.status)
	assert.Equal(t, ErrRouteNotFound, c.jsonBody)
}
