package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/handler"
	maindomain "github.com/saulomartins80/finnextho-bfa-go/internal/domain"
)

type fakeChat struct {
	detectErr  error
	confirmErr error
	gotUser    string
	gotDetect  *domain.DetectRequest
	gotConfirm *domain.ConfirmRequest
}

func (f *fakeChat) Detect(_ context.Context, userID string, req *domain.DetectRequest) (*domain.DetectResponse, error) {
	f.gotUser, f.gotDetect = userID, req
	if f.detectErr != nil {
		return nil, f.detectErr
	}
	return &domain.DetectResponse{Success: true, Type: domain.ResponseText, Text: "Olá!", MessageID: "m1"}, nil
}

func (f *fakeChat) Confirm(_ context.Context, userID string, req *domain.ConfirmRequest) (*domain.ConfirmResponse, error) {
	f.gotUser, f.gotConfirm = userID, req
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &domain.ConfirmResponse{Success: false, MissingFields: []string{"valor_total"}, RequiresConfirmation: true}, nil
}

func asUser(id string) handler.UserIDFunc {
	return func(context.Context) string { return id }
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDetectHandler(t *testing.T) {
	svc := &fakeChat{}
	rec := post(handler.DetectHandler(svc, asUser("u1"), zap.NewNop()), `{"message":"oi","chatId":"c1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", svc.gotUser)
	assert.Equal(t, "oi", svc.gotDetect.Message)
	assert.Equal(t, "c1", svc.gotDetect.ChatID)

	var resp domain.DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TEXT_RESPONSE", resp.Type)
	assert.Equal(t, "m1", resp.MessageID)
}

func TestDetectHandler_NoUser(t *testing.T) {
	svc := &fakeChat{}
	rec := post(handler.DetectHandler(svc, asUser(""), zap.NewNop()), `{"message":"oi"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, svc.gotDetect)
}

func TestDetectHandler_BadBody(t *testing.T) {
	rec := post(handler.DetectHandler(&fakeChat{}, asUser("u1"), zap.NewNop()), `{"message":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &maindomain.ErrValidation{Field: "message", Message: "message is required"}, http.StatusBadRequest},
		{"not found", &maindomain.ErrNotFound{Resource: "user", ID: "u1"}, http.StatusNotFound},
		{"unauthorized", &maindomain.ErrUnauthorized{}, http.StatusUnauthorized},
		{"circuit open", &maindomain.ErrCircuitOpen{Service: "supabase/transacoes"}, http.StatusServiceUnavailable},
		{"timeout", &maindomain.ErrTimeout{Operation: "supabase/users"}, http.StatusGatewayTimeout},
		{"external", &maindomain.ErrExternalService{Service: "supabase/users", Err: assert.AnError}, http.StatusBadGateway},
		{"other", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(handler.DetectHandler(&fakeChat{detectErr: tt.err}, asUser("u1"), zap.NewNop()), `{"message":"oi"}`)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
		})
	}
}

func TestConfirmHandler_MissingFieldsIs200(t *testing.T) {
	svc := &fakeChat{}
	rec := post(handler.ConfirmHandler(svc, asUser("u1"), zap.NewNop()),
		`{"action":"CREATE_GOAL","payload":{"meta":"viagem"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ActionCreateGoal, svc.gotConfirm.Action)
	assert.JSONEq(t, `{"meta":"viagem"}`, string(svc.gotConfirm.Payload))

	var resp domain.ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, []string{"valor_total"}, resp.MissingFields)
}

func TestConfirmHandler_UnknownAction(t *testing.T) {
	svc := &fakeChat{confirmErr: &maindomain.ErrValidation{Field: "action", Message: `unsupported action "UNKNOWN"`}}
	rec := post(handler.ConfirmHandler(svc, asUser("u1"), zap.NewNop()), `{"action":"UNKNOWN","payload":{}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported action")
}
