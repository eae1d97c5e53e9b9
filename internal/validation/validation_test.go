package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/gin-gonic/gin"
)

func bindBody(t *testing.T, body string, req any) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return BindJSON(c, req)
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var validationErr *apperr.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *apperr.ValidationError, got %T %v", err, err)
	}
	fields := make(map[string]string, len(validationErr.Fields))
	for _, f := range validationErr.Fields {
		fields[f.Field] = f.Message
	}
	return fields
}

func TestBindJSON_RSVP(t *testing.T) {
	var ok RSVPRequest
	if err := bindBody(t, `{"attending":true,"guests":2,"message":"yay","userId":"forged"}`, &ok); err != nil {
		t.Fatalf("expected valid rsvp, got %v", err)
	}
	if !*ok.Attending || *ok.Guests != 2 || ok.DietaryRestrictions != nil {
		t.Fatalf("unexpected bound request %+v", ok)
	}

	var falseAttending RSVPRequest
	if err := bindBody(t, `{"attending":false,"guests":1}`, &falseAttending); err != nil {
		t.Fatalf("expected attending=false to satisfy required, got %v", err)
	}

	var missing RSVPRequest
	fields := fieldsOf(t, bindBody(t, `{"guests":0}`, &missing))
	if fields["attending"] != "is required" {
		t.Fatalf("expected attending required, got %v", fields)
	}
	if fields["guests"] != "must be at least 1" {
		t.Fatalf("expected guests min error, got %v", fields)
	}

	var tooLong RSVPRequest
	fields = fieldsOf(t, bindBody(t, `{"attending":true,"guests":1,"message":"`+strings.Repeat("a", 1001)+`"}`, &tooLong))
	if fields["message"] != "must be at most 1000 characters" {
		t.Fatalf("expected message length error, got %v", fields)
	}

	var wrongType RSVPRequest
	fields = fieldsOf(t, bindBody(t, `{"attending":"yes","guests":1}`, &wrongType))
	if fields["attending"] != "must be a boolean" {
		t.Fatalf("expected type error on attending, got %v", fields)
	}
}

func TestBindJSON_Malformed(t *testing.T) {
	var req LoginRequest
	fields := fieldsOf(t, bindBody(t, `{"email":`, &req))
	if fields["body"] != "malformed json" {
		t.Fatalf("expected malformed json, got %v", fields)
	}
	if status := apperr.Status(bindBody(t, `{}`, &req)); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestBindJSON_Gift(t *testing.T) {
	var req GiftCreateRequest
	fields := fieldsOf(t, bindBody(t, `{"name":"Toaster","price":"$30","image":"toaster.jpg","url":"not a url"}`, &req))
	if fields["url"] != "must be a valid URL" {
		t.Fatalf("expected url error, got %v", fields)
	}

	var purchase GiftPurchaseRequest
	if err := bindBody(t, `{"purchased":true,"purchasedBy":"Mallory"}`, &purchase); err != nil {
		t.Fatalf("expected purchase body to bind, got %v", err)
	}
	if purchase.Purchased == nil || !*purchase.Purchased {
		t.Fatalf("expected purchased=true")
	}
}
