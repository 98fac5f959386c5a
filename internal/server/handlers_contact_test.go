package server

import (
	"net/http"
	"testing"
	"time"
)

func TestContactDispatchesMail(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Jan Kowalski",
		"email":   "jan@example.com",
		"message": "Proszę o usunięcie wizytówki.",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if decodeBody(t, recorder)["sent"] != true {
		t.Fatalf("unexpected body %s", recorder.Body.String())
	}

	select {
	case message := <-env.mail.messages:
		if message.Email != "jan@example.com" {
			t.Fatalf("unexpected message: %+v", message)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("mail was never dispatched")
	}
}

func TestContactRejectsIncompleteSubmission(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/contact", map[string]string{
		"name":  "Jan Kowalski",
		"email": "jan@example.com",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}

	select {
	case <-env.mail.messages:
		t.Fatal("invalid submission must not send mail")
	case <-time.After(100 * time.Millisecond):
	}
}
