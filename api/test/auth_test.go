package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
)

type authTest struct {
	*TestEnv
}

func TestAuth(t *testing.T) {
	env, err := NewTestEnv(t, "auth_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	at := &authTest{env}

	const email = "fresh@test.com"
	const pass = "freshpassword"

	at.signupOK(t, "Fresh User", email, pass)

	// The account is not active yet, logins must be turned away.
	if err := Login(at.Server, email, pass); err == nil {
		t.Fatal("expected login to fail before activation")
	}

	at.requestTokenOK(t, email, "activation")
	tok, ok := at.Mail.Token("activation", email)
	if !ok {
		t.Fatal("no activation token was mailed")
	}
	at.activateOK(t, tok)

	if err := Logout(at.Server); err != nil {
		t.Fatal(err)
	}
	if err := Login(at.Server, email, pass); err != nil {
		t.Fatalf("login after activation: %v", err)
	}
	if err := Logout(at.Server); err != nil {
		t.Fatal(err)
	}

	// Password recovery: reset and login with the new one.
	const newPass = "anotherpassword"
	at.requestTokenOK(t, email, "recovery")
	tok, ok = at.Mail.Token("recovery", email)
	if !ok {
		t.Fatal("no recovery token was mailed")
	}
	at.recoverOK(t, tok, newPass)

	if err := Login(at.Server, email, newPass); err != nil {
		t.Fatalf("login with the recovered password: %v", err)
	}
	if err := Login(at.Server, email, pass); err == nil {
		t.Fatal("expected the old password to be rejected")
	}
}

func (at *authTest) signupOK(t *testing.T, name string, email string, pass string) {
	body := map[string]string{
		"name":            name,
		"email":           email,
		"password":        pass,
		"passwordConfirm": pass,
	}
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Post(at.URL+"/auth/signup", "application/json", bytes.NewBuffer(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't sign up: status code %s", w.Status)
	}
}

func (at *authTest) requestTokenOK(t *testing.T, email string, scope string) {
	b, err := json.Marshal(map[string]string{"email": email, "scope": scope})
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Post(at.URL+"/tokens", "application/json", bytes.NewBuffer(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusAccepted {
		t.Fatalf("can't request %s token: status code %s", scope, w.Status)
	}
}

func (at *authTest) activateOK(t *testing.T, token string) {
	b, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Post(at.URL+"/tokens/activate", "application/json", bytes.NewBuffer(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't activate account: status code %s", w.Status)
	}
}

func (at *authTest) recoverOK(t *testing.T, token string, pass string) {
	body := map[string]string{
		"token":           token,
		"password":        pass,
		"passwordConfirm": pass,
	}
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Post(at.URL+"/tokens/recover", "application/json", bytes.NewBuffer(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't recover password: status code %s", w.Status)
	}
}
