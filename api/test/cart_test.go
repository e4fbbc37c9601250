package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/sinahosseinzadeh97/Projects-sub001/core/cart"
)

type cartTest struct {
	*TestEnv
}

func TestCart(t *testing.T) {
	env, err := NewTestEnv(t, "cart_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &cartTest{env}
	pt := &productTest{env}

	p1 := pt.createProductOK(t)
	p2 := pt.createProductOK(t)

	if err := Login(ct.Server, ct.UserEmail, ct.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.Server)

	ct.createItemOK(t, p1.ID, 1)
	ct.createItemOK(t, p1.ID, 2)
	ct.createItemOK(t, p2.ID, 1)

	crt := ct.showCartOK(t)
	if len(crt.Items) != 2 {
		t.Fatalf("expected 2 cart items, got %d", len(crt.Items))
	}
	if crt.Items[0].ProductID != p1.ID || crt.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3 of product %s, got %+v", p1.ID, crt.Items[0])
	}

	ct.deleteItemOK(t, p2.ID)
	crt = ct.showCartOK(t)
	if len(crt.Items) != 1 {
		t.Fatalf("expected 1 cart item after deletion, got %d", len(crt.Items))
	}

	ct.deleteCartOK(t)
	crt = ct.showCartOK(t)
	if len(crt.Items) != 0 {
		t.Fatalf("expected empty cart after flush, got %d items", len(crt.Items))
	}
}

func (ct *cartTest) createItemOK(t *testing.T, productID string, qty int) {
	b, err := json.Marshal(cart.ItemNew{ProductID: productID, Quantity: qty})
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPut, ct.URL+"/cart/items", bytes.NewBuffer(b))
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't add cart item: status code %s", w.Status)
	}
}

func (ct *cartTest) showCartOK(t *testing.T) cart.Cart {
	w, err := ct.Client().Get(ct.URL + "/cart")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't fetch cart: status code %s", w.Status)
	}

	var crt cart.Cart
	if err := json.NewDecoder(w.Body).Decode(&crt); err != nil {
		t.Fatalf("cannot unmarshal cart: %v", err)
	}

	return crt
}

func (ct *cartTest) deleteItemOK(t *testing.T, productID string) {
	r, err := http.NewRequest(http.MethodDelete, ct.URL+"/cart/items/"+productID, nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't delete cart item: status code %s", w.Status)
	}
}

func (ct *cartTest) deleteCartOK(t *testing.T) {
	r, err := http.NewRequest(http.MethodDelete, ct.URL+"/cart", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't flush cart: status code %s", w.Status)
	}
}
