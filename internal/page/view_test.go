package page

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestView_Navigate(t *testing.T) {
	v := NewView(NewAssembler(&fakeDB{}, newLibrary(t), nil, testSite))
	defer v.Close()

	if v.Current() != nil {
		t.Fatal("new view should have no result")
	}
	res, err := v.Navigate(context.Background(), blogES("inventario"))
	if err != nil {
		t.Fatal(err)
	}
	if v.Current() != res || res.State != StateFoundStatic {
		t.Errorf("current = %+v", v.Current())
	}
}

func TestView_StaleNavigationDiscarded(t *testing.T) {
	db := &fakeDB{block: map[string]bool{"lento": true}, entered: make(chan string, 1)}
	v := NewView(NewAssembler(db, newLibrary(t), nil, testSite, WithTimeout(time.Minute)))
	defer v.Close()

	errc := make(chan error, 1)
	go func() {
		_, err := v.Navigate(context.Background(), blogES("lento"))
		errc <- err
	}()
	<-db.entered

	res, err := v.Navigate(context.Background(), blogES("telemedicina"))
	if err != nil {
		t.Fatal(err)
	}
	if err := <-errc; !errors.Is(err, ErrSuperseded) {
		t.Errorf("stale navigation returned %v", err)
	}
	if v.Current() != res || v.Current().Request.Slug != "telemedicina" {
		t.Errorf("current = %+v", v.Current())
	}
}

func TestView_Closed(t *testing.T) {
	db := &fakeDB{block: map[string]bool{"lento": true}, entered: make(chan string, 1)}
	v := NewView(NewAssembler(db, newLibrary(t), nil, testSite, WithTimeout(time.Minute)))

	errc := make(chan error, 1)
	go func() {
		_, err := v.Navigate(context.Background(), blogES("lento"))
		errc <- err
	}()
	<-db.entered
	v.Close()

	if err := <-errc; !errors.Is(err, ErrViewClosed) {
		t.Errorf("in-flight navigation returned %v", err)
	}
	if _, err := v.Navigate(context.Background(), blogES("inventario")); !errors.Is(err, ErrViewClosed) {
		t.Errorf("navigate after close returned %v", err)
	}
}
