package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *url.Values) {
	t.Helper()

	var seen url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{
		BaseURL:  srv.URL,
		Location: "spb",
		Language: "ru",
	})
	c.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 30, 0, 0, time.Local)
	}
	return c, &seen
}

const sampleBody = `{"results":[
	{"title":"Night concert","place":{"name":"Philharmonic","address":"Main st. 1"},
	 "price":"from 500","images":[{"image":"https://img.example/1.jpg"}],
	 "site_url":"https://example.com/1"},
	{"title":"No frills","price":""}
]}`

func TestFetchParsesEvents(t *testing.T) {
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleBody))
	})

	evs := c.Fetch(context.Background(), CategoryConcert, DateToday)
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	first := evs[0]
	if first.Title != "Night concert" || first.Place != "Philharmonic" ||
		first.Address != "Main st. 1" || first.ImageURL != "https://img.example/1.jpg" {
		t.Errorf("unexpected first event: %+v", first)
	}
	if evs[1].Place != "" || evs[1].ImageURL != "" {
		t.Errorf("expected empty optional fields, got %+v", evs[1])
	}

	if got := seen.Get("categories"); got != "concert" {
		t.Errorf("categories param = %q", got)
	}
	if got := seen.Get("location"); got != "spb" {
		t.Errorf("location param = %q", got)
	}
}

func TestFetchWindowForExplicitDate(t *testing.T) {
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})

	c.Fetch(context.Background(), CategoryFun, DateSpec("01.06.2024"))

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)
	wantSince := day.Unix()
	wantUntil := day.AddDate(0, 0, 1).Unix()
	if got := seen.Get("actual_since"); got != formatUnix(wantSince) {
		t.Errorf("actual_since = %s, want %d", got, wantSince)
	}
	if got := seen.Get("actual_until"); got != formatUnix(wantUntil) {
		t.Errorf("actual_until = %s, want %d", got, wantUntil)
	}
	if got := seen.Get("categories"); got != "entertainment" {
		t.Errorf("categories param = %q", got)
	}
}

func TestFetchTomorrowWindow(t *testing.T) {
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})

	c.Fetch(context.Background(), CategoryConcert, DateTomorrow)

	day := time.Date(2024, 3, 16, 0, 0, 0, 0, time.Local)
	if got := seen.Get("actual_since"); got != formatUnix(day.Unix()) {
		t.Errorf("actual_since = %s, want %d", got, day.Unix())
	}
}

func TestFetchSwallowsFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed payload", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"empty results", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[]}`))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, tc.handler)
			if evs := c.Fetch(context.Background(), CategoryConcert, DateToday); len(evs) != 0 {
				t.Errorf("expected no events, got %d", len(evs))
			}
		})
	}
}

func TestFetchBadDateSpec(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be made for an unparsable date")
	})
	if evs := c.Fetch(context.Background(), CategoryConcert, DateSpec("garbage")); evs != nil {
		t.Errorf("expected nil, got %v", evs)
	}
}

func TestUnknownCategoryMapsToAll(t *testing.T) {
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	c.Fetch(context.Background(), Category("theatre"), DateToday)
	if got := seen.Get("categories"); got != "all" {
		t.Errorf("categories param = %q, want all", got)
	}
}

func formatUnix(v int64) string {
	return strconv.FormatInt(v, 10)
}
