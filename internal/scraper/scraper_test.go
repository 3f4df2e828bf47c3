package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/michiganelections/ballot-scraper/internal/config"
	"github.com/michiganelections/ballot-scraper/internal/registration"
)

func newTestScraper(url string) *Scraper {
	return New(config.ScraperConfig{BaseURL: url, UserAgent: "ballot-scraper-test", Timeout: 5 * time.Second})
}

func TestFetchBallot(t *testing.T) {
	tests := []struct {
		name        string
		htmlContent string
		statusCode  int
		wantErr     error
	}{
		{
			name:        "successful fetch",
			htmlContent: "\n  <div id=\"PreviewMvicBallot\"></div>\n",
			statusCode:  http.StatusOK,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantErr:    ErrServiceUnavailable,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantErr:    ErrServiceUnavailable,
		},
		{
			name:        "outage banner",
			htmlContent: `<div id="pollingLocationError" style="display:block;">Try again later</div>`,
			statusCode:  http.StatusOK,
			wantErr:     ErrServiceUnavailable,
		},
		{
			name:        "hidden banner",
			htmlContent: `<div id="pollingLocationError" style="display:none;"></div><div id="PreviewMvicBallot"></div>`,
			statusCode:  http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ua := r.Header.Get("User-Agent"); ua != "ballot-scraper-test" {
					t.Errorf("User-Agent = %q", ua)
				}
				if r.URL.Path != "/Voter/GetMvicBallot/1828/683/" {
					t.Errorf("path = %q", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.htmlContent))
			}))
			defer server.Close()

			s := newTestScraper(server.URL)
			body, err := s.FetchBallot(context.Background(), server.URL+"/Voter/GetMvicBallot/1828/683/")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FetchBallot() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchBallot() unexpected error: %v", err)
			}
			if body != strings.TrimSpace(tt.htmlContent) {
				t.Errorf("body = %q", body)
			}
		})
	}
}

func TestFetchBallot_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestScraper(server.URL).FetchBallot(ctx, server.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("FetchBallot() error = %v, want context.Canceled", err)
	}
}

func TestFetchRegistrationPage(t *testing.T) {
	voter := registration.Voter{
		FirstName: "Jane",
		LastName:  "Doe",
		Birth:     time.Date(1985, time.June, 4, 0, 0, 0, 0, time.UTC),
		ZipCode:   "49503",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != SearchByNamePath {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		want := map[string]string{
			"FirstName":      "Jane",
			"LastName":       "Doe",
			"NameBirthMonth": "June",
			"NameBirthYear":  "1985",
			"ZipCode":        "49503",
		}
		for field, value := range want {
			if got := r.PostForm.Get(field); got != value {
				t.Errorf("%s = %q, want %q", field, got, value)
			}
		}
		w.Write([]byte("<h2>Yes! You Are Registered</h2>"))
	}))
	defer server.Close()

	body, err := newTestScraper(server.URL).FetchRegistrationPage(context.Background(), voter)
	if err != nil {
		t.Fatalf("FetchRegistrationPage() error = %v", err)
	}
	if !strings.Contains(body, "Yes! You Are Registered") {
		t.Errorf("body = %q", body)
	}
}

func TestFetchRegistrationPage_FollowsMovedVoter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(SearchByNamePath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>Our records show you have recently moved.</p>
			<a href='registeredvoter.aspx?vid=12345' class=VITlinks>Begin</a>`))
	})
	mux.HandleFunc("/registeredvoter.aspx", func(w http.ResponseWriter, r *http.Request) {
		if vid := r.URL.Query().Get("vid"); vid != "12345" {
			t.Errorf("vid = %q", vid)
		}
		w.Write([]byte("<h2>Yes! You Are Registered</h2>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	body, err := newTestScraper(server.URL).FetchRegistrationPage(context.Background(), registration.Voter{FirstName: "Jane"})
	if err != nil {
		t.Fatalf("FetchRegistrationPage() error = %v", err)
	}
	if body != "<h2>Yes! You Are Registered</h2>" {
		t.Errorf("continuation page not followed, body = %q", body)
	}
}

func TestFetchStatus_ThroughScraper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<div>No voter record matched your search criteria</div>"))
	}))
	defer server.Close()

	opts := registration.DefaultOptions()
	status, err := registration.FetchStatus(context.Background(), newTestScraper(server.URL), registration.Voter{}, opts)
	if err != nil {
		t.Fatalf("FetchStatus() error = %v", err)
	}
	if status.Registered == nil || *status.Registered {
		t.Errorf("Registered = %v, want false", status.Registered)
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(config.ScraperConfig{BaseURL: "https://mvic.example.gov/"})
	if s.BaseURL() != "https://mvic.example.gov" {
		t.Errorf("BaseURL() = %q", s.BaseURL())
	}
	if s.client.Timeout != Timeout {
		t.Errorf("Timeout = %v, want %v", s.client.Timeout, Timeout)
	}
	if New(config.ScraperConfig{}).BaseURL() != config.DefaultBaseURL {
		t.Error("empty base URL should default to MVIC")
	}
}
