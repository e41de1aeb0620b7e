//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

var (
	baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")
	apiURL  = getenv("E2E_API_URL", "http://localhost:5000")
)

type apiProduct struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func TestSystem_E2E_CreateEditDelete(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	browser := &http.Client{Jar: jar, Timeout: 5 * time.Second}

	name := fmt.Sprintf("Pen %d-%d", time.Now().Unix(), rand.Intn(100000))

	page(t, browser, http.MethodGet, baseURL+"/", nil, 200)
	body := page(t, browser, http.MethodPost, baseURL+"/submit", url.Values{
		"name":        {name},
		"price":       {"5"},
		"description": {"A fine writing pen"},
		"image":       {"https://img.example/pen.png"},
	}, 200)
	if !strings.Contains(body, "Form submitted") {
		t.Fatalf("no submit acknowledgment in page")
	}

	created := findByName(t, name)
	if created.Price != 5 {
		t.Fatalf("price=%d want=5", created.Price)
	}

	id := fmt.Sprint(created.ID)
	page(t, browser, http.MethodPost, baseURL+"/products/"+id+"/edit", nil, 200)
	page(t, browser, http.MethodPost, baseURL+"/submit", url.Values{
		"name":        {name},
		"price":       {"7"},
		"description": {"A fine writing pen"},
		"image":       {"https://img.example/pen.png"},
	}, 200)
	if got := findByName(t, name); got.ID != created.ID || got.Price != 7 {
		t.Fatalf("after edit got %+v", got)
	}

	if os.Getenv("E2E_RESTART_API") == "1" {
		restartService(t, ctx, getenv("E2E_API_SERVICE", "api"))
		waitReady(t, ctx, baseURL+"/readyz")
	}

	page(t, browser, http.MethodPost, baseURL+"/products/"+id+"/delete", url.Values{"confirm": {"yes"}}, 200)
	for _, p := range listAPI(t) {
		if p.ID == created.ID {
			t.Fatalf("product %d still listed after delete", p.ID)
		}
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func page(t *testing.T, c *http.Client, method, target string, form url.Values, want int) string {
	t.Helper()

	req, err := http.NewRequest(method, target, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, target, resp.StatusCode, want)
	}
	return string(raw)
}

func listAPI(t *testing.T) []apiProduct {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(apiURL + "/products")
	if err != nil {
		t.Fatalf("list api: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("list api: status=%d", resp.StatusCode)
	}

	var out []apiProduct
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	return out
}

func findByName(t *testing.T, name string) apiProduct {
	t.Helper()

	for _, p := range listAPI(t) {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not found in api", name)
	return apiProduct{}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
