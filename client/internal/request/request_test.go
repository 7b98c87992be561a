package request

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"testing"

	apierrors "github.com/JonaRivera-RB/APIJR-NETWORK/client/internal/errors"
)

func baseParams() Params {
	return Params{
		Scheme:      "https",
		Host:        "api.example.com",
		Environment: "/staging",
		Path:        "/v1/users",
		Method:      Get,
		Headers:     map[string]string{"X-App-Version": "1.2.3", "Authorization": "Bearer t"},
	}
}

func TestBuild_URLConcatenationAndQueryOrder(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Query = []QueryItem{{Name: "z", Value: "1"}, {Name: "a", Value: "two words"}, {Name: "m", Value: "3"}}
	req, err := Build(context.Background(), s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "https://api.example.com/staging/v1/users?z=1&a=two+words&m=3"
	if got := req.URL.String(); got != want {
		t.Fatalf("url = %q, want %q", got, want)
	}
	if req.Method != "GET" {
		t.Fatalf("method = %q", req.Method)
	}
}

func TestBuild_EnvironmentWithoutLeadingSlash(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Environment = "prod"
	s.Path = "/ping"
	u, err := URL(s)
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if got := u.String(); got != "https://api.example.com/prod/ping" {
		t.Fatalf("url = %q", got)
	}
}

func TestBuild_CopiesHeadersVerbatim(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Headers["x-lowercase-key"] = "v"
	req, err := Build(context.Background(), s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for k, v := range s.Headers {
		got, ok := req.Header[k]
		if !ok || len(got) != 1 || got[0] != v {
			t.Fatalf("header %q = %v, want %q", k, got, v)
		}
	}
	if _, ok := req.Header["Content-Type"]; ok {
		t.Fatal("GET request should not get a content type")
	}
}

func TestBuild_HostHeaderSetsRequestHost(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Headers["host"] = "virtual.example.com"
	req, err := Build(context.Background(), s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Host != "virtual.example.com" {
		t.Fatalf("req.Host = %q", req.Host)
	}
	if _, ok := req.Header["host"]; ok {
		t.Fatalf("host header should not be copied into Header: %v", req.Header)
	}
	if req.URL.Host != "api.example.com" {
		t.Fatalf("URL host changed to %q", req.URL.Host)
	}
}

func TestBuild_PostBodyRoundTrips(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Method = Post
	payload := map[string]any{"name": "ana", "age": float64(31), "tags": []any{"a", "b"}}
	s.Payload = payload
	req, err := Build(context.Background(), s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["name"] != "ana" || got["age"] != float64(31) || len(got["tags"].([]any)) != 2 {
		t.Fatalf("body = %v", got)
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("content type = %q", req.Header.Get("Content-Type"))
	}
}

func TestBuild_PutCarriesBody(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Method = Put
	s.Payload = struct {
		ID string `json:"id"`
	}{ID: "42"}
	req, err := Build(context.Background(), s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	raw, _ := io.ReadAll(req.Body)
	if string(raw) != `{"id":"42"}` {
		t.Fatalf("body = %s", raw)
	}
}

func TestBuild_GetIgnoresPayload(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Payload = map[string]any{"ignored": true}
	req, err := Build(context.Background(), s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Body != nil || req.ContentLength != 0 {
		t.Fatalf("expected no body, got content length %d", req.ContentLength)
	}
}

func TestBuild_TypedNilPayloadMeansNoBody(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Method = Post
	var m map[string]any
	s.Payload = m
	req, err := Build(context.Background(), s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Body != nil {
		t.Fatal("expected no body for nil map payload")
	}
}

func TestBuild_SerializationFailure(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Method = Post
	s.Payload = map[string]any{"bad": math.Inf(1)}
	_, err := Build(context.Background(), s)
	if !errors.Is(err, apierrors.ErrSerializationFailed) {
		t.Fatalf("expected serialization failure, got %v", err)
	}

	s.Payload = map[string]any{"ch": make(chan int)}
	if _, err := Build(context.Background(), s); !errors.Is(err, apierrors.ErrSerializationFailed) {
		t.Fatalf("expected serialization failure for channel, got %v", err)
	}
}

func TestBuild_InvalidURL(t *testing.T) {
	t.Parallel()
	cases := map[string]func(*Params){
		"empty scheme":   func(s *Params) { s.Scheme = "" },
		"empty host":     func(s *Params) { s.Host = "" },
		"host with path": func(s *Params) { s.Host = "api.example.com/x" },
		"bad scheme":     func(s *Params) { s.Scheme = "ht tp" },
		"bad method":     func(s *Params) { s.Method = "DELETE" },
	}
	for name, mutate := range cases {
		s := baseParams()
		mutate(&s)
		_, err := Build(context.Background(), s)
		if !errors.Is(err, apierrors.ErrInvalidURL) {
			t.Fatalf("%s: expected invalid url, got %v", name, err)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()
	s := baseParams()
	s.Method = Post
	s.Payload = map[string]any{"b": 1, "a": 2}
	s.Query = []QueryItem{{Name: "q", Value: "1"}}
	r1, err1 := Build(context.Background(), s)
	r2, err2 := Build(context.Background(), s)
	if err1 != nil || err2 != nil {
		t.Fatalf("Build: %v %v", err1, err2)
	}
	b1, _ := io.ReadAll(r1.Body)
	b2, _ := io.ReadAll(r2.Body)
	if r1.URL.String() != r2.URL.String() || string(b1) != string(b2) {
		t.Fatalf("builds differ: %s %s / %s %s", r1.URL, b1, r2.URL, b2)
	}
}

func TestMethod(t *testing.T) {
	t.Parallel()
	if Get.CarriesBody() || !Post.CarriesBody() || !Put.CarriesBody() {
		t.Fatal("CarriesBody mismatch")
	}
	if Method("PATCH").Valid() {
		t.Fatal("PATCH should not be valid")
	}
}
