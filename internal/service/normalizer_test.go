package service

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
)

func TestContactNormalizer_EmailValidatesSyntaxAndMX(t *testing.T) {
	resolver := &stubDNSResolver{mx: map[string]bool{"example.com": true}}
	n := NewContactNormalizer("US", WithMXResolver(resolver))

	cases := map[string]struct {
		input string
		want  string
		ok    bool
	}{
		"normalized":   {input: " Test@Example.com ", want: "test@example.com", ok: true},
		"missing host": {input: "invalid@", ok: false},
		"no mx":        {input: "user@missingmx.com", ok: false},
		"bad label":    {input: "user@-bad.com", ok: false},
		"empty":        {input: "", ok: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := n.Email(context.Background(), tc.input)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Email(%q) = %q,%v; want %q,%v", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestContactNormalizer_EmailSkipsMXWithoutResolver(t *testing.T) {
	n := NewContactNormalizer("")
	got, ok := n.Email(context.Background(), "jane@acme-synthetic.io")
	if !ok || got != "jane@acme-synthetic.io" {
		t.Fatalf("expected email accepted without resolver, got %q,%v", got, ok)
	}
}

func TestContactNormalizer_Phone(t *testing.T) {
	n := NewContactNormalizer("US")
	if got, ok := n.Phone(" (415) 555-1234 "); !ok || got != "+14155551234" {
		t.Fatalf("unexpected phone: %q,%v", got, ok)
	}
	if _, ok := n.Phone("12345"); ok {
		t.Fatalf("expected short number to be rejected")
	}
}

func TestContactNormalizer_SocialURLEnforcesDomainAndResolution(t *testing.T) {
	httpClient := &stubHTTPClient{
		responses: map[string]int{
			"HEAD https://www.linkedin.com/company/test-company": http.StatusOK,
			"HEAD https://facebook.com/page":                     http.StatusMethodNotAllowed,
			"GET https://facebook.com/page":                      http.StatusOK,
		},
	}
	n := NewContactNormalizer("US", WithLinkChecker(httpClient))
	ctx := context.Background()

	if got, ok := n.SocialURL(ctx, PlatformLinkedIn, "https://www.linkedin.com/company/test-company?utm_source=newsletter"); !ok || got != "https://www.linkedin.com/company/test-company" {
		t.Fatalf("linkedin not cleaned correctly: %q", got)
	}
	if got, ok := n.SocialURL(ctx, PlatformFacebook, "http://facebook.com/page"); !ok || got != "https://facebook.com/page" {
		t.Fatalf("facebook fallback HEAD/GET failed: %q", got)
	}
	if _, ok := n.SocialURL(ctx, PlatformLinkedIn, "https://example.com/not-allowed"); ok {
		t.Fatalf("expected disallowed domain to be rejected")
	}
	if _, ok := n.SocialURL(ctx, PlatformTwitter, "https://linkedin.com/in/jane"); ok {
		t.Fatalf("expected platform mismatch to be rejected")
	}
}

func TestContactNormalizer_Website(t *testing.T) {
	n := NewContactNormalizer("US")
	got, ok := n.Website("acme.io/?utm_campaign=x")
	if !ok || got != "https://acme.io" {
		t.Fatalf("unexpected website: %q,%v", got, ok)
	}
}

func TestContactNormalizer_CleanContact(t *testing.T) {
	n := NewContactNormalizer("US")
	ctx := context.Background()

	contact, err := n.CleanContact(ctx, entity.Contact{
		Name:        " Jane ",
		Email:       strPtr("JANE@ACME.IO"),
		Phone:       strPtr("4155551234"),
		LinkedinURL: strPtr("linkedin.com/in/jane"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contact.Name != "Jane" || *contact.Email != "jane@acme.io" || *contact.Phone != "+14155551234" {
		t.Fatalf("contact not normalized: %+v", contact)
	}
	if *contact.LinkedinURL != "https://linkedin.com/in/jane" {
		t.Fatalf("linkedin not normalized: %s", *contact.LinkedinURL)
	}

	_, err = n.CleanContact(ctx, entity.Contact{Name: "", Email: strPtr("nope")})
	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(validationErr.Details) != 2 {
		t.Fatalf("expected two details, got %v", validationErr.Details)
	}
}

func TestContactNormalizer_SanitizeDropsInvalidValues(t *testing.T) {
	n := NewContactNormalizer("US")
	ctx := context.Background()

	contact := n.SanitizeContact(ctx, entity.Contact{Name: "Sam", Email: strPtr("broken"), Phone: strPtr("+1 415 555 1234")})
	if contact.Email != nil {
		t.Fatalf("expected invalid email to be dropped")
	}
	if contact.Phone == nil || *contact.Phone != "+14155551234" {
		t.Fatalf("unexpected phone: %v", contact.Phone)
	}

	fields := n.SanitizeFields(ctx, entity.Fields{
		entity.FieldEmail:       "Sam@Acme.io",
		entity.FieldPhone:       "not a phone",
		entity.FieldTwitterURL:  "https://x.com/acme?utm_source=a",
		entity.FieldCompanyData: map[string]any{"employeeCount": 12},
	})
	if fields.String(entity.FieldEmail) != "sam@acme.io" {
		t.Fatalf("email not normalized: %v", fields)
	}
	if _, ok := fields[entity.FieldPhone]; ok {
		t.Fatalf("invalid phone should be removed")
	}
	if fields.String(entity.FieldTwitterURL) != "https://x.com/acme" {
		t.Fatalf("twitter not normalized: %v", fields)
	}
	if _, ok := fields[entity.FieldCompanyData]; !ok {
		t.Fatalf("unknown keys must be preserved")
	}

	company := n.SanitizeCompany(ctx, entity.Company{Name: "Acme", Website: strPtr("www.acme.io/"), FacebookURL: strPtr("https://linkedin.com/acme")})
	if *company.Website != "https://www.acme.io" {
		t.Fatalf("unexpected website %s", *company.Website)
	}
	if company.FacebookURL != nil {
		t.Fatalf("mismatched facebook url should be dropped")
	}
}

func strPtr(v string) *string { return &v }

func TestContactNormalizer_SystemResolverOption(t *testing.T) {
	if n := NewContactNormalizer("US"); n.resolver != nil || n.httpClient != nil {
		t.Fatalf("expected verification to be off by default")
	}
	n := NewContactNormalizer("US", WithSystemMXResolver())
	if _, ok := n.resolver.(systemDNSResolver); !ok {
		t.Fatalf("expected system resolver, got %T", n.resolver)
	}
}

func TestCompaniesService_CreateContactVerifiesChannels(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	company := store.CreateCompany(ctx, entity.Company{Name: "Acme"})
	normalizer := NewContactNormalizer("US",
		WithMXResolver(&stubDNSResolver{mx: map[string]bool{"acme.io": true}}),
		WithLinkChecker(&stubHTTPClient{responses: map[string]int{
			"HEAD https://linkedin.com/in/jane": http.StatusOK,
		}}),
	)
	service := NewCompaniesService(store, normalizer)

	contact, err := service.CreateContact(ctx, dto.CreateContactRequest{
		CompanyID:   company.ID,
		Name:        "Jane",
		Email:       strPtr("jane@acme.io"),
		LinkedinURL: strPtr("linkedin.com/in/jane"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *contact.LinkedinURL != "https://linkedin.com/in/jane" {
		t.Fatalf("unexpected linkedin url %q", *contact.LinkedinURL)
	}

	_, err = service.CreateContact(ctx, dto.CreateContactRequest{CompanyID: company.ID, Name: "Bob", Email: strPtr("bob@nomx.io")})
	if err == nil || !strings.Contains(err.Error(), "email is invalid") {
		t.Fatalf("expected email without mx to be rejected, got %v", err)
	}
	_, err = service.CreateContact(ctx, dto.CreateContactRequest{CompanyID: company.ID, Name: "Ann", LinkedinURL: strPtr("linkedin.com/in/ghost")})
	if err == nil {
		t.Fatalf("expected unreachable linkedin url to be rejected")
	}
}

type stubDNSResolver struct {
	mx map[string]bool
}

func (s *stubDNSResolver) LookupMX(_ context.Context, domain string) ([]*net.MX, error) {
	if s.mx == nil {
		return nil, errors.New("no mx")
	}
	if ok := s.mx[domain]; ok {
		return []*net.MX{{Host: "mail." + domain, Pref: 10}}, nil
	}
	return nil, errors.New("no mx")
}

type stubHTTPClient struct {
	responses map[string]int
}

func (c *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.responses == nil {
		return nil, errors.New("no response configured")
	}
	key := req.Method + " " + req.URL.String()
	status, ok := c.responses[key]
	if !ok {
		status = http.StatusNotFound
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}
