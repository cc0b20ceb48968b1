package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/leads-dashboard/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
	mxLookupTimeout    = 3 * time.Second
)

// Social platforms recognised by the normalizer.
const (
	PlatformLinkedIn = "linkedin"
	PlatformTwitter  = "twitter"
	PlatformFacebook = "facebook"
)

var allowedSocialDomains = map[string]string{
	"linkedin.com": PlatformLinkedIn,
	"twitter.com":  PlatformTwitter,
	"x.com":        PlatformTwitter,
	"facebook.com": PlatformFacebook,
	"fb.com":       PlatformFacebook,
}

// DNSResolver abstracts MX lookups so email verification can be stubbed.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// HTTPClient abstracts the requests used to check that a social profile resolves.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ContactNormalizer cleans contact channels coming from users and data providers:
// lower-cased IDNA-safe emails, E.164 phones and canonical https social URLs.
// MX and link checks only run when a resolver or client is configured.
type ContactNormalizer struct {
	region     string
	resolver   DNSResolver
	httpClient HTTPClient
}

// NormalizerOption configures optional verification dependencies.
type NormalizerOption func(*ContactNormalizer)

// WithMXResolver enables MX verification of email domains.
func WithMXResolver(resolver DNSResolver) NormalizerOption {
	return func(n *ContactNormalizer) {
		n.resolver = resolver
	}
}

// WithSystemMXResolver enables MX verification through the system resolver.
func WithSystemMXResolver() NormalizerOption {
	return WithMXResolver(systemDNSResolver{})
}

// WithLinkChecker enables HEAD/GET verification of social profile URLs.
func WithLinkChecker(client HTTPClient) NormalizerOption {
	return func(n *ContactNormalizer) {
		n.httpClient = client
	}
}

// NewContactNormalizer builds a normalizer parsing local phone numbers in region.
func NewContactNormalizer(region string, opts ...NormalizerOption) *ContactNormalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	n := &ContactNormalizer{region: region}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Email returns the normalised address, or false when it is malformed or its
// domain fails verification.
func (n *ContactNormalizer) Email(ctx context.Context, raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return "", false
	}
	local, domain, _ := strings.Cut(email, "@")
	if !isDomainValid(domain) {
		return "", false
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return "", false
	}
	if n.resolver != nil && !n.hasMXRecord(ctx, asciiDomain) {
		return "", false
	}
	return local + "@" + asciiDomain, true
}

// Phone returns the E.164 form of raw, or false when it is not a valid number.
func (n *ContactNormalizer) Phone(raw string) (string, bool) {
	normalized := normalizePhone(raw, n.region)
	return normalized, normalized != ""
}

// SocialURL returns the canonical https URL of a profile on platform, stripped
// of tracking parameters. URLs hosted elsewhere are rejected.
func (n *ContactNormalizer) SocialURL(ctx context.Context, platform, raw string) (string, bool) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", false
	}
	hostPlatform, ok := hostMatchesAllowed(u.Hostname())
	if !ok || hostPlatform != platform {
		return "", false
	}
	stripTracking(u)
	if n.httpClient != nil && !n.urlResolves(ctx, u.String()) {
		return "", false
	}
	return u.String(), true
}

// Website returns raw as an https URL without tracking parameters or a trailing slash.
func (n *ContactNormalizer) Website(raw string) (string, bool) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", false
	}
	stripTracking(u)
	return strings.TrimRight(u.String(), "/"), true
}

// CleanContact normalises the contact channels of a user supplied contact.
// Invalid channels are reported as a ValidationError.
func (n *ContactNormalizer) CleanContact(ctx context.Context, contact entity.Contact) (entity.Contact, error) {
	var details []string
	contact.Name = strings.TrimSpace(contact.Name)
	if contact.Name == "" {
		details = append(details, "name is required")
	}
	if present(contact.Email) {
		if email, ok := n.Email(ctx, *contact.Email); ok {
			contact.Email = &email
		} else {
			details = append(details, "email is invalid")
		}
	} else {
		contact.Email = nil
	}
	if present(contact.Phone) {
		if phone, ok := n.Phone(*contact.Phone); ok {
			contact.Phone = &phone
		} else {
			details = append(details, "phone is invalid")
		}
	} else {
		contact.Phone = nil
	}
	if present(contact.LinkedinURL) {
		if link, ok := n.SocialURL(ctx, PlatformLinkedIn, *contact.LinkedinURL); ok {
			contact.LinkedinURL = &link
		} else {
			details = append(details, "linkedinUrl must be a linkedin.com URL")
		}
	} else {
		contact.LinkedinURL = nil
	}
	if len(details) > 0 {
		return entity.Contact{}, newValidationError("invalid contact", details...)
	}
	return contact, nil
}

// SanitizeContact normalises provider supplied contact channels, dropping the
// ones that do not validate instead of failing.
func (n *ContactNormalizer) SanitizeContact(ctx context.Context, contact entity.Contact) entity.Contact {
	contact.Email = n.optional(contact.Email, func(v string) (string, bool) { return n.Email(ctx, v) })
	contact.Phone = n.optional(contact.Phone, n.Phone)
	contact.LinkedinURL = n.optional(contact.LinkedinURL, func(v string) (string, bool) {
		return n.SocialURL(ctx, PlatformLinkedIn, v)
	})
	return contact
}

// SanitizeCompany normalises the website and social URLs of a company.
func (n *ContactNormalizer) SanitizeCompany(ctx context.Context, company entity.Company) entity.Company {
	company.Website = n.optional(company.Website, n.Website)
	company.LinkedinURL = n.optional(company.LinkedinURL, func(v string) (string, bool) {
		return n.SocialURL(ctx, PlatformLinkedIn, v)
	})
	company.TwitterURL = n.optional(company.TwitterURL, func(v string) (string, bool) {
		return n.SocialURL(ctx, PlatformTwitter, v)
	})
	company.FacebookURL = n.optional(company.FacebookURL, func(v string) (string, bool) {
		return n.SocialURL(ctx, PlatformFacebook, v)
	})
	return company
}

// SanitizeFields normalises the contact keys of an enrichment payload in place.
// Keys whose value does not validate are removed.
func (n *ContactNormalizer) SanitizeFields(ctx context.Context, fields entity.Fields) entity.Fields {
	if fields == nil {
		return entity.Fields{}
	}
	clean := func(key string, fn func(string) (string, bool)) {
		raw, ok := fields[key]
		if !ok {
			return
		}
		value, _ := raw.(string)
		if normalized, valid := fn(value); valid {
			fields[key] = normalized
			return
		}
		delete(fields, key)
	}
	clean(entity.FieldEmail, func(v string) (string, bool) { return n.Email(ctx, v) })
	clean(entity.FieldPhone, n.Phone)
	clean(entity.FieldLinkedinURL, func(v string) (string, bool) { return n.SocialURL(ctx, PlatformLinkedIn, v) })
	clean(entity.FieldTwitterURL, func(v string) (string, bool) { return n.SocialURL(ctx, PlatformTwitter, v) })
	return fields
}

func (n *ContactNormalizer) optional(value *string, fn func(string) (string, bool)) *string {
	if !present(value) {
		return nil
	}
	normalized, ok := fn(*value)
	if !ok {
		return nil
	}
	return &normalized
}

func (n *ContactNormalizer) hasMXRecord(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, mxLookupTimeout)
	defer cancel()
	records, err := n.resolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

func (n *ContactNormalizer) urlResolves(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := n.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return true
		}
		if resp.StatusCode != http.StatusMethodNotAllowed {
			return false
		}
	}

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	resp, err = n.httpClient.Do(getReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func hostMatchesAllowed(host string) (string, bool) {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return "", false
	}
	for domain, platform := range allowedSocialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform, true
		}
	}
	return "", false
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

func present(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}

type systemDNSResolver struct{}

func (systemDNSResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}
