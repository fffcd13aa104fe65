// Package clienthint identifies storefront front ends by the Shopfront-Client
// header and turns away clients older than a configured minimum version.
//
// The header is an RFC 8941 Dictionary:
//
//	Shopfront-Client: name="shopcli", version="v1.3.0"
//
// Browsers do not send it; requests without the header are let through.
package clienthint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
	"golang.org/x/mod/semver"
)

// Header is the request header carrying client identity.
const Header = "Shopfront-Client"

// Client is a parsed Shopfront-Client header.
type Client struct {
	Name    string
	Version string // canonical semver with "v" prefix, or "" when absent
}

// Parse extracts client identity from a Shopfront-Client header value.
//
// Examples:
//   - name="shopcli", version="v1.3.0" → {shopcli v1.3.0}
//   - name=shopcli, version="1.3"      → {shopcli v1.3.0}
//   - name="web"                       → {web ""}
//
// Returns error if header is empty, malformed, missing name, or carries a
// version that is not semver.
func Parse(header string) (Client, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Client{}, errors.New("empty Shopfront-Client header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return Client{}, fmt.Errorf("invalid Shopfront-Client header: %w", err)
	}

	name, err := stringMember(dict, "name")
	if err != nil {
		return Client{}, err
	}
	if name == "" {
		return Client{}, errors.New("name key not found in Shopfront-Client header")
	}

	version, err := stringMember(dict, "version")
	if err != nil {
		return Client{}, err
	}
	if version != "" {
		v := normalizeVersion(version)
		if !semver.IsValid(v) {
			return Client{}, fmt.Errorf("version %q is not semver", version)
		}
		version = semver.Canonical(v)
	}

	return Client{Name: name, Version: version}, nil
}

// Format renders c as a header value, the inverse of Parse.
func Format(c Client) (string, error) {
	dict := httpsfv.NewDictionary()
	dict.Add("name", httpsfv.NewItem(c.Name))
	if c.Version != "" {
		dict.Add("version", httpsfv.NewItem(c.Version))
	}
	return httpsfv.Marshal(dict)
}

// stringMember reads key as a string or token item. A missing key is "".
func stringMember(dict *httpsfv.Dictionary, key string) (string, error) {
	member, ok := dict.Get(key)
	if !ok {
		return "", nil
	}
	item, ok := member.(httpsfv.Item)
	if !ok {
		return "", fmt.Errorf("%s value must be an item", key)
	}
	switch v := item.Value.(type) {
	case string:
		return v, nil
	case httpsfv.Token:
		return string(v), nil
	default:
		return "", fmt.Errorf("%s value must be a string", key)
	}
}

// normalizeVersion adds "v" prefix if needed for semver parsing.
func normalizeVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}
