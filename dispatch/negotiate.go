// Copyright 2026 The Servant Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"strconv"
	"strings"
)

// acceptSpec is one parsed element of an Accept-style header.
type acceptSpec struct {
	value   string
	quality float64
}

// negotiateMediaType resolves an Accept header against an endpoint's
// content-type offers. It respects q-values, wildcards (*/* and
// type/*), and exact-match specificity. An empty header selects the
// first offer (the endpoint's declared default); no acceptable offer
// returns "".
//
// Examples:
//
//	// Accept: text/html, application/json;q=0.8
//	negotiateMediaType(accept, []string{"application/json", "text/html"}) // "text/html"
//
//	// Accept: */*
//	negotiateMediaType(accept, []string{"application/json"}) // "application/json"
func negotiateMediaType(header string, offers []string) string {
	if len(offers) == 0 {
		return ""
	}
	if header == "" {
		return offers[0]
	}

	specs := parseAccept(header)
	if len(specs) == 0 {
		return offers[0]
	}

	best := ""
	bestQuality := -1.0
	bestSpecificity := -1

	for _, offer := range offers {
		for _, spec := range specs {
			quality, specificity := matchMediaType(offer, spec)
			if quality <= 0 {
				continue
			}
			if quality > bestQuality || (quality == bestQuality && specificity > bestSpecificity) {
				best = offer
				bestQuality = quality
				bestSpecificity = specificity
			}
		}
	}

	return best
}

// negotiateTokens resolves a token-valued Accept-* header (charset,
// encoding, language) against an offer list. Same default rule as
// negotiateMediaType: empty header selects the first offer, no match
// returns "".
//
// Language-style prefix matching runs in both directions: an "en" spec
// accepts an "en-US" offer (RFC 4647 basic filtering), and an "en-US"
// spec also accepts a plain "en" offer. The second direction is wider
// than basic filtering; it is the RFC 4647 lookup fallback, applied so
// browsers sending only regional tags still select a base-language
// offer.
func negotiateTokens(header string, offers []string) string {
	if len(offers) == 0 {
		return ""
	}
	if header == "" {
		return offers[0]
	}

	specs := parseAccept(header)
	if len(specs) == 0 {
		return offers[0]
	}

	best := ""
	bestQuality := -1.0

	for _, offer := range offers {
		offerLower := strings.ToLower(strings.TrimSpace(offer))
		for _, spec := range specs {
			if spec.quality <= 0 {
				continue
			}
			specValue := strings.ToLower(spec.value)

			if specValue == offerLower || specValue == "*" {
				if spec.quality > bestQuality {
					best = offer
					bestQuality = spec.quality
				}

				break
			}

			if strings.HasPrefix(specValue, offerLower+"-") || strings.HasPrefix(offerLower, specValue+"-") {
				if spec.quality > bestQuality {
					best = offer
					bestQuality = spec.quality
				}
			}
		}
	}

	return best
}

// parseAccept parses an Accept-style header into specs, skipping empty
// elements. Elements with q=0 are kept with quality 0 and never match.
func parseAccept(header string) []acceptSpec {
	specs := make([]acceptSpec, 0, 4)

	start := 0
	for i := 0; i <= len(header); i++ {
		if i == len(header) || header[i] == ',' {
			if i > start {
				if spec := parseAcceptPart(header[start:i]); spec.value != "" {
					specs = append(specs, spec)
				}
			}
			start = i + 1
		}
	}

	return specs
}

// parseAcceptPart parses a single element (between commas) into a spec.
// Parameters other than q are ignored for matching purposes, which lets
// "application/json;version=1" in the header match a plain
// "application/json" offer.
func parseAcceptPart(part string) acceptSpec {
	spec := acceptSpec{quality: 1.0}

	start, end := trimWhitespace(part)
	if start >= end {
		return spec
	}

	semicolon := strings.IndexByte(part[start:end], ';')
	if semicolon == -1 {
		spec.value = part[start:end]

		return spec
	}
	semicolon += start
	spec.value = strings.TrimRight(part[start:semicolon], " \t")

	for _, param := range strings.Split(part[semicolon+1:end], ";") {
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "q" {
			continue
		}
		if q := parseQuality(value); q >= 0 {
			spec.quality = float64(q) / 1000.0
		} else if q, err := strconv.ParseFloat(value, 64); err == nil && q >= 0 && q <= 1 {
			spec.quality = q
		}
	}

	return spec
}

// parseQuality parses an HTTP q-value into integer thousandths:
// "1" → 1000, "0.9" → 900, "0.85" → 850. Returns -1 on malformed
// input. The grammar is:
//
//	qvalue = ( "0" [ "." 0*3DIGIT ] ) / ( "1" [ "." 0*3("0") ] )
func parseQuality(s string) int {
	if len(s) == 0 || len(s) > 5 {
		return -1
	}

	if s[0] == '1' {
		if len(s) == 1 {
			return 1000
		}
		if len(s) < 3 || s[1] != '.' {
			return -1
		}
		for i := 2; i < len(s); i++ {
			if s[i] != '0' {
				return -1
			}
		}

		return 1000
	}

	if s[0] == '0' {
		if len(s) == 1 {
			return 0
		}
		if len(s) < 3 || s[1] != '.' {
			return -1
		}
		result := 0
		multiplier := 100
		for i := 2; i < len(s) && i < 5; i++ {
			if s[i] < '0' || s[i] > '9' {
				return -1
			}
			result += int(s[i]-'0') * multiplier
			multiplier /= 10
		}

		return result
	}

	return -1
}

// matchMediaType checks one offer against one header spec and returns
// the spec's quality and the match specificity: 3 = exact, 2 = subtype
// wildcard, 1 = full wildcard, 0 = no match.
func matchMediaType(offer string, spec acceptSpec) (quality float64, specificity int) {
	offerType, offerSubtype := splitMediaType(offer)
	specType, specSubtype := splitMediaType(spec.value)

	switch {
	case specType == "*" && specSubtype == "*":
		return spec.quality, 1
	case specType == offerType && specSubtype == "*":
		return spec.quality, 2
	case specType == offerType && specSubtype == offerSubtype:
		return spec.quality, 3
	}

	return 0, 0
}

// splitMediaType splits a media type into lowercased type and subtype,
// dropping parameters. A bare token gets a "*" subtype.
func splitMediaType(mediaType string) (string, string) {
	if semicolon := strings.IndexByte(mediaType, ';'); semicolon != -1 {
		mediaType = mediaType[:semicolon]
	}
	mediaType = strings.TrimSpace(mediaType)

	typ, subtype, ok := strings.Cut(mediaType, "/")
	if !ok {
		return strings.ToLower(mediaType), "*"
	}

	return strings.ToLower(typ), strings.ToLower(subtype)
}

// trimWhitespace returns the start and end indices of non-whitespace
// content in s.
func trimWhitespace(s string) (start, end int) {
	start = 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}

	end = len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}

	return start, end
}
